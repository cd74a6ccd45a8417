package xtid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// framePrefix matches the ids of the loading-animation SVG frames.
const framePrefix = "loading-x-anim"

// pathPreambleLen is the fixed-length move command at the head of the
// animation path data.
const pathPreambleLen = 9

var nonDigitRegex = regexp.MustCompile(`[^\d]+`)

// frameTable is one frame's 2D integer array parsed from its animation path.
// Each row maps to one curve segment of the path.
type frameTable [][]int

// selectFrame picks the animation frame for the given key bytes and parses
// its path data. Key byte 5 selects one of the four frames; the path sits on
// the second child of the frame's first child.
func selectFrame(doc Document, keyBytes []byte) (frameTable, error) {
	if len(keyBytes) < 6 {
		return nil, fmt.Errorf("%w: key too short to select a frame", ErrInvalidFrameData)
	}

	frames := doc.ElementsByIDPrefix(framePrefix)
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no animation frames in markup", ErrInvalidFrameData)
	}
	idx := int(keyBytes[5]) % 4
	if idx >= len(frames) {
		return nil, fmt.Errorf("%w: frame %d missing", ErrInvalidFrameData, idx)
	}

	groups := frames[idx].Children()
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: frame %d has no children", ErrInvalidFrameData, idx)
	}
	shapes := groups[0].Children()
	if len(shapes) < 2 {
		return nil, fmt.Errorf("%w: frame %d is missing its animation path", ErrInvalidFrameData, idx)
	}
	d, ok := shapes[1].Attr("d")
	if !ok || len(d) < pathPreambleLen {
		return nil, fmt.Errorf("%w: frame %d path data attribute absent", ErrInvalidFrameData, idx)
	}
	return parsePathData(d), nil
}

// parsePathData splits the path's curve commands into integer rows: the move
// preamble is dropped, the rest splits on the C command, and every non-digit
// run collapses to a single space. An empty segment yields an empty row.
func parsePathData(d string) frameTable {
	segments := strings.Split(d[pathPreambleLen:], "C")
	table := make(frameTable, len(segments))
	for i, seg := range segments {
		fields := strings.Fields(strings.TrimSpace(nonDigitRegex.ReplaceAllString(seg, " ")))
		row := make([]int, 0, len(fields))
		for _, f := range fields {
			if n, err := strconv.Atoi(f); err == nil {
				row = append(row, n)
			}
		}
		table[i] = row
	}
	return table
}
