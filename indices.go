package xtid

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

var (
	onDemandFileRegex = regexp.MustCompile(`['|"]{1}ondemand\.s['|"]{1}:\s*['|"]{1}([\w]*)['|"]{1}`)
	indicesRegex      = regexp.MustCompile(`\(\w{1}\[(\d{1,2})\],\s*16\)`)
)

const (
	onDemandURLPrefix = "https://abs.twimg.com/responsive-web/client-web/ondemand.s."
	onDemandURLSuffix = "a.js"
)

// indexSet holds the structural offsets extracted from the ondemand script:
// the key byte that selects the frame-table row, and the key bytes whose low
// nibbles fold into the animation frame time, in order of appearance.
type indexSet struct {
	rowIndex       int
	keyByteIndices []int
}

// onDemandFileURL locates the ondemand.s version fragment in the markup and
// expands it into the CDN URL. Empty when the marker is absent.
func onDemandFileURL(markup string) string {
	m := onDemandFileRegex.FindStringSubmatch(markup)
	if len(m) < 2 {
		return ""
	}
	return onDemandURLPrefix + m[1] + onDemandURLSuffix
}

// resolveIndices fetches the ondemand script referenced by the document and
// scans it for the mod-16 array-index literals. A missing marker, a failed
// fetch and an index-free script all report ErrIndicesNotFound.
func resolveIndices(ctx context.Context, fetch Fetcher, doc Document) (indexSet, error) {
	url := onDemandFileURL(doc.Markup())
	if url == "" {
		return indexSet{}, fmt.Errorf("%w: ondemand.s marker absent from markup", ErrIndicesNotFound)
	}

	js, err := fetch.Fetch(ctx, url)
	if err != nil {
		return indexSet{}, fmt.Errorf("%w: fetch %s: %v", ErrIndicesNotFound, url, err)
	}

	matches := indicesRegex.FindAllStringSubmatch(js, -1)
	indices := make([]int, 0, len(matches))
	for _, m := range matches {
		idx, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			indices = append(indices, idx)
		}
	}
	if len(indices) == 0 {
		return indexSet{}, fmt.Errorf("%w: no index literals in %s", ErrIndicesNotFound, url)
	}
	return indexSet{rowIndex: indices[0], keyByteIndices: indices[1:]}, nil
}

// validate checks that every offset lands inside the key bytes.
func (s indexSet) validate(keyBytes []byte) error {
	if s.rowIndex >= len(keyBytes) {
		return fmt.Errorf("%w: row offset %d outside %d key bytes", ErrIndicesNotFound, s.rowIndex, len(keyBytes))
	}
	for _, idx := range s.keyByteIndices {
		if idx >= len(keyBytes) {
			return fmt.Errorf("%w: key byte offset %d outside %d key bytes", ErrIndicesNotFound, idx, len(keyBytes))
		}
	}
	return nil
}
