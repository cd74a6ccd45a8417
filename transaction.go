package xtid

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// buildTransactionID assembles the identifier for one request: the key bytes
// and a little-endian 32-bit time prefix a truncated digest of
// method!path!time<keyword><animationKey>, a tag byte closes the payload,
// and the mask byte XORs everything before base64 encoding. The mask itself
// leads the output so the server can undo the fold.
func buildTransactionID(method, path string, timeNow int64, keyBytes []byte, animationKey string, mask byte) string {
	timeBytes := make([]byte, 4)
	for i := 0; i < 4; i++ {
		timeBytes[i] = byte(timeNow >> (i * 8))
	}

	hashInput := fmt.Sprintf("%s!%s!%d%s%s", method, path, timeNow, defaultKeyword, animationKey)
	digest := sha256.Sum256([]byte(hashInput))

	payload := make([]byte, 0, len(keyBytes)+4+16+1)
	payload = append(payload, keyBytes...)
	payload = append(payload, timeBytes...)
	payload = append(payload, digest[:16]...)
	payload = append(payload, payloadTagByte)

	out := make([]byte, len(payload)+1)
	out[0] = mask
	for i, b := range payload {
		out[i+1] = b ^ mask
	}
	return strings.TrimRight(base64.StdEncoding.EncodeToString(out), "=")
}
