package xtid

import (
	"encoding/base64"
	"fmt"
)

// verificationAttr names the meta element carrying the site-verification
// key.
const verificationAttr = "twitter-site-verification"

// verificationKey reads the base64 site-verification key from the document.
func verificationKey(doc Document) (string, error) {
	key, ok := doc.LookupAttr("name", verificationAttr, "content")
	if !ok || key == "" {
		return "", ErrKeyNotFound
	}
	return key, nil
}

// decodeKey decodes the verification key into its raw bytes.
func decodeKey(key string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode verification key: %w", err)
	}
	return b, nil
}
