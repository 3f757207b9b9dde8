// Package hashing provides the canonical content hashing used by the
// blockchain for block links and the proof of work puzzle.
package hashing

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hash returns the canonical hash for the value. The value is encoded as JSON
// which for a struct follows the field declaration order, so any record
// hashed by this function must be a fixed-schema struct with no maps. A value
// that can't be encoded, such as a non-finite float, has no hash.
func Hash(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding value for hashing: %w", err)
	}

	return Digest(data), nil
}

// Digest returns the hex encoded SHA256 of the specified data.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Prefix returns the first n hex digits of a hash produced by this package,
// skipping the 0x prefix. An empty string is returned if the hash is too short.
func Prefix(hash string, n int) string {
	const hexPrefix = 2

	if len(hash) < hexPrefix+n {
		return ""
	}

	return hash[hexPrefix : hexPrefix+n]
}
