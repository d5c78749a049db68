// Package checksum fingerprints catalog rows so unchanged menus can be
// skipped on resync.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Of returns the digest of the JSON encoding of values, taken in order.
// Map keys are encoded sorted, so equal values always hash alike.
func Of(values ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i, v := range values {
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("checksum: value %d: %w", i, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
