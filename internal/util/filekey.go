package util

import (
	"crypto/sha1"
	"fmt"
)

// ContentHash returns the hex SHA1 of a source file's bytes.
// It identifies the exact input a batch of games was loaded from.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(data))
}

// ShortHash trims a hash for log output
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
