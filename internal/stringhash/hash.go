// Package stringhash provides a fast, non-cryptographic hash used to key
// the string-reference namespace's lookup table (spec.md §4.2/§4.3).
package stringhash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of data.
func ID(data []byte) uint64 {
	return xxhash.Sum64(data)
}
