// Package tmrnasearch provides shared primitives for the tmRNA similarity
// search service: the BLAKE3 hash type and the request fingerprint used as
// the result-cache key.
package tmrnasearch

import (
	"encoding/json"
	"fmt"
)

// Fingerprint computes the cache key for a search request. The key is the
// BLAKE3 hash of the operation name joined with the canonical form of the
// JSON request body, so two requests that differ only in JSON key order
// produce the same fingerprint.
func Fingerprint(op string, body []byte) (Hash, error) {
	canonical, err := CanonicalJSON(body)
	if err != nil {
		return Hash{}, fmt.Errorf("canonicalizing request body: %w", err)
	}
	return HashBytes(append([]byte(op+":"), canonical...)), nil
}

// CanonicalJSON re-encodes a JSON document with all object keys sorted
// recursively. encoding/json marshals map keys in sorted order, so a
// round-trip through any is sufficient.
func CanonicalJSON(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return out, nil
}
