// Package signature implements the payment provider's notification digest:
// SHA-256 over the payload's field values concatenated in ascending key
// order (the signature field excluded) with the shared secret appended.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Sign computes the hex digest for the given payload fields. Any "signature"
// field present is ignored. Number fields must be json.Number so the digest
// covers the literal text the provider sent, not a float round-trip.
func Sign(fields map[string]any, secret string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%v", fields[k])
	}
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks the payload's "signature" field against the computed digest
// using a constant-time comparison. A missing or non-string signature fails.
func Verify(fields map[string]any, secret string) bool {
	provided, ok := fields["signature"].(string)
	if !ok {
		return false
	}
	expected := Sign(fields, secret)
	return hmac.Equal([]byte(expected), []byte(provided))
}

// Decode parses a notification body preserving numeric literals. Callers
// must not re-decode with plain json.Unmarshal or amounts like 50.0 would
// be reformatted before signing.
func Decode(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return fields, nil
}
