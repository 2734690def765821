package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for state fingerprints. The version suffix enables
// future algorithm migration without ambiguity.
const domainStateFingerprint = "canopy/state/v1"

// Fingerprint computes a content hash of a state tree:
// SHA256(domain + 0x00 + canonical JSON). The null separator prevents
// domain/data boundary ambiguity.
//
// Fingerprints back the strict-mode write fence, watch change detection,
// and journal replay verification. Identical state trees always produce
// identical fingerprints regardless of map iteration order.
func Fingerprint(root map[string]any) (string, error) {
	canonical, err := MarshalCanonical(root)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(domainStateFingerprint))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the value is known to be encodable.
func MustFingerprint(root map[string]any) string {
	fp, err := Fingerprint(root)
	if err != nil {
		panic(err)
	}
	return fp
}
