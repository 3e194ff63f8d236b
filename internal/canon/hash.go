package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainParamSet = "studygen/paramset/v1"
	DomainSchema   = "studygen/schema/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SetHash computes the content-addressed identity of one parameter set.
// The hash is a pure function of the name-to-value mapping: construction
// order, generation order, and ordinal assignment never enter it. Two sets
// with identical values hash identically regardless of which strategy
// produced them or in what order the parameters were declared.
func SetHash(values Object) (string, error) {
	canonical, err := MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("SetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainParamSet, canonical), nil
}

// SchemaHash computes a content-addressed fingerprint of a canonicalized
// schema rendering. Stored in the lineage record so schema drift between
// runs is detectable without diffing full documents.
func SchemaHash(canonical []byte) string {
	return hashWithDomain(DomainSchema, canonical)
}

// MustSetHash is like SetHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSetHash(values Object) string {
	h, err := SetHash(values)
	if err != nil {
		panic(err)
	}
	return h
}
