package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256  HashAlgorithm = "sha256"
	BLAKE2b HashAlgorithm = "blake2b"
)

// Hasher provides content hashing with a selectable algorithm
type Hasher struct {
	algorithm HashAlgorithm
	domain    string
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a SHA-256 hasher
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// WithDomain returns a copy of the hasher that prefixes every input with
// domain and a NUL separator, so digests from different uses never collide.
func (h *Hasher) WithDomain(domain string) *Hasher {
	return &Hasher{algorithm: h.algorithm, domain: domain}
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash computes the hex digest of data
func (h *Hasher) Hash(data []byte) string {
	if h.domain != "" {
		prefixed := make([]byte, 0, len(h.domain)+1+len(data))
		prefixed = append(prefixed, h.domain...)
		prefixed = append(prefixed, 0)
		data = append(prefixed, data...)
	}

	switch h.algorithm {
	case BLAKE2b:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes the digest of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashCanonical computes the digest of v's canonical JSON form.
// The result does not depend on map iteration or field order.
func (h *Hasher) HashCanonical(v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize: %w", err)
	}
	return h.Hash(data), nil
}

// HashFields computes a digest from unordered fields
func (h *Hasher) HashFields(fields ...string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)
	return h.HashString(strings.Join(sorted, "|"))
}

// ShortHash truncates a digest for display
func ShortHash(full string) string {
	if len(full) < 12 {
		return full
	}
	return full[:12]
}
