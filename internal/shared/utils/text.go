package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the NFC-normalized, case-folded form of s
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// EqualFold reports whether a and b are equal ignoring case
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// CompareFold compares a and b ignoring case
func CompareFold(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}
