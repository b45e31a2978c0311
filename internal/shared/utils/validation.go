package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// String length limits
const (
	MaxIDLength          = 128
	MaxNameLength        = 256
	MaxDescriptionLength = 2048
	MaxVersionLength     = 64
	MaxTypeLength        = 64
	MaxTagLength         = 64
	MaxTagCount          = 64
	MaxQueryLength       = 256
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateID checks an identifier's shape
func ValidateID(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s exceeds maximum length of %d", field, MaxIDLength)
	}
	if !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

// ValidateText checks that value is valid UTF-8 and within max runes.
// A blank value fails only when required is set.
func ValidateText(value, field string, max int, required bool) error {
	if strings.TrimSpace(value) == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s must be valid UTF-8", field)
	}
	if n := utf8.RuneCountInString(value); n > max {
		return fmt.Errorf("%s exceeds maximum length of %d (got %d)", field, max, n)
	}
	return nil
}

// ValidateTags checks a tag list's size and each entry's length
func ValidateTags(tags []string, field string) error {
	if len(tags) > MaxTagCount {
		return fmt.Errorf("%s exceeds maximum count of %d", field, MaxTagCount)
	}
	for i, tag := range tags {
		if err := ValidateText(tag, fmt.Sprintf("%s[%d]", field, i), MaxTagLength, false); err != nil {
			return err
		}
	}
	return nil
}

// Sanitizer strips markup from free text arriving from untrusted callers
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer that removes all HTML
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes markup from s and trims surrounding space
func (s *Sanitizer) Text(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

// List sanitizes every entry of in, keeping nil as nil
func (s *Sanitizer) List(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = s.Text(v)
	}
	return out
}
