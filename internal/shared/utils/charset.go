package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// DetectCharset returns the lowercase charset name that best fits data,
// or "utf-8" when detection fails
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// ToUTF8 returns data unchanged when it is already UTF-8, otherwise it
// detects the source charset and transcodes
func ToUTF8(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	name := DetectCharset(data)
	enc, _ := charset.Lookup(name)
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}
