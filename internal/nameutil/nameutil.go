// Package nameutil cleans and checks automation names.
package nameutil

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidateName checks whether name is acceptable for an automation: non-empty
// after trimming, valid UTF-8 and free of control characters. It does not
// mutate the input; use SanitizeName first to strip paste artifacts.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("invalid name: name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("invalid name: contains invalid encoding")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("invalid name: contains control character U+%04X (%q)", r, r)
		}
	}
	return nil
}

// SanitizeName drops control and zero-width characters (U+200B and friends,
// usually pasted in by accident), trims the result, and reports whether
// anything changed.
func SanitizeName(name string) (string, bool) {
	if name == "" {
		return name, false
	}
	out := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF':
			return -1
		}
		return r
	}, name)
	res := strings.TrimSpace(out)
	return res, res != name
}

// Normalize sanitizes name and validates the result.
func Normalize(name string) (string, error) {
	clean, _ := SanitizeName(name)
	if err := ValidateName(clean); err != nil {
		return "", err
	}
	return clean, nil
}

// UniqueName returns base, or base with a "-<suffix>-N" tail, whichever is
// first rejected by taken. Comparison is left to taken.
func UniqueName(base, suffix string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%s-%d", base, suffix, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
