package utils

import "strings"

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FirstNonBlank returns the first candidate that is not blank, or "".
func FirstNonBlank(candidates ...string) string {
	for _, c := range candidates {
		if !IsBlank(c) {
			return c
		}
	}
	return ""
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
