// Package utils provides shared utilities for text, numbers, and logging.
package utils

import (
	"strings"
	"unicode/utf8"
)

// PreviewLen is the number of characters kept when a record stores an excerpt of its source text.
const PreviewLen = 500

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged. Multi-byte runes are never split.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// Head returns at most n leading characters of s without any marker.
func Head(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Preview returns the stored excerpt of an extracted text.
func Preview(s string) string {
	return Truncate(s, PreviewLen)
}
