// Package syntax holds the error-position helpers shared by the hand-written
// parsers.
package syntax

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EndOfInput is reported as the found text past the last byte
const EndOfInput = "end of input"

// Position clamps offset to the input and returns it with its 1-based line
// and rune column.
func Position(input string, offset int) (clamped, line, column int) {
	if offset > len(input) {
		offset = len(input)
	}
	lineStart := strings.LastIndexByte(input[:offset], '\n') + 1
	line = 1 + strings.Count(input[:offset], "\n")
	column = utf8.RuneCountInString(input[lineStart:offset]) + 1
	return offset, line, column
}

// Found quotes the token starting at offset, at most width bytes up to the
// next whitespace.
func Found(input string, offset, width int) string {
	if offset >= len(input) {
		return EndOfInput
	}
	end := offset
	for end < len(input) && end-offset < width && !IsSpace(input[end]) {
		end++
	}
	if end == offset {
		end++
	}
	return fmt.Sprintf("%q", input[offset:end])
}

// IsSpace reports ASCII whitespace
func IsSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// MergeExpected appends the items of extra missing from expected.
func MergeExpected(expected []string, extra ...string) []string {
	for _, e := range extra {
		if !contains(expected, e) {
			expected = append(expected, e)
		}
	}
	return expected
}

// JoinExpected renders an expected list for an error message
func JoinExpected(expected []string) string {
	if len(expected) == 1 {
		return expected[0]
	}
	return "one of " + strings.Join(expected, ", ")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
