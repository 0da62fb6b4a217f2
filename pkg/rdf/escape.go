package rdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errDanglingEscape = errors.New("incomplete escape sequence")

// EscapeError reports an unknown escape sequence
type EscapeError struct {
	Char byte
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("invalid escape sequence: \\%c", e.Char)
}

// Backslash must be escaped before anything else, otherwise the
// backslashes introduced by later replacements would be doubled.
var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
	`"`, `\"`,
)

// EscapeString escapes a literal label for use inside double quotes.
func EscapeString(s string) string {
	return stringEscaper.Replace(s)
}

// UnescapeString reverses EscapeString and additionally understands \b, \f,
// \' and \uXXXX / \UXXXXXXXX escapes.
func UnescapeString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(s) {
			return "", errDanglingEscape
		}
		switch s[i] {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '"', '\'', '\\':
			sb.WriteByte(s[i])
		case 'u', 'U':
			n := 4
			if s[i] == 'U' {
				n = 8
			}
			if i+1+n > len(s) {
				return "", errDanglingEscape
			}
			code, err := strconv.ParseUint(s[i+1:i+1+n], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape: %w", err)
			}
			sb.WriteRune(rune(code))
			i += n
		default:
			return "", &EscapeError{Char: s[i]}
		}
	}
	return sb.String(), nil
}
