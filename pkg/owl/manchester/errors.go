package manchester

import (
	"fmt"

	"github.com/aleksaelezovic/komma/internal/syntax"
)

// ParseError reports a syntax error at the deepest position the parser
// reached together with the alternatives that would have been accepted.
type ParseError struct {
	Offset   int
	Line     int
	Column   int
	Found    string
	Expected []string
	Message  string
}

func (e *ParseError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = fmt.Sprintf("expected %s, found %s", syntax.JoinExpected(e.Expected), e.Found)
	}
	return fmt.Sprintf("manchester: line %d, column %d: %s", e.Line, e.Column, detail)
}

func newParseError(input string, offset int) *ParseError {
	offset, line, column := syntax.Position(input, offset)
	return &ParseError{
		Offset: offset,
		Line:   line,
		Column: column,
		Found:  syntax.Found(input, offset, 24),
	}
}

func (p *Parser) fail(expected ...string) error {
	return p.failAt(p.pos, expected...)
}

// failAt keeps the error of the deepest position; alternatives failing at
// the same position are merged into its expected list. A merge copies the
// error because saved parser states may still hold the previous one.
func (p *Parser) failAt(pos int, expected ...string) error {
	switch {
	case p.err == nil || pos > p.err.Offset:
		p.err = newParseError(p.input, pos)
		p.err.Expected = append(p.err.Expected, expected...)
	case pos == p.err.Offset && p.err.Message == "":
		merged := *p.err
		merged.Expected = syntax.MergeExpected(append([]string(nil), p.err.Expected...), expected...)
		p.err = &merged
	}
	return p.err
}

func (p *Parser) errorf(pos int, format string, args ...any) error {
	if p.err == nil || pos >= p.err.Offset {
		p.err = newParseError(p.input, pos)
		p.err.Message = fmt.Sprintf(format, args...)
	}
	return p.err
}
