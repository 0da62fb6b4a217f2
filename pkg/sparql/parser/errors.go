package parser

import (
	"fmt"

	"github.com/aleksaelezovic/komma/internal/syntax"
)

// ParseError reports a syntax error at the deepest position the parser
// reached, with every production that would have been accepted there.
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
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, detail)
}

func newParseError(input string, offset int) *ParseError {
	offset, line, column := syntax.Position(input, offset)
	return &ParseError{
		Offset: offset,
		Line:   line,
		Column: column,
		Found:  syntax.Found(input, offset, 16),
	}
}

// fail records the expected productions at the current position and returns
// the error for the deepest position reached so far.
func (p *Parser) fail(expected ...string) error {
	return p.failAt(p.pos, expected...)
}

func (p *Parser) failAt(pos int, expected ...string) error {
	switch {
	case p.err == nil || pos > p.err.Offset:
		p.err = newParseError(p.input, pos)
		p.err.Expected = append(p.err.Expected, expected...)
	case pos == p.err.Offset && p.err.Message == "":
		p.err.Expected = syntax.MergeExpected(p.err.Expected, expected...)
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
