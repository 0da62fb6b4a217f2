package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// NTriplesParser parses N-Triples documents
// Format: <subject> <predicate> <object> .
type NTriplesParser struct {
	input  string
	pos    int
	length int
	line   int
}

// NewNTriplesParser creates a new N-Triples parser
func NewNTriplesParser(input string) *NTriplesParser {
	return &NTriplesParser{
		input:  input,
		length: len(input),
		line:   1,
	}
}

// ParseNTriples parses an N-Triples document
func ParseNTriples(input string) ([]*Triple, error) {
	return NewNTriplesParser(input).Parse()
}

// Parse parses the document and returns its triples in document order
func (p *NTriplesParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		triple, err := p.parseTriple()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
		triples = append(triples, triple)
	}

	return triples, nil
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *NTriplesParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '\n' {
			p.line++
			p.pos++
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			// Skip comment until end of line
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *NTriplesParser) parseTriple() (*Triple, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing subject: %w", err)
	}
	if _, ok := subject.(*Literal); ok {
		return nil, fmt.Errorf("literals cannot be used as subjects")
	}

	p.skipWhitespaceAndComments()

	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing predicate: %w", err)
	}
	if _, ok := predicate.(*NamedNode); !ok {
		return nil, fmt.Errorf("predicate must be an IRI")
	}

	p.skipWhitespaceAndComments()

	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing object: %w", err)
	}

	p.skipWhitespaceAndComments()

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' at end of triple")
	}
	p.pos++ // skip '.'

	return NewTriple(subject, predicate, object), nil
}

// parseTerm parses an RDF term (IRI, blank node or literal)
func (p *NTriplesParser) parseTerm() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch ch := p.input[p.pos]; ch {
	case '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	default:
		return nil, fmt.Errorf("unexpected character at position %d: %c", p.pos, ch)
	}
}

// parseIRI parses an IRI enclosed in < >
func (p *NTriplesParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", fmt.Errorf("expected '<' at start of IRI")
	}
	p.pos++ // skip '<'

	start := p.pos
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]
		// IRIs cannot contain: space, <, ", {, }, |, ^, ` or control characters
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", fmt.Errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}
		p.pos++
	}

	if p.pos >= p.length {
		return "", fmt.Errorf("unclosed IRI")
	}

	iri, err := UnescapeString(p.input[start:p.pos])
	if err != nil {
		return "", err
	}
	p.pos++ // skip '>'

	return iri, nil
}

// parseBlankNode parses a blank node
func (p *NTriplesParser) parseBlankNode() (Term, error) {
	if p.pos+1 >= p.length || p.input[p.pos+1] != ':' {
		return nil, fmt.Errorf("expected ':' after '_' in blank node")
	}
	p.pos += 2 // skip '_:'

	start := p.pos
	for p.pos < p.length && IsNameChar(p.input[p.pos]) {
		p.pos++
	}
	// a trailing '.' terminates the triple
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	if p.pos == start {
		return nil, fmt.Errorf("empty blank node label")
	}

	return NewBlankNode(p.input[start:p.pos]), nil
}

// parseLiteral parses a literal value
func (p *NTriplesParser) parseLiteral() (Term, error) {
	p.pos++ // skip opening '"'

	start := p.pos
	for p.pos < p.length && p.input[p.pos] != '"' {
		if p.input[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}

	if p.pos >= p.length {
		return nil, fmt.Errorf("unclosed string literal")
	}

	value, err := UnescapeString(p.input[start:p.pos])
	if err != nil {
		return nil, err
	}
	p.pos++ // skip closing '"'

	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++ // skip '@'
		start := p.pos
		for p.pos < p.length {
			ch := p.input[p.pos]
			if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-') {
				break
			}
			p.pos++
		}
		if p.pos == start {
			return nil, fmt.Errorf("empty language tag")
		}
		return NewLiteralWithLanguage(value, p.input[start:p.pos]), nil
	}

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2 // skip '^^'
		datatypeIRI, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value, NewNamedNode(datatypeIRI)), nil
	}

	return NewLiteral(value), nil
}

// WriteNTriples writes triples in N-Triples format, one per line
func WriteNTriples(w io.Writer, triples []*Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
