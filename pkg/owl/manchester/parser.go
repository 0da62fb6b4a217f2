// Package manchester parses and generates OWL 2 Manchester syntax.
package manchester

import (
	"regexp"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// Document is a parsed ontology document: the prefixes it declares and the
// ontology they are used in.
type Document struct {
	Namespaces *rdf.Namespaces
	Ontology   *owl.Ontology
}

// Option configures a Parser
type Option func(*Parser)

// WithNamespaces sets the prefixes known before the first Prefix: frame.
// The table is copied.
func WithNamespaces(ns *rdf.Namespaces) Option {
	return func(p *Parser) {
		p.ns = ns.Clone()
	}
}

// WithPropertyKinds sets the lookup used to tell object and data properties
// apart when the document itself does not declare them.
func WithPropertyKinds(kinds PropertyKinds) Option {
	return func(p *Parser) {
		p.kinds = kinds
	}
}

// WithEncoderOptions configures the encoder used by Load
func WithEncoderOptions(opts ...owl.EncoderOption) Option {
	return func(p *Parser) {
		p.encoderOptions = append(p.encoderOptions, opts...)
	}
}

// Parser parses Manchester syntax
type Parser struct {
	input  string
	pos    int
	length int
	ns     *rdf.Namespaces
	kinds  PropertyKinds
	err    *ParseError

	encoderOptions []owl.EncoderOption
}

// NewParser creates a parser for input. Unless WithNamespaces is given the
// rdf, rdfs, owl and xsd prefixes are known.
func NewParser(input string, opts ...Option) *Parser {
	p := &Parser{
		input:  input,
		length: len(input),
		ns:     rdf.DefaultNamespaces(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDescription parses a single class expression or data range
func ParseDescription(input string, opts ...Option) (owl.ClassExpression, error) {
	return NewParser(input, opts...).ParseDescription()
}

// ParseDescription parses the whole input as one class expression and
// resolves its property kinds.
func (p *Parser) ParseDescription() (owl.ClassExpression, error) {
	ce, err := p.parseDescription()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	NewResolver(p.kinds).ClassExpression(ce)
	return ce, nil
}

// ParseFrame parses optional Prefix: declarations followed by exactly one frame
func (p *Parser) ParseFrame() (owl.Frame, error) {
	if _, err := p.parsePrefixes(rdf.NewNamespaces()); err != nil {
		return nil, err
	}
	frame, ok, err := p.parseFrame()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.fail(frameKeywords...)
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	r := NewResolver(p.kinds)
	r.declare(frame)
	r.Frame(frame)
	return frame, nil
}

// ParseDocument parses an ontology document
func (p *Parser) ParseDocument() (*Document, error) {
	doc := &Document{Namespaces: rdf.NewNamespaces(), Ontology: &owl.Ontology{}}

	if _, err := p.parsePrefixes(doc.Namespaces); err != nil {
		return nil, err
	}
	if err := p.parseOntologyHeader(doc.Ontology); err != nil {
		return nil, err
	}
	for {
		frame, ok, err := p.parseFrame()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		doc.Ontology.Frames = append(doc.Ontology.Frames, frame)
	}
	if err := p.expectEnd(frameKeywords...); err != nil {
		return nil, err
	}

	NewResolver(p.kinds).Ontology(doc.Ontology)
	return doc, nil
}

// Namespaces returns the prefix table in effect, including document prefixes
func (p *Parser) Namespaces() *rdf.Namespaces {
	return p.ns
}

func (p *Parser) expectEnd(alternatives ...string) error {
	p.skipWhitespace()
	if p.pos < p.length {
		return p.fail(append(alternatives, "end of input")...)
	}
	return nil
}

// parsePrefixes parses Prefix: frames, binding each prefix in the parser's
// table and in declared.
func (p *Parser) parsePrefixes(declared *rdf.Namespaces) (int, error) {
	n := 0
	for p.matchWord("Prefix:") {
		word := p.peekWord()
		if !strings.HasSuffix(word, ":") || strings.Count(word, ":") != 1 {
			return n, p.fail("prefix name")
		}
		p.pos += len(word)
		prefix := strings.TrimSuffix(word, ":")

		p.skipWhitespace()
		iri, err := p.parseFullIRI()
		if err != nil {
			return n, err
		}
		p.ns.Bind(prefix, iri)
		declared.Bind(prefix, iri)
		n++
	}
	return n, nil
}

func (p *Parser) parseOntologyHeader(o *owl.Ontology) error {
	if !p.matchWord("Ontology:") {
		return nil
	}
	if p.atIRIStart() {
		iri, err := p.parseIRI()
		if err != nil {
			return err
		}
		o.IRI = iri
		if p.atIRIStart() {
			if o.VersionIRI, err = p.parseIRI(); err != nil {
				return err
			}
		}
	}

	for {
		switch {
		case p.matchWord("Import:"):
			p.skipWhitespace()
			iri, err := p.parseIRI()
			if err != nil {
				return err
			}
			o.Imports = append(o.Imports, iri)
		case p.matchWord("Annotations:"):
			annotations, err := p.parseAnnotationList()
			if err != nil {
				return err
			}
			o.Annotations = append(o.Annotations, annotations...)
		default:
			return nil
		}
	}
}

// Descriptions

// parseDescription parses conjunction { 'or' conjunction }
func (p *Parser) parseDescription() (owl.ClassExpression, error) {
	first, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	operands := []owl.ClassExpression{first}
	for p.matchWord("or") {
		next, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return &owl.UnionOf{Operands: operands}, nil
}

// parseConjunction parses classIRI 'that' ['not'] restriction { 'and' ['not']
// restriction }, or else primary { 'and' primary }
func (p *Parser) parseConjunction() (owl.ClassExpression, error) {
	if p.atIRIStart() {
		saved := p.save()
		iri, err := p.parseIRI()
		if err == nil && p.matchWord("that") {
			operands := []owl.ClassExpression{&owl.Class{IRI: iri}}
			for {
				negated := p.matchWord("not")
				r, ok, err := p.parseRestriction()
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, p.fail("restriction")
				}
				if negated {
					r = &owl.ComplementOf{Operand: r}
				}
				operands = append(operands, r)
				if !p.matchWord("and") {
					break
				}
			}
			return &owl.IntersectionOf{Operands: operands}, nil
		}
		p.restore(saved)
	}

	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	operands := []owl.ClassExpression{first}
	for p.matchWord("and") {
		next, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return &owl.IntersectionOf{Operands: operands}, nil
}

// parsePrimary parses 'not' primary | restriction | atomic
func (p *Parser) parsePrimary() (owl.ClassExpression, error) {
	if p.matchWord("not") {
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &owl.ComplementOf{Operand: operand}, nil
	}

	r, ok, err := p.parseRestriction()
	if err != nil {
		return nil, err
	}
	if ok {
		return r, nil
	}
	return p.parseAtomic()
}

// parseRestriction parses a property expression followed by a restriction
// keyword. If the input does not start a restriction it consumes nothing and
// reports false.
func (p *Parser) parseRestriction() (owl.ClassExpression, bool, error) {
	saved := p.save()

	inverse := p.peekWord() == "inverse"
	if !inverse && !p.atIRIStart() {
		return nil, false, nil
	}
	property, err := p.parsePropertyExpression()
	if err != nil {
		if inverse {
			return nil, false, err
		}
		p.restore(saved)
		return nil, false, nil
	}

	r := &owl.Restriction{OnProperty: property}
	switch p.peekWord() {
	case "some", "only":
		keyword := p.consumeWord()
		filler, err := p.parsePrimary()
		if err != nil {
			return nil, false, err
		}
		if keyword == "some" {
			r.SomeValuesFrom = filler
		} else {
			r.AllValuesFrom = filler
		}
	case "value":
		p.consumeWord()
		value, err := p.parseValue()
		if err != nil {
			return nil, false, err
		}
		r.HasValue = value
	case "Self":
		p.consumeWord()
		r.HasSelf = true
	case "min", "max", "exactly":
		keyword := p.consumeWord()
		n, err := p.parseNonNegativeInteger()
		if err != nil {
			return nil, false, err
		}
		var filler owl.ClassExpression
		if p.atPrimaryStart() {
			if filler, err = p.parsePrimary(); err != nil {
				return nil, false, err
			}
		}
		setCardinality(r, keyword, n, filler)
	default:
		if inverse {
			return nil, false, p.fail(restrictionKeywords...)
		}
		p.restore(saved)
		return nil, false, nil
	}
	return r, true, nil
}

var restrictionKeywords = []string{"some", "only", "value", "Self", "min", "max", "exactly"}

// setCardinality stores a cardinality; a qualifying filler is kept in
// OnClass until the property kind is resolved.
func setCardinality(r *owl.Restriction, keyword string, n int, filler owl.ClassExpression) {
	count := owl.Count(n)
	qualified := filler != nil
	switch {
	case keyword == "min" && qualified:
		r.MinQualifiedCardinality = count
	case keyword == "min":
		r.MinCardinality = count
	case keyword == "max" && qualified:
		r.MaxQualifiedCardinality = count
	case keyword == "max":
		r.MaxCardinality = count
	case qualified:
		r.QualifiedCardinality = count
	default:
		r.Cardinality = count
	}
	r.OnClass = filler
}

// parseAtomic parses '{' values '}' | '(' description ')' | datatype
// restriction | class IRI
func (p *Parser) parseAtomic() (owl.ClassExpression, error) {
	p.skipWhitespace()
	switch p.peek() {
	case '{':
		p.advance()
		oneOf := &owl.OneOf{}
		for {
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			oneOf.Members = append(oneOf.Members, value)
			if !p.matchChar(',') {
				break
			}
		}
		if !p.matchChar('}') {
			return nil, p.fail("','", "'}'")
		}
		return oneOf, nil
	case '(':
		p.advance()
		ce, err := p.parseDescription()
		if err != nil {
			return nil, err
		}
		if !p.matchChar(')') {
			return nil, p.fail("'and'", "'or'", "')'")
		}
		return ce, nil
	}

	if !p.atIRIStart() {
		return nil, p.fail("class IRI", "'not'", "'('", "'{'")
	}
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	if p.matchChar('[') {
		return p.parseFacets(iri)
	}
	return &owl.Class{IRI: iri}, nil
}

var facetOperators = []struct {
	symbol string
	facet  *rdf.NamedNode
}{
	{"<=", rdf.XSDMinInclusive},
	{"<", rdf.XSDMinExclusive},
	{">=", rdf.XSDMaxInclusive},
	{">", rdf.XSDMaxExclusive},
}

// parseFacets parses facet value { ',' facet value } ']' after the '['
func (p *Parser) parseFacets(datatype string) (owl.ClassExpression, error) {
	dr := &owl.DatatypeRestriction{Datatype: &owl.Class{IRI: datatype}}
	for {
		p.skipWhitespace()
		facet := ""
		for _, op := range facetOperators {
			if p.match(op.symbol) {
				facet = op.facet.IRI
				break
			}
		}
		if facet == "" {
			name := p.readWhile(isLetter)
			if name == "" {
				return nil, p.fail("facet")
			}
			facet = rdf.XSDNamespace + name
		}

		p.skipWhitespace()
		literal, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		dr.Facets = append(dr.Facets, &owl.FacetRestriction{Facet: facet, Value: literal})

		if p.matchChar(']') {
			return dr, nil
		}
		if !p.matchChar(',') {
			return nil, p.fail("','", "']'")
		}
	}
}

// parsePropertyExpression parses ['inverse'] IRI, with optional parentheses
// around the inverted property
func (p *Parser) parsePropertyExpression() (*owl.PropertyExpression, error) {
	if p.matchWord("inverse") {
		parens := p.matchChar('(')
		p.skipWhitespace()
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		if parens && !p.matchChar(')') {
			return nil, p.fail("')'")
		}
		return &owl.PropertyExpression{IRI: iri, Inverse: true, Kind: owl.ObjectProperty}, nil
	}
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	return owl.NewProperty(iri), nil
}

func (p *Parser) parseNonNegativeInteger() (int, error) {
	p.skipWhitespace()
	start := p.pos
	digits := p.readWhile(isDigit)
	if digits == "" {
		return 0, p.fail("non-negative integer")
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
		if n > 1<<30 {
			return 0, p.errorf(start, "cardinality %s out of range", digits)
		}
	}
	return n, nil
}

// Terms

// parseValue parses an individual or a literal. Individuals are
// firstOf(IRI, blank node).
func (p *Parser) parseValue() (rdf.Term, error) {
	p.skipWhitespace()
	ch := p.peek()
	switch {
	case ch == '"' || isDigit(ch) || ch == '+' || ch == '-' || ch == '.':
		return p.parseLiteral()
	}
	return p.parseIndividual()
}

func (p *Parser) parseIndividual() (rdf.Term, error) {
	if p.atIRIStart() {
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(iri), nil
	}
	if p.match("_:") {
		raw := p.readWhile(rdf.IsNameChar)
		label := strings.TrimRight(raw, ".")
		p.pos -= len(raw) - len(label)
		if label == "" {
			return nil, p.fail("blank node label")
		}
		return rdf.NewBlankNode(label), nil
	}
	return nil, p.fail("individual", "literal")
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
	doublePattern  = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)[eE][+-]?[0-9]+$`)
)

// parseLiteral parses a quoted literal with optional language tag or
// datatype, or an integer, decimal or floating point number
func (p *Parser) parseLiteral() (*rdf.Literal, error) {
	p.skipWhitespace()
	if p.peek() != '"' {
		return p.parseNumber()
	}

	value, err := p.parseQuotedString()
	if err != nil {
		return nil, err
	}
	switch {
	case p.peek() == '@':
		p.advance()
		lang := p.readWhile(func(ch byte) bool {
			return isLetter(ch) || isDigit(ch) || ch == '-'
		})
		if lang == "" {
			return nil, p.fail("language tag")
		}
		return rdf.NewLiteralWithLanguage(value, lang), nil
	case p.match("^^"):
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil
	}
	return rdf.NewLiteral(value), nil
}

func (p *Parser) parseQuotedString() (string, error) {
	start := p.pos
	p.advance() // opening quote
	for p.pos < p.length && p.input[p.pos] != '"' {
		if p.input[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= p.length {
		return "", p.errorf(start, "unclosed string literal")
	}
	raw := p.input[start+1 : p.pos]
	p.advance() // closing quote

	value, err := rdf.UnescapeString(raw)
	if err != nil {
		return "", p.errorf(start, "invalid string: %v", err)
	}
	return value, nil
}

func (p *Parser) parseNumber() (*rdf.Literal, error) {
	start := p.pos
	text := p.readWhile(func(ch byte) bool {
		return isDigit(ch) || ch == '.' || ch == '+' || ch == '-' || ch == 'e' || ch == 'E'
	})

	if ch := p.peek(); ch == 'f' || ch == 'F' {
		if floatPattern.MatchString(text) {
			p.advance()
			return rdf.NewLiteralWithDatatype(text, rdf.XSDFloat), nil
		}
	}
	switch {
	case text == "":
	case integerPattern.MatchString(text):
		return rdf.NewLiteralWithDatatype(text, rdf.XSDInteger), nil
	case decimalPattern.MatchString(text):
		return rdf.NewLiteralWithDatatype(text, rdf.XSDDecimal), nil
	case doublePattern.MatchString(text):
		return rdf.NewLiteralWithDatatype(text, rdf.XSDDouble), nil
	}
	p.pos = start
	return nil, p.fail("literal")
}

// parseIRI parses firstOf(full IRI, prefixed name, bare name with the empty
// prefix) and returns the expanded IRI
func (p *Parser) parseIRI() (string, error) {
	p.skipWhitespace()
	if p.peek() == '<' {
		return p.parseFullIRI()
	}

	start := p.pos
	word := p.peekWord()
	if word == "" || reservedWords[word] || sectionKeywords[word] {
		return "", p.fail("IRI")
	}
	word = strings.TrimRight(word, ".")

	prefix, local := "", word
	if idx := strings.IndexByte(word, ':'); idx >= 0 {
		prefix, local = word[:idx], word[idx+1:]
	}
	ns, ok := p.ns.Namespace(prefix)
	if !ok {
		return "", p.errorf(start, "undefined prefix: '%s'", prefix)
	}
	p.pos += len(word)
	return ns + local, nil
}

func (p *Parser) parseFullIRI() (string, error) {
	if p.peek() != '<' {
		return "", p.fail("IRI")
	}
	start := p.pos
	p.advance()
	iri := p.readWhile(func(ch byte) bool {
		return ch != '>' && !isSpace(ch)
	})
	if p.peek() != '>' {
		return "", p.fail("'>'")
	}
	p.advance()

	iri, err := rdf.UnescapeString(iri)
	if err != nil {
		return "", p.errorf(start, "invalid IRI: %v", err)
	}
	return iri, nil
}

// Lexical helpers

var reservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "that": true,
	"some": true, "only": true, "value": true, "Self": true,
	"min": true, "max": true, "exactly": true, "inverse": true,
}

var frameKeywords = []string{
	"Class:", "ObjectProperty:", "DataProperty:", "AnnotationProperty:",
	"Individual:", "Datatype:",
}

var sectionKeywords = map[string]bool{
	"Prefix:": true, "Ontology:": true, "Import:": true, "Annotations:": true,
	"Class:": true, "ObjectProperty:": true, "DataProperty:": true,
	"AnnotationProperty:": true, "Individual:": true, "Datatype:": true,
	"SubClassOf:": true, "EquivalentTo:": true, "DisjointWith:": true,
	"DisjointUnionOf:": true, "Domain:": true, "Range:": true,
	"Characteristics:": true, "SubPropertyOf:": true, "InverseOf:": true,
	"Types:": true, "Facts:": true, "SameAs:": true, "DifferentFrom:": true,
}

type parserState struct {
	pos int
	err *ParseError
}

func (p *Parser) save() parserState {
	return parserState{pos: p.pos, err: p.err}
}

func (p *Parser) restore(s parserState) {
	p.pos, p.err = s.pos, s.err
}

func (p *Parser) peek() byte {
	if p.pos >= p.length {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) advance() {
	if p.pos < p.length {
		p.pos++
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if isSpace(ch) {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *Parser) readWhile(predicate func(byte) bool) string {
	start := p.pos
	for p.pos < p.length && predicate(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// peekWord returns the next run of name characters and colons without
// consuming it
func (p *Parser) peekWord() string {
	p.skipWhitespace()
	end := p.pos
	for end < p.length && (rdf.IsNameChar(p.input[end]) || p.input[end] == ':') {
		end++
	}
	return p.input[p.pos:end]
}

func (p *Parser) consumeWord() string {
	word := p.peekWord()
	p.pos += len(word)
	return word
}

// matchWord consumes word if it is the next complete word. Keywords are
// case sensitive.
func (p *Parser) matchWord(word string) bool {
	if p.peekWord() != word {
		return false
	}
	p.pos += len(word)
	return true
}

func (p *Parser) matchChar(ch byte) bool {
	p.skipWhitespace()
	if p.peek() != ch {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) match(s string) bool {
	if strings.HasPrefix(p.input[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *Parser) atIRIStart() bool {
	p.skipWhitespace()
	ch := p.peek()
	if ch == '<' {
		return true
	}
	if !(isLetter(ch) || ch == ':' || ch == '_' || ch >= 0x80) {
		return false
	}
	word := p.peekWord()
	return !reservedWords[word] && !sectionKeywords[word] && !strings.HasPrefix(word, "_:")
}

// atPrimaryStart reports whether a primary may start here, used for the
// optional filler of cardinality restrictions
func (p *Parser) atPrimaryStart() bool {
	p.skipWhitespace()
	switch p.peek() {
	case '(', '{':
		return true
	}
	word := p.peekWord()
	return word == "not" || word == "inverse" || p.atIRIStart()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
