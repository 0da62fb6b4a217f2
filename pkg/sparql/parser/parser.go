package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
)

// Parser parses SPARQL queries
type Parser struct {
	input    string
	pos      int
	length   int
	prologue *ast.Prologue
	err      *ParseError
}

// NewParser creates a new SPARQL parser
func NewParser(input string) *Parser {
	return &Parser{
		input:    input,
		pos:      0,
		length:   len(input),
		prologue: ast.NewPrologue(),
	}
}

// Parse parses a SPARQL query text
func Parse(input string) (ast.Query, error) {
	return NewParser(input).Parse()
}

// Parse parses a SPARQL query. On failure no partial query is returned.
func (p *Parser) Parse() (ast.Query, error) {
	if err := p.parsePrologue(); err != nil {
		return nil, err
	}

	var query ast.Query
	var err error
	switch {
	case p.matchKeyword("SELECT"):
		query, err = p.parseSelect()
	case p.matchKeyword("CONSTRUCT"):
		query, err = p.parseConstruct()
	case p.matchKeyword("ASK"):
		query, err = p.parseAsk()
	case p.matchKeyword("DESCRIBE"):
		query, err = p.parseDescribe()
	default:
		return nil, p.fail("BASE", "PREFIX", "SELECT", "CONSTRUCT", "ASK", "DESCRIBE")
	}
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if p.pos < p.length {
		return nil, p.fail("end of input")
	}
	return query, nil
}

// parsePrologue parses BASE and PREFIX declarations
func (p *Parser) parsePrologue() error {
	for {
		switch {
		case p.matchKeyword("BASE"):
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.prologue.Base = iri
		case p.matchKeyword("PREFIX"):
			p.skipWhitespace()
			prefix := p.readWhile(isPrefixChar)
			if p.peek() != ':' {
				return p.fail("prefix name followed by ':'")
			}
			p.advance() // skip ':'
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.prologue.AddPrefix(prefix, iri)
		default:
			return nil
		}
	}
}

func (p *Parser) common() ast.QueryCommon {
	return ast.QueryCommon{
		Prologue: p.prologue,
		Dataset:  ast.NewDataset(),
	}
}

// parseSelect parses a SELECT query
func (p *Parser) parseSelect() (*ast.SelectQuery, error) {
	query := &ast.SelectQuery{QueryCommon: p.common()}

	// DISTINCT and REDUCED are mutually exclusive
	if p.matchKeyword("DISTINCT") {
		query.Distinct = true
	} else if p.matchKeyword("REDUCED") {
		query.Reduced = true
	}

	p.skipWhitespace()
	if p.peek() == '*' {
		p.advance()
	} else {
		for {
			p.skipWhitespace()
			if ch := p.peek(); ch != '?' && ch != '$' {
				break
			}
			variable, err := p.parseVariable()
			if err != nil {
				return nil, err
			}
			query.Projection = append(query.Projection, variable)
		}
		if len(query.Projection) == 0 {
			return nil, p.fail("variable", "'*'")
		}
	}

	if err := p.parseWhereClause(&query.QueryCommon, true); err != nil {
		return nil, err
	}
	return query, nil
}

// parseConstruct parses a CONSTRUCT query, including the CONSTRUCT WHERE
// shorthand whose template is a copy of its triple patterns.
func (p *Parser) parseConstruct() (*ast.ConstructQuery, error) {
	query := &ast.ConstructQuery{QueryCommon: p.common()}

	p.skipWhitespace()
	if p.peek() == '{' {
		template, err := p.parseConstructTemplate()
		if err != nil {
			return nil, err
		}
		query.Template = template
		if err := p.parseWhereClause(&query.QueryCommon, true); err != nil {
			return nil, err
		}
		return query, nil
	}

	if err := p.parseDatasetClauses(query.Dataset); err != nil {
		return nil, err
	}
	if !p.matchKeyword("WHERE") {
		return nil, p.fail("'{'", "FROM", "WHERE")
	}
	p.skipWhitespace()
	start := p.pos
	where, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	if len(where.Filters) > 0 {
		return nil, p.errorf(start, "CONSTRUCT WHERE may only contain triple patterns")
	}
	for _, g := range where.Patterns {
		n, ok := g.(ast.GraphNode)
		if !ok {
			return nil, p.errorf(start, "CONSTRUCT WHERE may only contain triple patterns")
		}
		query.Template = append(query.Template, ast.CopyNode(n, true))
	}
	query.Where = where

	if err := p.parseSolutionModifiers(&query.QueryCommon); err != nil {
		return nil, err
	}
	return query, nil
}

// parseConstructTemplate parses { triples ... }
func (p *Parser) parseConstructTemplate() ([]ast.GraphNode, error) {
	p.advance() // skip '{'

	var template []ast.GraphNode
	for {
		p.skipWhitespace()
		if p.peek() == '}' {
			p.advance()
			break
		}
		if !p.atTermStart() {
			return nil, p.fail("triple pattern", "'}'")
		}
		subject, err := p.parseTriplesSameSubject()
		if err != nil {
			return nil, err
		}
		template = append(template, subject)

		p.skipWhitespace()
		if p.peek() == '.' {
			p.advance()
		}
	}
	return template, nil
}

// parseAsk parses an ASK query
func (p *Parser) parseAsk() (*ast.AskQuery, error) {
	query := &ast.AskQuery{QueryCommon: p.common()}
	if err := p.parseWhereClause(&query.QueryCommon, true); err != nil {
		return nil, err
	}
	return query, nil
}

// parseDescribe parses a DESCRIBE query; the WHERE clause is optional
func (p *Parser) parseDescribe() (*ast.DescribeQuery, error) {
	query := &ast.DescribeQuery{QueryCommon: p.common()}

	p.skipWhitespace()
	if p.peek() == '*' {
		p.advance()
	} else {
		for {
			p.skipWhitespace()
			if p.isKeywordAhead("FROM", "WHERE", "ORDER", "LIMIT", "OFFSET") || !p.atIriOrVarStart() {
				break
			}
			resource, err := p.parseVarOrIri()
			if err != nil {
				return nil, err
			}
			query.Resources = append(query.Resources, resource)
		}
		if len(query.Resources) == 0 {
			return nil, p.fail("variable", "IRI", "'*'")
		}
	}

	if err := p.parseWhereClause(&query.QueryCommon, false); err != nil {
		return nil, err
	}
	return query, nil
}

// parseWhereClause parses dataset clauses, the WHERE clause (WHERE keyword
// is optional) and solution modifiers.
func (p *Parser) parseWhereClause(qc *ast.QueryCommon, required bool) error {
	if err := p.parseDatasetClauses(qc.Dataset); err != nil {
		return err
	}

	hasKeyword := p.matchKeyword("WHERE")
	p.skipWhitespace()
	if hasKeyword || required || p.peek() == '{' {
		where, err := p.parseGroupGraphPattern()
		if err != nil {
			return err
		}
		qc.Where = where
	}

	return p.parseSolutionModifiers(qc)
}

// parseDatasetClauses parses FROM and FROM NAMED clauses
func (p *Parser) parseDatasetClauses(dataset *ast.Dataset) error {
	for p.matchKeyword("FROM") {
		named := p.matchKeyword("NAMED")
		p.skipWhitespace()
		iri, err := p.parseIRIValue()
		if err != nil {
			return err
		}
		if named {
			dataset.AddNamed(iri)
		} else {
			dataset.AddDefault(iri)
		}
	}
	return nil
}

// parseSolutionModifiers parses ORDER BY, LIMIT and OFFSET
func (p *Parser) parseSolutionModifiers(qc *ast.QueryCommon) error {
	for {
		switch {
		case p.matchKeyword("ORDER"):
			if !p.matchKeyword("BY") {
				return p.fail("BY")
			}
			orderBy, err := p.parseOrderBy()
			if err != nil {
				return err
			}
			qc.Modifiers = append(qc.Modifiers, orderBy)
		case p.matchKeyword("LIMIT"):
			n, err := p.parseInteger()
			if err != nil {
				return err
			}
			qc.Modifiers = append(qc.Modifiers, &ast.Limit{Count: n})
		case p.matchKeyword("OFFSET"):
			n, err := p.parseInteger()
			if err != nil {
				return err
			}
			qc.Modifiers = append(qc.Modifiers, &ast.Offset{Count: n})
		default:
			return nil
		}
	}
}

// parseOrderBy parses ORDER BY conditions
func (p *Parser) parseOrderBy() (*ast.OrderBy, error) {
	orderBy := &ast.OrderBy{}
	for {
		p.skipWhitespace()
		var condition *ast.OrderCondition
		ascending := p.matchKeyword("ASC")
		descending := !ascending && p.matchKeyword("DESC")

		switch {
		case ascending || descending:
			p.skipWhitespace()
			if p.peek() != '(' {
				return nil, p.fail("'('")
			}
			expr, err := p.parseBrackettedExpression()
			if err != nil {
				return nil, err
			}
			condition = &ast.OrderCondition{Expression: expr, Descending: descending}
		case p.peek() == '?' || p.peek() == '$':
			variable, err := p.parseVariable()
			if err != nil {
				return nil, err
			}
			condition = &ast.OrderCondition{Expression: variable}
		case p.peek() == '(':
			expr, err := p.parseBrackettedExpression()
			if err != nil {
				return nil, err
			}
			condition = &ast.OrderCondition{Expression: expr}
		}

		if condition == nil {
			break
		}
		orderBy.Conditions = append(orderBy.Conditions, condition)
	}

	if len(orderBy.Conditions) == 0 {
		return nil, p.fail("ASC", "DESC", "variable", "'('")
	}
	return orderBy, nil
}

// parseInteger parses a non-negative integer
func (p *Parser) parseInteger() (int, error) {
	p.skipWhitespace()
	start := p.pos
	digits := p.readWhile(isDigit)
	if digits == "" {
		return 0, p.fail("integer")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, p.errorf(start, "invalid integer %q: %v", digits, err)
	}
	return n, nil
}

// parseGroupGraphPattern parses { ... }
func (p *Parser) parseGroupGraphPattern() (*ast.GraphPattern, error) {
	p.skipWhitespace()

	if p.peek() != '{' {
		return nil, p.fail("'{'")
	}
	p.advance() // consume '{'

	pattern := &ast.GraphPattern{}

	for {
		p.skipWhitespace()

		if p.peek() == '}' {
			p.advance()
			break
		}

		switch {
		case p.matchKeyword("OPTIONAL"):
			group, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			pattern.Patterns = append(pattern.Patterns, &ast.OptionalGraph{Graph: group})

		case p.matchKeyword("MINUS"):
			group, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			pattern.Patterns = append(pattern.Patterns, &ast.MinusGraph{Graph: group})

		case p.matchKeyword("GRAPH"):
			p.skipWhitespace()
			name, err := p.parseVarOrIri()
			if err != nil {
				return nil, err
			}
			group, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			pattern.Patterns = append(pattern.Patterns, &ast.NamedGraph{Name: name, Graph: group})

		case p.matchKeyword("FILTER"):
			constraint, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			pattern.Filters = append(pattern.Filters, constraint)

		case p.peek() == '{':
			group, err := p.parseGroupOrUnion()
			if err != nil {
				return nil, err
			}
			pattern.Patterns = append(pattern.Patterns, group)

		case p.atTermStart():
			subject, err := p.parseTriplesSameSubject()
			if err != nil {
				return nil, err
			}
			pattern.Patterns = append(pattern.Patterns, subject)

		default:
			return nil, p.fail("triple pattern", "OPTIONAL", "MINUS", "GRAPH", "FILTER", "'{'", "'}'")
		}

		// Skip optional '.' separator
		p.skipWhitespace()
		if p.peek() == '.' {
			p.advance()
		}
	}

	return pattern, nil
}

// parseGroupOrUnion parses { ... } [UNION { ... }]*
func (p *Parser) parseGroupOrUnion() (ast.Graph, error) {
	first, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}

	alternatives := []ast.Graph{first}
	for p.matchKeyword("UNION") {
		next, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, next)
	}

	if len(alternatives) == 1 {
		return first, nil
	}
	return &ast.UnionGraph{Alternatives: alternatives}, nil
}

// parseTriplesSameSubject parses a subject with its property list
// Syntax:
//
//	?s ?p1 ?o1 ; ?p2 ?o2 .  (semicolon repeats subject)
//	?s ?p ?o1 , ?o2 .       (comma repeats subject and predicate)
//	[ ?p ?o ] ?q ?r .       (blank node property list as subject)
func (p *Parser) parseTriplesSameSubject() (ast.GraphNode, error) {
	p.skipWhitespace()

	if p.peek() == '[' {
		subject, err := p.parseBlankNodePropertyList()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if p.atVerbStart() {
			if err := p.parsePropertyListNotEmpty(subject); err != nil {
				return nil, err
			}
		} else if !ast.HasProperties(subject) {
			return nil, p.fail("predicate")
		}
		return subject, nil
	}

	subject, err := p.parseVarOrTerm()
	if err != nil {
		return nil, err
	}
	if err := p.parsePropertyListNotEmpty(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// parsePropertyListNotEmpty parses verb objectList (';' verb objectList)*
func (p *Parser) parsePropertyListNotEmpty(subject ast.GraphNode) error {
	for {
		p.skipWhitespace()
		verb, err := p.parseVerb()
		if err != nil {
			return err
		}

		for {
			p.skipWhitespace()
			object, err := p.parseObject()
			if err != nil {
				return err
			}
			ast.AddProperty(subject, verb, object)

			p.skipWhitespace()
			if p.peek() != ',' {
				break
			}
			p.advance() // skip ','
		}

		if p.peek() != ';' {
			return nil
		}
		// Trailing and repeated semicolons are allowed
		for p.peek() == ';' {
			p.advance()
			p.skipWhitespace()
		}
		if !p.atVerbStart() {
			return nil
		}
	}
}

// parseVerb parses a predicate: a variable, an IRI or the keyword 'a'
func (p *Parser) parseVerb() (ast.GraphNode, error) {
	if p.peek() == 'a' && (p.pos+1 >= p.length || !isNameChar(p.input[p.pos+1]) && p.input[p.pos+1] != ':') {
		p.advance() // consume 'a'
		return ast.NewIriRef(ast.RDFTypeIRI), nil
	}
	if !p.atIriOrVarStart() {
		return nil, p.fail("predicate")
	}
	return p.parseVarOrIri()
}

// parseObject parses an object, which may be a blank node property list
func (p *Parser) parseObject() (ast.GraphNode, error) {
	if p.peek() == '[' {
		return p.parseBlankNodePropertyList()
	}
	return p.parseVarOrTerm()
}

// parseBlankNodePropertyList parses [ ... ]; [] is an anonymous blank node
func (p *Parser) parseBlankNodePropertyList() (*ast.BNode, error) {
	p.advance() // skip '['
	node := &ast.BNode{}

	p.skipWhitespace()
	if p.peek() == ']' {
		p.advance()
		return node, nil
	}

	if err := p.parsePropertyListNotEmpty(node); err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if p.peek() != ']' {
		return nil, p.fail("']'", "';'", "','")
	}
	p.advance()
	return node, nil
}

// parseVarOrTerm parses a variable, IRI, blank node or literal
func (p *Parser) parseVarOrTerm() (ast.GraphNode, error) {
	p.skipWhitespace()
	ch := p.peek()

	switch {
	case ch == '?' || ch == '$':
		return p.parseVariable()
	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return ast.NewIriRef(iri), nil
	case ch == '_':
		return p.parseBlankNode()
	case ch == '"' || ch == '\'':
		return p.parseRDFLiteral()
	case isDigit(ch) || ch == '+' || ch == '-' || ch == '.':
		return p.parseNumericLiteral()
	case p.matchKeyword("true"):
		return booleanLiteral("true"), nil
	case p.matchKeyword("false"):
		return booleanLiteral("false"), nil
	case ch == ':' || isLetter(ch):
		return p.parsePrefixedName()
	}

	return nil, p.fail("variable", "IRI", "blank node", "literal")
}

// parseVarOrIri parses a variable or an IRI
func (p *Parser) parseVarOrIri() (ast.GraphNode, error) {
	p.skipWhitespace()
	switch ch := p.peek(); {
	case ch == '?' || ch == '$':
		return p.parseVariable()
	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return ast.NewIriRef(iri), nil
	case ch == ':' || isLetter(ch):
		return p.parsePrefixedName()
	}
	return nil, p.fail("variable", "IRI")
}

// parseVariable parses a SPARQL variable
func (p *Parser) parseVariable() (*ast.Variable, error) {
	if p.peek() != '?' && p.peek() != '$' {
		return nil, p.fail("variable")
	}
	p.advance() // consume ? or $

	name := p.readWhile(func(ch byte) bool {
		return isLetter(ch) || isDigit(ch) || ch == '_' || ch >= 0x80
	})
	if name == "" {
		return nil, p.fail("variable name")
	}

	return ast.NewVariable(name), nil
}

// parseIRIRef parses an IRI enclosed in < > and resolves it against BASE
func (p *Parser) parseIRIRef() (string, error) {
	if p.peek() != '<' {
		return "", p.fail("IRI")
	}
	start := p.pos
	p.advance()

	iri := p.readWhile(func(ch byte) bool {
		return ch != '>' && ch != '\n' && ch != ' '
	})

	if p.peek() != '>' {
		return "", p.failAt(p.pos, "'>'")
	}
	p.advance()

	iri, err := rdf.UnescapeString(iri)
	if err != nil {
		return "", p.errorf(start, "invalid IRI: %v", err)
	}
	return p.resolveIRI(iri), nil
}

// parseIRIValue parses an IRI or a prefixed name and returns the full IRI
func (p *Parser) parseIRIValue() (string, error) {
	if p.peek() == '<' {
		return p.parseIRIRef()
	}
	start := p.pos
	qname, err := p.parsePrefixedName()
	if err != nil {
		return "", err
	}
	iri, ok := ast.ResolveIRI(qname, p.prologue)
	if !ok {
		return "", p.errorf(start, "undefined prefix: '%s'", qname.Prefix)
	}
	return iri, nil
}

// parsePrefixedName parses prefix:local; the prefix must be declared
func (p *Parser) parsePrefixedName() (*ast.QName, error) {
	start := p.pos
	prefix := p.readWhile(isPrefixChar)
	if p.peek() != ':' {
		p.pos = start
		return nil, p.fail("prefixed name")
	}
	p.advance() // skip ':'

	local := p.readWhile(func(ch byte) bool {
		return isNameChar(ch) || ch == ':'
	})
	// A trailing '.' terminates the triple
	for strings.HasSuffix(local, ".") {
		local = local[:len(local)-1]
		p.pos--
	}

	if _, ok := p.prologue.Namespace(prefix); !ok {
		return nil, p.errorf(start, "undefined prefix: '%s'", prefix)
	}
	return &ast.QName{Prefix: prefix, Local: local}, nil
}

// parseBlankNode parses a labelled blank node _:label
func (p *Parser) parseBlankNode() (*ast.BNode, error) {
	p.advance() // skip '_'
	if p.peek() != ':' {
		return nil, p.fail("':'")
	}
	p.advance()

	label := p.readWhile(isNameChar)
	for strings.HasSuffix(label, ".") {
		label = label[:len(label)-1]
		p.pos--
	}
	if label == "" {
		return nil, p.fail("blank node label")
	}

	return &ast.BNode{Label: label}, nil
}

// parseRDFLiteral parses a string literal with an optional language tag or
// datatype
func (p *Parser) parseRDFLiteral() (*ast.Literal, error) {
	value, err := p.parseString()
	if err != nil {
		return nil, err
	}
	literal := &ast.Literal{Value: value}

	switch {
	case p.peek() == '@':
		p.advance()
		lang := p.readWhile(func(ch byte) bool {
			return isLetter(ch) || isDigit(ch) || ch == '-'
		})
		if lang == "" {
			return nil, p.fail("language tag")
		}
		literal.Language = lang
	case strings.HasPrefix(p.input[p.pos:], "^^"):
		p.pos += 2
		datatype, err := p.parseVarOrIri()
		if err != nil {
			return nil, err
		}
		if _, isVar := datatype.(*ast.Variable); isVar {
			return nil, p.fail("datatype IRI")
		}
		literal.Datatype = datatype
	}

	return literal, nil
}

// parseString parses a single, double or triple quoted string
func (p *Parser) parseString() (string, error) {
	quote := p.peek()
	start := p.pos

	// Triple-quoted strings may span lines
	if p.pos+2 < p.length && p.input[p.pos+1] == quote && p.input[p.pos+2] == quote {
		p.pos += 3
		end := strings.Index(p.input[p.pos:], strings.Repeat(string(quote), 3))
		if end < 0 {
			return "", p.errorf(start, "unclosed triple-quoted string")
		}
		raw := p.input[p.pos : p.pos+end]
		p.pos += end + 3
		value, err := rdf.UnescapeString(raw)
		if err != nil {
			return "", p.errorf(start, "invalid string: %v", err)
		}
		return value, nil
	}

	p.advance() // opening quote
	contentStart := p.pos
	for p.pos < p.length && p.input[p.pos] != quote {
		if p.input[p.pos] == '\n' {
			return "", p.errorf(start, "unclosed string literal")
		}
		if p.input[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= p.length {
		return "", p.errorf(start, "unclosed string literal")
	}
	raw := p.input[contentStart:p.pos]
	p.advance() // closing quote

	value, err := rdf.UnescapeString(raw)
	if err != nil {
		return "", p.errorf(start, "invalid string: %v", err)
	}
	return value, nil
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	doublePattern  = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)[eE][+-]?[0-9]+$`)
)

// parseNumericLiteral parses an integer, decimal or double
func (p *Parser) parseNumericLiteral() (*ast.Literal, error) {
	start := p.pos
	numStr := p.readWhile(func(ch byte) bool {
		return isDigit(ch) || ch == '.' || ch == '-' || ch == '+' || ch == 'e' || ch == 'E'
	})
	// A trailing '.' terminates the triple
	for strings.HasSuffix(numStr, ".") {
		numStr = numStr[:len(numStr)-1]
		p.pos--
	}

	var datatype string
	switch {
	case integerPattern.MatchString(numStr):
		datatype = rdf.XSDInteger.IRI
	case decimalPattern.MatchString(numStr):
		datatype = rdf.XSDDecimal.IRI
	case doublePattern.MatchString(numStr):
		datatype = rdf.XSDDouble.IRI
	default:
		p.pos = start
		return nil, p.fail("number")
	}

	return &ast.Literal{Value: numStr, Datatype: ast.NewIriRef(datatype)}, nil
}

func booleanLiteral(value string) *ast.Literal {
	return &ast.Literal{Value: value, Datatype: ast.NewIriRef(rdf.XSDBoolean.IRI)}
}

// Helper functions

func (p *Parser) peek() byte {
	if p.pos >= p.length {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peekAt(offset int) byte {
	if p.pos+offset >= p.length {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *Parser) advance() {
	if p.pos < p.length {
		p.pos++
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < p.length {
		ch := p.input[p.pos]

		// Skip whitespace characters
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			p.pos++
			continue
		}

		// Skip comments (from # to end of line)
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' && p.input[p.pos] != '\r' {
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

// matchKeyword consumes keyword (case-insensitive) if it is next in the input
func (p *Parser) matchKeyword(keyword string) bool {
	p.skipWhitespace()

	remaining := p.input[p.pos:]
	pattern := `(?i)^` + regexp.QuoteMeta(keyword) + `\b`
	matched, _ := regexp.MatchString(pattern, remaining)

	if matched {
		p.pos += len(keyword)
		return true
	}
	return false
}

// isKeywordAhead reports whether one of keywords follows without consuming it
func (p *Parser) isKeywordAhead(keywords ...string) bool {
	saved := p.pos
	defer func() { p.pos = saved }()
	for _, k := range keywords {
		if p.matchKeyword(k) {
			return true
		}
	}
	return false
}

// match checks if the next characters match the given string and advances if they do
func (p *Parser) match(s string) bool {
	if strings.HasPrefix(p.input[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *Parser) atIriOrVarStart() bool {
	ch := p.peek()
	return ch == '?' || ch == '$' || ch == '<' || ch == ':' || isLetter(ch)
}

func (p *Parser) atVerbStart() bool {
	return p.atIriOrVarStart()
}

func (p *Parser) atTermStart() bool {
	ch := p.peek()
	return p.atIriOrVarStart() || ch == '_' || ch == '[' || ch == '"' || ch == '\'' ||
		isDigit(ch) || ch == '+' || ch == '-'
}

// resolveIRI resolves a potentially relative IRI against the BASE URI
func (p *Parser) resolveIRI(iri string) string {
	if p.prologue.Base == "" || isAbsoluteIRI(iri) {
		return iri
	}
	return p.prologue.Base + iri
}

// isAbsoluteIRI checks if an IRI is absolute (has a scheme)
func isAbsoluteIRI(iri string) bool {
	colonIdx := strings.Index(iri, ":")
	if colonIdx <= 0 {
		return false
	}
	for i := 0; i < colonIdx; i++ {
		c := iri[i]
		if !(isLetter(c) || (isDigit(c) && i > 0) || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNameChar(ch byte) bool {
	return rdf.IsNameChar(ch)
}

func isPrefixChar(ch byte) bool {
	return rdf.IsNameChar(ch)
}
