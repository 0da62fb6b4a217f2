package parser

import (
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
)

// Expression grammar (precedence from lowest to highest):
// Expression → LogicalOrExpression
// LogicalOrExpression → LogicalAndExpression ( '||' LogicalAndExpression )*
// LogicalAndExpression → RelationalExpression ( '&&' RelationalExpression )*
// RelationalExpression → AdditiveExpression ( CompOp AdditiveExpression | [NOT] IN ExpressionList )?
// AdditiveExpression → MultiplicativeExpression ( ('+' | '-') MultiplicativeExpression )*
// MultiplicativeExpression → UnaryExpression ( ('*' | '/') UnaryExpression )*
// UnaryExpression → ('!' | '-' | '+')? PrimaryExpression
// PrimaryExpression → '(' Expression ')' | FunctionCall | [NOT] EXISTS Group | Var | Literal | IRI

// parseConstraint parses the argument of FILTER: a bracketted expression,
// a function call or an EXISTS test
func (p *Parser) parseConstraint() (ast.Expression, error) {
	p.skipWhitespace()

	if p.peek() == '(' {
		return p.parseBrackettedExpression()
	}

	start := p.pos
	expr, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}
	switch expr.(type) {
	case *ast.FunctionCall, *ast.ExistsExpression:
		return expr, nil
	}
	return nil, p.failAt(start, "'('", "function call", "EXISTS")
}

// parseBrackettedExpression parses '(' Expression ')'
func (p *Parser) parseBrackettedExpression() (ast.Expression, error) {
	p.advance() // skip '('
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.peek() != ')' {
		return nil, p.fail("')'")
	}
	p.advance() // skip ')'
	return expr, nil
}

// parseExpression parses a SPARQL expression (entry point)
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseLogicalOrExpression()
}

// parseLogicalOrExpression parses logical OR (lowest precedence)
func (p *Parser) parseLogicalOrExpression() (ast.Expression, error) {
	left, err := p.parseLogicalAndExpression()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		if !p.match("||") {
			return left, nil
		}
		right, err := p.parseLogicalAndExpression()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: ast.OpOr, Right: right}
	}
}

// parseLogicalAndExpression parses logical AND
func (p *Parser) parseLogicalAndExpression() (ast.Expression, error) {
	left, err := p.parseRelationalExpression()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		if !p.match("&&") {
			return left, nil
		}
		right, err := p.parseRelationalExpression()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: ast.OpAnd, Right: right}
	}
}

// parseRelationalExpression parses comparison operators and IN/NOT IN
func (p *Parser) parseRelationalExpression() (ast.Expression, error) {
	left, err := p.parseAdditiveExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	savedPos := p.pos
	if p.matchKeyword("NOT") {
		if p.matchKeyword("IN") {
			return p.parseInList(left, true)
		}
		// NOT not followed by IN
		p.pos = savedPos
		return left, nil
	}
	if p.matchKeyword("IN") {
		return p.parseInList(left, false)
	}

	var op ast.Operator
	switch {
	case p.match("<="):
		op = ast.OpLessThanOrEqual
	case p.match(">="):
		op = ast.OpGreaterThanOrEqual
	case p.match("!="):
		op = ast.OpNotEqual
	case p.match("="):
		op = ast.OpEqual
	case p.match("<"):
		op = ast.OpLessThan
	case p.match(">"):
		op = ast.OpGreaterThan
	default:
		return left, nil
	}

	right, err := p.parseAdditiveExpression()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpression{Left: left, Operator: op, Right: right}, nil
}

// parseInList parses the value list of IN / NOT IN
func (p *Parser) parseInList(left ast.Expression, not bool) (ast.Expression, error) {
	p.skipWhitespace()
	if p.peek() != '(' {
		return nil, p.fail("'('")
	}
	values, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &ast.InExpression{Not: not, Expression: left, Values: values}, nil
}

// parseAdditiveExpression parses addition and subtraction
func (p *Parser) parseAdditiveExpression() (ast.Expression, error) {
	left, err := p.parseMultiplicativeExpression()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		var op ast.Operator
		if p.match("+") {
			op = ast.OpAdd
		} else if p.match("-") {
			op = ast.OpSubtract
		} else {
			return left, nil
		}

		right, err := p.parseMultiplicativeExpression()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: op, Right: right}
	}
}

// parseMultiplicativeExpression parses multiplication and division
func (p *Parser) parseMultiplicativeExpression() (ast.Expression, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		var op ast.Operator
		if p.match("*") {
			op = ast.OpMultiply
		} else if p.match("/") {
			op = ast.OpDivide
		} else {
			return left, nil
		}

		right, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: op, Right: right}
	}
}

// parseUnaryExpression parses unary operators
func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	p.skipWhitespace()

	// A sign directly followed by a digit belongs to a numeric literal
	if (p.peek() == '-' || p.peek() == '+') && isDigit(p.peekAt(1)) {
		return p.parsePrimaryExpression()
	}

	var op ast.Operator
	switch {
	case p.match("!"):
		op = ast.OpNot
	case p.match("-"):
		op = ast.OpMinus
	case p.match("+"):
		op = ast.OpPlus
	default:
		return p.parsePrimaryExpression()
	}

	operand, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpression{Operator: op, Operand: operand}, nil
}

// parsePrimaryExpression parses variables, literals, IRIs, function calls,
// EXISTS tests and bracketted expressions
func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	p.skipWhitespace()

	savedPos := p.pos
	if p.matchKeyword("NOT") {
		if p.matchKeyword("EXISTS") {
			return p.parseExists(true)
		}
		p.pos = savedPos
	} else if p.matchKeyword("EXISTS") {
		return p.parseExists(false)
	}

	ch := p.peek()
	switch {
	case ch == '(':
		return p.parseBrackettedExpression()

	case ch == '?' || ch == '$':
		return p.parseVariable()

	case ch == '<':
		start := p.pos
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		written := p.input[start:p.pos]
		p.skipWhitespace()
		if p.peek() == '(' {
			return p.parseFunctionArguments(written)
		}
		return ast.NewIriRef(iri), nil

	case ch == '"' || ch == '\'' || ch == '_' || isDigit(ch) || ch == '+' || ch == '-' || ch == '.':
		return p.parseVarOrTerm()

	case ch == ':' || isLetter(ch):
		if p.matchKeyword("true") {
			return booleanLiteral("true"), nil
		}
		if p.matchKeyword("false") {
			return booleanLiteral("false"), nil
		}

		start := p.pos
		name := p.readWhile(func(c byte) bool {
			return isLetter(c) || isDigit(c) || c == '_'
		})
		p.skipWhitespace()
		if p.peek() == '(' && name != "" {
			// Built-in call such as isIRI(?x) or REGEX(?s, "x")
			return p.parseFunctionArguments(name)
		}

		p.pos = start
		qname, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if p.peek() == '(' {
			return p.parseFunctionArguments(qname.Prefix + ":" + qname.Local)
		}
		return qname, nil
	}

	return nil, p.fail("expression")
}

// parseExists parses the group of [NOT] EXISTS
func (p *Parser) parseExists(not bool) (ast.Expression, error) {
	pattern, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	return &ast.ExistsExpression{Not: not, Pattern: pattern}, nil
}

// parseFunctionArguments parses the argument list of a function call
func (p *Parser) parseFunctionArguments(name string) (ast.Expression, error) {
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: name, Arguments: args}, nil
}

// parseArgumentList parses '(' [Expression (',' Expression)*] ')'
func (p *Parser) parseArgumentList() ([]ast.Expression, error) {
	p.advance() // skip '('

	var args []ast.Expression
	p.skipWhitespace()
	if p.peek() == ')' {
		p.advance()
		return args, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipWhitespace()
		if p.peek() != ',' {
			break
		}
		p.advance() // skip ','
	}

	if p.peek() != ')' {
		return nil, p.fail("')'", "','")
	}
	p.advance() // skip ')'
	return args, nil
}
