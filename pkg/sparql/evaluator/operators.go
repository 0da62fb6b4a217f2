package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// evaluateBinaryExpression evaluates binary operations
func (e *Evaluator) evaluateBinaryExpression(expr *ast.BinaryExpression, binding *store.Binding) (rdf.Term, error) {
	// Logical operators tolerate an error on one side
	switch expr.Operator {
	case ast.OpAnd:
		return e.evaluateAnd(expr.Left, expr.Right, binding)
	case ast.OpOr:
		return e.evaluateOr(expr.Left, expr.Right, binding)
	}

	left, err := e.Evaluate(expr.Left, binding)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(expr.Right, binding)
	if err != nil {
		return nil, err
	}

	switch expr.Operator {
	case ast.OpEqual:
		return rdf.NewBooleanLiteral(e.valuesEqual(left, right)), nil
	case ast.OpNotEqual:
		return rdf.NewBooleanLiteral(!e.valuesEqual(left, right)), nil
	case ast.OpLessThan, ast.OpLessThanOrEqual, ast.OpGreaterThan, ast.OpGreaterThanOrEqual:
		cmp, err := e.compareValues(left, right)
		if err != nil {
			return nil, err
		}
		return rdf.NewBooleanLiteral(comparisonHolds(expr.Operator, cmp)), nil
	case ast.OpAdd, ast.OpSubtract, ast.OpMultiply, ast.OpDivide:
		return e.evaluateArithmetic(expr.Operator, left, right)
	default:
		return nil, fmt.Errorf("unsupported binary operator: %v", expr.Operator)
	}
}

func comparisonHolds(op ast.Operator, cmp int) bool {
	switch op {
	case ast.OpLessThan:
		return cmp < 0
	case ast.OpLessThanOrEqual:
		return cmp <= 0
	case ast.OpGreaterThan:
		return cmp > 0
	default:
		return cmp >= 0
	}
}

// evaluateUnaryExpression evaluates unary operations
func (e *Evaluator) evaluateUnaryExpression(expr *ast.UnaryExpression, binding *store.Binding) (rdf.Term, error) {
	operand, err := e.Evaluate(expr.Operand, binding)
	if err != nil {
		return nil, err
	}

	switch expr.Operator {
	case ast.OpNot:
		ebv, err := e.effectiveBooleanValue(operand)
		if err != nil {
			return nil, err
		}
		return rdf.NewBooleanLiteral(!ebv), nil
	case ast.OpPlus:
		if _, ok := extractNumeric(operand); !ok {
			return nil, fmt.Errorf("unary + requires a numeric argument")
		}
		return operand, nil
	case ast.OpMinus:
		return e.evaluateArithmetic(ast.OpSubtract, rdf.NewIntegerLiteral(0), operand)
	default:
		return nil, fmt.Errorf("unsupported unary operator: %v", expr.Operator)
	}
}

// Logical operators

func (e *Evaluator) evaluateAnd(leftExpr, rightExpr ast.Expression, binding *store.Binding) (rdf.Term, error) {
	leftEBV, leftErr := e.EffectiveBooleanValue(leftExpr, binding)
	if leftErr == nil && !leftEBV {
		return rdf.NewBooleanLiteral(false), nil
	}
	rightEBV, rightErr := e.EffectiveBooleanValue(rightExpr, binding)
	if rightErr == nil && !rightEBV {
		// false && error is false
		return rdf.NewBooleanLiteral(false), nil
	}
	if leftErr != nil {
		return nil, leftErr
	}
	if rightErr != nil {
		return nil, rightErr
	}
	return rdf.NewBooleanLiteral(true), nil
}

func (e *Evaluator) evaluateOr(leftExpr, rightExpr ast.Expression, binding *store.Binding) (rdf.Term, error) {
	leftEBV, leftErr := e.EffectiveBooleanValue(leftExpr, binding)
	if leftErr == nil && leftEBV {
		return rdf.NewBooleanLiteral(true), nil
	}
	rightEBV, rightErr := e.EffectiveBooleanValue(rightExpr, binding)
	if rightErr == nil && rightEBV {
		// error || true is true
		return rdf.NewBooleanLiteral(true), nil
	}
	if leftErr != nil {
		return nil, leftErr
	}
	if rightErr != nil {
		return nil, rightErr
	}
	return rdf.NewBooleanLiteral(false), nil
}

// effectiveBooleanValue computes the effective boolean value of a term
func (e *Evaluator) effectiveBooleanValue(term rdf.Term) (bool, error) {
	lit, ok := term.(*rdf.Literal)
	if !ok {
		return false, fmt.Errorf("cannot compute EBV of non-literal term %s", term)
	}

	switch datatype := lit.DatatypeIRI(); {
	case datatype == rdf.XSDBoolean.IRI:
		return lit.Value == "true" || lit.Value == "1", nil
	case datatype == rdf.XSDString.IRI || datatype == rdf.RDFLangString.IRI:
		return lit.Value != "", nil
	case isNumericDatatype(datatype):
		val, ok := extractNumeric(lit)
		if !ok {
			// ill-formed numeric literals are false
			return false, nil
		}
		return val != 0 && !math.IsNaN(val), nil
	default:
		return false, fmt.Errorf("cannot compute EBV of literal with datatype %s", datatype)
	}
}

// Comparison operators

// valuesEqual compares numerics by value and everything else as RDF terms
func (e *Evaluator) valuesEqual(left, right rdf.Term) bool {
	leftNum, leftIsNum := extractNumeric(left)
	rightNum, rightIsNum := extractNumeric(right)
	if leftIsNum && rightIsNum {
		return leftNum == rightNum
	}
	return left.Equals(right)
}

// compareValues orders numerics by value and simple literals by lexical form.
// Returns: -1 if left < right, 0 if left == right, 1 if left > right
func (e *Evaluator) compareValues(left, right rdf.Term) (int, error) {
	leftNum, leftIsNum := extractNumeric(left)
	rightNum, rightIsNum := extractNumeric(right)
	if leftIsNum && rightIsNum {
		switch {
		case leftNum < rightNum:
			return -1, nil
		case leftNum > rightNum:
			return 1, nil
		}
		return 0, nil
	}

	leftLit, leftOk := left.(*rdf.Literal)
	rightLit, rightOk := right.(*rdf.Literal)
	if leftOk && rightOk && leftLit.DatatypeIRI() == rightLit.DatatypeIRI() && leftLit.Language == rightLit.Language {
		return strings.Compare(leftLit.Value, rightLit.Value), nil
	}
	return 0, fmt.Errorf("cannot compare %s and %s", left, right)
}

// Compare orders any two terms for ORDER BY: unbound first, then blank
// nodes, IRIs and literals
func (e *Evaluator) Compare(left, right rdf.Term) int {
	rank := func(t rdf.Term) int {
		switch t.(type) {
		case nil:
			return 0
		case *rdf.BlankNode:
			return 1
		case *rdf.NamedNode:
			return 2
		default:
			return 3
		}
	}
	if rl, rr := rank(left), rank(right); rl != rr {
		return rl - rr
	}
	if left == nil {
		return 0
	}
	if cmp, err := e.compareValues(left, right); err == nil {
		return cmp
	}
	return strings.Compare(left.String(), right.String())
}

// Arithmetic operators

func (e *Evaluator) evaluateArithmetic(op ast.Operator, left, right rdf.Term) (rdf.Term, error) {
	leftVal, leftOk := extractNumeric(left)
	rightVal, rightOk := extractNumeric(right)
	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot apply %s to non-numeric terms", op)
	}

	var result float64
	switch op {
	case ast.OpAdd:
		result = leftVal + rightVal
	case ast.OpSubtract:
		result = leftVal - rightVal
	case ast.OpMultiply:
		result = leftVal * rightVal
	case ast.OpDivide:
		if rightVal == 0 && isIntegerDatatype(datatypeOf(right)) {
			return nil, fmt.Errorf("division by zero")
		}
		result = leftVal / rightVal
		if isIntegerDatatype(datatypeOf(left)) && isIntegerDatatype(datatypeOf(right)) {
			// integer division yields xsd:decimal
			return rdf.NewLiteralWithDatatype(strconv.FormatFloat(result, 'f', -1, 64), rdf.XSDDecimal), nil
		}
	}
	return createNumericLiteral(result, left, right), nil
}

// Helper functions

func datatypeOf(term rdf.Term) string {
	if lit, ok := term.(*rdf.Literal); ok {
		return lit.DatatypeIRI()
	}
	return ""
}

var integerDatatypes = map[string]bool{
	rdf.XSDNamespace + "integer":            true,
	rdf.XSDNamespace + "int":                true,
	rdf.XSDNamespace + "long":               true,
	rdf.XSDNamespace + "short":              true,
	rdf.XSDNamespace + "byte":               true,
	rdf.XSDNamespace + "nonNegativeInteger": true,
	rdf.XSDNamespace + "positiveInteger":    true,
	rdf.XSDNamespace + "nonPositiveInteger": true,
	rdf.XSDNamespace + "negativeInteger":    true,
	rdf.XSDNamespace + "unsignedInt":        true,
	rdf.XSDNamespace + "unsignedLong":       true,
}

func isIntegerDatatype(iri string) bool {
	return integerDatatypes[iri]
}

func isNumericDatatype(iri string) bool {
	return integerDatatypes[iri] || iri == rdf.XSDDecimal.IRI || iri == rdf.XSDDouble.IRI || iri == rdf.XSDFloat.IRI
}

// extractNumeric extracts a numeric value from a literal
func extractNumeric(term rdf.Term) (float64, bool) {
	lit, ok := term.(*rdf.Literal)
	if !ok || lit.Language != "" {
		return 0, false
	}

	datatype := lit.DatatypeIRI()
	switch {
	case isIntegerDatatype(datatype):
		intVal, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil {
			return 0, false
		}
		return float64(intVal), true
	case isNumericDatatype(datatype):
		val, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return 0, false
		}
		return val, true
	default:
		return 0, false
	}
}

// createNumericLiteral creates a numeric literal from a float64 value,
// following the promotion order integer < decimal < double
func createNumericLiteral(value float64, left, right rdf.Term) rdf.Term {
	leftType, rightType := datatypeOf(left), datatypeOf(right)
	switch {
	case isIntegerDatatype(leftType) && isIntegerDatatype(rightType) &&
		value == math.Trunc(value) && !math.IsInf(value, 0):
		return rdf.NewIntegerLiteral(int64(value))
	case leftType == rdf.XSDDouble.IRI || rightType == rdf.XSDDouble.IRI ||
		leftType == rdf.XSDFloat.IRI || rightType == rdf.XSDFloat.IRI:
		return rdf.NewDoubleLiteral(value)
	default:
		return rdf.NewLiteralWithDatatype(strconv.FormatFloat(value, 'f', -1, 64), rdf.XSDDecimal)
	}
}
