// Package evaluator computes FILTER and ORDER BY expressions against
// solution bindings.
package evaluator

import (
	"fmt"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// ExistsFunc reports whether pattern has a solution compatible with binding
type ExistsFunc func(pattern *ast.GraphPattern, binding *store.Binding) (bool, error)

// Evaluator evaluates SPARQL expressions against bindings
type Evaluator struct {
	prologue *ast.Prologue

	// Exists answers [NOT] EXISTS tests. Without it they are errors.
	Exists ExistsFunc
}

// NewEvaluator creates an expression evaluator resolving prefixed names
// against prologue
func NewEvaluator(prologue *ast.Prologue) *Evaluator {
	return &Evaluator{prologue: prologue}
}

// Evaluate evaluates an expression against a binding and returns the result term
// If the expression cannot be evaluated (type error, unbound variable, etc.), returns an error
func (e *Evaluator) Evaluate(expr ast.Expression, binding *store.Binding) (rdf.Term, error) {
	if expr == nil {
		return nil, fmt.Errorf("cannot evaluate nil expression")
	}

	switch ex := expr.(type) {
	case *ast.BinaryExpression:
		return e.evaluateBinaryExpression(ex, binding)
	case *ast.UnaryExpression:
		return e.evaluateUnaryExpression(ex, binding)
	case *ast.Variable:
		value, exists := binding.Vars[ex.Name]
		if !exists {
			return nil, fmt.Errorf("unbound variable: ?%s", ex.Name)
		}
		return value, nil
	case *ast.FunctionCall:
		return e.evaluateFunctionCall(ex, binding)
	case *ast.ExistsExpression:
		return e.evaluateExistsExpression(ex, binding)
	case *ast.InExpression:
		return e.evaluateInExpression(ex, binding)
	case ast.GraphNode:
		return Term(ex, e.prologue)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", expr)
	}
}

// EffectiveBooleanValue evaluates expr and reduces the result to a boolean
func (e *Evaluator) EffectiveBooleanValue(expr ast.Expression, binding *store.Binding) (bool, error) {
	term, err := e.Evaluate(expr, binding)
	if err != nil {
		return false, err
	}
	return e.effectiveBooleanValue(term)
}

// Term converts a constant graph node to an RDF term. Variables and blank
// nodes are not constants.
func Term(n ast.GraphNode, prologue *ast.Prologue) (rdf.Term, error) {
	switch t := n.(type) {
	case *ast.IriRef:
		return rdf.NewNamedNode(t.IRI), nil
	case *ast.QName:
		iri, ok := ast.ResolveIRI(t, prologue)
		if !ok {
			return nil, fmt.Errorf("undefined prefix: '%s'", t.Prefix)
		}
		return rdf.NewNamedNode(iri), nil
	case *ast.Literal:
		if t.Language != "" {
			return rdf.NewLiteralWithLanguage(t.Value, t.Language), nil
		}
		if t.Datatype == nil {
			return rdf.NewLiteral(t.Value), nil
		}
		datatype, ok := ast.ResolveIRI(t.Datatype, prologue)
		if !ok {
			return nil, fmt.Errorf("unresolvable datatype %s", ast.FormatTerm(t.Datatype))
		}
		return rdf.NewLiteralWithDatatype(t.Value, rdf.NewNamedNode(datatype)), nil
	default:
		return nil, fmt.Errorf("%s is not a constant term", ast.FormatTerm(n))
	}
}

// evaluateExistsExpression evaluates EXISTS or NOT EXISTS
func (e *Evaluator) evaluateExistsExpression(expr *ast.ExistsExpression, binding *store.Binding) (rdf.Term, error) {
	if e.Exists == nil {
		return nil, fmt.Errorf("EXISTS is not supported without a graph")
	}
	found, err := e.Exists(expr.Pattern, binding)
	if err != nil {
		return nil, err
	}
	return rdf.NewBooleanLiteral(found != expr.Not), nil
}

// evaluateInExpression evaluates IN or NOT IN operator
// x IN (e1, e2, ...) is equivalent to (x = e1) || (x = e2) || ...
func (e *Evaluator) evaluateInExpression(expr *ast.InExpression, binding *store.Binding) (rdf.Term, error) {
	leftValue, err := e.Evaluate(expr.Expression, binding)
	if err != nil {
		return nil, err
	}

	found := false
	for _, valueExpr := range expr.Values {
		rightValue, err := e.Evaluate(valueExpr, binding)
		if err != nil {
			// If evaluation fails for any value, skip it (SPARQL semantics)
			continue
		}
		if e.valuesEqual(leftValue, rightValue) {
			found = true
			break
		}
	}

	return rdf.NewBooleanLiteral(found != expr.Not), nil
}
