package executor

import (
	"fmt"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/sparql/evaluator"
)

// blankPrefix marks variables standing for blank nodes of a pattern. Query
// variable names cannot contain ':' so the two never collide.
const blankPrefix = "_:"

// patternTerm is either a constant term or the name of a variable
type patternTerm struct {
	variable string
	term     rdf.Term
}

type triplePattern struct {
	subject   patternTerm
	predicate patternTerm
	object    patternTerm
}

// queryPlan is a node of the evaluation tree of a WHERE clause
type queryPlan interface {
	planNode()
}

// emptyPlan yields the incoming binding once
type emptyPlan struct{}

// scanPlan matches a single triple pattern against the graph
type scanPlan struct {
	pattern triplePattern
}

// joinPlan evaluates right once per solution of left
type joinPlan struct {
	left  queryPlan
	right queryPlan
}

type filterPlan struct {
	input   queryPlan
	filters []ast.Expression
}

// optionalPlan keeps solutions of left that right cannot extend
type optionalPlan struct {
	left  queryPlan
	right queryPlan
}

type unionPlan struct {
	alternatives []queryPlan
}

// minusPlan evaluates right on its own and removes compatible solutions
type minusPlan struct {
	left  queryPlan
	right queryPlan
}

func (*emptyPlan) planNode()    {}
func (*scanPlan) planNode()     {}
func (*joinPlan) planNode()     {}
func (*filterPlan) planNode()   {}
func (*optionalPlan) planNode() {}
func (*unionPlan) planNode()    {}
func (*minusPlan) planNode()    {}

// planner turns WHERE clauses and templates into plans
type planner struct {
	prologue  *ast.Prologue
	anonymous map[*ast.BNode]string
}

func newPlanner(prologue *ast.Prologue) *planner {
	return &planner{prologue: prologue, anonymous: make(map[*ast.BNode]string)}
}

func (p *planner) graph(g ast.Graph) (queryPlan, error) {
	switch n := g.(type) {
	case nil:
		return &emptyPlan{}, nil
	case *ast.GraphPattern:
		return p.group(n)
	case *ast.OptionalGraph:
		right, err := p.graph(n.Graph)
		if err != nil {
			return nil, err
		}
		return &optionalPlan{left: &emptyPlan{}, right: right}, nil
	case *ast.MinusGraph:
		right, err := p.graph(n.Graph)
		if err != nil {
			return nil, err
		}
		return &minusPlan{left: &emptyPlan{}, right: right}, nil
	case *ast.UnionGraph:
		union := &unionPlan{}
		for _, alternative := range n.Alternatives {
			plan, err := p.graph(alternative)
			if err != nil {
				return nil, err
			}
			union.alternatives = append(union.alternatives, plan)
		}
		return union, nil
	case *ast.NamedGraph:
		return nil, fmt.Errorf("GRAPH patterns are not supported: the store holds a single default graph")
	case ast.GraphNode:
		return p.triplesBlock(n)
	default:
		return nil, fmt.Errorf("unsupported graph pattern: %T", g)
	}
}

// group joins the parts of a group in order. OPTIONAL and MINUS apply to
// everything before them.
func (p *planner) group(gp *ast.GraphPattern) (queryPlan, error) {
	var plan queryPlan = &emptyPlan{}
	for _, part := range gp.Patterns {
		switch n := part.(type) {
		case *ast.OptionalGraph:
			right, err := p.graph(n.Graph)
			if err != nil {
				return nil, err
			}
			plan = &optionalPlan{left: plan, right: right}
		case *ast.MinusGraph:
			right, err := p.graph(n.Graph)
			if err != nil {
				return nil, err
			}
			plan = &minusPlan{left: plan, right: right}
		default:
			right, err := p.graph(part)
			if err != nil {
				return nil, err
			}
			plan = join(plan, right)
		}
	}
	if len(gp.Filters) > 0 {
		plan = &filterPlan{input: plan, filters: gp.Filters}
	}
	return plan, nil
}

func join(left, right queryPlan) queryPlan {
	if _, ok := left.(*emptyPlan); ok {
		return right
	}
	if _, ok := right.(*emptyPlan); ok {
		return left
	}
	return &joinPlan{left: left, right: right}
}

func (p *planner) triplesBlock(subject ast.GraphNode) (queryPlan, error) {
	patterns, err := p.triplePatterns(subject, nil)
	if err != nil {
		return nil, err
	}
	var plan queryPlan = &emptyPlan{}
	for _, tp := range patterns {
		plan = join(plan, &scanPlan{pattern: tp})
	}
	return plan, nil
}

// triplePatterns flattens the property list of subject, descending into
// objects that carry property lists of their own
func (p *planner) triplePatterns(subject ast.GraphNode, out []triplePattern) ([]triplePattern, error) {
	if !ast.HasProperties(subject) {
		return out, nil
	}
	s, err := p.term(subject)
	if err != nil {
		return nil, err
	}
	for _, pp := range subject.PropertyList().Patterns {
		predicate, err := p.term(pp.Predicate)
		if err != nil {
			return nil, err
		}
		object, err := p.term(pp.Object)
		if err != nil {
			return nil, err
		}
		out = append(out, triplePattern{subject: s, predicate: predicate, object: object})
		if out, err = p.triplePatterns(pp.Object, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *planner) term(n ast.GraphNode) (patternTerm, error) {
	switch t := n.(type) {
	case *ast.Variable:
		return patternTerm{variable: t.Name}, nil
	case *ast.BNode:
		if t.Label != "" {
			return patternTerm{variable: blankPrefix + t.Label}, nil
		}
		name, ok := p.anonymous[t]
		if !ok {
			name = fmt.Sprintf("%sanon%d", blankPrefix, len(p.anonymous)+1)
			p.anonymous[t] = name
		}
		return patternTerm{variable: name}, nil
	default:
		term, err := evaluator.Term(n, p.prologue)
		if err != nil {
			return patternTerm{}, err
		}
		return patternTerm{term: term}, nil
	}
}
