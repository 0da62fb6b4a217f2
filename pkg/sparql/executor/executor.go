// Package executor evaluates SPARQL queries against a triple graph using the
// Volcano iterator model. Joins substitute the bindings of the left side into
// the right side, so every triple pattern becomes an index lookup.
package executor

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/sparql/evaluator"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// Graph is the triple source a query runs against. Nil positions match
// anything.
type Graph interface {
	Match(subject, predicate, object rdf.Term) ([]*rdf.Triple, error)
}

// Executor executes SPARQL queries against a graph
type Executor struct {
	graph Graph
}

// NewExecutor creates a new query executor
func NewExecutor(graph Graph) *Executor {
	return &Executor{graph: graph}
}

// QueryResult represents the result of a query
type QueryResult interface {
	resultType()
}

// SelectResult represents the result of a SELECT query
type SelectResult struct {
	Variables []string
	Bindings  []*store.Binding
}

func (r *SelectResult) resultType() {}

// AskResult represents the result of an ASK query
type AskResult struct {
	Result bool
}

func (r *AskResult) resultType() {}

// ConstructResult holds the triples of a CONSTRUCT or DESCRIBE query
type ConstructResult struct {
	Triples []*rdf.Triple
}

func (r *ConstructResult) resultType() {}

// Execute evaluates a query
func (e *Executor) Execute(query ast.Query) (QueryResult, error) {
	x := newExecution(e.graph, query.Common().Prologue)

	var (
		result QueryResult
		err    error
	)
	switch q := query.(type) {
	case *ast.SelectQuery:
		result, err = x.executeSelect(q)
	case *ast.AskQuery:
		result, err = x.executeAsk(q)
	case *ast.ConstructQuery:
		result, err = x.executeConstruct(q)
	case *ast.DescribeQuery:
		result, err = x.executeDescribe(q)
	default:
		return nil, fmt.Errorf("unsupported query type: %T", query)
	}
	if err != nil {
		return nil, err
	}
	if x.err != nil {
		return nil, x.err
	}
	return result, nil
}

// execution holds the state of one query evaluation
type execution struct {
	graph     Graph
	planner   *planner
	evaluator *evaluator.Evaluator
	blanks    int
	err       error
}

func newExecution(graph Graph, prologue *ast.Prologue) *execution {
	x := &execution{
		graph:     graph,
		planner:   newPlanner(prologue),
		evaluator: evaluator.NewEvaluator(prologue),
	}
	x.evaluator.Exists = x.exists
	return x
}

// fail records the first error raised while iterating
func (x *execution) fail(err error) {
	if x.err == nil {
		x.err = err
	}
}

func errUnsupportedPlan(plan queryPlan) error {
	return fmt.Errorf("unsupported plan node: %T", plan)
}

func (x *execution) exists(pattern *ast.GraphPattern, binding *store.Binding) (bool, error) {
	plan, err := x.planner.group(pattern)
	if err != nil {
		return false, err
	}
	it, err := x.iterate(plan, binding)
	if err != nil {
		return false, err
	}
	defer it.Close()
	return it.Next(), x.err
}

// solutions opens the WHERE clause of a query with ORDER BY applied and,
// unless the caller projects first, OFFSET and LIMIT
func (x *execution) solutions(qc *ast.QueryCommon) (store.BindingIterator, error) {
	plan, err := x.planner.graph(qc.Where)
	if err != nil {
		return nil, err
	}
	it, err := x.iterate(plan, store.NewBinding())
	if err != nil {
		return nil, err
	}
	for _, modifier := range qc.Modifiers {
		if orderBy, ok := modifier.(*ast.OrderBy); ok {
			it = &orderByIterator{input: it, conditions: orderBy.Conditions, execution: x}
		}
	}
	return it, nil
}

// slice applies OFFSET and LIMIT
func slice(it store.BindingIterator, modifiers []ast.SolutionModifier) store.BindingIterator {
	for _, modifier := range modifiers {
		if offset, ok := modifier.(*ast.Offset); ok && offset.Count > 0 {
			it = &offsetIterator{input: it, offset: offset.Count}
		}
	}
	for _, modifier := range modifiers {
		if limit, ok := modifier.(*ast.Limit); ok {
			it = &limitIterator{input: it, limit: limit.Count}
		}
	}
	return it
}

func drain(it store.BindingIterator) []*store.Binding {
	defer it.Close()
	var bindings []*store.Binding
	for it.Next() {
		bindings = append(bindings, it.Binding())
	}
	return bindings
}

func (x *execution) executeSelect(q *ast.SelectQuery) (*SelectResult, error) {
	it, err := x.solutions(&q.QueryCommon)
	if err != nil {
		return nil, err
	}

	variables := make([]string, 0, len(q.Projection))
	for _, v := range q.Projection {
		variables = append(variables, v.Name)
	}
	if len(variables) == 0 && q.Where != nil {
		// SELECT *
		variables = ast.VariableNames(q.Where)
	}

	it = &projectionIterator{input: it, variables: variables}
	if q.Distinct || q.Reduced {
		it = &distinctIterator{input: it, seen: make(map[string]struct{})}
	}
	it = slice(it, q.Modifiers)

	return &SelectResult{Variables: variables, Bindings: drain(it)}, nil
}

func (x *execution) executeAsk(q *ast.AskQuery) (*AskResult, error) {
	it, err := x.solutions(&q.QueryCommon)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	return &AskResult{Result: it.Next()}, nil
}

func (x *execution) executeConstruct(q *ast.ConstructQuery) (*ConstructResult, error) {
	it, err := x.solutions(&q.QueryCommon)
	if err != nil {
		return nil, err
	}
	bindings := drain(slice(it, q.Modifiers))

	template, err := newPlanner(q.Prologue).template(q.Template)
	if err != nil {
		return nil, err
	}

	result := newTripleSet()
	for _, binding := range bindings {
		// Template blank nodes are fresh for every solution
		blanks := make(map[string]*rdf.BlankNode)
		for _, tp := range template {
			if triple := x.instantiate(tp, binding, blanks); triple != nil {
				result.add(triple)
			}
		}
	}
	return &ConstructResult{Triples: result.triples}, nil
}

func (p *planner) template(nodes []ast.GraphNode) ([]triplePattern, error) {
	var patterns []triplePattern
	for _, node := range nodes {
		var err error
		if patterns, err = p.triplePatterns(node, patterns); err != nil {
			return nil, err
		}
	}
	return patterns, nil
}

// instantiate builds a triple from a template pattern. Patterns with unbound
// variables or in an invalid position yield nil.
func (x *execution) instantiate(tp triplePattern, binding *store.Binding, blanks map[string]*rdf.BlankNode) *rdf.Triple {
	resolve := func(pt patternTerm) rdf.Term {
		switch {
		case pt.variable == "":
			return pt.term
		case strings.HasPrefix(pt.variable, blankPrefix):
			blank, ok := blanks[pt.variable]
			if !ok {
				x.blanks++
				blank = rdf.NewBlankNode(fmt.Sprintf("b%d", x.blanks))
				blanks[pt.variable] = blank
			}
			return blank
		default:
			return binding.Vars[pt.variable]
		}
	}

	subject, predicate, object := resolve(tp.subject), resolve(tp.predicate), resolve(tp.object)
	if subject == nil || predicate == nil || object == nil {
		return nil
	}
	if _, ok := subject.(*rdf.Literal); ok {
		return nil
	}
	if _, ok := predicate.(*rdf.NamedNode); !ok {
		return nil
	}
	return rdf.NewTriple(subject, predicate, object)
}

// executeDescribe returns the triples of every described resource, following
// blank node objects
func (x *execution) executeDescribe(q *ast.DescribeQuery) (*ConstructResult, error) {
	var resources []rdf.Term
	var variables []string
	for _, node := range q.Resources {
		if v, ok := node.(*ast.Variable); ok {
			variables = append(variables, v.Name)
			continue
		}
		term, err := evaluator.Term(node, q.Prologue)
		if err != nil {
			return nil, err
		}
		resources = append(resources, term)
	}
	if len(q.Resources) == 0 && q.Where != nil {
		// DESCRIBE *
		variables = ast.VariableNames(q.Where)
	}

	if len(variables) > 0 {
		it, err := x.solutions(&q.QueryCommon)
		if err != nil {
			return nil, err
		}
		for _, binding := range drain(slice(it, q.Modifiers)) {
			for _, name := range variables {
				if term, ok := binding.Vars[name]; ok {
					resources = append(resources, term)
				}
			}
		}
	}

	result := newTripleSet()
	described := make(map[string]struct{})
	for len(resources) > 0 {
		resource := resources[0]
		resources = resources[1:]
		if _, ok := resource.(*rdf.Literal); ok {
			continue
		}
		if _, done := described[resource.String()]; done {
			continue
		}
		described[resource.String()] = struct{}{}

		triples, err := x.graph.Match(resource, nil, nil)
		if err != nil {
			return nil, err
		}
		for _, triple := range triples {
			result.add(triple)
			if _, ok := triple.Object.(*rdf.BlankNode); ok {
				resources = append(resources, triple.Object)
			}
		}
	}
	return &ConstructResult{Triples: result.triples}, nil
}

// tripleSet keeps distinct triples in insertion order
type tripleSet struct {
	triples []*rdf.Triple
	seen    map[string]struct{}
}

func newTripleSet() *tripleSet {
	return &tripleSet{seen: make(map[string]struct{})}
}

func (s *tripleSet) add(triple *rdf.Triple) {
	key := triple.String()
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.triples = append(s.triples, triple)
}
