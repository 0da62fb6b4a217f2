package executor

import (
	"sort"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// iterate opens an iterator over the solutions of plan that extend parent
func (x *execution) iterate(plan queryPlan, parent *store.Binding) (store.BindingIterator, error) {
	switch pl := plan.(type) {
	case *emptyPlan:
		return &singletonIterator{binding: parent}, nil
	case *scanPlan:
		return x.createScanIterator(pl, parent)
	case *joinPlan:
		left, err := x.iterate(pl.left, parent)
		if err != nil {
			return nil, err
		}
		return &nestedLoopJoinIterator{left: left, rightPlan: pl.right, execution: x}, nil
	case *filterPlan:
		input, err := x.iterate(pl.input, parent)
		if err != nil {
			return nil, err
		}
		return &filterIterator{input: input, filters: pl.filters, execution: x}, nil
	case *optionalPlan:
		left, err := x.iterate(pl.left, parent)
		if err != nil {
			return nil, err
		}
		return &optionalIterator{left: left, rightPlan: pl.right, execution: x}, nil
	case *unionPlan:
		return &unionIterator{alternatives: pl.alternatives, parent: parent, execution: x}, nil
	case *minusPlan:
		left, err := x.iterate(pl.left, parent)
		if err != nil {
			return nil, err
		}
		right, err := x.collect(pl.right, store.NewBinding())
		if err != nil {
			_ = left.Close()
			return nil, err
		}
		return &minusIterator{left: left, right: right}, nil
	default:
		return nil, errUnsupportedPlan(plan)
	}
}

// collect drains the solutions of plan
func (x *execution) collect(plan queryPlan, parent *store.Binding) ([]*store.Binding, error) {
	it, err := x.iterate(plan, parent)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var bindings []*store.Binding
	for it.Next() {
		bindings = append(bindings, it.Binding())
	}
	return bindings, x.err
}

// singletonIterator yields one binding
type singletonIterator struct {
	binding *store.Binding
	done    bool
}

func (it *singletonIterator) Next() bool {
	if it.done {
		return false
	}
	it.done = true
	return true
}

func (it *singletonIterator) Binding() *store.Binding {
	return it.binding
}

func (it *singletonIterator) Close() error {
	return nil
}

// createScanIterator substitutes the variables bound by parent into the
// pattern and matches the result against the graph
func (x *execution) createScanIterator(plan *scanPlan, parent *store.Binding) (store.BindingIterator, error) {
	resolve := func(pt patternTerm) rdf.Term {
		if pt.variable == "" {
			return pt.term
		}
		return parent.Vars[pt.variable]
	}
	pattern := plan.pattern
	triples, err := x.graph.Match(resolve(pattern.subject), resolve(pattern.predicate), resolve(pattern.object))
	if err != nil {
		return nil, err
	}
	return &scanIterator{triples: triples, pattern: pattern, parent: parent}, nil
}

type scanIterator struct {
	triples []*rdf.Triple
	pattern triplePattern
	parent  *store.Binding
	pos     int
	binding *store.Binding
}

func (it *scanIterator) Next() bool {
	for it.pos < len(it.triples) {
		triple := it.triples[it.pos]
		it.pos++

		// Repeated variables must bind the same term
		binding := it.parent.Clone()
		if bindTerm(binding, it.pattern.subject, triple.Subject) &&
			bindTerm(binding, it.pattern.predicate, triple.Predicate) &&
			bindTerm(binding, it.pattern.object, triple.Object) {
			it.binding = binding
			return true
		}
	}
	return false
}

func (it *scanIterator) Binding() *store.Binding {
	return it.binding
}

func (it *scanIterator) Close() error {
	return nil
}

func bindTerm(binding *store.Binding, pt patternTerm, value rdf.Term) bool {
	if pt.variable == "" {
		return true
	}
	if existing, ok := binding.Vars[pt.variable]; ok {
		return existing.Equals(value)
	}
	binding.Vars[pt.variable] = value
	return true
}

// nestedLoopJoinIterator evaluates the right plan once per left solution
type nestedLoopJoinIterator struct {
	left         store.BindingIterator
	rightPlan    queryPlan
	execution    *execution
	currentRight store.BindingIterator
}

func (it *nestedLoopJoinIterator) Next() bool {
	for {
		if it.currentRight != nil {
			if it.currentRight.Next() {
				return true
			}
			_ = it.currentRight.Close()
			it.currentRight = nil
		}

		if !it.left.Next() {
			return false
		}

		rightIter, err := it.execution.iterate(it.rightPlan, it.left.Binding())
		if err != nil {
			it.execution.fail(err)
			return false
		}
		it.currentRight = rightIter
	}
}

func (it *nestedLoopJoinIterator) Binding() *store.Binding {
	return it.currentRight.Binding()
}

func (it *nestedLoopJoinIterator) Close() error {
	if it.currentRight != nil {
		_ = it.currentRight.Close()
	}
	return it.left.Close()
}

// filterIterator drops solutions whose filters are false or in error
type filterIterator struct {
	input     store.BindingIterator
	filters   []ast.Expression
	execution *execution
}

func (it *filterIterator) Next() bool {
	for it.input.Next() {
		if it.accept(it.input.Binding()) {
			return true
		}
	}
	return false
}

func (it *filterIterator) accept(binding *store.Binding) bool {
	for _, filter := range it.filters {
		ok, err := it.execution.evaluator.EffectiveBooleanValue(filter, binding)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func (it *filterIterator) Binding() *store.Binding {
	return it.input.Binding()
}

func (it *filterIterator) Close() error {
	return it.input.Close()
}

// optionalIterator implements the left join of OPTIONAL
type optionalIterator struct {
	left         store.BindingIterator
	rightPlan    queryPlan
	execution    *execution
	currentLeft  *store.Binding
	currentRight store.BindingIterator
	result       *store.Binding
	hasMatch     bool
}

func (it *optionalIterator) Next() bool {
	for {
		if it.currentRight != nil {
			if it.currentRight.Next() {
				it.hasMatch = true
				it.result = it.currentRight.Binding()
				return true
			}
			_ = it.currentRight.Close()
			it.currentRight = nil

			if !it.hasMatch {
				it.result = it.currentLeft
				return true
			}
		}

		if !it.left.Next() {
			return false
		}
		it.currentLeft = it.left.Binding()
		it.hasMatch = false

		rightIter, err := it.execution.iterate(it.rightPlan, it.currentLeft)
		if err != nil {
			it.execution.fail(err)
			return false
		}
		it.currentRight = rightIter
	}
}

func (it *optionalIterator) Binding() *store.Binding {
	return it.result
}

func (it *optionalIterator) Close() error {
	if it.currentRight != nil {
		_ = it.currentRight.Close()
	}
	return it.left.Close()
}

// unionIterator yields the solutions of each alternative in turn
type unionIterator struct {
	alternatives []queryPlan
	parent       *store.Binding
	execution    *execution
	index        int
	current      store.BindingIterator
}

func (it *unionIterator) Next() bool {
	for {
		if it.current != nil {
			if it.current.Next() {
				return true
			}
			_ = it.current.Close()
			it.current = nil
		}
		if it.index >= len(it.alternatives) {
			return false
		}

		current, err := it.execution.iterate(it.alternatives[it.index], it.parent)
		it.index++
		if err != nil {
			it.execution.fail(err)
			return false
		}
		it.current = current
	}
}

func (it *unionIterator) Binding() *store.Binding {
	return it.current.Binding()
}

func (it *unionIterator) Close() error {
	if it.current != nil {
		return it.current.Close()
	}
	return nil
}

// minusIterator removes left solutions compatible with a right solution
// that shares at least one variable
type minusIterator struct {
	left  store.BindingIterator
	right []*store.Binding
}

func (it *minusIterator) Next() bool {
	for it.left.Next() {
		if !it.excluded(it.left.Binding()) {
			return true
		}
	}
	return false
}

func (it *minusIterator) excluded(left *store.Binding) bool {
	for _, right := range it.right {
		if left.Compatible(right) && sharesVariable(left, right) {
			return true
		}
	}
	return false
}

func sharesVariable(left, right *store.Binding) bool {
	for name := range left.Vars {
		if _, ok := right.Vars[name]; ok {
			return true
		}
	}
	return false
}

func (it *minusIterator) Binding() *store.Binding {
	return it.left.Binding()
}

func (it *minusIterator) Close() error {
	return it.left.Close()
}

// orderByIterator materializes its input and sorts it
type orderByIterator struct {
	input      store.BindingIterator
	conditions []*ast.OrderCondition
	execution  *execution
	bindings   []*store.Binding
	index      int
	sorted     bool
}

func (it *orderByIterator) Next() bool {
	if !it.sorted {
		for it.input.Next() {
			it.bindings = append(it.bindings, it.input.Binding())
		}
		it.sortBindings()
		it.sorted = true
	}
	if it.index >= len(it.bindings) {
		return false
	}
	it.index++
	return true
}

func (it *orderByIterator) sortBindings() {
	// Keys are evaluated once; errors sort like unbound values
	keys := make(map[*store.Binding][]rdf.Term, len(it.bindings))
	for _, b := range it.bindings {
		key := make([]rdf.Term, len(it.conditions))
		for i, condition := range it.conditions {
			if term, err := it.execution.evaluator.Evaluate(condition.Expression, b); err == nil {
				key[i] = term
			}
		}
		keys[b] = key
	}

	sort.SliceStable(it.bindings, func(i, j int) bool {
		a, b := keys[it.bindings[i]], keys[it.bindings[j]]
		for k, condition := range it.conditions {
			cmp := it.execution.evaluator.Compare(a[k], b[k])
			if cmp == 0 {
				continue
			}
			if condition.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func (it *orderByIterator) Binding() *store.Binding {
	return it.bindings[it.index-1]
}

func (it *orderByIterator) Close() error {
	return it.input.Close()
}

// projectionIterator restricts bindings to the selected variables
type projectionIterator struct {
	input     store.BindingIterator
	variables []string
}

func (it *projectionIterator) Next() bool {
	return it.input.Next()
}

func (it *projectionIterator) Binding() *store.Binding {
	binding := it.input.Binding()
	projected := store.NewBinding()
	for _, name := range it.variables {
		if term, ok := binding.Vars[name]; ok {
			projected.Vars[name] = term
		}
	}
	return projected
}

func (it *projectionIterator) Close() error {
	return it.input.Close()
}

// distinctIterator drops bindings already seen
type distinctIterator struct {
	input store.BindingIterator
	seen  map[string]struct{}
}

func (it *distinctIterator) Next() bool {
	for it.input.Next() {
		key := it.input.Binding().Key()
		if _, dup := it.seen[key]; !dup {
			it.seen[key] = struct{}{}
			return true
		}
	}
	return false
}

func (it *distinctIterator) Binding() *store.Binding {
	return it.input.Binding()
}

func (it *distinctIterator) Close() error {
	return it.input.Close()
}

// offsetIterator skips the first offset bindings
type offsetIterator struct {
	input   store.BindingIterator
	offset  int
	skipped bool
}

func (it *offsetIterator) Next() bool {
	if !it.skipped {
		it.skipped = true
		for i := 0; i < it.offset; i++ {
			if !it.input.Next() {
				return false
			}
		}
	}
	return it.input.Next()
}

func (it *offsetIterator) Binding() *store.Binding {
	return it.input.Binding()
}

func (it *offsetIterator) Close() error {
	return it.input.Close()
}

// limitIterator stops after limit bindings
type limitIterator struct {
	input store.BindingIterator
	limit int
	count int
}

func (it *limitIterator) Next() bool {
	if it.count >= it.limit {
		return false
	}
	if !it.input.Next() {
		return false
	}
	it.count++
	return true
}

func (it *limitIterator) Binding() *store.Binding {
	return it.input.Binding()
}

func (it *limitIterator) Close() error {
	return it.input.Close()
}
