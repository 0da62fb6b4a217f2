package ast

// VisitFunc is called for every node reached by Walk. It returns the context
// passed to the node's children and whether the walk should stop.
type VisitFunc[C any] func(n Node, ctx C) (C, bool)

// Walk traverses the tree rooted at n top-to-bottom, left-to-right. It
// returns true as soon as visit asks to stop. A node that is already on the
// active path (a shared or cyclic sub-tree) is not entered again.
func Walk[C any](n Node, ctx C, visit VisitFunc[C]) bool {
	w := &walker[C]{
		visit:  visit,
		active: make(map[Node]struct{}),
	}
	return w.walk(n, ctx)
}

type walker[C any] struct {
	visit  VisitFunc[C]
	active map[Node]struct{}
}

func (w *walker[C]) walk(n Node, ctx C) bool {
	if n == nil {
		return false
	}
	if _, ok := w.active[n]; ok {
		return false
	}

	childCtx, stop := w.visit(n, ctx)
	if stop {
		return true
	}

	w.active[n] = struct{}{}
	defer delete(w.active, n)

	for _, child := range Children(n) {
		if w.walk(child, childCtx) {
			return true
		}
	}
	return false
}

// Children returns the direct children of n in traversal order
func Children(n Node) []Node {
	var c children
	switch t := n.(type) {
	case *SelectQuery:
		for _, v := range t.Projection {
			c.add(v)
		}
		c.common(&t.QueryCommon)
	case *ConstructQuery:
		for _, tn := range t.Template {
			c.add(tn)
		}
		c.common(&t.QueryCommon)
	case *AskQuery:
		c.common(&t.QueryCommon)
	case *DescribeQuery:
		for _, r := range t.Resources {
			c.add(r)
		}
		c.common(&t.QueryCommon)

	case *GraphPattern:
		for _, g := range t.Patterns {
			c.add(g)
		}
		for _, f := range t.Filters {
			c.add(f)
		}
	case *OptionalGraph:
		c.add(t.Graph)
	case *MinusGraph:
		c.add(t.Graph)
	case *UnionGraph:
		for _, g := range t.Alternatives {
			c.add(g)
		}
	case *NamedGraph:
		c.add(t.Name)
		c.add(t.Graph)

	case *Variable:
		c.props(t.Properties)
	case *IriRef:
		c.props(t.Properties)
	case *QName:
		c.props(t.Properties)
	case *BNode:
		c.props(t.Properties)
	case *Literal:
		c.add(t.Datatype)
		c.props(t.Properties)
	case *PropertyList:
		for _, pp := range t.Patterns {
			c.add(pp)
		}
	case *PropertyPattern:
		c.add(t.Predicate)
		c.add(t.Object)

	case *BinaryExpression:
		c.add(t.Left)
		c.add(t.Right)
	case *UnaryExpression:
		c.add(t.Operand)
	case *FunctionCall:
		for _, arg := range t.Arguments {
			c.add(arg)
		}
	case *InExpression:
		c.add(t.Expression)
		for _, v := range t.Values {
			c.add(v)
		}
	case *ExistsExpression:
		if t.Pattern != nil {
			c.add(t.Pattern)
		}

	case *OrderBy:
		for _, oc := range t.Conditions {
			c.add(oc)
		}
	case *OrderCondition:
		c.add(t.Expression)
	}
	return c.nodes
}

type children struct {
	nodes []Node
}

func (c *children) add(n Node) {
	if n != nil {
		c.nodes = append(c.nodes, n)
	}
}

func (c *children) props(pl *PropertyList) {
	if pl != nil {
		c.nodes = append(c.nodes, pl)
	}
}

func (c *children) common(qc *QueryCommon) {
	c.add(qc.Where)
	for _, m := range qc.Modifiers {
		c.add(m)
	}
}

// Variables returns every distinct *Variable instance below n in walk order
func Variables(n Node) []*Variable {
	var vars []*Variable
	seen := make(map[*Variable]struct{})
	Walk(n, struct{}{}, func(n Node, ctx struct{}) (struct{}, bool) {
		if v, ok := n.(*Variable); ok {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				vars = append(vars, v)
			}
		}
		return ctx, false
	})
	return vars
}

// VariableNames returns the distinct variable names below n in walk order
func VariableNames(n Node) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, v := range Variables(n) {
		if _, dup := seen[v.Name]; !dup {
			seen[v.Name] = struct{}{}
			names = append(names, v.Name)
		}
	}
	return names
}
