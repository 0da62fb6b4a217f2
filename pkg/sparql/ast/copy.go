package ast

// CopyNode returns a copy of a graph node. With withProps the property list is
// copied deeply, otherwise the copy has none.
func CopyNode(n GraphNode, withProps bool) GraphNode {
	c := newCopier()
	if !withProps {
		return c.shallow(n)
	}
	return c.graphNode(n)
}

// CopyQuery returns a deep copy of q. Sub-trees shared within q stay shared
// within the copy.
func CopyQuery(q Query) Query {
	c := newCopier()
	switch t := q.(type) {
	case *SelectQuery:
		out := &SelectQuery{
			QueryCommon: c.common(&t.QueryCommon),
			Distinct:    t.Distinct,
			Reduced:     t.Reduced,
		}
		for _, v := range t.Projection {
			out.Projection = append(out.Projection, c.graphNode(v).(*Variable))
		}
		return out
	case *ConstructQuery:
		out := &ConstructQuery{QueryCommon: c.common(&t.QueryCommon)}
		for _, n := range t.Template {
			out.Template = append(out.Template, c.graphNode(n))
		}
		return out
	case *AskQuery:
		return &AskQuery{QueryCommon: c.common(&t.QueryCommon)}
	case *DescribeQuery:
		out := &DescribeQuery{QueryCommon: c.common(&t.QueryCommon)}
		for _, n := range t.Resources {
			out.Resources = append(out.Resources, c.graphNode(n))
		}
		return out
	}
	return nil
}

type copier struct {
	seen map[Node]Node
}

func newCopier() *copier {
	return &copier{seen: make(map[Node]Node)}
}

func (c *copier) common(qc *QueryCommon) QueryCommon {
	out := QueryCommon{
		Prologue: NewPrologue(),
		Dataset:  NewDataset(),
		Where:    c.graph(qc.Where),
	}
	out.Prologue.Merge(qc.Prologue)
	out.Dataset.Union(qc.Dataset)
	for _, m := range qc.Modifiers {
		out.Modifiers = append(out.Modifiers, c.modifier(m))
	}
	return out
}

func (c *copier) shallow(n GraphNode) GraphNode {
	switch t := n.(type) {
	case *Variable:
		return &Variable{Name: t.Name}
	case *IriRef:
		return &IriRef{IRI: t.IRI}
	case *QName:
		return &QName{Prefix: t.Prefix, Local: t.Local}
	case *BNode:
		return &BNode{Label: t.Label}
	case *Literal:
		out := &Literal{Value: t.Value, Language: t.Language}
		if t.Datatype != nil {
			out.Datatype = c.shallow(t.Datatype)
		}
		return out
	}
	return nil
}

func (c *copier) graphNode(n GraphNode) GraphNode {
	if n == nil {
		return nil
	}
	if done, ok := c.seen[n]; ok {
		return done.(GraphNode)
	}
	out := c.shallow(n)
	c.seen[n] = out
	if pl := n.PropertyList(); pl != nil {
		out.SetPropertyList(c.propertyList(pl))
	}
	return out
}

func (c *copier) propertyList(pl *PropertyList) *PropertyList {
	out := &PropertyList{}
	for _, pp := range pl.Patterns {
		out.Patterns = append(out.Patterns, &PropertyPattern{
			Predicate: c.graphNode(pp.Predicate),
			Object:    c.graphNode(pp.Object),
		})
	}
	return out
}

func (c *copier) graph(g Graph) Graph {
	if g == nil {
		return nil
	}
	if done, ok := c.seen[g]; ok {
		return done.(Graph)
	}
	switch t := g.(type) {
	case GraphNode:
		return c.graphNode(t)
	case *GraphPattern:
		return c.graphPattern(t)
	case *OptionalGraph:
		out := &OptionalGraph{}
		c.seen[g] = out
		out.Graph = c.graph(t.Graph)
		return out
	case *MinusGraph:
		out := &MinusGraph{}
		c.seen[g] = out
		out.Graph = c.graph(t.Graph)
		return out
	case *UnionGraph:
		out := &UnionGraph{}
		c.seen[g] = out
		for _, alt := range t.Alternatives {
			out.Alternatives = append(out.Alternatives, c.graph(alt))
		}
		return out
	case *NamedGraph:
		out := &NamedGraph{}
		c.seen[g] = out
		out.Name = c.graphNode(t.Name)
		out.Graph = c.graph(t.Graph)
		return out
	}
	return nil
}

func (c *copier) graphPattern(gp *GraphPattern) *GraphPattern {
	if gp == nil {
		return nil
	}
	if done, ok := c.seen[gp]; ok {
		return done.(*GraphPattern)
	}
	out := &GraphPattern{}
	c.seen[gp] = out
	for _, p := range gp.Patterns {
		out.Patterns = append(out.Patterns, c.graph(p))
	}
	for _, f := range gp.Filters {
		out.Filters = append(out.Filters, c.expression(f))
	}
	return out
}

func (c *copier) expression(e Expression) Expression {
	if e == nil {
		return nil
	}
	switch t := e.(type) {
	case GraphNode:
		return c.graphNode(t)
	case *BinaryExpression:
		return &BinaryExpression{
			Left:     c.expression(t.Left),
			Operator: t.Operator,
			Right:    c.expression(t.Right),
		}
	case *UnaryExpression:
		return &UnaryExpression{Operator: t.Operator, Operand: c.expression(t.Operand)}
	case *FunctionCall:
		out := &FunctionCall{Name: t.Name}
		for _, arg := range t.Arguments {
			out.Arguments = append(out.Arguments, c.expression(arg))
		}
		return out
	case *InExpression:
		out := &InExpression{Not: t.Not, Expression: c.expression(t.Expression)}
		for _, v := range t.Values {
			out.Values = append(out.Values, c.expression(v))
		}
		return out
	case *ExistsExpression:
		return &ExistsExpression{Not: t.Not, Pattern: c.graphPattern(t.Pattern)}
	}
	return nil
}

func (c *copier) modifier(m SolutionModifier) SolutionModifier {
	switch t := m.(type) {
	case *OrderBy:
		out := &OrderBy{}
		for _, oc := range t.Conditions {
			out.Conditions = append(out.Conditions, &OrderCondition{
				Expression: c.expression(oc.Expression),
				Descending: oc.Descending,
			})
		}
		return out
	case *Limit:
		return &Limit{Count: t.Count}
	case *Offset:
		return &Offset{Count: t.Count}
	}
	return nil
}
