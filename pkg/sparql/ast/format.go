package ast

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	doublePattern  = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)[eE][+-]?[0-9]+$`)
)

// Format renders q as SPARQL text. The output parses back to an equivalent
// query.
func Format(q Query) string {
	f := newFormatter()
	f.query(q)
	return f.sb.String()
}

// FormatExpression renders a single expression
func FormatExpression(e Expression) string {
	f := newFormatter()
	f.expression(e)
	return f.sb.String()
}

// FormatTerm renders a graph node without its property list
func FormatTerm(n GraphNode) string {
	return newFormatter().term(n)
}

type formatter struct {
	sb      strings.Builder
	indent  int
	emitted map[GraphNode]struct{}
}

func newFormatter() *formatter {
	return &formatter{emitted: make(map[GraphNode]struct{})}
}

func (f *formatter) writeIndent() {
	for i := 0; i < f.indent; i++ {
		f.sb.WriteString("  ")
	}
}

func (f *formatter) query(q Query) {
	qc := q.Common()
	f.prologue(qc.Prologue)

	whereRequired := true
	switch t := q.(type) {
	case *SelectQuery:
		f.sb.WriteString("SELECT")
		if t.Distinct {
			f.sb.WriteString(" DISTINCT")
		} else if t.Reduced {
			f.sb.WriteString(" REDUCED")
		}
		if len(t.Projection) == 0 {
			f.sb.WriteString(" *")
		}
		for _, v := range t.Projection {
			f.sb.WriteString(" ?" + v.Name)
		}
		f.sb.WriteByte('\n')
	case *ConstructQuery:
		f.sb.WriteString("CONSTRUCT {\n")
		f.indent++
		for _, n := range t.Template {
			f.triplesBlock(n)
		}
		f.indent--
		f.sb.WriteString("}\n")
	case *AskQuery:
		f.sb.WriteString("ASK\n")
	case *DescribeQuery:
		f.sb.WriteString("DESCRIBE")
		if len(t.Resources) == 0 {
			f.sb.WriteString(" *")
		}
		for _, r := range t.Resources {
			f.sb.WriteString(" " + f.term(r))
		}
		f.sb.WriteByte('\n')
		whereRequired = false
	}

	f.dataset(qc.Dataset)

	if qc.Where != nil || whereRequired {
		f.sb.WriteString("WHERE ")
		f.group(qc.Where)
		f.sb.WriteByte('\n')
	}

	f.modifiers(qc.Modifiers)
}

func (f *formatter) prologue(p *Prologue) {
	if p == nil {
		return
	}
	if p.Base != "" {
		f.sb.WriteString("BASE <" + p.Base + ">\n")
	}
	for _, d := range p.Prefixes {
		f.sb.WriteString("PREFIX " + d.Prefix + ": <" + d.IRI + ">\n")
	}
}

func (f *formatter) dataset(d *Dataset) {
	if d.IsEmpty() {
		return
	}
	for _, iri := range d.Default {
		f.sb.WriteString("FROM <" + iri + ">\n")
	}
	for _, iri := range d.Named {
		f.sb.WriteString("FROM NAMED <" + iri + ">\n")
	}
}

func (f *formatter) modifiers(mods []SolutionModifier) {
	for _, m := range mods {
		switch t := m.(type) {
		case *OrderBy:
			f.sb.WriteString("ORDER BY")
			for _, oc := range t.Conditions {
				f.sb.WriteByte(' ')
				_, isVar := oc.Expression.(*Variable)
				switch {
				case oc.Descending:
					f.sb.WriteString("DESC(")
					f.expression(oc.Expression)
					f.sb.WriteByte(')')
				case isVar:
					f.expression(oc.Expression)
				default:
					f.sb.WriteString("ASC(")
					f.expression(oc.Expression)
					f.sb.WriteByte(')')
				}
			}
			f.sb.WriteByte('\n')
		case *Limit:
			f.sb.WriteString("LIMIT " + strconv.Itoa(t.Count) + "\n")
		case *Offset:
			f.sb.WriteString("OFFSET " + strconv.Itoa(t.Count) + "\n")
		}
	}
}

// group writes { ... } without a trailing newline
func (f *formatter) group(g Graph) {
	f.sb.WriteString("{\n")
	f.indent++
	switch t := g.(type) {
	case nil:
	case *GraphPattern:
		if t == nil {
			break
		}
		for _, p := range t.Patterns {
			f.element(p)
		}
		for _, e := range t.Filters {
			f.writeIndent()
			f.sb.WriteString("FILTER ")
			f.constraint(e)
			f.sb.WriteByte('\n')
		}
	default:
		f.element(g)
	}
	f.indent--
	f.writeIndent()
	f.sb.WriteByte('}')
}

func (f *formatter) element(g Graph) {
	switch t := g.(type) {
	case GraphNode:
		f.triplesBlock(t)
	case *GraphPattern:
		f.writeIndent()
		f.group(t)
		f.sb.WriteByte('\n')
	case *OptionalGraph:
		f.writeIndent()
		f.sb.WriteString("OPTIONAL ")
		f.group(t.Graph)
		f.sb.WriteByte('\n')
	case *MinusGraph:
		f.writeIndent()
		f.sb.WriteString("MINUS ")
		f.group(t.Graph)
		f.sb.WriteByte('\n')
	case *UnionGraph:
		f.writeIndent()
		for i, alt := range t.Alternatives {
			if i > 0 {
				f.sb.WriteString(" UNION ")
			}
			f.group(alt)
		}
		f.sb.WriteByte('\n')
	case *NamedGraph:
		f.writeIndent()
		f.sb.WriteString("GRAPH " + f.term(t.Name) + " ")
		f.group(t.Graph)
		f.sb.WriteByte('\n')
	}
}

// triplesBlock writes "subject p o ; p2 o2 ." followed by the blocks of
// labelled objects that carry properties of their own.
func (f *formatter) triplesBlock(n GraphNode) {
	if !HasProperties(n) {
		return
	}
	if _, done := f.emitted[n]; done {
		return
	}
	f.emitted[n] = struct{}{}

	var hoisted []GraphNode
	f.writeIndent()
	f.sb.WriteString(f.term(n))
	f.sb.WriteByte(' ')
	f.propertyList(n.PropertyList(), &hoisted)
	f.sb.WriteString(" .\n")

	for _, h := range hoisted {
		f.triplesBlock(h)
	}
}

func (f *formatter) propertyList(pl *PropertyList, hoisted *[]GraphNode) {
	for i, pp := range pl.Patterns {
		if i > 0 {
			f.sb.WriteString(" ; ")
		}
		f.sb.WriteString(f.predicate(pp.Predicate))
		f.sb.WriteByte(' ')
		f.object(pp.Object, hoisted)
	}
}

func (f *formatter) object(o GraphNode, hoisted *[]GraphNode) {
	if b, ok := o.(*BNode); ok && b.Label == "" && HasProperties(b) {
		if _, done := f.emitted[b]; !done {
			f.emitted[b] = struct{}{}
			f.sb.WriteString("[ ")
			f.propertyList(b.Properties, hoisted)
			f.sb.WriteString(" ]")
			return
		}
	}
	f.sb.WriteString(f.term(o))
	if HasProperties(o) {
		*hoisted = append(*hoisted, o)
	}
}

func (f *formatter) predicate(p GraphNode) string {
	if iri, ok := p.(*IriRef); ok && iri.IRI == RDFTypeIRI {
		return "a"
	}
	return f.term(p)
}

func (f *formatter) term(n GraphNode) string {
	switch t := n.(type) {
	case *Variable:
		return "?" + t.Name
	case *IriRef:
		return "<" + t.IRI + ">"
	case *QName:
		return t.Prefix + ":" + t.Local
	case *BNode:
		if t.Label == "" {
			return "[]"
		}
		return "_:" + t.Label
	case *Literal:
		return f.literal(t)
	}
	return ""
}

func (f *formatter) literal(l *Literal) string {
	if iri, ok := l.Datatype.(*IriRef); ok && isBareLiteral(l.Value, iri.IRI) {
		return l.Value
	}
	s := `"` + rdf.EscapeString(l.Value) + `"`
	if l.Language != "" {
		return s + "@" + l.Language
	}
	if l.Datatype != nil {
		return s + "^^" + f.term(l.Datatype)
	}
	return s
}

func isBareLiteral(value, datatype string) bool {
	switch datatype {
	case rdf.XSDInteger.IRI:
		return integerPattern.MatchString(value)
	case rdf.XSDDecimal.IRI:
		return decimalPattern.MatchString(value)
	case rdf.XSDDouble.IRI:
		return doublePattern.MatchString(value)
	case rdf.XSDBoolean.IRI:
		return value == "true" || value == "false"
	}
	return false
}

// constraint writes a FILTER constraint; function calls and expressions
// that bracket themselves are written as is.
func (f *formatter) constraint(e Expression) {
	switch e.(type) {
	case *FunctionCall, *BinaryExpression, *InExpression, *ExistsExpression:
		f.expression(e)
	default:
		f.sb.WriteByte('(')
		f.expression(e)
		f.sb.WriteByte(')')
	}
}

func (f *formatter) expression(e Expression) {
	switch t := e.(type) {
	case *BinaryExpression:
		f.sb.WriteByte('(')
		f.expression(t.Left)
		f.sb.WriteString(" " + t.Operator.String() + " ")
		f.expression(t.Right)
		f.sb.WriteByte(')')
	case *UnaryExpression:
		f.sb.WriteString(t.Operator.String())
		f.expression(t.Operand)
	case *FunctionCall:
		f.sb.WriteString(t.Name)
		f.sb.WriteByte('(')
		for i, arg := range t.Arguments {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			f.expression(arg)
		}
		f.sb.WriteByte(')')
	case *InExpression:
		f.sb.WriteByte('(')
		f.expression(t.Expression)
		if t.Not {
			f.sb.WriteString(" NOT")
		}
		f.sb.WriteString(" IN (")
		for i, v := range t.Values {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			f.expression(v)
		}
		f.sb.WriteString("))")
	case *ExistsExpression:
		if t.Not {
			f.sb.WriteString("NOT ")
		}
		f.sb.WriteString("EXISTS ")
		f.group(t.Pattern)
	case GraphNode:
		f.sb.WriteString(f.term(t))
	}
}
