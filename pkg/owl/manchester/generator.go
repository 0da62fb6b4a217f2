package manchester

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// Operator priorities. A nested expression is parenthesized when it binds
// weaker than its context.
const (
	prioOr     = 1
	prioAnd    = 2
	prioNot    = 3
	prioFiller = 4
)

var facetShorthands = map[string]string{
	rdf.XSDMinInclusive.IRI: "<=",
	rdf.XSDMinExclusive.IRI: "<",
	rdf.XSDMaxInclusive.IRI: ">=",
	rdf.XSDMaxExclusive.IRI: ">",
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithIndentWidth sets the number of spaces per indentation level
func WithIndentWidth(width int) GeneratorOption {
	return func(g *Generator) {
		if width > 0 {
			g.width = width
		}
	}
}

// Generator renders the OWL model as Manchester syntax. A Generator is not
// safe for concurrent use.
type Generator struct {
	resolver rdf.NamespaceResolver
	width    int

	sb        strings.Builder
	indent    int
	lineStart bool
}

// NewGenerator creates a generator that compacts IRIs with resolver, which
// may be nil.
func NewGenerator(resolver rdf.NamespaceResolver, opts ...GeneratorOption) *Generator {
	g := &Generator{resolver: resolver, width: 2}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateText renders a class expression, property expression, term,
// frame, ontology or document.
func (g *Generator) GenerateText(v any) string {
	g.sb.Reset()
	g.indent = 0
	g.lineStart = true

	switch x := v.(type) {
	case owl.ClassExpression:
		g.clazz(x, 0)
	case *owl.PropertyExpression:
		g.write(g.property(x))
	case rdf.Term:
		g.write(g.value(x))
	case owl.Frame:
		g.frame(x)
	case *owl.Ontology:
		g.ontology(x, false)
	case *Document:
		g.document(x)
	default:
		g.write(fmt.Sprint(v))
	}
	return g.sb.String()
}

// write appends s, indenting every line that does not start empty
func (g *Generator) write(s string) {
	for s != "" {
		if g.lineStart && s[0] != '\n' {
			g.sb.WriteString(strings.Repeat(" ", g.indent*g.width))
			g.lineStart = false
		}
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			g.sb.WriteString(s)
			return
		}
		g.sb.WriteString(s[:i+1])
		g.lineStart = true
		s = s[i+1:]
	}
}

// render returns the text of a nested class expression, for use in sections
func (g *Generator) render(ce owl.ClassExpression) string {
	sub := &Generator{resolver: g.resolver, width: g.width}
	sub.clazz(ce, 0)
	return sub.sb.String()
}

// Class expressions

func (g *Generator) clazz(ce owl.ClassExpression, prio int) {
	switch c := ce.(type) {
	case nil:
		g.write(g.iri(rdf.OWLThing.IRI))
	case *owl.Class:
		g.write(g.iri(c.IRI))
	case *owl.IntersectionOf:
		g.setOfClasses(c.Operands, "and", prioAnd, prio)
	case *owl.UnionOf:
		g.setOfClasses(c.Operands, "or", prioOr, prio)
	case *owl.ComplementOf:
		if prioNot < prio {
			g.write("(")
		}
		g.write("not ")
		g.clazz(c.Operand, prioNot)
		if prioNot < prio {
			g.write(")")
		}
	case *owl.OneOf:
		g.write("{")
		for i, m := range c.Members {
			if i > 0 {
				g.write(", ")
			}
			g.write(g.value(m))
		}
		g.write("}")
	case *owl.DatatypeRestriction:
		g.datatypeRestriction(c)
	case *owl.Restriction:
		g.restriction(c)
	}
}

func (g *Generator) setOfClasses(operands []owl.ClassExpression, operator string, operatorPrio, prio int) {
	parens := operatorPrio < prio && len(operands) > 1
	if parens {
		g.write("(")
	}
	for i, op := range operands {
		if i > 0 {
			g.write(" " + operator + " ")
		}
		g.clazz(op, operatorPrio)
	}
	if parens {
		g.write(")")
	}
}

func (g *Generator) restriction(r *owl.Restriction) {
	if r.OnProperty == nil {
		g.fallback(r)
		return
	}
	prop := g.property(r.OnProperty)
	cardinality := func(keyword string, n *int, qualifier owl.ClassExpression, qualified bool) {
		g.write(prop + " " + keyword + " " + strconv.Itoa(*n))
		if qualified {
			g.write(" ")
			g.clazz(qualifier, prioFiller)
		}
	}

	switch {
	case r.AllValuesFrom != nil:
		g.write(prop + " only ")
		g.clazz(r.AllValuesFrom, prioFiller)
	case r.SomeValuesFrom != nil:
		g.write(prop + " some ")
		g.clazz(r.SomeValuesFrom, prioFiller)
	case r.MaxCardinality != nil:
		cardinality("max", r.MaxCardinality, nil, false)
	case r.MinCardinality != nil:
		cardinality("min", r.MinCardinality, nil, false)
	case r.Cardinality != nil:
		cardinality("exactly", r.Cardinality, nil, false)
	case r.MaxQualifiedCardinality != nil:
		cardinality("max", r.MaxQualifiedCardinality, r.Qualifier(), true)
	case r.MinQualifiedCardinality != nil:
		cardinality("min", r.MinQualifiedCardinality, r.Qualifier(), true)
	case r.QualifiedCardinality != nil:
		cardinality("exactly", r.QualifiedCardinality, r.Qualifier(), true)
	case r.HasValue != nil:
		g.write(prop + " value " + g.value(r.HasValue))
	case r.HasSelf:
		g.write(prop + " Self")
	default:
		g.fallback(r)
	}
}

// fallback prints the node a malformed restriction was decoded from
func (g *Generator) fallback(r *owl.Restriction) {
	if r.Ref != nil {
		g.write(g.value(r.Ref))
		return
	}
	g.write(g.iri(rdf.OWLThing.IRI))
}

func (g *Generator) datatypeRestriction(d *owl.DatatypeRestriction) {
	datatype := rdf.RDFSNamespace + "Literal"
	if d.Datatype != nil {
		datatype = d.Datatype.IRI
	}
	g.write(g.iri(datatype) + "[")
	for i, f := range d.Facets {
		if i > 0 {
			g.write(", ")
		}
		facet, ok := facetShorthands[f.Facet]
		if !ok {
			_, facet = rdf.SplitIRI(f.Facet)
		}
		g.write(facet + " " + g.literal(f.Value))
	}
	g.write("]")
}

func (g *Generator) property(p *owl.PropertyExpression) string {
	if p.Inverse {
		return "inverse " + g.iri(p.IRI)
	}
	return g.iri(p.IRI)
}

// Terms

func (g *Generator) iri(iri string) string {
	if qname, ok := rdf.Compact(g.resolver, iri); ok {
		return qname
	}
	return "<" + iri + ">"
}

func (g *Generator) value(t rdf.Term) string {
	switch v := t.(type) {
	case *rdf.NamedNode:
		return g.iri(v.IRI)
	case *rdf.BlankNode:
		return "_:" + v.ID
	case *rdf.Literal:
		return g.literal(v)
	case nil:
		return ""
	}
	return t.String()
}

func (g *Generator) literal(l *rdf.Literal) string {
	if l == nil {
		return `""`
	}
	datatype := l.DatatypeIRI()
	switch {
	case datatype == rdf.XSDInteger.IRI && integerPattern.MatchString(l.Value):
		return l.Value
	case datatype == rdf.XSDDecimal.IRI && decimalPattern.MatchString(l.Value):
		return l.Value
	case datatype == rdf.XSDFloat.IRI && floatPattern.MatchString(l.Value):
		return l.Value + "f"
	}

	quoted := `"` + rdf.EscapeString(l.Value) + `"`
	switch {
	case l.Language != "":
		return quoted + "@" + l.Language
	case datatype == rdf.XSDString.IRI, datatype == rdf.RDFLangString.IRI:
		return quoted
	}
	return quoted + "^^" + g.iri(datatype)
}

// Frames

func (g *Generator) frame(frame owl.Frame) {
	switch f := frame.(type) {
	case *owl.ClassFrame:
		g.write("Class: " + g.iri(f.IRI) + "\n")
		g.annotations(f.Annotations)
		g.section("SubClassOf:", g.descriptions(f.SubClassOf))
		g.section("EquivalentTo:", g.descriptions(f.EquivalentTo))
		g.section("DisjointWith:", g.descriptions(f.DisjointWith))
		g.section("DisjointUnionOf:", g.descriptions(f.DisjointUnionOf))
	case *owl.ObjectPropertyFrame:
		g.write("ObjectProperty: " + g.iri(f.IRI) + "\n")
		g.annotations(f.Annotations)
		g.section("Domain:", g.descriptions(f.Domain))
		g.section("Range:", g.descriptions(f.Range))
		g.section("Characteristics:", characteristics(f.Characteristics))
		g.section("SubPropertyOf:", g.properties(f.SubPropertyOf))
		g.section("EquivalentTo:", g.properties(f.EquivalentTo))
		g.section("DisjointWith:", g.properties(f.DisjointWith))
		g.section("InverseOf:", g.properties(f.InverseOf))
	case *owl.DataPropertyFrame:
		g.write("DataProperty: " + g.iri(f.IRI) + "\n")
		g.annotations(f.Annotations)
		g.section("Domain:", g.descriptions(f.Domain))
		g.section("Range:", g.descriptions(f.Range))
		if f.Functional {
			g.section("Characteristics:", []string{string(owl.Functional)})
		}
		g.section("SubPropertyOf:", g.properties(f.SubPropertyOf))
		g.section("EquivalentTo:", g.properties(f.EquivalentTo))
		g.section("DisjointWith:", g.properties(f.DisjointWith))
	case *owl.AnnotationPropertyFrame:
		g.write("AnnotationProperty: " + g.iri(f.IRI) + "\n")
		g.annotations(f.Annotations)
		g.section("Domain:", g.iris(f.Domain))
		g.section("Range:", g.iris(f.Range))
		g.section("SubPropertyOf:", g.iris(f.SubPropertyOf))
	case *owl.IndividualFrame:
		g.write("Individual: " + g.value(f.Individual) + "\n")
		g.annotations(f.Annotations)
		g.section("Types:", g.descriptions(f.Types))
		g.section("Facts:", g.facts(f.Facts))
		g.section("SameAs:", g.values(f.SameAs))
		g.section("DifferentFrom:", g.values(f.DifferentFrom))
	case *owl.DatatypeFrame:
		g.write("Datatype: " + g.iri(f.IRI) + "\n")
		g.annotations(f.Annotations)
		g.section("EquivalentTo:", g.descriptions(f.EquivalentTo))
	}
}

// section writes keyword and items one level deeper than the frame. A single
// item stays on the keyword line, more items get a line each.
func (g *Generator) section(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	g.indent++
	defer func() { g.indent-- }()

	if len(items) == 1 {
		g.write(keyword + " " + items[0] + "\n")
		return
	}
	g.write(keyword + "\n")
	g.indent++
	for i, item := range items {
		g.write(item)
		if i < len(items)-1 {
			g.write(",")
		}
		g.write("\n")
	}
	g.indent--
}

func (g *Generator) annotations(annotations []*owl.Annotation) {
	items := make([]string, 0, len(annotations))
	for _, a := range annotations {
		items = append(items, g.iri(a.Property)+" "+g.value(a.Value))
	}
	g.section("Annotations:", items)
}

func (g *Generator) descriptions(list []owl.ClassExpression) []string {
	items := make([]string, 0, len(list))
	for _, ce := range list {
		items = append(items, g.render(ce))
	}
	return items
}

func (g *Generator) properties(list []*owl.PropertyExpression) []string {
	items := make([]string, 0, len(list))
	for _, p := range list {
		items = append(items, g.property(p))
	}
	return items
}

func (g *Generator) iris(list []string) []string {
	items := make([]string, 0, len(list))
	for _, iri := range list {
		items = append(items, g.iri(iri))
	}
	return items
}

func (g *Generator) values(list []rdf.Term) []string {
	items := make([]string, 0, len(list))
	for _, t := range list {
		items = append(items, g.value(t))
	}
	return items
}

func (g *Generator) facts(list []*owl.Fact) []string {
	items := make([]string, 0, len(list))
	for _, f := range list {
		item := g.property(f.Property) + " " + g.value(f.Value)
		if f.Negative {
			item = "not " + item
		}
		items = append(items, item)
	}
	return items
}

func characteristics(list []owl.Characteristic) []string {
	items := make([]string, len(list))
	for i, c := range list {
		items[i] = string(c)
	}
	return items
}

// Documents

// document writes the prefix block, the ontology header and each frame,
// separated by blank lines
func (g *Generator) document(doc *Document) {
	separate := false
	if doc.Namespaces != nil && doc.Namespaces.Len() > 0 {
		doc.Namespaces.Each(func(prefix, namespace string) {
			g.write("Prefix: " + prefix + ": <" + namespace + ">\n")
		})
		separate = true
	}
	if doc.Ontology != nil {
		g.ontology(doc.Ontology, separate)
	}
}

func (g *Generator) ontology(o *owl.Ontology, separate bool) {
	block := func() {
		if separate {
			g.write("\n")
		}
		separate = true
	}

	if o.IRI != "" || len(o.Imports) > 0 || len(o.Annotations) > 0 {
		block()
		g.write("Ontology:")
		if o.IRI != "" {
			g.write(" " + g.iri(o.IRI))
			if o.VersionIRI != "" {
				g.write(" " + g.iri(o.VersionIRI))
			}
		}
		g.write("\n")
		g.indent++
		for _, imp := range o.Imports {
			g.write("Import: " + g.iri(imp) + "\n")
		}
		g.indent--
		g.annotations(o.Annotations)
	}
	for _, frame := range o.Frames {
		block()
		g.frame(frame)
	}
}
