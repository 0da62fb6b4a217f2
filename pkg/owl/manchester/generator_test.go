package manchester

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

func TestGenerateText_ClassExpressions(t *testing.T) {
	p := objectProperty("p")
	age := dataProperty("age")

	tests := []struct {
		name     string
		input    owl.ClassExpression
		expected string
	}{
		{
			name: "or inside and keeps parentheses",
			input: &owl.IntersectionOf{Operands: []owl.ClassExpression{
				&owl.UnionOf{Operands: []owl.ClassExpression{class("A"), class("B")}},
				class("C"),
			}},
			expected: "(:A or :B) and :C",
		},
		{
			name:     "flat and",
			input:    &owl.IntersectionOf{Operands: []owl.ClassExpression{class("A"), class("B"), class("C")}},
			expected: ":A and :B and :C",
		},
		{
			name: "and inside or",
			input: &owl.UnionOf{Operands: []owl.ClassExpression{
				class("A"),
				&owl.IntersectionOf{Operands: []owl.ClassExpression{class("B"), class("C")}},
			}},
			expected: ":A or :B and :C",
		},
		{
			name: "single operand set",
			input: &owl.IntersectionOf{Operands: []owl.ClassExpression{
				&owl.UnionOf{Operands: []owl.ClassExpression{class("A")}},
				class("B"),
			}},
			expected: ":A and :B",
		},
		{
			name:     "negated union",
			input:    &owl.ComplementOf{Operand: &owl.UnionOf{Operands: []owl.ClassExpression{class("A"), class("B")}}},
			expected: "not (:A or :B)",
		},
		{
			name:     "negation inside and",
			input:    &owl.IntersectionOf{Operands: []owl.ClassExpression{&owl.ComplementOf{Operand: class("A")}, class("B")}},
			expected: "not :A and :B",
		},
		{
			name:     "intersection filler",
			input:    &owl.Restriction{OnProperty: p, SomeValuesFrom: &owl.IntersectionOf{Operands: []owl.ClassExpression{class("A"), class("B")}}},
			expected: ":p some (:A and :B)",
		},
		{
			name:     "negated filler",
			input:    &owl.Restriction{OnProperty: p, AllValuesFrom: &owl.ComplementOf{Operand: class("A")}},
			expected: ":p only (not :A)",
		},
		{
			name:     "negated restriction",
			input:    &owl.ComplementOf{Operand: &owl.Restriction{OnProperty: p, AllValuesFrom: class("A")}},
			expected: "not :p only :A",
		},
		{
			name:     "max cardinality",
			input:    &owl.Restriction{OnProperty: p, MaxCardinality: owl.Count(1)},
			expected: ":p max 1",
		},
		{
			name:     "min cardinality",
			input:    &owl.Restriction{OnProperty: p, MinCardinality: owl.Count(0)},
			expected: ":p min 0",
		},
		{
			name:     "exact cardinality",
			input:    &owl.Restriction{OnProperty: p, Cardinality: owl.Count(3)},
			expected: ":p exactly 3",
		},
		{
			name:     "qualified max",
			input:    &owl.Restriction{OnProperty: p, MaxQualifiedCardinality: owl.Count(2), OnClass: class("A")},
			expected: ":p max 2 :A",
		},
		{
			name:     "qualified min on data range",
			input:    &owl.Restriction{OnProperty: age, MinQualifiedCardinality: owl.Count(1), OnDataRange: &owl.Class{IRI: rdf.XSDInteger.IRI}},
			expected: ":age min 1 xsd:integer",
		},
		{
			name:     "qualified exactly without qualifier",
			input:    &owl.Restriction{OnProperty: p, QualifiedCardinality: owl.Count(1)},
			expected: ":p exactly 1 owl:Thing",
		},
		{
			name:     "has value",
			input:    &owl.Restriction{OnProperty: age, HasValue: rdf.NewIntegerLiteral(42)},
			expected: ":age value 42",
		},
		{
			name:     "inverse self",
			input:    &owl.Restriction{OnProperty: &owl.PropertyExpression{IRI: ex + "p", Inverse: true}, HasSelf: true},
			expected: "inverse :p Self",
		},
		{
			name:     "all values from wins",
			input:    &owl.Restriction{OnProperty: p, AllValuesFrom: class("A"), SomeValuesFrom: class("B")},
			expected: ":p only :A",
		},
		{
			name:     "fallback to reference",
			input:    &owl.Restriction{OnProperty: p, Ref: rdf.NewBlankNode("r1")},
			expected: "_:r1",
		},
		{
			name:     "fallback without reference",
			input:    &owl.Restriction{},
			expected: "owl:Thing",
		},
		{
			name: "datatype restriction",
			input: &owl.DatatypeRestriction{
				Datatype: &owl.Class{IRI: rdf.XSDInteger.IRI},
				Facets: []*owl.FacetRestriction{
					{Facet: rdf.XSDMinInclusive.IRI, Value: rdf.NewIntegerLiteral(0)},
					{Facet: rdf.XSDMinExclusive.IRI, Value: rdf.NewIntegerLiteral(1)},
					{Facet: rdf.XSDMaxInclusive.IRI, Value: rdf.NewIntegerLiteral(9)},
					{Facet: rdf.XSDMaxExclusive.IRI, Value: rdf.NewIntegerLiteral(10)},
				},
			},
			expected: "xsd:integer[<= 0, < 1, >= 9, > 10]",
		},
		{
			name: "named facets",
			input: &owl.DatatypeRestriction{
				Datatype: &owl.Class{IRI: rdf.XSDString.IRI},
				Facets: []*owl.FacetRestriction{
					{Facet: rdf.XSDPattern.IRI, Value: rdf.NewLiteral("[a-z]+")},
					{Facet: rdf.XSDMaxLength.IRI, Value: rdf.NewIntegerLiteral(8)},
				},
			},
			expected: `xsd:string[pattern "[a-z]+", maxLength 8]`,
		},
		{
			name:     "enumeration",
			input:    &owl.OneOf{Members: []rdf.Term{rdf.NewNamedNode(ex + "a"), rdf.NewBlankNode("b")}},
			expected: "{:a, _:b}",
		},
		{
			name:     "uncompactable IRI",
			input:    &owl.Class{IRI: "urn:isbn:0451450523"},
			expected: "<urn:isbn:0451450523>",
		},
		{
			name:     "empty local name",
			input:    &owl.Class{IRI: ex},
			expected: "<http://example.org/>",
		},
	}

	g := NewGenerator(testNamespaces())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.GenerateText(tt.input))
		})
	}
}

func TestGenerateText_Literals(t *testing.T) {
	tests := []struct {
		name     string
		input    *rdf.Literal
		expected string
	}{
		{"escaped string", rdf.NewLiteralWithDatatype("He said \"hi\"\n", rdf.XSDString), `"He said \"hi\"\n"`},
		{"backslash first", rdf.NewLiteral(`a\tb`), `"a\\tb"`},
		{"tab and return", rdf.NewLiteral("a\tb\r"), `"a\tb\r"`},
		{"language", rdf.NewLiteralWithLanguage("chat", "fr"), `"chat"@fr`},
		{"langString without tag", rdf.NewLiteralWithDatatype("bare", rdf.RDFLangString), `"bare"`},
		{"integer", rdf.NewIntegerLiteral(-7), "-7"},
		{"malformed integer", rdf.NewLiteralWithDatatype("seven", rdf.XSDInteger), `"seven"^^xsd:integer`},
		{"decimal", rdf.NewLiteralWithDatatype("3.25", rdf.XSDDecimal), "3.25"},
		{"float", rdf.NewLiteralWithDatatype("1.5", rdf.XSDFloat), "1.5f"},
		{"double", rdf.NewLiteralWithDatatype("1e3", rdf.XSDDouble), `"1e3"^^xsd:double`},
		{"boolean", rdf.NewBooleanLiteral(true), `"true"^^xsd:boolean`},
		{"custom datatype", rdf.NewLiteralWithDatatype("x", rdf.NewNamedNode("urn:dt")), `"x"^^<urn:dt>`},
	}

	g := NewGenerator(testNamespaces())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.GenerateText(tt.input))
		})
	}
}

func TestGenerateText_PropertyExpression(t *testing.T) {
	g := NewGenerator(testNamespaces())
	assert.Equal(t, "inverse :p", g.GenerateText(&owl.PropertyExpression{IRI: ex + "p", Inverse: true}))
	assert.Equal(t, "<urn:p>", NewGenerator(nil).GenerateText(owl.NewProperty("urn:p")))
}

func TestGenerateText_ClassFrame(t *testing.T) {
	ns := testNamespaces()
	frame, err := NewParser("Class: :Foo SubClassOf: :Bar", WithNamespaces(ns)).ParseFrame()
	require.NoError(t, err)

	assert.Equal(t, "Class: :Foo\n  SubClassOf: :Bar\n", NewGenerator(ns).GenerateText(frame))
	assert.Equal(t, "Class: :Foo\n    SubClassOf: :Bar\n", NewGenerator(ns, WithIndentWidth(4)).GenerateText(frame))
}

func TestGenerateText_MultiItemSection(t *testing.T) {
	frame := &owl.IndividualFrame{
		Individual: rdf.NewBlankNode("x"),
		Types:      []owl.ClassExpression{class("A"), class("B")},
		Annotations: []*owl.Annotation{
			{Property: rdf.RDFSComment.IRI, Value: rdf.NewLiteral("anonymous")},
		},
	}
	expected := "Individual: _:x\n" +
		"  Annotations: rdfs:comment \"anonymous\"\n" +
		"  Types:\n" +
		"    :A,\n" +
		"    :B\n"
	assert.Equal(t, expected, NewGenerator(testNamespaces()).GenerateText(frame))
}

func TestGenerateText_Document(t *testing.T) {
	p := NewParser(peopleDocument)
	doc, err := p.ParseDocument()
	require.NoError(t, err)

	text := NewGenerator(p.Namespaces()).GenerateText(doc)

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "people_document", []byte(text))

	// generated text parses to the same document
	p2 := NewParser(text)
	doc2, err := p2.ParseDocument()
	require.NoError(t, err)
	assert.Equal(t, doc.Ontology, doc2.Ontology)
	assert.Equal(t, text, NewGenerator(p2.Namespaces()).GenerateText(doc2))
}

func TestGenerateText_RoundTrip(t *testing.T) {
	inputs := []string{
		"(:A or :B) and :C",
		":A and :B and :C",
		":A or :B and not :C",
		":p some (:A and not :B)",
		"not :p only :A",
		"not (:A or :B)",
		"inverse :p min 2 (:A or :B)",
		":p exactly 1",
		":p some :q some :A",
		":age some xsd:integer[<= 0, > 10]",
		`:name value "x\"y"@en`,
		"{:a, :b} or :C",
		`:code some {"a", "b"}`,
		":p value _:n1",
	}

	ns := testNamespaces()
	g := NewGenerator(ns)
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := ParseDescription(input, WithNamespaces(ns))
			require.NoError(t, err)
			text := g.GenerateText(first)
			assert.Equal(t, input, text)

			second, err := ParseDescription(text, WithNamespaces(ns))
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}
