package manchester

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

const ex = "http://example.org/"

// testNamespaces binds the empty prefix to ex on top of the defaults
func testNamespaces() *rdf.Namespaces {
	ns := rdf.DefaultNamespaces()
	ns.Bind("", ex)
	return ns
}

func class(local string) *owl.Class {
	return &owl.Class{IRI: ex + local}
}

func objectProperty(local string) *owl.PropertyExpression {
	return &owl.PropertyExpression{IRI: ex + local, Kind: owl.ObjectProperty}
}

func dataProperty(local string) *owl.PropertyExpression {
	return &owl.PropertyExpression{IRI: ex + local, Kind: owl.DataProperty}
}

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected owl.ClassExpression
	}{
		{
			name:     "named class",
			input:    ":A",
			expected: class("A"),
		},
		{
			name:     "full IRI",
			input:    "<http://example.org/A>",
			expected: class("A"),
		},
		{
			name:  "and binds tighter than or",
			input: ":A or :B and :C",
			expected: &owl.UnionOf{Operands: []owl.ClassExpression{
				class("A"),
				&owl.IntersectionOf{Operands: []owl.ClassExpression{class("B"), class("C")}},
			}},
		},
		{
			name:  "parentheses",
			input: "(:A or :B) and :C",
			expected: &owl.IntersectionOf{Operands: []owl.ClassExpression{
				&owl.UnionOf{Operands: []owl.ClassExpression{class("A"), class("B")}},
				class("C"),
			}},
		},
		{
			name:  "not binds tighter than and",
			input: "not :A and :B",
			expected: &owl.IntersectionOf{Operands: []owl.ClassExpression{
				&owl.ComplementOf{Operand: class("A")},
				class("B"),
			}},
		},
		{
			name:     "double negation",
			input:    "not not :A",
			expected: &owl.ComplementOf{Operand: &owl.ComplementOf{Operand: class("A")}},
		},
		{
			name:     "existential",
			input:    ":p some :A",
			expected: &owl.Restriction{OnProperty: objectProperty("p"), SomeValuesFrom: class("A")},
		},
		{
			name:  "universal with nested union",
			input: ":p only (:A or :B)",
			expected: &owl.Restriction{OnProperty: objectProperty("p"), AllValuesFrom: &owl.UnionOf{
				Operands: []owl.ClassExpression{class("A"), class("B")},
			}},
		},
		{
			name:  "that form",
			input: ":A that :p some :B and not :q value :i",
			expected: &owl.IntersectionOf{Operands: []owl.ClassExpression{
				class("A"),
				&owl.Restriction{OnProperty: objectProperty("p"), SomeValuesFrom: class("B")},
				&owl.ComplementOf{Operand: &owl.Restriction{
					OnProperty: objectProperty("q"),
					HasValue:   rdf.NewNamedNode(ex + "i"),
				}},
			}},
		},
		{
			name:     "qualified cardinality",
			input:    ":p min 2 :A",
			expected: &owl.Restriction{OnProperty: objectProperty("p"), MinQualifiedCardinality: owl.Count(2), OnClass: class("A")},
		},
		{
			name:     "unqualified cardinality",
			input:    ":p exactly 1",
			expected: &owl.Restriction{OnProperty: objectProperty("p"), Cardinality: owl.Count(1)},
		},
		{
			name:     "inverse self",
			input:    "inverse (:p) Self",
			expected: &owl.Restriction{OnProperty: &owl.PropertyExpression{IRI: ex + "p", Inverse: true, Kind: owl.ObjectProperty}, HasSelf: true},
		},
		{
			name:  "datatype restriction",
			input: ":age some xsd:integer[<= 18, maxLength 3]",
			expected: &owl.Restriction{OnProperty: dataProperty("age"), SomeValuesFrom: &owl.DatatypeRestriction{
				Datatype: &owl.Class{IRI: rdf.XSDInteger.IRI},
				Facets: []*owl.FacetRestriction{
					{Facet: rdf.XSDMinInclusive.IRI, Value: rdf.NewLiteralWithDatatype("18", rdf.XSDInteger)},
					{Facet: rdf.XSDMaxLength.IRI, Value: rdf.NewLiteralWithDatatype("3", rdf.XSDInteger)},
				},
			}},
		},
		{
			name:     "literal value",
			input:    ":age value 42",
			expected: &owl.Restriction{OnProperty: dataProperty("age"), HasValue: rdf.NewLiteralWithDatatype("42", rdf.XSDInteger)},
		},
		{
			name:     "qualified data cardinality",
			input:    ":name max 1 xsd:string",
			expected: &owl.Restriction{OnProperty: dataProperty("name"), MaxQualifiedCardinality: owl.Count(1), OnDataRange: &owl.Class{IRI: rdf.XSDString.IRI}},
		},
		{
			name:  "enumeration of individuals",
			input: "{:a, _:b}",
			expected: &owl.OneOf{Members: []rdf.Term{
				rdf.NewNamedNode(ex + "a"),
				rdf.NewBlankNode("b"),
			}},
		},
		{
			name:  "enumeration of literals",
			input: `:color some {"red", "green"@en}`,
			expected: &owl.Restriction{OnProperty: dataProperty("color"), SomeValuesFrom: &owl.OneOf{
				Members: []rdf.Term{rdf.NewLiteral("red"), rdf.NewLiteralWithLanguage("green", "en")},
				Data:    true,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, err := ParseDescription(tt.input, WithNamespaces(testNamespaces()))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ce)
		})
	}
}

func TestParseDescription_Literals(t *testing.T) {
	tests := []struct {
		input    string
		expected *rdf.Literal
	}{
		{`"plain"`, rdf.NewLiteral("plain")},
		{`"He said \"hi\"\n"`, rdf.NewLiteral("He said \"hi\"\n")},
		{`"chat"@fr`, rdf.NewLiteralWithLanguage("chat", "fr")},
		{`"5"^^xsd:int`, rdf.NewLiteralWithDatatype("5", rdf.NewNamedNode(rdf.XSDNamespace+"int"))},
		{`-7`, rdf.NewLiteralWithDatatype("-7", rdf.XSDInteger)},
		{`3.25`, rdf.NewLiteralWithDatatype("3.25", rdf.XSDDecimal)},
		{`1.5f`, rdf.NewLiteralWithDatatype("1.5", rdf.XSDFloat)},
		{`1e3`, rdf.NewLiteralWithDatatype("1e3", rdf.XSDDouble)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ce, err := ParseDescription(":p value "+tt.input, WithNamespaces(testNamespaces()))
			require.NoError(t, err)
			r, ok := ce.(*owl.Restriction)
			require.True(t, ok)
			assert.Equal(t, tt.expected, r.HasValue)
			assert.Equal(t, owl.DataProperty, r.OnProperty.Kind)
		})
	}
}

func TestParseDescription_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		column   int
		expected string
		message  string
	}{
		{
			name:     "dangling operator",
			input:    ":A and",
			line:     1,
			column:   7,
			expected: "class IRI",
		},
		{
			name:    "undefined prefix",
			input:   "ex2:A",
			line:    1,
			column:  1,
			message: "undefined prefix: 'ex2'",
		},
		{
			name:     "unbalanced parenthesis",
			input:    "(:A or :B",
			line:     1,
			column:   10,
			expected: "')'",
		},
		{
			name:     "missing cardinality",
			input:    ":p min :A",
			line:     1,
			column:   8,
			expected: "non-negative integer",
		},
		{
			name:     "inverse without restriction",
			input:    "inverse :p",
			line:     1,
			column:   11,
			expected: "some",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescription(tt.input, WithNamespaces(testNamespaces()))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.column, perr.Column)
			if tt.expected != "" {
				assert.Contains(t, perr.Expected, tt.expected)
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, perr.Message)
			}
		})
	}
}

func TestParseDescription_BareNameNeedsDefaultPrefix(t *testing.T) {
	_, err := ParseDescription("Person")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined prefix: ''")

	ce, err := ParseDescription("Person", WithNamespaces(testNamespaces()))
	require.NoError(t, err)
	assert.Equal(t, class("Person"), ce)
}

func TestParseFrame(t *testing.T) {
	frame, err := NewParser("Class: :Foo SubClassOf: :Bar", WithNamespaces(testNamespaces())).ParseFrame()
	require.NoError(t, err)
	assert.Equal(t, &owl.ClassFrame{
		IRI:        ex + "Foo",
		SubClassOf: []owl.ClassExpression{class("Bar")},
	}, frame)
}

func TestParseFrame_DeclaredDataProperty(t *testing.T) {
	input := `Prefix: : <http://example.org/>
DataProperty: :age
  Domain: :Person
  Range: xsd:integer[>= 0]
  Characteristics: Functional
  SubPropertyOf: :measure`

	frame, err := NewParser(input).ParseFrame()
	require.NoError(t, err)
	assert.Equal(t, &owl.DataPropertyFrame{
		IRI:    ex + "age",
		Domain: []owl.ClassExpression{class("Person")},
		Range: []owl.ClassExpression{&owl.DatatypeRestriction{
			Datatype: &owl.Class{IRI: rdf.XSDInteger.IRI},
			Facets: []*owl.FacetRestriction{
				{Facet: rdf.XSDMaxInclusive.IRI, Value: rdf.NewLiteralWithDatatype("0", rdf.XSDInteger)},
			},
		}},
		Functional:    true,
		SubPropertyOf: []*owl.PropertyExpression{dataProperty("measure")},
	}, frame)
}

func TestParseFrame_Errors(t *testing.T) {
	_, err := NewParser("Class: :A\n  SubClassOf: :p some", WithNamespaces(testNamespaces())).ParseFrame()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, 22, perr.Column)
	assert.Equal(t, "end of input", perr.Found)

	_, err = NewParser("Class: :A Characteristics: Functional", WithNamespaces(testNamespaces())).ParseFrame()
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, `"Characteristics:"`, perr.Found)

	_, err = NewParser("ObjectProperty: :p Characteristics: Sticky", WithNamespaces(testNamespaces())).ParseFrame()
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Expected, "Transitive")
}

const peopleDocument = `Prefix: : <http://example.org/>
Prefix: foaf: <http://xmlns.com/foaf/0.1/>

# people and what they know
Ontology: <http://example.org/people>
  Import: <http://xmlns.com/foaf/0.1/>
  Annotations: rdfs:label "People"@en

ObjectProperty: :knows
  Domain: :Person
  Characteristics: Symmetric, Irreflexive

DataProperty: :nickname
  Characteristics: Functional

Class: :Person
  SubClassOf: foaf:Agent, :nickname max 1
  DisjointWith: :Organization

Individual: :alice
  Types: :Person
  Facts: :knows :bob, :nickname "Al", not :knows :carol
`

func TestParseDocument(t *testing.T) {
	p := NewParser(peopleDocument)
	doc, err := p.ParseDocument()
	require.NoError(t, err)

	ns, ok := doc.Namespaces.Namespace("foaf")
	assert.True(t, ok)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", ns)
	assert.Equal(t, 2, doc.Namespaces.Len())
	_, ok = p.Namespaces().Namespace("xsd")
	assert.True(t, ok)

	o := doc.Ontology
	assert.Equal(t, ex+"people", o.IRI)
	assert.Equal(t, []string{"http://xmlns.com/foaf/0.1/"}, o.Imports)
	assert.Equal(t, []*owl.Annotation{
		{Property: rdf.RDFSLabel.IRI, Value: rdf.NewLiteralWithLanguage("People", "en")},
	}, o.Annotations)
	require.Len(t, o.Frames, 4)

	knows := o.Frames[0].(*owl.ObjectPropertyFrame)
	assert.Equal(t, []owl.Characteristic{owl.Symmetric, owl.Irreflexive}, knows.Characteristics)

	person := o.Frames[2].(*owl.ClassFrame)
	assert.Equal(t, []owl.ClassExpression{
		&owl.Class{IRI: "http://xmlns.com/foaf/0.1/Agent"},
		&owl.Restriction{OnProperty: dataProperty("nickname"), MaxCardinality: owl.Count(1)},
	}, person.SubClassOf)
	assert.Equal(t, []owl.ClassExpression{class("Organization")}, person.DisjointWith)

	alice := o.Frames[3].(*owl.IndividualFrame)
	assert.Equal(t, rdf.NewNamedNode(ex+"alice"), alice.Individual)
	assert.Equal(t, []*owl.Fact{
		{Property: objectProperty("knows"), Value: rdf.NewNamedNode(ex + "bob")},
		{Property: dataProperty("nickname"), Value: rdf.NewLiteral("Al")},
		{Property: objectProperty("knows"), Value: rdf.NewNamedNode(ex + "carol"), Negative: true},
	}, alice.Facts)
}

func TestParseDocument_TrailingGarbage(t *testing.T) {
	_, err := NewParser("Prefix: : <http://example.org/>\nClass: :A\n;").ParseDocument()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Line)
	assert.Contains(t, perr.Expected, "Class:")
	assert.Contains(t, perr.Expected, "end of input")
}
