package owl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

const ex = "http://example.org/"

func ntriples(t *testing.T, g *rdf.Graph) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, rdf.WriteNTriples(&sb, g.Triples()))
	return sb.String()
}

func TestEncodeClassExpression_ChildrenFirst(t *testing.T) {
	g := rdf.NewGraph()
	enc := NewEncoder(g, WithBlankNodeLabels(SequentialLabels("b")))

	node, err := enc.EncodeClassExpression(&IntersectionOf{Operands: []ClassExpression{
		&Class{IRI: ex + "A"},
		&Restriction{OnProperty: NewProperty(ex + "p"), SomeValuesFrom: &Class{IRI: ex + "B"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBlankNode("b4"), node)

	expected := `_:b1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:b1 <http://www.w3.org/2002/07/owl#onProperty> <http://example.org/p> .
_:b1 <http://www.w3.org/2002/07/owl#someValuesFrom> <http://example.org/B> .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://example.org/A> .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> _:b3 .
_:b3 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> _:b1 .
_:b3 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
_:b4 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
_:b4 <http://www.w3.org/2002/07/owl#intersectionOf> _:b2 .
`
	assert.Equal(t, expected, ntriples(t, g))
}

func TestEncodeRestriction(t *testing.T) {
	p := NewProperty(ex + "p")
	inverse := &PropertyExpression{IRI: ex + "p", Inverse: true}

	tests := []struct {
		name     string
		input    *Restriction
		expected string
	}{
		{
			name:  "qualified cardinality",
			input: &Restriction{OnProperty: p, MinQualifiedCardinality: Count(2), OnClass: &Class{IRI: ex + "C"}},
			expected: `_:r1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:r1 <http://www.w3.org/2002/07/owl#onProperty> <http://example.org/p> .
_:r1 <http://www.w3.org/2002/07/owl#minQualifiedCardinality> "2"^^<http://www.w3.org/2001/XMLSchema#nonNegativeInteger> .
_:r1 <http://www.w3.org/2002/07/owl#onClass> <http://example.org/C> .
`,
		},
		{
			name:  "inverse has self",
			input: &Restriction{OnProperty: inverse, HasSelf: true},
			expected: `_:r1 <http://www.w3.org/2002/07/owl#inverseOf> <http://example.org/p> .
_:r2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:r2 <http://www.w3.org/2002/07/owl#onProperty> _:r1 .
_:r2 <http://www.w3.org/2002/07/owl#hasSelf> "true"^^<http://www.w3.org/2001/XMLSchema#boolean> .
`,
		},
		{
			name:  "data has value",
			input: &Restriction{OnProperty: p, HasValue: rdf.NewIntegerLiteral(5)},
			expected: `_:r1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:r1 <http://www.w3.org/2002/07/owl#onProperty> <http://example.org/p> .
_:r1 <http://www.w3.org/2002/07/owl#hasValue> "5"^^<http://www.w3.org/2001/XMLSchema#integer> .
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := rdf.NewGraph()
			enc := NewEncoder(g, WithBlankNodeLabels(SequentialLabels("r")))
			_, err := enc.EncodeClassExpression(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ntriples(t, g))
		})
	}
}

func TestEncodeRestriction_Fallback(t *testing.T) {
	g := rdf.NewGraph()
	enc := NewEncoder(g)

	ref := rdf.NewBlankNode("opaque")
	node, err := enc.EncodeClassExpression(&Restriction{OnProperty: NewProperty(ex + "p"), Ref: ref})
	require.NoError(t, err)
	assert.Equal(t, ref, node)
	assert.Zero(t, g.Len())

	_, err = enc.EncodeClassExpression(&Restriction{})
	assert.ErrorIs(t, err, ErrIncompleteRestriction)
}

func TestEncodeFrame(t *testing.T) {
	g := rdf.NewGraph()
	enc := NewEncoder(g, WithBlankNodeLabels(SequentialLabels("b")))

	require.NoError(t, enc.EncodeFrame(&ClassFrame{
		IRI:         ex + "Foo",
		Annotations: []*Annotation{{Property: rdf.RDFSLabel.IRI, Value: rdf.NewLiteralWithLanguage("foo", "en")}},
		SubClassOf:  []ClassExpression{&Class{IRI: ex + "Bar"}},
	}))

	expected := `<http://example.org/Foo> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<http://example.org/Foo> <http://www.w3.org/2000/01/rdf-schema#label> "foo"@en .
<http://example.org/Foo> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Bar> .
`
	assert.Equal(t, expected, ntriples(t, g))
}

type failingSink struct {
	calls int
}

func (s *failingSink) InsertTriple(*rdf.Triple) error {
	s.calls++
	return assert.AnError
}

func TestEncodeFrame_StopsAtFirstError(t *testing.T) {
	sink := &failingSink{}
	err := NewEncoder(sink).EncodeFrame(&ObjectPropertyFrame{
		IRI:             ex + "p",
		Domain:          []ClassExpression{&Class{IRI: ex + "A"}},
		Characteristics: []Characteristic{Functional, Transitive},
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, sink.calls)
}

func encodeAll(t *testing.T, frames ...Frame) *rdf.Graph {
	t.Helper()
	g := rdf.NewGraph()
	enc := NewEncoder(g)
	for _, f := range frames {
		require.NoError(t, enc.EncodeFrame(f))
	}
	return g
}

func TestDecodeFrame_RoundTrip(t *testing.T) {
	age := &DataPropertyFrame{
		IRI:        ex + "age",
		Functional: true,
		Range: []ClassExpression{&DatatypeRestriction{
			Datatype: &Class{IRI: rdf.XSDInteger.IRI},
			Facets:   []*FacetRestriction{{Facet: rdf.XSDMinInclusive.IRI, Value: rdf.NewIntegerLiteral(0)}},
		}},
	}
	knows := &ObjectPropertyFrame{
		IRI:             ex + "knows",
		Characteristics: []Characteristic{Symmetric},
		InverseOf:       []*PropertyExpression{{IRI: ex + "knownBy"}},
	}
	person := &ClassFrame{
		IRI: ex + "Person",
		SubClassOf: []ClassExpression{
			&UnionOf{Operands: []ClassExpression{
				&Class{IRI: ex + "Adult"},
				&ComplementOf{Operand: &Class{IRI: ex + "Robot"}},
			}},
			&Restriction{OnProperty: NewProperty(ex + "knows"), AllValuesFrom: &Class{IRI: ex + "Person"}},
		},
		DisjointUnionOf: []ClassExpression{&Class{IRI: ex + "Adult"}, &Class{IRI: ex + "Child"}},
	}
	g := encodeAll(t, age, knows, person)
	dec := NewDecoder(g)

	f, err := dec.DecodeFrame(rdf.NewNamedNode(ex + "age"))
	require.NoError(t, err)
	assert.Equal(t, age, f)

	f, err = dec.DecodeFrame(rdf.NewNamedNode(ex + "knows"))
	require.NoError(t, err)
	assert.Equal(t, knows, f)

	f, err = dec.DecodeFrame(rdf.NewNamedNode(ex + "Person"))
	require.NoError(t, err)
	decoded := f.(*ClassFrame)
	require.Len(t, decoded.SubClassOf, 2)
	assert.Equal(t, person.SubClassOf[0], decoded.SubClassOf[0])

	r := decoded.SubClassOf[1].(*Restriction)
	assert.NotNil(t, r.Ref)
	assert.Equal(t, &PropertyExpression{IRI: ex + "knows", Kind: ObjectProperty}, r.OnProperty)
	assert.Equal(t, &Class{IRI: ex + "Person"}, r.AllValuesFrom)
	assert.Equal(t, person.DisjointUnionOf, decoded.DisjointUnionOf)
}

func TestDecodeFrame_Individual(t *testing.T) {
	frame := &IndividualFrame{
		Individual: rdf.NewNamedNode(ex + "alice"),
		Types:      []ClassExpression{&Class{IRI: ex + "Person"}},
		Facts: []*Fact{
			{Property: &PropertyExpression{IRI: ex + "age", Kind: DataProperty}, Value: rdf.NewIntegerLiteral(42)},
			{Property: &PropertyExpression{IRI: ex + "knows", Kind: ObjectProperty}, Value: rdf.NewNamedNode(ex + "bob"), Negative: true},
		},
		SameAs: []rdf.Term{rdf.NewNamedNode(ex + "alicia")},
	}
	g := encodeAll(t,
		&DataPropertyFrame{IRI: ex + "age"},
		&ObjectPropertyFrame{IRI: ex + "knows"},
		frame,
	)

	f, err := NewDecoder(g).DecodeFrame(rdf.NewNamedNode(ex + "alice"))
	require.NoError(t, err)
	assert.Equal(t, frame, f)
}

func TestDecodeClassExpression_Fallbacks(t *testing.T) {
	g := rdf.NewGraph()
	loop := rdf.NewBlankNode("loop")
	odd := rdf.NewBlankNode("odd")
	require.NoError(t, g.InsertTriple(rdf.NewTriple(loop, rdf.OWLComplementOf, loop)))
	require.NoError(t, g.InsertTriple(rdf.NewTriple(odd, rdf.RDFSComment, rdf.NewLiteral("?"))))

	ce, err := NewDecoder(g).DecodeClassExpression(loop)
	require.NoError(t, err)
	assert.Equal(t, &ComplementOf{Operand: &Restriction{Ref: loop}}, ce)

	ce, err = NewDecoder(g).DecodeClassExpression(odd)
	require.NoError(t, err)
	assert.Equal(t, &Restriction{Ref: odd}, ce)

	_, err = NewDecoder(g).DecodeFrame(rdf.NewNamedNode(ex + "nothing"))
	assert.ErrorIs(t, err, ErrNotDescribed)
}

func TestDecodeOntology(t *testing.T) {
	g := rdf.NewGraph()
	enc := NewEncoder(g)
	require.NoError(t, enc.EncodeOntology(&Ontology{
		IRI:     ex + "onto",
		Imports: []string{ex + "other"},
		Frames: []Frame{
			&ObjectPropertyFrame{IRI: ex + "p"},
			&ClassFrame{IRI: ex + "A"},
			&ClassFrame{IRI: ex + "B", SubClassOf: []ClassExpression{&Class{IRI: ex + "A"}}},
		},
	}))

	o, err := NewDecoder(g).DecodeOntology()
	require.NoError(t, err)
	assert.Equal(t, ex+"onto", o.IRI)
	assert.Equal(t, []string{ex + "other"}, o.Imports)
	require.Len(t, o.Frames, 3)
	assert.Equal(t, rdf.NewNamedNode(ex+"A"), o.Frames[0].Subject())
	assert.Equal(t, rdf.NewNamedNode(ex+"B"), o.Frames[1].Subject())
	assert.IsType(t, &ObjectPropertyFrame{}, o.Frames[2])
}

func TestMarkDataRange(t *testing.T) {
	ce := &UnionOf{Operands: []ClassExpression{
		&ComplementOf{Operand: &Class{IRI: rdf.XSDString.IRI}},
		&OneOf{Members: []rdf.Term{rdf.NewIntegerLiteral(1)}},
	}}
	MarkDataRange(ce)
	assert.True(t, ce.Data)
	assert.True(t, ce.Operands[0].(*ComplementOf).Data)
	assert.True(t, ce.Operands[1].(*OneOf).Data)
}
