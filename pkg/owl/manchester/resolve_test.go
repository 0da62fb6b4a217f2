package manchester

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

type kindTable map[string]owl.PropertyKind

func (k kindTable) PropertyKind(iri string) (owl.PropertyKind, error) {
	if iri == ex+"broken" {
		return owl.PropertyUnknown, errors.New("lookup failed")
	}
	return k[iri], nil
}

func TestResolver_Kind(t *testing.T) {
	r := NewResolver(kindTable{ex + "height": owl.DataProperty, ex + "p": owl.DataProperty})
	r.Declare(ex+"p", owl.ObjectProperty)

	assert.Equal(t, owl.ObjectProperty, r.Kind(ex+"p"))
	assert.Equal(t, owl.DataProperty, r.Kind(ex+"height"))
	assert.Equal(t, owl.AnnotationProperty, r.Kind(rdf.RDFSLabel.IRI))
	assert.Equal(t, owl.PropertyUnknown, r.Kind(ex+"broken"))
	assert.Equal(t, owl.PropertyUnknown, r.Kind(ex+"other"))

	assert.Equal(t, owl.PropertyUnknown, NewResolver(nil).Kind(ex+"height"))
}

func TestResolver_KnownDataPropertyMovesQualifier(t *testing.T) {
	ce, err := ParseDescription(":height min 1 :Measure",
		WithNamespaces(testNamespaces()),
		WithPropertyKinds(kindTable{ex + "height": owl.DataProperty}))
	require.NoError(t, err)

	assert.Equal(t, &owl.Restriction{
		OnProperty:              dataProperty("height"),
		MinQualifiedCardinality: owl.Count(1),
		OnDataRange:             class("Measure"),
	}, ce)
}

func TestResolver_KnownObjectPropertyKeepsClass(t *testing.T) {
	ce, err := ParseDescription(":p some xsd:string",
		WithNamespaces(testNamespaces()),
		WithPropertyKinds(kindTable{ex + "p": owl.ObjectProperty}))
	require.NoError(t, err)

	r := ce.(*owl.Restriction)
	assert.Equal(t, owl.ObjectProperty, r.OnProperty.Kind)
	assert.Equal(t, &owl.Class{IRI: rdf.XSDString.IRI}, r.SomeValuesFrom)
}

func TestResolver_MarksNestedDataRanges(t *testing.T) {
	ce, err := ParseDescription(`:code only (not {"a", "b"} or xsd:token)`, WithNamespaces(testNamespaces()))
	require.NoError(t, err)

	r := ce.(*owl.Restriction)
	assert.Equal(t, owl.DataProperty, r.OnProperty.Kind)
	union := r.AllValuesFrom.(*owl.UnionOf)
	assert.True(t, union.Data)
	complement := union.Operands[0].(*owl.ComplementOf)
	assert.True(t, complement.Data)
	assert.True(t, complement.Operand.(*owl.OneOf).Data)
}

func TestResolver_DeclaredDatatype(t *testing.T) {
	input := `Prefix: : <http://example.org/>
Datatype: :Percent
  EquivalentTo: xsd:integer[<= 0, >= 100]
Class: :Battery
  SubClassOf: :charge some :Percent`

	doc, err := NewParser(input).ParseDocument()
	require.NoError(t, err)
	battery := doc.Ontology.Frames[1].(*owl.ClassFrame)
	r := battery.SubClassOf[0].(*owl.Restriction)
	assert.Equal(t, owl.DataProperty, r.OnProperty.Kind)
}

func TestResolver_RelatedPropertiesInheritFrameKind(t *testing.T) {
	frame := &owl.ObjectPropertyFrame{
		IRI:           ex + "hasParent",
		SubPropertyOf: []*owl.PropertyExpression{owl.NewProperty(ex + "hasAncestor")},
		InverseOf:     []*owl.PropertyExpression{owl.NewProperty(ex + "hasChild")},
		EquivalentTo:  []*owl.PropertyExpression{owl.NewProperty(rdf.RDFSComment.IRI)},
	}
	NewResolver(nil).Frame(frame)

	assert.Equal(t, owl.ObjectProperty, frame.SubPropertyOf[0].Kind)
	assert.Equal(t, owl.ObjectProperty, frame.InverseOf[0].Kind)
	assert.Equal(t, owl.AnnotationProperty, frame.EquivalentTo[0].Kind)
}

func TestResolver_Facts(t *testing.T) {
	frame := &owl.IndividualFrame{
		Individual: rdf.NewNamedNode(ex + "alice"),
		Facts: []*owl.Fact{
			{Property: owl.NewProperty(ex + "age"), Value: rdf.NewIntegerLiteral(30)},
			{Property: owl.NewProperty(ex + "knows"), Value: rdf.NewNamedNode(ex + "bob")},
			{Property: owl.NewProperty(ex + "label"), Value: rdf.NewNamedNode(ex + "bob")},
		},
	}
	r := NewResolver(nil)
	r.Declare(ex+"label", owl.AnnotationProperty)
	r.Frame(frame)

	assert.Equal(t, owl.DataProperty, frame.Facts[0].Property.Kind)
	assert.Equal(t, owl.ObjectProperty, frame.Facts[1].Property.Kind)
	assert.Equal(t, owl.AnnotationProperty, frame.Facts[2].Property.Kind)
}

func TestResolver_DecoderAsPropertyKinds(t *testing.T) {
	g := rdf.NewGraph()
	require.NoError(t, g.InsertTriple(rdf.NewTriple(rdf.NewNamedNode(ex+"weight"), rdf.RDFType, rdf.OWLDatatypeProperty)))

	ce, err := ParseDescription(":weight max 1 :Kilo",
		WithNamespaces(testNamespaces()),
		WithPropertyKinds(owl.NewDecoder(g)))
	require.NoError(t, err)

	r := ce.(*owl.Restriction)
	assert.Equal(t, owl.DataProperty, r.OnProperty.Kind)
	assert.Nil(t, r.OnClass)
	assert.Equal(t, class("Kilo"), r.OnDataRange)
}
