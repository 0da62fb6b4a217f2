package manchester

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// prefixGraph is a graph that also records bound prefixes
type prefixGraph struct {
	*rdf.Graph
	prefixes []string
	bindErr  error
}

func (g *prefixGraph) BindPrefix(prefix, namespace string) error {
	if g.bindErr != nil {
		return g.bindErr
	}
	g.prefixes = append(g.prefixes, prefix+"="+namespace)
	return nil
}

func writeNTriples(t *testing.T, g *rdf.Graph) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, rdf.WriteNTriples(&sb, g.Triples()))
	return sb.String()
}

func TestLoad_StatementOrder(t *testing.T) {
	input := `Prefix: : <http://example.org/>
Class: :A
  SubClassOf: :p some :B
`
	g := rdf.NewGraph()
	doc, err := Load(input, g, WithEncoderOptions(owl.WithBlankNodeLabels(owl.SequentialLabels("b"))))
	require.NoError(t, err)
	require.Len(t, doc.Ontology.Frames, 1)

	expected := `<http://example.org/A> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
_:b1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:b1 <http://www.w3.org/2002/07/owl#onProperty> <http://example.org/p> .
_:b1 <http://www.w3.org/2002/07/owl#someValuesFrom> <http://example.org/B> .
<http://example.org/A> <http://www.w3.org/2000/01/rdf-schema#subClassOf> _:b1 .
`
	assert.Equal(t, expected, writeNTriples(t, g))
}

func TestLoad_DataRestriction(t *testing.T) {
	input := `Prefix: : <http://example.org/>
DataProperty: :age
Class: :Adult
  EquivalentTo: :age some xsd:integer[< 18]
`
	g := rdf.NewGraph()
	_, err := Load(input, g, WithEncoderOptions(owl.WithBlankNodeLabels(owl.SequentialLabels("b"))))
	require.NoError(t, err)

	expected := `<http://example.org/age> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#DatatypeProperty> .
<http://example.org/Adult> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
_:b1 <http://www.w3.org/2001/XMLSchema#minExclusive> "18"^^<http://www.w3.org/2001/XMLSchema#integer> .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> _:b1 .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
_:b3 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2000/01/rdf-schema#Datatype> .
_:b3 <http://www.w3.org/2002/07/owl#onDatatype> <http://www.w3.org/2001/XMLSchema#integer> .
_:b3 <http://www.w3.org/2002/07/owl#withRestrictions> _:b2 .
_:b4 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:b4 <http://www.w3.org/2002/07/owl#onProperty> <http://example.org/age> .
_:b4 <http://www.w3.org/2002/07/owl#someValuesFrom> _:b3 .
<http://example.org/Adult> <http://www.w3.org/2002/07/owl#equivalentClass> _:b4 .
`
	assert.Equal(t, expected, writeNTriples(t, g))
}

func TestLoad_DecodesBack(t *testing.T) {
	g := rdf.NewGraph()
	doc, err := Load(peopleDocument, g)
	require.NoError(t, err)

	decoded, err := owl.NewDecoder(g).DecodeFrame(rdf.NewNamedNode(ex + "Person"))
	require.NoError(t, err)

	ns := testNamespaces()
	ns.Bind("foaf", "http://xmlns.com/foaf/0.1/")
	gen := NewGenerator(ns)
	assert.Equal(t, gen.GenerateText(doc.Ontology.Frames[2]), gen.GenerateText(decoded))
	assert.Equal(t, "Class: :Person\n  SubClassOf:\n    foaf:Agent,\n    :nickname max 1\n  DisjointWith: :Organization\n",
		gen.GenerateText(decoded))
}

func TestLoad_BindsPrefixes(t *testing.T) {
	g := &prefixGraph{Graph: rdf.NewGraph()}
	_, err := Load(peopleDocument, g)
	require.NoError(t, err)
	assert.Equal(t, []string{"=http://example.org/", "foaf=http://xmlns.com/foaf/0.1/"}, g.prefixes)
	assert.Positive(t, g.Len())

	failing := &prefixGraph{Graph: rdf.NewGraph(), bindErr: errors.New("read-only")}
	_, err = Load(peopleDocument, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.Zero(t, failing.Len())
}

func TestLoad_ParseError(t *testing.T) {
	g := rdf.NewGraph()
	_, err := Load("Class: :A", g)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Zero(t, g.Len())
}
