package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaces_BindAndLookup(t *testing.T) {
	ns := DefaultNamespaces()
	ns.Bind("", "http://example.org/")
	ns.Bind("ex", "http://example.org/")

	prefix, ok := ns.Prefix("http://example.org/")
	require.True(t, ok)
	assert.Equal(t, "", prefix, "first binding of a namespace wins")

	iri, err := ns.Expand("owl:Thing")
	require.NoError(t, err)
	assert.Equal(t, OWLThing.IRI, iri)

	_, err = ns.Expand("nope:x")
	assert.Error(t, err)

	var prefixes []string
	ns.Each(func(p, _ string) { prefixes = append(prefixes, p) })
	assert.Equal(t, []string{"rdf", "rdfs", "owl", "xsd", "", "ex"}, prefixes)
}

func TestNamespaces_Rebind(t *testing.T) {
	ns := NewNamespaces()
	ns.Bind("a", "http://one/")
	ns.Bind("a", "http://two/")

	_, ok := ns.Prefix("http://one/")
	assert.False(t, ok)
	p, ok := ns.Prefix("http://two/")
	assert.True(t, ok)
	assert.Equal(t, "a", p)
	assert.Equal(t, 1, ns.Len())
}

func TestCompact(t *testing.T) {
	ns := DefaultNamespaces()
	ns.Bind("", "http://example.org/")

	tests := []struct {
		iri      string
		expected string
		ok       bool
	}{
		{"http://example.org/Foo", ":Foo", true},
		{OWLThing.IRI, "owl:Thing", true},
		{"http://other.org/Foo", "", false},
		{"http://example.org/", "", false},
		{"http://example.org/a%20b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.iri, func(t *testing.T) {
			got, ok := Compact(ns, tt.iri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitIRI(t *testing.T) {
	ns, local := SplitIRI("http://www.w3.org/2002/07/owl#Thing")
	assert.Equal(t, OWLNamespace, ns)
	assert.Equal(t, "Thing", local)

	ns, local = SplitIRI("urn:komma:Result")
	assert.Equal(t, "urn:komma:", ns)
	assert.Equal(t, "Result", local)
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, `He said \"hi\"\n`, EscapeString("He said \"hi\"\n"))
	assert.Equal(t, `a\\tb`, EscapeString(`a\tb`), "backslash escaped before tab")
	assert.Equal(t, `\t\r`, EscapeString("\t\r"))

	back, err := UnescapeString(EscapeString("x\\y\t\"z\"\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "x\\y\t\"z\"\r\n", back)

	u, err := UnescapeString(`caf\u00e9`)
	require.NoError(t, err)
	assert.Equal(t, "café", u)

	_, err = UnescapeString(`bad\q`)
	assert.Error(t, err)
}

func TestGraph_Match(t *testing.T) {
	g := NewGraph()
	s := NewNamedNode("http://example.org/s")
	require.NoError(t, g.InsertTriple(NewTriple(s, RDFType, OWLClass)))
	require.NoError(t, g.InsertTriple(NewTriple(s, RDFType, OWLClass)))
	require.NoError(t, g.InsertTriple(NewTriple(s, RDFSLabel, NewLiteral("S"))))

	assert.Equal(t, 2, g.Len())

	matches, err := g.Match(s, RDFType, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Object.Equals(OWLClass))
}

func TestNTriples_RoundTrip(t *testing.T) {
	input := `# comment
<http://example.org/s> <http://example.org/p> "line\nbreak"@en .
_:b1 <http://example.org/p> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://example.org/s> <http://example.org/q> _:b1.
`
	triples, err := ParseNTriples(input)
	require.NoError(t, err)
	require.Len(t, triples, 3)

	lit := triples[0].Object.(*Literal)
	assert.Equal(t, "line\nbreak", lit.Value)
	assert.Equal(t, "en", lit.Language)
	assert.Equal(t, "b1", triples[2].Object.(*BlankNode).ID)

	var sb strings.Builder
	require.NoError(t, WriteNTriples(&sb, triples))
	again, err := ParseNTriples(sb.String())
	require.NoError(t, err)
	require.Len(t, again, 3)
	for i := range triples {
		assert.Equal(t, triples[i].String(), again[i].String())
	}
}

func TestNTriples_Errors(t *testing.T) {
	_, err := ParseNTriples(`"lit" <http://example.org/p> <http://example.org/o> .`)
	assert.Error(t, err)

	_, err = ParseNTriples(`<http://example.org/s> <http://example.org/p> <http://example.org/o>`)
	assert.Error(t, err)
}
