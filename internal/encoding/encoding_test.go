package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := NewTermEncoder()
	dec := NewTermDecoder()

	tests := []struct {
		name     string
		term     rdf.Term
		termType rdf.TermType
		inline   bool
	}{
		{"iri", rdf.NewNamedNode("http://example.org/Person"), rdf.TermTypeNamedNode, false},
		{"numeric blank node", rdf.NewBlankNode("42"), rdf.TermTypeBlankNode, true},
		{"labelled blank node", rdf.NewBlankNode("b0"), rdf.TermTypeBlankNode, false},
		{"leading zero blank node", rdf.NewBlankNode("007"), rdf.TermTypeBlankNode, false},
		{"short string", rdf.NewLiteral("Alice"), rdf.TermTypeStringLiteral, true},
		{"explicit xsd:string", rdf.NewLiteralWithDatatype("Bob", rdf.XSDString), rdf.TermTypeStringLiteral, true},
		{"long string", rdf.NewLiteral("a string longer than sixteen bytes"), rdf.TermTypeStringLiteral, false},
		{"language string", rdf.NewLiteralWithLanguage("chat", "fr"), rdf.TermTypeLangStringLiteral, false},
		{"integer", rdf.NewIntegerLiteral(-18), rdf.TermTypeIntegerLiteral, true},
		{"non-canonical integer", rdf.NewLiteralWithDatatype("+018", rdf.XSDInteger), rdf.TermTypeTypedLiteral, false},
		{"boolean", rdf.NewBooleanLiteral(true), rdf.TermTypeBooleanLiteral, true},
		{"decimal keeps lexical form", rdf.NewLiteralWithDatatype("1.50", rdf.XSDDecimal), rdf.TermTypeTypedLiteral, false},
		{"custom datatype", rdf.NewLiteralWithDatatype("a^^b", rdf.NewNamedNode("http://example.org/dt")), rdf.TermTypeTypedLiteral, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, str, err := enc.EncodeTerm(tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.termType, GetTermType(encoded))
			assert.Equal(t, tt.inline, str == nil)

			decoded, err := dec.DecodeTerm(encoded, str)
			require.NoError(t, err)
			assert.True(t, tt.term.Equals(decoded), "decoded %s, want %s", decoded, tt.term)
		})
	}
}

func TestEncodeTermIsDeterministic(t *testing.T) {
	enc := NewTermEncoder()
	a, _, err := enc.EncodeTerm(rdf.NewNamedNode("http://example.org/a"))
	require.NoError(t, err)
	b, _, err := enc.EncodeTerm(rdf.NewNamedNode("http://example.org/a"))
	require.NoError(t, err)
	c, _, err := enc.EncodeTerm(rdf.NewNamedNode("http://example.org/b"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, enc.EncodeKey(a, b, c), 3*len(a))
}

func TestDecodeTermErrors(t *testing.T) {
	dec := NewTermDecoder()

	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeNamedNode)
	_, err := dec.DecodeTerm(encoded, nil)
	assert.Error(t, err)

	encoded[0] = 0xff
	_, err = dec.DecodeTerm(encoded, nil)
	assert.Error(t, err)
}
