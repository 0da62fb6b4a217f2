// Package encoding maps RDF terms to the fixed-width keys of the triple indexes.
package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/store"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8)
	MaxInlineStringSize = 16

	// Separator between the lexical form and the datatype of a typed literal
	typedLiteralSeparator = "^^"
)

// EncodedTerm is a type byte followed by a 128-bit hash or inline data
type EncodedTerm = store.EncodedTerm

// TermEncoder encodes RDF terms. IRIs, non-numeric blank node labels and long
// or typed literals are hashed with 128-bit xxh3; their strings go to the
// id2str table.
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term into a fixed-size byte array
// Returns the encoded term and optionally a string to store in id2str table
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, *string, error) {
	var encoded EncodedTerm

	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.encodeNamedNode(t)
	case *rdf.BlankNode:
		return e.encodeBlankNode(t)
	case *rdf.Literal:
		return e.encodeLiteral(t)
	default:
		return encoded, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func (e *TermEncoder) hashed(termType rdf.TermType, s string) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	encoded[0] = byte(termType)
	hash := e.Hash128(s)
	copy(encoded[1:], hash[:])
	return encoded, &s, nil
}

func (e *TermEncoder) encodeNamedNode(node *rdf.NamedNode) (EncodedTerm, *string, error) {
	return e.hashed(rdf.TermTypeNamedNode, node.IRI)
}

func (e *TermEncoder) encodeBlankNode(node *rdf.BlankNode) (EncodedTerm, *string, error) {
	// Numeric labels in canonical form are stored inline (big endian)
	if num, err := strconv.ParseUint(node.ID, 10, 64); err == nil && strconv.FormatUint(num, 10) == node.ID {
		var encoded EncodedTerm
		encoded[0] = byte(rdf.TermTypeBlankNode)
		binary.BigEndian.PutUint64(encoded[1:9], num)
		return encoded, nil, nil
	}
	return e.hashed(rdf.TermTypeBlankNode, node.ID)
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (EncodedTerm, *string, error) {
	if lit.Language != "" {
		return e.hashed(rdf.TermTypeLangStringLiteral, lit.Value+"@"+lit.Language)
	}

	switch lit.DatatypeIRI() {
	case rdf.XSDString.IRI:
		return e.encodeStringLiteral(lit)
	case rdf.XSDInteger.IRI:
		// only the canonical lexical form survives an inline round trip
		if value, err := strconv.ParseInt(lit.Value, 10, 64); err == nil && strconv.FormatInt(value, 10) == lit.Value {
			var encoded EncodedTerm
			encoded[0] = byte(rdf.TermTypeIntegerLiteral)
			binary.BigEndian.PutUint64(encoded[1:9], uint64(value)) // #nosec G115 - intentional bit-pattern conversion for binary encoding
			return encoded, nil, nil
		}
	case rdf.XSDBoolean.IRI:
		if lit.Value == "true" || lit.Value == "false" {
			var encoded EncodedTerm
			encoded[0] = byte(rdf.TermTypeBooleanLiteral)
			if lit.Value == "true" {
				encoded[1] = 1
			}
			return encoded, nil, nil
		}
	}

	return e.hashed(rdf.TermTypeTypedLiteral, lit.Value+typedLiteralSeparator+lit.Datatype.IRI)
}

func (e *TermEncoder) encodeStringLiteral(lit *rdf.Literal) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeStringLiteral)

	// Inline small strings; a NUL byte would end the inline value early
	if len(lit.Value) <= MaxInlineStringSize && !containsNUL(lit.Value) {
		copy(encoded[1:], lit.Value)
		return encoded, nil, nil
	}

	return e.hashed(rdf.TermTypeStringLiteral, lit.Value)
}

func containsNUL(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return true
		}
	}
	return false
}

// EncodeKey concatenates encoded terms into a big-endian index key
func (e *TermEncoder) EncodeKey(terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*store.EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// GetTermType extracts the type from an encoded term
func GetTermType(encoded EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}
