package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// TermDecoder handles decoding of RDF terms
type TermDecoder struct{}

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm decodes an encoded term back to an rdf.Term
// For terms that require string lookup, stringValue should be provided
func (d *TermDecoder) DecodeTerm(encoded EncodedTerm, stringValue *string) (rdf.Term, error) {
	termType := GetTermType(encoded)

	switch termType {
	case rdf.TermTypeNamedNode:
		if stringValue == nil {
			return nil, fmt.Errorf("string value required for named node")
		}
		return rdf.NewNamedNode(*stringValue), nil

	case rdf.TermTypeBlankNode:
		if stringValue != nil {
			return rdf.NewBlankNode(*stringValue), nil
		}
		numericID := binary.BigEndian.Uint64(encoded[1:9])
		return rdf.NewBlankNode(strconv.FormatUint(numericID, 10)), nil

	case rdf.TermTypeStringLiteral:
		if stringValue != nil {
			return rdf.NewLiteral(*stringValue), nil
		}
		// Inline string ends at the first NUL byte
		endIdx := 1
		for endIdx < store.EncodedTermSize && encoded[endIdx] != 0 {
			endIdx++
		}
		return rdf.NewLiteral(string(encoded[1:endIdx])), nil

	case rdf.TermTypeLangStringLiteral:
		if stringValue == nil {
			return nil, fmt.Errorf("string value required for language-tagged literal")
		}
		idx := strings.LastIndexByte(*stringValue, '@')
		if idx < 0 {
			return rdf.NewLiteral(*stringValue), nil
		}
		return rdf.NewLiteralWithLanguage((*stringValue)[:idx], (*stringValue)[idx+1:]), nil

	case rdf.TermTypeTypedLiteral:
		if stringValue == nil {
			return nil, fmt.Errorf("string value required for typed literal")
		}
		idx := strings.LastIndex(*stringValue, typedLiteralSeparator)
		if idx < 0 {
			return nil, fmt.Errorf("typed literal without datatype: %q", *stringValue)
		}
		value, datatype := (*stringValue)[:idx], (*stringValue)[idx+len(typedLiteralSeparator):]
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil

	case rdf.TermTypeIntegerLiteral:
		value := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - intentional bit-pattern conversion for binary decoding
		return rdf.NewIntegerLiteral(value), nil

	case rdf.TermTypeBooleanLiteral:
		return rdf.NewBooleanLiteral(encoded[1] != 0), nil

	default:
		return nil, fmt.Errorf("unknown term type: %d", termType)
	}
}
