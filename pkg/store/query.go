package store

import (
	"fmt"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// Pattern is a triple pattern; nil positions match any term
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
}

// TripleIterator iterates over triples matching a pattern
type TripleIterator interface {
	Next() bool
	Triple() (*rdf.Triple, error)
	Close() error
}

// Query executes a pattern match and returns matching triples
func (s *TripleStore) Query(pattern *Pattern) (TripleIterator, error) {
	txn, err := s.begin(false)
	if err != nil {
		return nil, err
	}

	// Select the best index based on bound positions
	table, keyPattern := selectIndex(pattern)

	// Build the prefix for scanning
	prefix, err := s.buildScanPrefix(pattern, keyPattern)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	it, err := txn.Scan(table, prefix)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	return &tripleIterator{
		store:      s,
		txn:        txn,
		it:         it,
		keyPattern: keyPattern,
	}, nil
}

// Match returns all triples matching the pattern; nil positions match anything.
func (s *TripleStore) Match(subject, predicate, object rdf.Term) ([]*rdf.Triple, error) {
	it, err := s.Query(&Pattern{Subject: subject, Predicate: predicate, Object: object})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var result []*rdf.Triple
	for it.Next() {
		triple, err := it.Triple()
		if err != nil {
			return nil, err
		}
		result = append(result, triple)
	}
	return result, nil
}

// selectIndex chooses the index whose key starts with the bound positions.
// KeyPattern maps: key_position -> triple position (S=0, P=1, O=2)
func selectIndex(pattern *Pattern) (Table, []int) {
	sBound := pattern.Subject != nil
	pBound := pattern.Predicate != nil
	oBound := pattern.Object != nil

	switch {
	case sBound && pBound:
		return TableSPO, []int{0, 1, 2} // Key order: S, P, O
	case pBound && oBound:
		return TablePOS, []int{1, 2, 0} // Key order: P, O, S
	case oBound && sBound:
		return TableOSP, []int{2, 0, 1} // Key order: O, S, P
	case pBound:
		return TablePOS, []int{1, 2, 0}
	case oBound:
		return TableOSP, []int{2, 0, 1}
	default:
		return TableSPO, []int{0, 1, 2}
	}
}

// buildScanPrefix builds a key prefix from the bound terms in key order
func (s *TripleStore) buildScanPrefix(pattern *Pattern, keyPattern []int) ([]byte, error) {
	positions := [3]rdf.Term{pattern.Subject, pattern.Predicate, pattern.Object}

	var prefix []byte
	for _, idx := range keyPattern {
		term := positions[idx]
		if term == nil {
			// Stop at first unbound position
			break
		}

		encoded, _, err := s.encoder.EncodeTerm(term)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, encoded[:]...)
	}

	return prefix, nil
}

// tripleIterator implements TripleIterator
type tripleIterator struct {
	store      *TripleStore
	txn        Transaction
	it         Iterator
	keyPattern []int
	closed     bool
}

func (ti *tripleIterator) Next() bool {
	if ti.closed {
		return false
	}
	return ti.it.Next()
}

func (ti *tripleIterator) Triple() (*rdf.Triple, error) {
	if ti.closed {
		return nil, fmt.Errorf("iterator closed")
	}

	key := ti.it.Key()
	if len(key) < len(ti.keyPattern)*EncodedTermSize {
		return nil, fmt.Errorf("invalid key length: %d", len(key))
	}

	// Map key segments back to S, P, O positions
	var positions [3]EncodedTerm
	for i, idx := range ti.keyPattern {
		offset := i * EncodedTermSize
		copy(positions[idx][:], key[offset:offset+EncodedTermSize])
	}

	subject, err := ti.store.decodeTerm(ti.txn, positions[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode subject: %w", err)
	}
	predicate, err := ti.store.decodeTerm(ti.txn, positions[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode predicate: %w", err)
	}
	object, err := ti.store.decodeTerm(ti.txn, positions[2])
	if err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}

	return rdf.NewTriple(subject, predicate, object), nil
}

func (ti *tripleIterator) Close() error {
	if ti.closed {
		return nil
	}
	ti.closed = true
	_ = ti.it.Close() // #nosec G104 - iterator close error less critical than transaction rollback error
	return ti.txn.Rollback()
}

// decodeTerm decodes an encoded term, looking up its string if it has one
func (s *TripleStore) decodeTerm(txn Transaction, encoded EncodedTerm) (rdf.Term, error) {
	var stringValue *string
	switch rdf.TermType(encoded[0]) {
	case rdf.TermTypeNamedNode, rdf.TermTypeBlankNode, rdf.TermTypeStringLiteral,
		rdf.TermTypeLangStringLiteral, rdf.TermTypeTypedLiteral:
		str, err := txn.Get(TableID2Str, encoded[1:])
		if err == nil {
			strVal := string(str)
			stringValue = &strVal
		}
	}

	return s.decoder.DecodeTerm(encoded, stringValue)
}
