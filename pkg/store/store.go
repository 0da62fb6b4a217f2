// Package store keeps RDF triples and a prefix table in a key-value storage.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// TripleStore manages the RDF triplestore with 3 indexes
type TripleStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder
	closed  bool
}

// NewTripleStore creates a new triplestore
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *TripleStore {
	return &TripleStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
	}
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.storage.Close()
}

func (s *TripleStore) begin(writable bool) (Transaction, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.storage.Begin(writable)
}

// InsertTriple inserts a triple into the store
func (s *TripleStore) InsertTriple(triple *rdf.Triple) error {
	return s.InsertTriples([]*rdf.Triple{triple})
}

// InsertTriples inserts triples in a single transaction
func (s *TripleStore) InsertTriples(triples []*rdf.Triple) error {
	txn, err := s.begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, triple := range triples {
		if err := s.insertTripleInTxn(txn, triple); err != nil {
			return err
		}
	}

	return txn.Commit()
}

type encodedTriple struct {
	subject, predicate, object EncodedTerm
	strings                    [3]*string
}

func (s *TripleStore) encodeTriple(triple *rdf.Triple) (*encodedTriple, error) {
	var (
		enc encodedTriple
		err error
	)
	if enc.subject, enc.strings[0], err = s.encoder.EncodeTerm(triple.Subject); err != nil {
		return nil, fmt.Errorf("failed to encode subject: %w", err)
	}
	if enc.predicate, enc.strings[1], err = s.encoder.EncodeTerm(triple.Predicate); err != nil {
		return nil, fmt.Errorf("failed to encode predicate: %w", err)
	}
	if enc.object, enc.strings[2], err = s.encoder.EncodeTerm(triple.Object); err != nil {
		return nil, fmt.Errorf("failed to encode object: %w", err)
	}
	return &enc, nil
}

// insertTripleInTxn inserts a triple within an existing transaction
func (s *TripleStore) insertTripleInTxn(txn Transaction, triple *rdf.Triple) error {
	enc, err := s.encodeTriple(triple)
	if err != nil {
		return err
	}

	// Store strings in id2str table
	terms := [3]EncodedTerm{enc.subject, enc.predicate, enc.object}
	for i, str := range enc.strings {
		if err := s.storeString(txn, terms[i], str); err != nil {
			return err
		}
	}

	// Empty value for all index entries
	emptyValue := []byte{}

	if err := txn.Set(TableSPO, s.encoder.EncodeKey(enc.subject, enc.predicate, enc.object), emptyValue); err != nil {
		return err
	}
	if err := txn.Set(TablePOS, s.encoder.EncodeKey(enc.predicate, enc.object, enc.subject), emptyValue); err != nil {
		return err
	}
	return txn.Set(TableOSP, s.encoder.EncodeKey(enc.object, enc.subject, enc.predicate), emptyValue)
}

// storeString stores a string in the id2str table if provided
func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}

	// Use the encoded term (which contains the hash) as the key
	key := encoded[1:] // Skip the type byte, use the hash/data portion
	value := []byte(*str)

	// Check if already exists to avoid unnecessary writes
	existing, err := txn.Get(TableID2Str, key)
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	return txn.Set(TableID2Str, key, value)
}

// DeleteTriple deletes a triple from the store
func (s *TripleStore) DeleteTriple(triple *rdf.Triple) error {
	txn, err := s.begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	enc, err := s.encodeTriple(triple)
	if err != nil {
		return err
	}
	if err := txn.Delete(TableSPO, s.encoder.EncodeKey(enc.subject, enc.predicate, enc.object)); err != nil {
		return err
	}
	if err := txn.Delete(TablePOS, s.encoder.EncodeKey(enc.predicate, enc.object, enc.subject)); err != nil {
		return err
	}
	if err := txn.Delete(TableOSP, s.encoder.EncodeKey(enc.object, enc.subject, enc.predicate)); err != nil {
		return err
	}

	// Note: We don't remove from the id2str table
	// as strings may be referenced by other triples (no garbage collection)

	return txn.Commit()
}

// ContainsTriple checks if a triple exists in the store
func (s *TripleStore) ContainsTriple(triple *rdf.Triple) (bool, error) {
	txn, err := s.begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	enc, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	_, err = txn.Get(TableSPO, s.encoder.EncodeKey(enc.subject, enc.predicate, enc.object))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Count returns the number of triples in the store
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableSPO, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}

	return count, nil
}

// BindPrefix stores a prefix binding, replacing an earlier binding of prefix
func (s *TripleStore) BindPrefix(prefix, namespace string) error {
	txn, err := s.begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := txn.Set(TablePrefixes, []byte(prefix), []byte(namespace)); err != nil {
		return err
	}
	return txn.Commit()
}

// Namespaces returns the stored prefix table, ordered by prefix
func (s *TripleStore) Namespaces() (*rdf.Namespaces, error) {
	txn, err := s.begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TablePrefixes, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	ns := rdf.NewNamespaces()
	for it.Next() {
		value, err := it.Value()
		if err != nil {
			return nil, err
		}
		ns.Bind(string(it.Key()), string(value))
	}
	return ns, nil
}

// Prefix implements rdf.NamespaceResolver over the stored prefix table
func (s *TripleStore) Prefix(namespace string) (string, bool) {
	ns, err := s.Namespaces()
	if err != nil {
		slog.Debug("prefix lookup failed", "namespace", namespace, "error", err)
		return "", false
	}
	return ns.Prefix(namespace)
}

// PropertyKind returns the declared kind of a property, so that a store can
// serve as the symbol table of the Manchester parser.
func (s *TripleStore) PropertyKind(iri string) (owl.PropertyKind, error) {
	return owl.NewDecoder(s).PropertyKind(iri)
}
