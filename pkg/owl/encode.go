package owl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// ErrIncompleteRestriction is returned for restrictions that have neither a
// value field nor a reference to encode.
var ErrIncompleteRestriction = errors.New("restriction has no property or value")

// Sink receives the triples produced by an Encoder.
type Sink interface {
	InsertTriple(triple *rdf.Triple) error
}

// EncoderOption configures an Encoder
type EncoderOption func(*Encoder)

// WithBlankNodeLabels replaces the uuid based blank node label generator
func WithBlankNodeLabels(next func() string) EncoderOption {
	return func(e *Encoder) {
		e.nextLabel = next
	}
}

// SequentialLabels returns a label generator producing prefix1, prefix2, ...
func SequentialLabels(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func uuidLabel() string {
	return "u" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Encoder maps the OWL model to RDF. Statements describing a node are
// emitted after the statements of the nodes it refers to.
type Encoder struct {
	sink      Sink
	nextLabel func() string
}

// NewEncoder creates an encoder writing to sink
func NewEncoder(sink Sink, opts ...EncoderOption) *Encoder {
	e := &Encoder{sink: sink, nextLabel: uuidLabel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Encoder) blank() *rdf.BlankNode {
	return rdf.NewBlankNode(e.nextLabel())
}

func (e *Encoder) emit(subject, predicate, object rdf.Term) error {
	return e.sink.InsertTriple(rdf.NewTriple(subject, predicate, object))
}

// EncodeClassExpression writes the statements of ce and returns the node
// that denotes it.
func (e *Encoder) EncodeClassExpression(ce ClassExpression) (rdf.Term, error) {
	switch c := ce.(type) {
	case *Class:
		return rdf.NewNamedNode(c.IRI), nil
	case *IntersectionOf:
		return e.encodeSet(c.Operands, rdf.OWLIntersectionOf, c.Data)
	case *UnionOf:
		return e.encodeSet(c.Operands, rdf.OWLUnionOf, c.Data)
	case *ComplementOf:
		operand, err := e.EncodeClassExpression(c.Operand)
		if err != nil {
			return nil, err
		}
		node := e.blank()
		if c.Data {
			return node, e.emitAll(
				node, rdf.RDFType, rdf.RDFSDatatype,
				node, rdf.OWLDatatypeComplementOf, operand,
			)
		}
		return node, e.emitAll(
			node, rdf.RDFType, rdf.OWLClass,
			node, rdf.OWLComplementOf, operand,
		)
	case *OneOf:
		list, err := e.encodeList(c.Members)
		if err != nil {
			return nil, err
		}
		node := e.blank()
		return node, e.emitAll(
			node, rdf.RDFType, classType(c.Data),
			node, rdf.OWLOneOf, list,
		)
	case *Restriction:
		return e.encodeRestriction(c)
	case *DatatypeRestriction:
		return e.encodeDatatypeRestriction(c)
	case nil:
		return nil, fmt.Errorf("nil class expression")
	default:
		return nil, fmt.Errorf("unsupported class expression %T", ce)
	}
}

func classType(data bool) *rdf.NamedNode {
	if data {
		return rdf.RDFSDatatype
	}
	return rdf.OWLClass
}

// emitAll emits consecutive subject, predicate, object triples
func (e *Encoder) emitAll(terms ...rdf.Term) error {
	for i := 0; i+2 < len(terms); i += 3 {
		if err := e.emit(terms[i], terms[i+1], terms[i+2]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeSet(operands []ClassExpression, predicate *rdf.NamedNode, data bool) (rdf.Term, error) {
	items := make([]rdf.Term, 0, len(operands))
	for _, op := range operands {
		item, err := e.EncodeClassExpression(op)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	list, err := e.encodeList(items)
	if err != nil {
		return nil, err
	}
	node := e.blank()
	return node, e.emitAll(
		node, rdf.RDFType, classType(data),
		node, predicate, list,
	)
}

// encodeList writes an RDF collection head first
func (e *Encoder) encodeList(items []rdf.Term) (rdf.Term, error) {
	if len(items) == 0 {
		return rdf.RDFNil, nil
	}
	nodes := make([]rdf.Term, len(items))
	for i := range items {
		nodes[i] = e.blank()
	}
	for i, item := range items {
		var rest rdf.Term = rdf.RDFNil
		if i+1 < len(nodes) {
			rest = nodes[i+1]
		}
		if err := e.emitAll(
			nodes[i], rdf.RDFFirst, item,
			nodes[i], rdf.RDFRest, rest,
		); err != nil {
			return nil, err
		}
	}
	return nodes[0], nil
}

// EncodeProperty returns the node for p, writing owl:inverseOf for inverses
func (e *Encoder) EncodeProperty(p *PropertyExpression) (rdf.Term, error) {
	named := rdf.NewNamedNode(p.IRI)
	if !p.Inverse {
		return named, nil
	}
	node := e.blank()
	return node, e.emit(node, rdf.OWLInverseOf, named)
}

func (e *Encoder) encodeRestriction(r *Restriction) (rdf.Term, error) {
	var (
		predicate *rdf.NamedNode
		object    rdf.Term
		filler    ClassExpression
		qualified bool
	)
	cardinality := func(p *rdf.NamedNode, n *int, q bool) {
		predicate, object, qualified = p, rdf.NewNonNegativeIntegerLiteral(*n), q
	}

	switch {
	case r.OnProperty == nil:
	case r.AllValuesFrom != nil:
		predicate, filler = rdf.OWLAllValuesFrom, r.AllValuesFrom
	case r.SomeValuesFrom != nil:
		predicate, filler = rdf.OWLSomeValuesFrom, r.SomeValuesFrom
	case r.MaxCardinality != nil:
		cardinality(rdf.OWLMaxCardinality, r.MaxCardinality, false)
	case r.MinCardinality != nil:
		cardinality(rdf.OWLMinCardinality, r.MinCardinality, false)
	case r.Cardinality != nil:
		cardinality(rdf.OWLCardinality, r.Cardinality, false)
	case r.MaxQualifiedCardinality != nil:
		cardinality(rdf.OWLMaxQualifiedCardinality, r.MaxQualifiedCardinality, true)
	case r.MinQualifiedCardinality != nil:
		cardinality(rdf.OWLMinQualifiedCardinality, r.MinQualifiedCardinality, true)
	case r.QualifiedCardinality != nil:
		cardinality(rdf.OWLQualifiedCardinality, r.QualifiedCardinality, true)
	case r.HasValue != nil:
		predicate, object = rdf.OWLHasValue, r.HasValue
	case r.HasSelf:
		predicate, object = rdf.OWLHasSelf, rdf.NewBooleanLiteral(true)
	}
	if predicate == nil {
		if r.Ref != nil {
			return r.Ref, nil
		}
		return nil, ErrIncompleteRestriction
	}

	property, err := e.EncodeProperty(r.OnProperty)
	if err != nil {
		return nil, err
	}
	if filler != nil {
		if object, err = e.EncodeClassExpression(filler); err != nil {
			return nil, err
		}
	}

	var qualifierPredicate *rdf.NamedNode
	var qualifier rdf.Term
	if qualified {
		switch {
		case r.OnClass != nil:
			qualifierPredicate = rdf.OWLOnClass
			qualifier, err = e.EncodeClassExpression(r.OnClass)
		case r.OnDataRange != nil:
			qualifierPredicate = rdf.OWLOnDataRange
			qualifier, err = e.EncodeClassExpression(r.OnDataRange)
		default:
			qualifierPredicate, qualifier = rdf.OWLOnClass, rdf.OWLThing
		}
		if err != nil {
			return nil, err
		}
	}

	node := e.blank()
	if err := e.emitAll(
		node, rdf.RDFType, rdf.OWLRestriction,
		node, rdf.OWLOnProperty, property,
		node, predicate, object,
	); err != nil {
		return nil, err
	}
	if qualifierPredicate != nil {
		if err := e.emit(node, qualifierPredicate, qualifier); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (e *Encoder) encodeDatatypeRestriction(d *DatatypeRestriction) (rdf.Term, error) {
	if d.Datatype == nil {
		return nil, fmt.Errorf("datatype restriction without datatype")
	}
	facets := make([]rdf.Term, 0, len(d.Facets))
	for _, f := range d.Facets {
		node := e.blank()
		if err := e.emit(node, rdf.NewNamedNode(f.Facet), f.Value); err != nil {
			return nil, err
		}
		facets = append(facets, node)
	}
	list, err := e.encodeList(facets)
	if err != nil {
		return nil, err
	}
	node := e.blank()
	return node, e.emitAll(
		node, rdf.RDFType, rdf.RDFSDatatype,
		node, rdf.OWLOnDatatype, rdf.NewNamedNode(d.Datatype.IRI),
		node, rdf.OWLWithRestrictions, list,
	)
}

// EncodeOntology writes the ontology header followed by every frame
func (e *Encoder) EncodeOntology(o *Ontology) error {
	if o.IRI != "" || o.VersionIRI != "" || len(o.Imports) > 0 || len(o.Annotations) > 0 {
		var subject rdf.Term
		if o.IRI != "" {
			subject = rdf.NewNamedNode(o.IRI)
		} else {
			subject = e.blank()
		}
		if err := e.emit(subject, rdf.RDFType, rdf.OWLOntology); err != nil {
			return err
		}
		if o.VersionIRI != "" {
			if err := e.emit(subject, rdf.OWLVersionIRI, rdf.NewNamedNode(o.VersionIRI)); err != nil {
				return err
			}
		}
		for _, imp := range o.Imports {
			if err := e.emit(subject, rdf.OWLImports, rdf.NewNamedNode(imp)); err != nil {
				return err
			}
		}
		w := &frameWriter{e: e, subject: subject}
		w.annotations(o.Annotations)
		if w.err != nil {
			return w.err
		}
	}

	for _, f := range o.Frames {
		if err := e.EncodeFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// EncodeFrame writes the declaration and axioms of a single frame
func (e *Encoder) EncodeFrame(f Frame) error {
	if fr, ok := f.(*IndividualFrame); ok {
		return e.encodeIndividual(fr)
	}

	w := &frameWriter{e: e, subject: f.Subject()}
	switch fr := f.(type) {
	case *ClassFrame:
		w.emit(rdf.RDFType, rdf.OWLClass)
		w.annotations(fr.Annotations)
		w.axioms(rdf.RDFSSubClassOf, fr.SubClassOf)
		w.axioms(rdf.OWLEquivalentClass, fr.EquivalentTo)
		w.axioms(rdf.OWLDisjointWith, fr.DisjointWith)
		w.listAxiom(rdf.OWLDisjointUnionOf, fr.DisjointUnionOf)
	case *ObjectPropertyFrame:
		w.emit(rdf.RDFType, rdf.OWLObjectProperty)
		w.annotations(fr.Annotations)
		w.axioms(rdf.RDFSDomain, fr.Domain)
		w.axioms(rdf.RDFSRange, fr.Range)
		w.characteristics(fr.Characteristics)
		w.propertyAxioms(rdf.RDFSSubPropertyOf, fr.SubPropertyOf)
		w.propertyAxioms(rdf.OWLEquivalentProperty, fr.EquivalentTo)
		w.propertyAxioms(rdf.OWLPropertyDisjointWith, fr.DisjointWith)
		w.propertyAxioms(rdf.OWLInverseOf, fr.InverseOf)
	case *DataPropertyFrame:
		w.emit(rdf.RDFType, rdf.OWLDatatypeProperty)
		w.annotations(fr.Annotations)
		w.axioms(rdf.RDFSDomain, fr.Domain)
		w.axioms(rdf.RDFSRange, fr.Range)
		if fr.Functional {
			w.characteristics([]Characteristic{Functional})
		}
		w.propertyAxioms(rdf.RDFSSubPropertyOf, fr.SubPropertyOf)
		w.propertyAxioms(rdf.OWLEquivalentProperty, fr.EquivalentTo)
		w.propertyAxioms(rdf.OWLPropertyDisjointWith, fr.DisjointWith)
	case *AnnotationPropertyFrame:
		w.emit(rdf.RDFType, rdf.OWLAnnotationProperty)
		w.annotations(fr.Annotations)
		w.iris(rdf.RDFSDomain, fr.Domain)
		w.iris(rdf.RDFSRange, fr.Range)
		w.iris(rdf.RDFSSubPropertyOf, fr.SubPropertyOf)
	case *DatatypeFrame:
		w.emit(rdf.RDFType, rdf.RDFSDatatype)
		w.annotations(fr.Annotations)
		w.axioms(rdf.OWLEquivalentClass, fr.EquivalentTo)
	default:
		return fmt.Errorf("unsupported frame %T", f)
	}
	return w.err
}

// frameWriter emits the statements of one subject and keeps the first error;
// once an error occurred every further call is a no-op.
type frameWriter struct {
	e       *Encoder
	subject rdf.Term
	err     error
}

func (w *frameWriter) emit(predicate, object rdf.Term) {
	if w.err == nil {
		w.err = w.e.emit(w.subject, predicate, object)
	}
}

func (w *frameWriter) annotations(annotations []*Annotation) {
	for _, a := range annotations {
		w.emit(rdf.NewNamedNode(a.Property), a.Value)
	}
}

func (w *frameWriter) axioms(predicate *rdf.NamedNode, expressions []ClassExpression) {
	for _, ce := range expressions {
		if w.err != nil {
			return
		}
		var object rdf.Term
		if object, w.err = w.e.EncodeClassExpression(ce); w.err == nil {
			w.emit(predicate, object)
		}
	}
}

func (w *frameWriter) listAxiom(predicate *rdf.NamedNode, expressions []ClassExpression) {
	if w.err != nil || len(expressions) == 0 {
		return
	}
	items := make([]rdf.Term, 0, len(expressions))
	for _, ce := range expressions {
		item, err := w.e.EncodeClassExpression(ce)
		if err != nil {
			w.err = err
			return
		}
		items = append(items, item)
	}
	var list rdf.Term
	if list, w.err = w.e.encodeList(items); w.err == nil {
		w.emit(predicate, list)
	}
}

func (w *frameWriter) propertyAxioms(predicate *rdf.NamedNode, properties []*PropertyExpression) {
	for _, p := range properties {
		if w.err != nil {
			return
		}
		var object rdf.Term
		if object, w.err = w.e.EncodeProperty(p); w.err == nil {
			w.emit(predicate, object)
		}
	}
}

func (w *frameWriter) iris(predicate *rdf.NamedNode, iris []string) {
	for _, iri := range iris {
		w.emit(predicate, rdf.NewNamedNode(iri))
	}
}

func (w *frameWriter) characteristics(characteristics []Characteristic) {
	for _, c := range characteristics {
		iri, ok := c.IRI()
		if !ok {
			if w.err == nil {
				w.err = fmt.Errorf("unknown property characteristic %q", c)
			}
			return
		}
		w.emit(rdf.RDFType, rdf.NewNamedNode(iri))
	}
}

func (e *Encoder) encodeIndividual(f *IndividualFrame) error {
	if f.Individual == nil {
		return fmt.Errorf("individual frame without individual")
	}
	w := &frameWriter{e: e, subject: f.Individual}
	if _, named := f.Individual.(*rdf.NamedNode); named {
		w.emit(rdf.RDFType, rdf.OWLNamedIndividual)
	}
	w.annotations(f.Annotations)
	w.axioms(rdf.RDFType, f.Types)
	for _, fact := range f.Facts {
		if w.err == nil {
			w.err = e.encodeFact(f.Individual, fact)
		}
	}
	for _, other := range f.SameAs {
		w.emit(rdf.OWLSameAs, other)
	}
	for _, other := range f.DifferentFrom {
		w.emit(rdf.OWLDifferentFrom, other)
	}
	return w.err
}

func (e *Encoder) encodeFact(subject rdf.Term, fact *Fact) error {
	if !fact.Negative {
		property := rdf.NewNamedNode(fact.Property.IRI)
		if fact.Property.Inverse {
			return e.emit(fact.Value, property, subject)
		}
		return e.emit(subject, property, fact.Value)
	}

	property, err := e.EncodeProperty(fact.Property)
	if err != nil {
		return err
	}
	target := rdf.OWLTargetIndividual
	if _, literal := fact.Value.(*rdf.Literal); literal {
		target = rdf.OWLTargetValue
	}
	node := e.blank()
	return e.emitAll(
		node, rdf.RDFType, rdf.OWLNegativePropertyAssertion,
		node, rdf.OWLSourceIndividual, subject,
		node, rdf.OWLAssertionProperty, property,
		node, target, fact.Value,
	)
}
