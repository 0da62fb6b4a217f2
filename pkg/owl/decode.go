package owl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// ErrNotDescribed is returned by DecodeFrame for nodes without a
// recognizable OWL declaration.
var ErrNotDescribed = errors.New("no OWL description")

// Graph is the read side of a triple source; nil positions match anything.
type Graph interface {
	Match(subject, predicate, object rdf.Term) ([]*rdf.Triple, error)
}

var builtinAnnotationProperties = map[string]bool{
	rdf.RDFSLabel.IRI:                           true,
	rdf.RDFSComment.IRI:                         true,
	rdf.RDFSNamespace + "seeAlso":               true,
	rdf.RDFSNamespace + "isDefinedBy":           true,
	rdf.OWLNamespace + "versionInfo":            true,
	rdf.OWLNamespace + "deprecated":             true,
	rdf.OWLNamespace + "priorVersion":           true,
	rdf.OWLNamespace + "backwardCompatibleWith": true,
	rdf.OWLNamespace + "incompatibleWith":       true,
}

// IsBuiltinAnnotationProperty reports whether iri is one of the annotation
// properties predefined by RDFS and OWL 2
func IsBuiltinAnnotationProperty(iri string) bool {
	return builtinAnnotationProperties[iri]
}

// Decoder reads class expressions and frames back from RDF.
type Decoder struct {
	graph  Graph
	active map[string]struct{}
}

// NewDecoder creates a decoder over g
func NewDecoder(g Graph) *Decoder {
	return &Decoder{graph: g, active: make(map[string]struct{})}
}

func (d *Decoder) objects(subject rdf.Term, predicate *rdf.NamedNode) ([]rdf.Term, error) {
	triples, err := d.graph.Match(subject, predicate, nil)
	if err != nil {
		return nil, err
	}
	objects := make([]rdf.Term, 0, len(triples))
	for _, t := range triples {
		objects = append(objects, t.Object)
	}
	return objects, nil
}

func (d *Decoder) object(subject rdf.Term, predicate *rdf.NamedNode) (rdf.Term, error) {
	objects, err := d.objects(subject, predicate)
	if err != nil || len(objects) == 0 {
		return nil, err
	}
	return objects[0], nil
}

func (d *Decoder) hasType(subject rdf.Term, class *rdf.NamedNode) (bool, error) {
	triples, err := d.graph.Match(subject, rdf.RDFType, class)
	return len(triples) > 0, err
}

// list reads an RDF collection, stopping at rdf:nil or a repeated node
func (d *Decoder) list(head rdf.Term) ([]rdf.Term, error) {
	var items []rdf.Term
	seen := make(map[string]struct{})
	for head != nil && !head.Equals(rdf.RDFNil) {
		key := head.String()
		if _, loop := seen[key]; loop {
			return nil, fmt.Errorf("cyclic list at %s", key)
		}
		seen[key] = struct{}{}

		first, err := d.object(head, rdf.RDFFirst)
		if err != nil {
			return nil, err
		}
		if first == nil {
			return nil, fmt.Errorf("list node %s has no rdf:first", key)
		}
		items = append(items, first)

		if head, err = d.object(head, rdf.RDFRest); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// DecodeClassExpression decodes the class expression denoted by node. Blank
// nodes of an unknown shape, and nodes reached again while they are being
// decoded, become a Restriction that only carries Ref.
func (d *Decoder) DecodeClassExpression(node rdf.Term) (ClassExpression, error) {
	if n, ok := node.(*rdf.NamedNode); ok {
		return &Class{IRI: n.IRI}, nil
	}

	key := node.String()
	if _, cyclic := d.active[key]; cyclic {
		return &Restriction{Ref: node}, nil
	}
	d.active[key] = struct{}{}
	defer delete(d.active, key)

	data, err := d.hasType(node, rdf.RDFSDatatype)
	if err != nil {
		return nil, err
	}

	if head, err := d.object(node, rdf.OWLIntersectionOf); err != nil || head != nil {
		if err != nil {
			return nil, err
		}
		operands, err := d.expressionList(head)
		return &IntersectionOf{Operands: operands, Data: data}, err
	}
	if head, err := d.object(node, rdf.OWLUnionOf); err != nil || head != nil {
		if err != nil {
			return nil, err
		}
		operands, err := d.expressionList(head)
		return &UnionOf{Operands: operands, Data: data}, err
	}
	for _, complement := range []*rdf.NamedNode{rdf.OWLComplementOf, rdf.OWLDatatypeComplementOf} {
		operand, err := d.object(node, complement)
		if err != nil {
			return nil, err
		}
		if operand != nil {
			ce, err := d.DecodeClassExpression(operand)
			return &ComplementOf{Operand: ce, Data: data || complement == rdf.OWLDatatypeComplementOf}, err
		}
	}
	if head, err := d.object(node, rdf.OWLOneOf); err != nil || head != nil {
		if err != nil {
			return nil, err
		}
		members, err := d.list(head)
		if err != nil {
			return nil, err
		}
		if !data && len(members) > 0 {
			_, data = members[0].(*rdf.Literal)
		}
		return &OneOf{Members: members, Data: data}, nil
	}
	if datatype, err := d.object(node, rdf.OWLOnDatatype); err != nil || datatype != nil {
		if err != nil {
			return nil, err
		}
		return d.decodeDatatypeRestriction(node, datatype)
	}
	if property, err := d.object(node, rdf.OWLOnProperty); err != nil || property != nil {
		if err != nil {
			return nil, err
		}
		return d.decodeRestriction(node, property)
	}
	return &Restriction{Ref: node}, nil
}

func (d *Decoder) expressionList(head rdf.Term) ([]ClassExpression, error) {
	items, err := d.list(head)
	if err != nil {
		return nil, err
	}
	operands := make([]ClassExpression, 0, len(items))
	for _, item := range items {
		ce, err := d.DecodeClassExpression(item)
		if err != nil {
			return nil, err
		}
		operands = append(operands, ce)
	}
	return operands, nil
}

func (d *Decoder) decodeDatatypeRestriction(node, datatype rdf.Term) (ClassExpression, error) {
	named, ok := datatype.(*rdf.NamedNode)
	if !ok {
		return &Restriction{Ref: node}, nil
	}
	dr := &DatatypeRestriction{Datatype: &Class{IRI: named.IRI}}

	head, err := d.object(node, rdf.OWLWithRestrictions)
	if err != nil {
		return nil, err
	}
	items, err := d.list(head)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		triples, err := d.graph.Match(item, nil, nil)
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			facet, ok := t.Predicate.(*rdf.NamedNode)
			value, isLiteral := t.Object.(*rdf.Literal)
			if ok && isLiteral {
				dr.Facets = append(dr.Facets, &FacetRestriction{Facet: facet.IRI, Value: value})
			}
		}
	}
	return dr, nil
}

func (d *Decoder) decodeRestriction(node, property rdf.Term) (ClassExpression, error) {
	r := &Restriction{Ref: node}

	var err error
	if r.OnProperty, err = d.DecodeProperty(property); err != nil {
		return nil, err
	}

	fillers := []struct {
		predicate *rdf.NamedNode
		target    *ClassExpression
	}{
		{rdf.OWLAllValuesFrom, &r.AllValuesFrom},
		{rdf.OWLSomeValuesFrom, &r.SomeValuesFrom},
		{rdf.OWLOnClass, &r.OnClass},
		{rdf.OWLOnDataRange, &r.OnDataRange},
	}
	for _, f := range fillers {
		object, err := d.object(node, f.predicate)
		if err != nil {
			return nil, err
		}
		if object == nil {
			continue
		}
		if *f.target, err = d.DecodeClassExpression(object); err != nil {
			return nil, err
		}
	}
	if r.OnDataRange != nil {
		MarkDataRange(r.OnDataRange)
	}
	if r.OnProperty.Kind == DataProperty {
		for _, ce := range []ClassExpression{r.AllValuesFrom, r.SomeValuesFrom} {
			MarkDataRange(ce)
		}
	}

	cardinalities := []struct {
		predicate *rdf.NamedNode
		target    **int
	}{
		{rdf.OWLMaxCardinality, &r.MaxCardinality},
		{rdf.OWLMinCardinality, &r.MinCardinality},
		{rdf.OWLCardinality, &r.Cardinality},
		{rdf.OWLMaxQualifiedCardinality, &r.MaxQualifiedCardinality},
		{rdf.OWLMinQualifiedCardinality, &r.MinQualifiedCardinality},
		{rdf.OWLQualifiedCardinality, &r.QualifiedCardinality},
	}
	for _, c := range cardinalities {
		object, err := d.object(node, c.predicate)
		if err != nil {
			return nil, err
		}
		lit, ok := object.(*rdf.Literal)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(lit.Value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid cardinality %s on %s", lit, node)
		}
		*c.target = Count(n)
	}

	if r.HasValue, err = d.object(node, rdf.OWLHasValue); err != nil {
		return nil, err
	}
	self, err := d.object(node, rdf.OWLHasSelf)
	if err != nil {
		return nil, err
	}
	if lit, ok := self.(*rdf.Literal); ok && lit.Value == "true" {
		r.HasSelf = true
	}
	return r, nil
}

// DecodeProperty decodes a named property or an owl:inverseOf node
func (d *Decoder) DecodeProperty(node rdf.Term) (*PropertyExpression, error) {
	if n, ok := node.(*rdf.NamedNode); ok {
		kind, err := d.PropertyKind(n.IRI)
		if err != nil {
			return nil, err
		}
		return &PropertyExpression{IRI: n.IRI, Kind: kind}, nil
	}
	inverse, err := d.object(node, rdf.OWLInverseOf)
	if err != nil {
		return nil, err
	}
	named, ok := inverse.(*rdf.NamedNode)
	if !ok {
		return nil, fmt.Errorf("property expression %s is neither named nor an inverse", node)
	}
	return &PropertyExpression{IRI: named.IRI, Inverse: true, Kind: ObjectProperty}, nil
}

// PropertyKind looks up the declared kind of a property
func (d *Decoder) PropertyKind(iri string) (PropertyKind, error) {
	kinds := []struct {
		class *rdf.NamedNode
		kind  PropertyKind
	}{
		{rdf.OWLObjectProperty, ObjectProperty},
		{rdf.OWLDatatypeProperty, DataProperty},
		{rdf.OWLAnnotationProperty, AnnotationProperty},
	}
	subject := rdf.NewNamedNode(iri)
	for _, k := range kinds {
		ok, err := d.hasType(subject, k.class)
		if err != nil {
			return PropertyUnknown, err
		}
		if ok {
			return k.kind, nil
		}
	}
	if builtinAnnotationProperties[iri] {
		return AnnotationProperty, nil
	}
	return PropertyUnknown, nil
}

// DecodeFrame decodes the description of subject. The frame kind follows the
// first matching declaration: class, object property, data property,
// annotation property, datatype, individual.
func (d *Decoder) DecodeFrame(subject rdf.Term) (Frame, error) {
	named, isNamed := subject.(*rdf.NamedNode)
	if !isNamed {
		return d.decodeIndividual(subject)
	}

	declarations := []struct {
		class  *rdf.NamedNode
		decode func(*rdf.NamedNode) (Frame, error)
	}{
		{rdf.OWLClass, d.decodeClass},
		{rdf.OWLObjectProperty, d.decodeObjectProperty},
		{rdf.OWLDatatypeProperty, d.decodeDataProperty},
		{rdf.OWLAnnotationProperty, d.decodeAnnotationProperty},
		{rdf.RDFSDatatype, d.decodeDatatype},
		{rdf.OWLNamedIndividual, func(n *rdf.NamedNode) (Frame, error) { return d.decodeIndividual(n) }},
	}
	for _, decl := range declarations {
		ok, err := d.hasType(named, decl.class)
		if err != nil {
			return nil, err
		}
		if ok {
			return decl.decode(named)
		}
	}

	// undeclared classes and individuals
	for _, p := range []*rdf.NamedNode{rdf.RDFSSubClassOf, rdf.OWLEquivalentClass} {
		object, err := d.object(named, p)
		if err != nil {
			return nil, err
		}
		if object != nil {
			return d.decodeClass(named)
		}
	}
	types, err := d.objects(named, rdf.RDFType)
	if err != nil {
		return nil, err
	}
	if len(types) > 0 {
		return d.decodeIndividual(named)
	}
	return nil, fmt.Errorf("%s: %w", subject, ErrNotDescribed)
}

func (d *Decoder) expressions(subject rdf.Term, predicate *rdf.NamedNode) ([]ClassExpression, error) {
	objects, err := d.objects(subject, predicate)
	if err != nil {
		return nil, err
	}
	var out []ClassExpression
	for _, o := range objects {
		ce, err := d.DecodeClassExpression(o)
		if err != nil {
			return nil, err
		}
		out = append(out, ce)
	}
	return out, nil
}

func (d *Decoder) properties(subject rdf.Term, predicate *rdf.NamedNode) ([]*PropertyExpression, error) {
	objects, err := d.objects(subject, predicate)
	if err != nil {
		return nil, err
	}
	var out []*PropertyExpression
	for _, o := range objects {
		p, err := d.DecodeProperty(o)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *Decoder) iris(subject rdf.Term, predicate *rdf.NamedNode) ([]string, error) {
	objects, err := d.objects(subject, predicate)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, o := range objects {
		if n, ok := o.(*rdf.NamedNode); ok {
			out = append(out, n.IRI)
		}
	}
	return out, nil
}

// annotations returns the statements of subject whose predicate is an
// annotation property
func (d *Decoder) annotations(subject rdf.Term) ([]*Annotation, error) {
	triples, err := d.graph.Match(subject, nil, nil)
	if err != nil {
		return nil, err
	}
	var out []*Annotation
	for _, t := range triples {
		p, ok := t.Predicate.(*rdf.NamedNode)
		if !ok {
			continue
		}
		kind, err := d.PropertyKind(p.IRI)
		if err != nil {
			return nil, err
		}
		if kind == AnnotationProperty {
			out = append(out, &Annotation{Property: p.IRI, Value: t.Object})
		}
	}
	return out, nil
}

// decoder collects the first error of a sequence of decoding steps
type decoder struct {
	*Decoder
	err error
}

func (d *decoder) expressions(subject rdf.Term, predicate *rdf.NamedNode) []ClassExpression {
	if d.err != nil {
		return nil
	}
	var out []ClassExpression
	out, d.err = d.Decoder.expressions(subject, predicate)
	return out
}

func (d *decoder) properties(subject rdf.Term, predicate *rdf.NamedNode) []*PropertyExpression {
	if d.err != nil {
		return nil
	}
	var out []*PropertyExpression
	out, d.err = d.Decoder.properties(subject, predicate)
	return out
}

func (d *decoder) iris(subject rdf.Term, predicate *rdf.NamedNode) []string {
	if d.err != nil {
		return nil
	}
	var out []string
	out, d.err = d.Decoder.iris(subject, predicate)
	return out
}

func (d *decoder) annotations(subject rdf.Term) []*Annotation {
	if d.err != nil {
		return nil
	}
	var out []*Annotation
	out, d.err = d.Decoder.annotations(subject)
	return out
}

func (d *decoder) has(subject rdf.Term, class *rdf.NamedNode) bool {
	if d.err != nil {
		return false
	}
	var ok bool
	ok, d.err = d.hasType(subject, class)
	return ok
}

func (d *Decoder) decodeClass(n *rdf.NamedNode) (Frame, error) {
	dd := &decoder{Decoder: d}
	f := &ClassFrame{
		IRI:          n.IRI,
		Annotations:  dd.annotations(n),
		SubClassOf:   dd.expressions(n, rdf.RDFSSubClassOf),
		EquivalentTo: dd.expressions(n, rdf.OWLEquivalentClass),
		DisjointWith: dd.expressions(n, rdf.OWLDisjointWith),
	}
	if dd.err != nil {
		return nil, dd.err
	}
	head, err := d.object(n, rdf.OWLDisjointUnionOf)
	if err != nil {
		return nil, err
	}
	if head != nil {
		if f.DisjointUnionOf, err = d.expressionList(head); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (d *Decoder) decodeObjectProperty(n *rdf.NamedNode) (Frame, error) {
	dd := &decoder{Decoder: d}
	f := &ObjectPropertyFrame{
		IRI:           n.IRI,
		Annotations:   dd.annotations(n),
		Domain:        dd.expressions(n, rdf.RDFSDomain),
		Range:         dd.expressions(n, rdf.RDFSRange),
		SubPropertyOf: dd.properties(n, rdf.RDFSSubPropertyOf),
		EquivalentTo:  dd.properties(n, rdf.OWLEquivalentProperty),
		DisjointWith:  dd.properties(n, rdf.OWLPropertyDisjointWith),
		InverseOf:     dd.properties(n, rdf.OWLInverseOf),
	}
	for _, c := range []Characteristic{Functional, InverseFunctional, Transitive, Symmetric, Asymmetric, Reflexive, Irreflexive} {
		if dd.has(n, characteristicTypes[c]) {
			f.Characteristics = append(f.Characteristics, c)
		}
	}
	if dd.err != nil {
		return nil, dd.err
	}
	return f, nil
}

func (d *Decoder) decodeDataProperty(n *rdf.NamedNode) (Frame, error) {
	dd := &decoder{Decoder: d}
	f := &DataPropertyFrame{
		IRI:           n.IRI,
		Annotations:   dd.annotations(n),
		Domain:        dd.expressions(n, rdf.RDFSDomain),
		Range:         dd.expressions(n, rdf.RDFSRange),
		Functional:    dd.has(n, rdf.OWLFunctionalProperty),
		SubPropertyOf: dd.properties(n, rdf.RDFSSubPropertyOf),
		EquivalentTo:  dd.properties(n, rdf.OWLEquivalentProperty),
		DisjointWith:  dd.properties(n, rdf.OWLPropertyDisjointWith),
	}
	if dd.err != nil {
		return nil, dd.err
	}
	for _, r := range f.Range {
		MarkDataRange(r)
	}
	return f, nil
}

func (d *Decoder) decodeAnnotationProperty(n *rdf.NamedNode) (Frame, error) {
	dd := &decoder{Decoder: d}
	f := &AnnotationPropertyFrame{
		IRI:           n.IRI,
		Annotations:   dd.annotations(n),
		Domain:        dd.iris(n, rdf.RDFSDomain),
		Range:         dd.iris(n, rdf.RDFSRange),
		SubPropertyOf: dd.iris(n, rdf.RDFSSubPropertyOf),
	}
	if dd.err != nil {
		return nil, dd.err
	}
	return f, nil
}

func (d *Decoder) decodeDatatype(n *rdf.NamedNode) (Frame, error) {
	dd := &decoder{Decoder: d}
	f := &DatatypeFrame{
		IRI:          n.IRI,
		Annotations:  dd.annotations(n),
		EquivalentTo: dd.expressions(n, rdf.OWLEquivalentClass),
	}
	if dd.err != nil {
		return nil, dd.err
	}
	for _, ce := range f.EquivalentTo {
		MarkDataRange(ce)
	}
	return f, nil
}

func (d *Decoder) decodeIndividual(subject rdf.Term) (Frame, error) {
	f := &IndividualFrame{Individual: subject}

	triples, err := d.graph.Match(subject, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, t := range triples {
		p, ok := t.Predicate.(*rdf.NamedNode)
		if !ok {
			continue
		}
		switch p.IRI {
		case rdf.RDFType.IRI:
			if t.Object.Equals(rdf.OWLNamedIndividual) {
				continue
			}
			ce, err := d.DecodeClassExpression(t.Object)
			if err != nil {
				return nil, err
			}
			f.Types = append(f.Types, ce)
		case rdf.OWLSameAs.IRI:
			f.SameAs = append(f.SameAs, t.Object)
		case rdf.OWLDifferentFrom.IRI:
			f.DifferentFrom = append(f.DifferentFrom, t.Object)
		default:
			kind, err := d.PropertyKind(p.IRI)
			if err != nil {
				return nil, err
			}
			switch kind {
			case AnnotationProperty:
				f.Annotations = append(f.Annotations, &Annotation{Property: p.IRI, Value: t.Object})
			case ObjectProperty, DataProperty:
				f.Facts = append(f.Facts, &Fact{Property: &PropertyExpression{IRI: p.IRI, Kind: kind}, Value: t.Object})
			}
		}
	}

	negatives, err := d.graph.Match(nil, rdf.OWLSourceIndividual, subject)
	if err != nil {
		return nil, err
	}
	for _, t := range negatives {
		fact, err := d.decodeNegativeAssertion(t.Subject)
		if err != nil {
			return nil, err
		}
		if fact != nil {
			f.Facts = append(f.Facts, fact)
		}
	}
	return f, nil
}

func (d *Decoder) decodeNegativeAssertion(node rdf.Term) (*Fact, error) {
	property, err := d.object(node, rdf.OWLAssertionProperty)
	if err != nil || property == nil {
		return nil, err
	}
	p, err := d.DecodeProperty(property)
	if err != nil {
		return nil, err
	}
	for _, target := range []*rdf.NamedNode{rdf.OWLTargetIndividual, rdf.OWLTargetValue} {
		value, err := d.object(node, target)
		if err != nil {
			return nil, err
		}
		if value != nil {
			return &Fact{Property: p, Value: value, Negative: true}, nil
		}
	}
	return nil, nil
}

// DecodeOntology decodes the ontology header, if any, and a frame for every
// declared named entity in match order.
func (d *Decoder) DecodeOntology() (*Ontology, error) {
	o := &Ontology{}

	headers, err := d.graph.Match(nil, rdf.RDFType, rdf.OWLOntology)
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		subject := headers[0].Subject
		if n, ok := subject.(*rdf.NamedNode); ok {
			o.IRI = n.IRI
		}
		dd := &decoder{Decoder: d}
		if versions := dd.iris(subject, rdf.OWLVersionIRI); len(versions) > 0 {
			o.VersionIRI = versions[0]
		}
		o.Imports = dd.iris(subject, rdf.OWLImports)
		o.Annotations = dd.annotations(subject)
		if dd.err != nil {
			return nil, dd.err
		}
	}

	seen := make(map[string]struct{})
	declarations := []*rdf.NamedNode{
		rdf.OWLClass,
		rdf.OWLObjectProperty,
		rdf.OWLDatatypeProperty,
		rdf.OWLAnnotationProperty,
		rdf.RDFSDatatype,
		rdf.OWLNamedIndividual,
	}
	for _, class := range declarations {
		triples, err := d.graph.Match(nil, rdf.RDFType, class)
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			n, ok := t.Subject.(*rdf.NamedNode)
			if !ok {
				continue
			}
			if _, dup := seen[n.IRI]; dup {
				continue
			}
			seen[n.IRI] = struct{}{}

			f, err := d.DecodeFrame(n)
			if err != nil {
				return nil, err
			}
			o.Frames = append(o.Frames, f)
		}
	}
	return o, nil
}
