// Package owl models OWL 2 class expressions, data ranges and ontology frames
// and maps them to and from RDF triples.
package owl

import (
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// ClassExpression is a class expression or, in a data context, a data range.
type ClassExpression interface {
	classExpression()
}

// Class is a named class or datatype
type Class struct {
	IRI string
}

// IntersectionOf is the conjunction of its operands. Data marks a data range
// intersection.
type IntersectionOf struct {
	Operands []ClassExpression
	Data     bool
}

// UnionOf is the disjunction of its operands
type UnionOf struct {
	Operands []ClassExpression
	Data     bool
}

// ComplementOf is the negation of its operand
type ComplementOf struct {
	Operand ClassExpression
	Data    bool
}

// OneOf enumerates individuals or, for data ranges, literals.
type OneOf struct {
	Members []rdf.Term
	Data    bool
}

// Restriction is a property restriction. Exactly one of the value fields is
// expected to be set; a restriction without any of them is represented by Ref
// alone.
type Restriction struct {
	OnProperty *PropertyExpression

	AllValuesFrom  ClassExpression
	SomeValuesFrom ClassExpression

	MaxCardinality          *int
	MinCardinality          *int
	Cardinality             *int
	MaxQualifiedCardinality *int
	MinQualifiedCardinality *int
	QualifiedCardinality    *int

	HasValue rdf.Term
	HasSelf  bool

	OnClass     ClassExpression
	OnDataRange ClassExpression

	// Ref is the RDF node the restriction was decoded from, if any
	Ref rdf.Term
}

// DatatypeRestriction constrains a datatype with facets, e.g. xsd:integer[>= 0].
type DatatypeRestriction struct {
	Datatype *Class
	Facets   []*FacetRestriction
}

// FacetRestriction pairs a facet IRI such as xsd:minInclusive with its value
type FacetRestriction struct {
	Facet string
	Value *rdf.Literal
}

func (*Class) classExpression()               {}
func (*IntersectionOf) classExpression()      {}
func (*UnionOf) classExpression()             {}
func (*ComplementOf) classExpression()        {}
func (*OneOf) classExpression()               {}
func (*Restriction) classExpression()         {}
func (*DatatypeRestriction) classExpression() {}

// Count returns a pointer to n, for the cardinality fields of Restriction.
func Count(n int) *int {
	return &n
}

// Qualifier returns the qualifying class or data range of a restriction
func (r *Restriction) Qualifier() ClassExpression {
	if r.OnClass != nil {
		return r.OnClass
	}
	return r.OnDataRange
}

// PropertyKind tells object, data and annotation properties apart.
type PropertyKind int

const (
	PropertyUnknown PropertyKind = iota
	ObjectProperty
	DataProperty
	AnnotationProperty
)

func (k PropertyKind) String() string {
	switch k {
	case ObjectProperty:
		return "ObjectProperty"
	case DataProperty:
		return "DataProperty"
	case AnnotationProperty:
		return "AnnotationProperty"
	default:
		return "Unknown"
	}
}

// PropertyExpression is a named property or the inverse of an object property.
type PropertyExpression struct {
	IRI     string
	Inverse bool
	Kind    PropertyKind
}

// NewProperty creates a property expression of unknown kind
func NewProperty(iri string) *PropertyExpression {
	return &PropertyExpression{IRI: iri}
}

// Annotation is an annotation property assertion on an entity or ontology
type Annotation struct {
	Property string
	Value    rdf.Term
}

// Fact is a (possibly negative) property assertion of an individual
type Fact struct {
	Property *PropertyExpression
	Value    rdf.Term
	Negative bool
}

// Characteristic is a property characteristic such as Functional.
type Characteristic string

const (
	Functional        Characteristic = "Functional"
	InverseFunctional Characteristic = "InverseFunctional"
	Transitive        Characteristic = "Transitive"
	Symmetric         Characteristic = "Symmetric"
	Asymmetric        Characteristic = "Asymmetric"
	Reflexive         Characteristic = "Reflexive"
	Irreflexive       Characteristic = "Irreflexive"
)

var characteristicTypes = map[Characteristic]*rdf.NamedNode{
	Functional:        rdf.OWLFunctionalProperty,
	InverseFunctional: rdf.OWLInverseFunctionalProperty,
	Transitive:        rdf.OWLTransitiveProperty,
	Symmetric:         rdf.OWLSymmetricProperty,
	Asymmetric:        rdf.OWLAsymmetricProperty,
	Reflexive:         rdf.OWLReflexiveProperty,
	Irreflexive:       rdf.OWLIrreflexiveProperty,
}

// IRI returns the OWL class of property with the characteristic
func (c Characteristic) IRI() (string, bool) {
	n, ok := characteristicTypes[c]
	if !ok {
		return "", false
	}
	return n.IRI, true
}

// Frame is an entity description of an ontology document.
type Frame interface {
	// Subject returns the described entity
	Subject() rdf.Term
}

// ClassFrame describes a class
type ClassFrame struct {
	IRI             string
	Annotations     []*Annotation
	SubClassOf      []ClassExpression
	EquivalentTo    []ClassExpression
	DisjointWith    []ClassExpression
	DisjointUnionOf []ClassExpression
}

// ObjectPropertyFrame describes an object property
type ObjectPropertyFrame struct {
	IRI             string
	Annotations     []*Annotation
	Domain          []ClassExpression
	Range           []ClassExpression
	Characteristics []Characteristic
	SubPropertyOf   []*PropertyExpression
	EquivalentTo    []*PropertyExpression
	DisjointWith    []*PropertyExpression
	InverseOf       []*PropertyExpression
}

// DataPropertyFrame describes a data property
type DataPropertyFrame struct {
	IRI           string
	Annotations   []*Annotation
	Domain        []ClassExpression
	Range         []ClassExpression
	Functional    bool
	SubPropertyOf []*PropertyExpression
	EquivalentTo  []*PropertyExpression
	DisjointWith  []*PropertyExpression
}

// AnnotationPropertyFrame describes an annotation property
type AnnotationPropertyFrame struct {
	IRI           string
	Annotations   []*Annotation
	Domain        []string
	Range         []string
	SubPropertyOf []string
}

// IndividualFrame describes a named or anonymous individual
type IndividualFrame struct {
	Individual    rdf.Term
	Annotations   []*Annotation
	Types         []ClassExpression
	Facts         []*Fact
	SameAs        []rdf.Term
	DifferentFrom []rdf.Term
}

// DatatypeFrame describes a datatype
type DatatypeFrame struct {
	IRI          string
	Annotations  []*Annotation
	EquivalentTo []ClassExpression
}

func (f *ClassFrame) Subject() rdf.Term              { return rdf.NewNamedNode(f.IRI) }
func (f *ObjectPropertyFrame) Subject() rdf.Term     { return rdf.NewNamedNode(f.IRI) }
func (f *DataPropertyFrame) Subject() rdf.Term       { return rdf.NewNamedNode(f.IRI) }
func (f *AnnotationPropertyFrame) Subject() rdf.Term { return rdf.NewNamedNode(f.IRI) }
func (f *IndividualFrame) Subject() rdf.Term         { return f.Individual }
func (f *DatatypeFrame) Subject() rdf.Term           { return rdf.NewNamedNode(f.IRI) }

// Ontology is the header of an ontology document plus its frames
type Ontology struct {
	IRI         string
	VersionIRI  string
	Imports     []string
	Annotations []*Annotation
	Frames      []Frame
}

// MarkDataRange flags ce and its nested boolean operands and enumerations as
// a data range. Named classes and datatype restrictions are left alone.
func MarkDataRange(ce ClassExpression) {
	switch c := ce.(type) {
	case *IntersectionOf:
		c.Data = true
		for _, op := range c.Operands {
			MarkDataRange(op)
		}
	case *UnionOf:
		c.Data = true
		for _, op := range c.Operands {
			MarkDataRange(op)
		}
	case *ComplementOf:
		c.Data = true
		MarkDataRange(c.Operand)
	case *OneOf:
		c.Data = true
	}
}
