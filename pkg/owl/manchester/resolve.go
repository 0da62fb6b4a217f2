package manchester

import (
	"strings"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// PropertyKinds looks up the kind of a property declared outside the
// parsed text, e.g. in a store. *owl.Decoder implements it.
type PropertyKinds interface {
	PropertyKind(iri string) (owl.PropertyKind, error)
}

// Resolver assigns property kinds to parsed expressions. Manchester syntax
// writes object and data restrictions alike, so the parser leaves kinds
// unknown and keeps qualifying fillers in OnClass; the resolver moves them to
// OnDataRange once a property is known to be a data property.
//
// Kinds are looked up in declarations first, then in the PropertyKinds
// lookup, then among the builtin annotation properties. A property none of
// them knows is inferred from the shape of its filler.
type Resolver struct {
	declared  map[string]owl.PropertyKind
	datatypes map[string]bool
	kinds     PropertyKinds
}

// NewResolver creates a resolver; kinds may be nil.
func NewResolver(kinds PropertyKinds) *Resolver {
	return &Resolver{
		declared:  make(map[string]owl.PropertyKind),
		datatypes: make(map[string]bool),
		kinds:     kinds,
	}
}

// Declare records the kind of a property
func (r *Resolver) Declare(iri string, kind owl.PropertyKind) {
	r.declared[iri] = kind
}

func (r *Resolver) declare(frames ...owl.Frame) {
	for _, frame := range frames {
		switch f := frame.(type) {
		case *owl.ObjectPropertyFrame:
			r.Declare(f.IRI, owl.ObjectProperty)
		case *owl.DataPropertyFrame:
			r.Declare(f.IRI, owl.DataProperty)
		case *owl.AnnotationPropertyFrame:
			r.Declare(f.IRI, owl.AnnotationProperty)
		case *owl.DatatypeFrame:
			r.datatypes[f.IRI] = true
		}
	}
}

// Kind returns the known kind of iri or PropertyUnknown
func (r *Resolver) Kind(iri string) owl.PropertyKind {
	if kind, ok := r.declared[iri]; ok {
		return kind
	}
	if r.kinds != nil {
		if kind, err := r.kinds.PropertyKind(iri); err == nil && kind != owl.PropertyUnknown {
			return kind
		}
	}
	if owl.IsBuiltinAnnotationProperty(iri) {
		return owl.AnnotationProperty
	}
	return owl.PropertyUnknown
}

// ClassExpression resolves the restrictions nested in ce
func (r *Resolver) ClassExpression(ce owl.ClassExpression) {
	switch c := ce.(type) {
	case *owl.IntersectionOf:
		for _, op := range c.Operands {
			r.ClassExpression(op)
		}
	case *owl.UnionOf:
		for _, op := range c.Operands {
			r.ClassExpression(op)
		}
	case *owl.ComplementOf:
		r.ClassExpression(c.Operand)
	case *owl.Restriction:
		r.restriction(c)
	}
}

func (r *Resolver) restriction(c *owl.Restriction) {
	if c.OnProperty == nil {
		return
	}
	for _, filler := range []owl.ClassExpression{c.AllValuesFrom, c.SomeValuesFrom, c.OnClass} {
		if filler != nil {
			r.ClassExpression(filler)
		}
	}

	p := c.OnProperty
	if p.Kind == owl.PropertyUnknown {
		p.Kind = r.Kind(p.IRI)
	}
	if p.Kind == owl.PropertyUnknown {
		p.Kind = r.inferKind(c)
	}
	if p.Kind != owl.DataProperty {
		return
	}

	for _, filler := range []owl.ClassExpression{c.AllValuesFrom, c.SomeValuesFrom} {
		if filler != nil {
			owl.MarkDataRange(filler)
		}
	}
	if c.OnClass != nil {
		c.OnDataRange, c.OnClass = c.OnClass, nil
		owl.MarkDataRange(c.OnDataRange)
	}
}

func (r *Resolver) inferKind(c *owl.Restriction) owl.PropertyKind {
	if _, ok := c.HasValue.(*rdf.Literal); ok {
		return owl.DataProperty
	}
	for _, filler := range []owl.ClassExpression{c.AllValuesFrom, c.SomeValuesFrom, c.OnClass} {
		if filler != nil && r.isDataRange(filler) {
			return owl.DataProperty
		}
	}
	return owl.ObjectProperty
}

// isDataRange guesses from its shape whether ce denotes literals
func (r *Resolver) isDataRange(ce owl.ClassExpression) bool {
	switch c := ce.(type) {
	case *owl.Class:
		return r.isDatatype(c.IRI)
	case *owl.DatatypeRestriction:
		return true
	case *owl.OneOf:
		if c.Data {
			return true
		}
		for _, m := range c.Members {
			if _, ok := m.(*rdf.Literal); !ok {
				return false
			}
		}
		return len(c.Members) > 0
	case *owl.ComplementOf:
		return c.Data || r.isDataRange(c.Operand)
	case *owl.IntersectionOf:
		return c.Data || r.anyDataRange(c.Operands)
	case *owl.UnionOf:
		return c.Data || r.anyDataRange(c.Operands)
	}
	return false
}

func (r *Resolver) anyDataRange(operands []owl.ClassExpression) bool {
	for _, op := range operands {
		if r.isDataRange(op) {
			return true
		}
	}
	return false
}

func (r *Resolver) isDatatype(iri string) bool {
	switch {
	case r.datatypes[iri]:
		return true
	case strings.HasPrefix(iri, rdf.XSDNamespace):
		return true
	case iri == rdf.RDFSNamespace+"Literal":
		return true
	case iri == rdf.RDFNamespace+"PlainLiteral", iri == rdf.RDFNamespace+"langString",
		iri == rdf.RDFNamespace+"XMLLiteral":
		return true
	}
	return false
}

// Frame resolves the expressions and property references of a frame
func (r *Resolver) Frame(frame owl.Frame) {
	switch f := frame.(type) {
	case *owl.ClassFrame:
		r.classExpressions(f.SubClassOf, f.EquivalentTo, f.DisjointWith, f.DisjointUnionOf)
	case *owl.ObjectPropertyFrame:
		r.classExpressions(f.Domain, f.Range)
		r.properties(owl.ObjectProperty, f.SubPropertyOf, f.EquivalentTo, f.DisjointWith, f.InverseOf)
	case *owl.DataPropertyFrame:
		r.classExpressions(f.Domain)
		for _, dr := range f.Range {
			owl.MarkDataRange(dr)
		}
		r.properties(owl.DataProperty, f.SubPropertyOf, f.EquivalentTo, f.DisjointWith)
	case *owl.IndividualFrame:
		r.classExpressions(f.Types)
		for _, fact := range f.Facts {
			r.fact(fact)
		}
	case *owl.DatatypeFrame:
		for _, dr := range f.EquivalentTo {
			owl.MarkDataRange(dr)
		}
	}
}

func (r *Resolver) fact(f *owl.Fact) {
	p := f.Property
	if p.Kind == owl.PropertyUnknown {
		p.Kind = r.Kind(p.IRI)
	}
	if p.Kind != owl.PropertyUnknown {
		return
	}
	if _, ok := f.Value.(*rdf.Literal); ok {
		p.Kind = owl.DataProperty
	} else {
		p.Kind = owl.ObjectProperty
	}
}

func (r *Resolver) classExpressions(lists ...[]owl.ClassExpression) {
	for _, list := range lists {
		for _, ce := range list {
			r.ClassExpression(ce)
		}
	}
}

// properties gives the kind of the frame's own property to the properties
// it is related to, unless they are known otherwise.
func (r *Resolver) properties(kind owl.PropertyKind, lists ...[]*owl.PropertyExpression) {
	for _, list := range lists {
		for _, p := range list {
			if p.Kind != owl.PropertyUnknown {
				continue
			}
			if p.Kind = r.Kind(p.IRI); p.Kind == owl.PropertyUnknown {
				p.Kind = kind
			}
		}
	}
}

// Ontology declares the properties and datatypes of all frames, then
// resolves each frame.
func (r *Resolver) Ontology(o *owl.Ontology) {
	r.declare(o.Frames...)
	for _, frame := range o.Frames {
		r.Frame(frame)
	}
}
