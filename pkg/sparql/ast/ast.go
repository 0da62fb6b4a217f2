// Package ast defines the query tree produced by the SPARQL parser and
// rewritten by the query builder.
package ast

import (
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// RDFTypeIRI is the predicate written as "a" in triple patterns
const RDFTypeIRI = rdf.RDFNamespace + "type"

// Node is implemented by every element of a query tree
type Node interface {
	node()
}

// Graph is an element of a WHERE clause
type Graph interface {
	Node
	graphNode()
}

// Expression represents a FILTER or ORDER BY expression
type Expression interface {
	Node
	expressionNode()
}

// GraphNode is anything that can appear as subject or object of a triple
// pattern. A GraphNode with a property list is a triples block of its own.
type GraphNode interface {
	Graph
	Expression
	PropertyList() *PropertyList
	SetPropertyList(pl *PropertyList)
}

// Variable represents a query variable. Identity is by name within a query.
type Variable struct {
	Name       string
	Properties *PropertyList
}

// IriRef represents a full IRI written as <iri>
type IriRef struct {
	IRI        string
	Properties *PropertyList
}

// QName represents a prefixed name as written in the query
type QName struct {
	Prefix     string
	Local      string
	Properties *PropertyList
}

// BNode represents a blank node. An empty label denotes an anonymous node ([ ]).
type BNode struct {
	Label      string
	Properties *PropertyList
}

// Literal represents an RDF literal. Datatype is an *IriRef or *QName.
type Literal struct {
	Value      string
	Language   string
	Datatype   GraphNode
	Properties *PropertyList
}

// PropertyPattern is a predicate/object pair attached to a subject
type PropertyPattern struct {
	Predicate GraphNode
	Object    GraphNode
}

// PropertyList is the ordered list of patterns attached to a subject
type PropertyList struct {
	Patterns []*PropertyPattern
}

func (*Variable) node()        {}
func (*IriRef) node()          {}
func (*QName) node()           {}
func (*BNode) node()           {}
func (*Literal) node()         {}
func (*PropertyPattern) node() {}
func (*PropertyList) node()    {}

func (*Variable) graphNode() {}
func (*IriRef) graphNode()   {}
func (*QName) graphNode()    {}
func (*BNode) graphNode()    {}
func (*Literal) graphNode()  {}

func (*Variable) expressionNode() {}
func (*IriRef) expressionNode()   {}
func (*QName) expressionNode()    {}
func (*BNode) expressionNode()    {}
func (*Literal) expressionNode()  {}

func (v *Variable) PropertyList() *PropertyList { return v.Properties }
func (i *IriRef) PropertyList() *PropertyList   { return i.Properties }
func (q *QName) PropertyList() *PropertyList    { return q.Properties }
func (b *BNode) PropertyList() *PropertyList    { return b.Properties }
func (l *Literal) PropertyList() *PropertyList  { return l.Properties }

func (v *Variable) SetPropertyList(pl *PropertyList) { v.Properties = pl }
func (i *IriRef) SetPropertyList(pl *PropertyList)   { i.Properties = pl }
func (q *QName) SetPropertyList(pl *PropertyList)    { q.Properties = pl }
func (b *BNode) SetPropertyList(pl *PropertyList)    { b.Properties = pl }
func (l *Literal) SetPropertyList(pl *PropertyList)  { l.Properties = pl }

// NewIriRef creates an IRI reference node
func NewIriRef(iri string) *IriRef {
	return &IriRef{IRI: iri}
}

// NewVariable creates a variable node
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

// AddProperty appends a predicate/object pair to the property list of subject,
// creating the list if needed.
func AddProperty(subject, predicate, object GraphNode) *PropertyPattern {
	pl := subject.PropertyList()
	if pl == nil {
		pl = &PropertyList{}
		subject.SetPropertyList(pl)
	}
	pp := &PropertyPattern{Predicate: predicate, Object: object}
	pl.Patterns = append(pl.Patterns, pp)
	return pp
}

// HasProperties reports whether n carries at least one property pattern
func HasProperties(n GraphNode) bool {
	pl := n.PropertyList()
	return pl != nil && len(pl.Patterns) > 0
}

// GraphPattern is a group { ... } of sub-graphs and filters
type GraphPattern struct {
	Patterns []Graph
	Filters  []Expression
}

// OptionalGraph wraps a graph in OPTIONAL
type OptionalGraph struct {
	Graph Graph
}

// UnionGraph joins alternatives with UNION
type UnionGraph struct {
	Alternatives []Graph
}

// NamedGraph restricts a graph to GRAPH name { ... }
type NamedGraph struct {
	Name  GraphNode
	Graph Graph
}

// MinusGraph removes solutions matching MINUS { ... }
type MinusGraph struct {
	Graph Graph
}

func (*GraphPattern) node()  {}
func (*OptionalGraph) node() {}
func (*UnionGraph) node()    {}
func (*NamedGraph) node()    {}
func (*MinusGraph) node()    {}

func (*GraphPattern) graphNode()  {}
func (*OptionalGraph) graphNode() {}
func (*UnionGraph) graphNode()    {}
func (*NamedGraph) graphNode()    {}
func (*MinusGraph) graphNode()    {}

// Operator represents an operator in expressions
type Operator int

const (
	// Logical operators
	OpOr Operator = iota
	OpAnd
	OpNot

	// Comparison operators
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual

	// Arithmetic operators
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPlus
	OpMinus
)

var operatorSymbols = map[Operator]string{
	OpOr:                 "||",
	OpAnd:                "&&",
	OpNot:                "!",
	OpEqual:              "=",
	OpNotEqual:           "!=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpAdd:                "+",
	OpSubtract:           "-",
	OpMultiply:           "*",
	OpDivide:             "/",
	OpPlus:               "+",
	OpMinus:              "-",
}

func (o Operator) String() string {
	return operatorSymbols[o]
}

// BinaryExpression represents a binary operation
type BinaryExpression struct {
	Left     Expression
	Operator Operator
	Right    Expression
}

// UnaryExpression represents a unary operation
type UnaryExpression struct {
	Operator Operator
	Operand  Expression
}

// FunctionCall represents a built-in or IRI function call. Name is kept as
// written (isIRI, REGEX, <http://...>, xsd:integer).
type FunctionCall struct {
	Name      string
	Arguments []Expression
}

// InExpression represents expr [NOT] IN (values)
type InExpression struct {
	Not        bool
	Expression Expression
	Values     []Expression
}

// ExistsExpression represents [NOT] EXISTS { pattern }
type ExistsExpression struct {
	Not     bool
	Pattern *GraphPattern
}

func (*BinaryExpression) node() {}
func (*UnaryExpression) node()  {}
func (*FunctionCall) node()     {}
func (*InExpression) node()     {}
func (*ExistsExpression) node() {}

func (*BinaryExpression) expressionNode() {}
func (*UnaryExpression) expressionNode()  {}
func (*FunctionCall) expressionNode()     {}
func (*InExpression) expressionNode()     {}
func (*ExistsExpression) expressionNode() {}

// SolutionModifier is ORDER BY, LIMIT or OFFSET
type SolutionModifier interface {
	Node
	modifierNode()
}

// OrderBy represents an ORDER BY clause
type OrderBy struct {
	Conditions []*OrderCondition
}

// OrderCondition represents one ORDER BY key
type OrderCondition struct {
	Expression Expression
	Descending bool
}

// Limit represents a LIMIT clause
type Limit struct {
	Count int
}

// Offset represents an OFFSET clause
type Offset struct {
	Count int
}

func (*OrderBy) node()        {}
func (*OrderCondition) node() {}
func (*Limit) node()          {}
func (*Offset) node()         {}

func (*OrderBy) modifierNode() {}
func (*Limit) modifierNode()   {}
func (*Offset) modifierNode()  {}

// IsType reports whether predicate denotes rdf:type, resolving prefixed
// names against prologue.
func IsType(predicate GraphNode, prologue *Prologue) bool {
	iri, ok := ResolveIRI(predicate, prologue)
	return ok && iri == RDFTypeIRI
}

// ResolveIRI returns the full IRI of an *IriRef or of a *QName whose prefix is
// declared in prologue.
func ResolveIRI(n GraphNode, prologue *Prologue) (string, bool) {
	switch t := n.(type) {
	case *IriRef:
		return t.IRI, true
	case *QName:
		if prologue == nil {
			return "", false
		}
		ns, ok := prologue.Namespace(t.Prefix)
		if !ok {
			return "", false
		}
		return ns + t.Local, true
	}
	return "", false
}
