package ast

import (
	"fmt"
	"strings"
)

// Query is a SELECT, CONSTRUCT, ASK or DESCRIBE query
type Query interface {
	Node
	Common() *QueryCommon
}

// QueryCommon holds the parts shared by every query form
type QueryCommon struct {
	Prologue  *Prologue
	Dataset   *Dataset
	Where     Graph
	Modifiers []SolutionModifier
}

// Common returns the shared part of a query
func (c *QueryCommon) Common() *QueryCommon {
	return c
}

// SelectQuery represents a SELECT query. An empty projection means SELECT *.
type SelectQuery struct {
	QueryCommon
	Distinct   bool
	Reduced    bool
	Projection []*Variable
}

// ConstructQuery represents a CONSTRUCT query
type ConstructQuery struct {
	QueryCommon
	Template []GraphNode
}

// AskQuery represents an ASK query
type AskQuery struct {
	QueryCommon
}

// DescribeQuery represents a DESCRIBE query. No resources means DESCRIBE *.
type DescribeQuery struct {
	QueryCommon
	Resources []GraphNode
}

func (*SelectQuery) node()    {}
func (*ConstructQuery) node() {}
func (*AskQuery) node()       {}
func (*DescribeQuery) node()  {}

// PrefixDecl is a PREFIX declaration
type PrefixDecl struct {
	Prefix string
	IRI    string
}

// Key returns the deduplication key "prefix:<iri>"
func (d *PrefixDecl) Key() string {
	return d.Prefix + ":<" + d.IRI + ">"
}

// Prologue holds the BASE and PREFIX declarations of a query
type Prologue struct {
	Base     string
	Prefixes []*PrefixDecl
}

// NewPrologue creates an empty prologue
func NewPrologue() *Prologue {
	return &Prologue{}
}

// AddPrefix appends a declaration unless the same prefix/IRI pair is already
// declared. It reports whether the declaration was added.
func (p *Prologue) AddPrefix(prefix, iri string) bool {
	decl := &PrefixDecl{Prefix: prefix, IRI: iri}
	key := decl.Key()
	for _, d := range p.Prefixes {
		if d.Key() == key {
			return false
		}
	}
	p.Prefixes = append(p.Prefixes, decl)
	return true
}

// Merge appends the declarations of other that are not yet present,
// keeping first-seen order.
func (p *Prologue) Merge(other *Prologue) {
	if other == nil {
		return
	}
	if p.Base == "" {
		p.Base = other.Base
	}
	for _, d := range other.Prefixes {
		p.AddPrefix(d.Prefix, d.IRI)
	}
}

// Namespace returns the IRI bound to prefix; later declarations win.
func (p *Prologue) Namespace(prefix string) (string, bool) {
	for i := len(p.Prefixes) - 1; i >= 0; i-- {
		if p.Prefixes[i].Prefix == prefix {
			return p.Prefixes[i].IRI, true
		}
	}
	return "", false
}

// Prefix returns the first prefix declared for namespace
func (p *Prologue) Prefix(namespace string) (string, bool) {
	for _, d := range p.Prefixes {
		if d.IRI == namespace {
			if ns, _ := p.Namespace(d.Prefix); ns == namespace {
				return d.Prefix, true
			}
		}
	}
	return "", false
}

// Resolve expands a prefixed name such as "rdf:type"
func (p *Prologue) Resolve(qname string) (string, error) {
	idx := strings.Index(qname, ":")
	if idx < 0 {
		return "", fmt.Errorf("not a prefixed name: %q", qname)
	}
	ns, ok := p.Namespace(qname[:idx])
	if !ok {
		return "", fmt.Errorf("undefined prefix: '%s'", qname[:idx])
	}
	return ns + qname[idx+1:], nil
}

// Dataset holds FROM and FROM NAMED graph IRIs
type Dataset struct {
	Default []string
	Named   []string
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{}
}

// AddDefault adds a FROM graph unless already present
func (d *Dataset) AddDefault(iri string) {
	d.Default = appendUnique(d.Default, iri)
}

// AddNamed adds a FROM NAMED graph unless already present
func (d *Dataset) AddNamed(iri string) {
	d.Named = appendUnique(d.Named, iri)
}

// Union adds every graph of other
func (d *Dataset) Union(other *Dataset) {
	if other == nil {
		return
	}
	for _, iri := range other.Default {
		d.AddDefault(iri)
	}
	for _, iri := range other.Named {
		d.AddNamed(iri)
	}
}

// IsEmpty reports whether no graphs are declared
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Default) == 0 && len(d.Named) == 0
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
