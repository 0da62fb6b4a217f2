package rdf

import (
	"fmt"
	"strings"
)

// NamespaceResolver looks up the prefix bound to a namespace IRI.
type NamespaceResolver interface {
	Prefix(namespace string) (string, bool)
}

// Namespaces is an ordered prefix table. The empty prefix denotes the
// default namespace (":local").
type Namespaces struct {
	order    []string
	byPrefix map[string]string
	byNS     map[string]string
}

// NewNamespaces creates an empty prefix table
func NewNamespaces() *Namespaces {
	return &Namespaces{
		byPrefix: make(map[string]string),
		byNS:     make(map[string]string),
	}
}

// DefaultNamespaces returns a table with rdf, rdfs, owl and xsd bound.
func DefaultNamespaces() *Namespaces {
	ns := NewNamespaces()
	ns.Bind("rdf", RDFNamespace)
	ns.Bind("rdfs", RDFSNamespace)
	ns.Bind("owl", OWLNamespace)
	ns.Bind("xsd", XSDNamespace)
	return ns
}

// Bind maps prefix to namespace, replacing an earlier binding of the same prefix.
func (n *Namespaces) Bind(prefix, namespace string) {
	if old, ok := n.byPrefix[prefix]; ok {
		if n.byNS[old] == prefix {
			delete(n.byNS, old)
		}
	} else {
		n.order = append(n.order, prefix)
	}
	n.byPrefix[prefix] = namespace
	// first prefix bound to a namespace wins for compaction
	if _, ok := n.byNS[namespace]; !ok {
		n.byNS[namespace] = prefix
	}
}

// Namespace returns the namespace bound to prefix
func (n *Namespaces) Namespace(prefix string) (string, bool) {
	ns, ok := n.byPrefix[prefix]
	return ns, ok
}

// Prefix implements NamespaceResolver
func (n *Namespaces) Prefix(namespace string) (string, bool) {
	p, ok := n.byNS[namespace]
	return p, ok
}

// Len returns the number of bound prefixes
func (n *Namespaces) Len() int {
	return len(n.order)
}

// Each calls fn for every binding in bind order.
func (n *Namespaces) Each(fn func(prefix, namespace string)) {
	for _, p := range n.order {
		fn(p, n.byPrefix[p])
	}
}

// Merge binds every prefix of other that is not yet bound here.
func (n *Namespaces) Merge(other *Namespaces) {
	if other == nil {
		return
	}
	other.Each(func(prefix, namespace string) {
		if _, ok := n.byPrefix[prefix]; !ok {
			n.Bind(prefix, namespace)
		}
	})
}

// Clone returns an independent copy of the table
func (n *Namespaces) Clone() *Namespaces {
	c := NewNamespaces()
	n.Each(c.Bind)
	return c
}

// Expand resolves a prefixed name such as "owl:Thing".
func (n *Namespaces) Expand(qname string) (string, error) {
	idx := strings.Index(qname, ":")
	if idx < 0 {
		return "", fmt.Errorf("not a prefixed name: %q", qname)
	}
	ns, ok := n.byPrefix[qname[:idx]]
	if !ok {
		return "", fmt.Errorf("undefined prefix: '%s'", qname[:idx])
	}
	return ns + qname[idx+1:], nil
}

// Compact returns the prefixed form of iri, if a bound namespace and a
// usable local name exist.
func Compact(resolver NamespaceResolver, iri string) (string, bool) {
	if resolver == nil {
		return "", false
	}
	ns, local := SplitIRI(iri)
	if ns == "" || !IsLocalName(local) {
		return "", false
	}
	prefix, ok := resolver.Prefix(ns)
	if !ok {
		return "", false
	}
	return prefix + ":" + local, true
}

// SplitIRI splits iri after the last '#', '/' or ':'.
func SplitIRI(iri string) (namespace, local string) {
	idx := strings.LastIndexAny(iri, "#/:")
	if idx < 0 {
		return "", iri
	}
	return iri[:idx+1], iri[idx+1:]
}

// IsLocalName reports whether s can be written as the local part of a
// prefixed name without escaping.
func IsLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNameChar(s[i]) {
			return false
		}
	}
	return s[len(s)-1] != '.' && s[0] != '-' && s[0] != '.'
}

// IsNameChar reports whether ch may appear in a prefix or local name.
func IsNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') || ch == '_' || ch == '-' || ch == '.' || ch >= 0x80
}
