package store

import (
	"sort"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// Binding represents a solution mapping from variable names to terms
type Binding struct {
	Vars map[string]rdf.Term
}

// NewBinding creates a new empty binding
func NewBinding() *Binding {
	return &Binding{Vars: make(map[string]rdf.Term)}
}

// Clone creates a copy of the binding
func (b *Binding) Clone() *Binding {
	newBinding := NewBinding()
	for k, v := range b.Vars {
		newBinding.Vars[k] = v
	}
	return newBinding
}

// Merge returns the union of b and other, or nil if they bind a shared
// variable to different terms
func (b *Binding) Merge(other *Binding) *Binding {
	result := b.Clone()
	for name, term := range other.Vars {
		if existing, ok := result.Vars[name]; ok {
			if !existing.Equals(term) {
				return nil
			}
			continue
		}
		result.Vars[name] = term
	}
	return result
}

// Compatible reports whether shared variables are bound to equal terms
func (b *Binding) Compatible(other *Binding) bool {
	for name, term := range b.Vars {
		if o, ok := other.Vars[name]; ok && !term.Equals(o) {
			return false
		}
	}
	return true
}

// Key returns a canonical string for the binding, independent of map order
func (b *Binding) Key() string {
	parts := make([]string, 0, len(b.Vars))
	for name, term := range b.Vars {
		parts = append(parts, name+"="+term.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// BindingIterator iterates over solution mappings
type BindingIterator interface {
	Next() bool
	Binding() *Binding
	Close() error
}
