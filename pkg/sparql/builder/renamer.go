package builder

import (
	"strconv"

	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
)

// VarRenamer renames the variables of a query so that they do not collide
// with names reserved elsewhere. Names found in the explicit mapping are
// renamed to their mapped value; every other name gets a fresh one.
type VarRenamer struct {
	used     map[string]struct{}
	mapping  map[string]string
	assigned map[string]struct{}
}

// NewVarRenamer creates a renamer that avoids the names in used. The
// mapping may be nil.
func NewVarRenamer(used map[string]struct{}, mapping map[string]string) *VarRenamer {
	r := &VarRenamer{
		used:     used,
		mapping:  make(map[string]string),
		assigned: make(map[string]struct{}),
	}
	if r.used == nil {
		r.used = make(map[string]struct{})
	}
	for from, to := range mapping {
		r.mapping[from] = to
		r.assigned[to] = struct{}{}
	}
	return r
}

// Rename renames every variable below n in place. Each *Variable instance is
// renamed exactly once, even when it is shared by several parents.
func (r *VarRenamer) Rename(n ast.Node) {
	vars := ast.Variables(n)

	own := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		own[v.Name] = struct{}{}
	}

	originals := make([]string, len(vars))
	for i, v := range vars {
		originals[i] = v.Name
		if _, ok := r.mapping[v.Name]; !ok {
			fresh := r.fresh(v.Name, own)
			r.mapping[v.Name] = fresh
			r.assigned[fresh] = struct{}{}
		}
	}

	for i, v := range vars {
		v.Name = r.mapping[originals[i]]
		r.used[v.Name] = struct{}{}
	}
}

// NameOf returns the name a variable originally called name was renamed to
func (r *VarRenamer) NameOf(name string) (string, bool) {
	renamed, ok := r.mapping[name]
	return renamed, ok
}

// Mapping returns the original-to-new name mapping
func (r *VarRenamer) Mapping() map[string]string {
	out := make(map[string]string, len(r.mapping))
	for k, v := range r.mapping {
		out[k] = v
	}
	return out
}

// fresh appends 1, 2, ... to name until the candidate is neither used, nor a
// name of the renamed query, nor already handed out.
func (r *VarRenamer) fresh(name string, own map[string]struct{}) string {
	for i := 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if _, taken := r.used[candidate]; taken {
			continue
		}
		if _, taken := own[candidate]; taken {
			continue
		}
		if _, taken := r.assigned[candidate]; taken {
			continue
		}
		return candidate
	}
}
