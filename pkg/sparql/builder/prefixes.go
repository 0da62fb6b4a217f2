package builder

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
)

// isolatePrefixes renames the prefixes of other that target binds to a
// different namespace, in other's prologue and in every prefixed name of
// other, so that merging the prologues keeps the meaning of both queries.
func (b *Builder) isolatePrefixes(op string, target *ast.Prologue, other ast.Query) {
	prologue := other.Common().Prologue
	if prologue == nil || target == nil {
		return
	}

	renamed := make(map[string]string)
	for _, d := range prologue.Prefixes {
		if _, done := renamed[d.Prefix]; done {
			continue
		}
		ns, bound := target.Namespace(d.Prefix)
		otherNS, _ := prologue.Namespace(d.Prefix)
		if !bound || ns == otherNS {
			continue
		}
		fresh := freshPrefix(d.Prefix, target, prologue)
		renamed[d.Prefix] = fresh
		b.diagnose(op, "prefix %s: is bound to <%s> but the merged query binds it to <%s>; the merged query uses %s: instead",
			d.Prefix, ns, otherNS, fresh)
	}
	if len(renamed) == 0 {
		return
	}

	for _, d := range prologue.Prefixes {
		if fresh, ok := renamed[d.Prefix]; ok {
			d.Prefix = fresh
		}
	}
	ast.Walk(other, struct{}{}, func(n ast.Node, ctx struct{}) (struct{}, bool) {
		switch t := n.(type) {
		case *ast.QName:
			if fresh, ok := renamed[t.Prefix]; ok {
				t.Prefix = fresh
			}
		case *ast.FunctionCall:
			// casts such as xsd:integer(?x) name their function by prefixed name
			prefix, local, ok := strings.Cut(t.Name, ":")
			if ok && !strings.HasPrefix(t.Name, "<") {
				if fresh, ok := renamed[prefix]; ok {
					t.Name = fresh + ":" + local
				}
			}
		}
		return ctx, false
	})
}

// freshPrefix returns prefix followed by the smallest number N such that the
// result is declared in none of prologues
func freshPrefix(prefix string, prologues ...*ast.Prologue) string {
	base := prefix
	if base == "" {
		base = "ns"
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		declared := false
		for _, p := range prologues {
			if _, ok := p.Namespace(candidate); ok {
				declared = true
				break
			}
		}
		if !declared {
			return candidate
		}
	}
}
