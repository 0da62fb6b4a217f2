package builder

import (
	"strconv"

	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
)

const typeVariablePrefix = "preloadedType_"

// FetchTypes makes every template node without an rdf:type pattern fetch its
// types. For each such node a fresh ?preloadedType_N is added to the template
// and OPTIONAL { ?node a ?preloadedType_N . FILTER isIRI(?preloadedType_N) }
// is inserted into the graph pattern that mentions the node inside the most
// OPTIONALs, ties broken by nesting depth.
func (b *Builder) FetchTypes() *Builder {
	const op = "fetchTypes"

	b.ToConstructQuery()
	cq, ok := b.query.(*ast.ConstructQuery)
	if !ok {
		return b
	}

	candidates, typed := templateCandidates(cq)
	for _, c := range candidates {
		if typed[c.key] {
			continue
		}

		target := placement(cq, c.key)
		if target == nil {
			if _, isVar := c.node.(*ast.Variable); isVar {
				b.diagnose(op, "%s does not occur in the WHERE clause", ast.FormatTerm(c.node))
				continue
			}
			target = rootPattern(cq)
		}

		typeVar := b.mintTypeVariable()

		if c.entry != nil {
			ast.AddProperty(c.entry, ast.NewIriRef(ast.RDFTypeIRI), ast.NewVariable(typeVar))
		} else {
			entry := ast.CopyNode(c.node, false)
			ast.AddProperty(entry, ast.NewIriRef(ast.RDFTypeIRI), ast.NewVariable(typeVar))
			cq.Template = append(cq.Template, entry)
		}

		subject := ast.CopyNode(c.node, false)
		ast.AddProperty(subject, ast.NewIriRef(ast.RDFTypeIRI), ast.NewVariable(typeVar))
		target.Patterns = append(target.Patterns, &ast.OptionalGraph{
			Graph: &ast.GraphPattern{
				Patterns: []ast.Graph{subject},
				Filters: []ast.Expression{
					&ast.FunctionCall{Name: "isIRI", Arguments: []ast.Expression{ast.NewVariable(typeVar)}},
				},
			},
		})
	}

	return b
}

func (b *Builder) mintTypeVariable() string {
	for i := 1; ; i++ {
		name := typeVariablePrefix + strconv.Itoa(i)
		if _, used := b.usedVarNames[name]; !used {
			b.usedVarNames[name] = struct{}{}
			return name
		}
	}
}

type candidate struct {
	key   string
	node  ast.GraphNode
	entry ast.GraphNode // first top-level template entry for key, if any
}

// templateCandidates lists the template subjects and the variable or IRI
// objects in template order, and the keys that already have an rdf:type
// other than the result marker.
func templateCandidates(cq *ast.ConstructQuery) ([]*candidate, map[string]bool) {
	var candidates []*candidate
	byKey := make(map[string]*candidate)
	typed := make(map[string]bool)
	seen := make(map[ast.GraphNode]struct{})

	var visit func(n ast.GraphNode, topLevel bool)
	visit = func(n ast.GraphNode, topLevel bool) {
		key := nodeKey(n, cq.Prologue)
		if key != "" {
			c, ok := byKey[key]
			if !ok {
				c = &candidate{key: key, node: n}
				byKey[key] = c
				candidates = append(candidates, c)
			}
			if topLevel && c.entry == nil {
				c.entry = n
			}
		}

		if _, done := seen[n]; done {
			return
		}
		seen[n] = struct{}{}

		pl := n.PropertyList()
		if pl == nil {
			return
		}
		for _, pp := range pl.Patterns {
			if ast.IsType(pp.Predicate, cq.Prologue) {
				if !isResultMarker(pp, cq.Prologue) && key != "" {
					typed[key] = true
				}
				continue
			}
			visit(pp.Object, false)
		}
	}

	for _, n := range cq.Template {
		visit(n, true)
	}
	return candidates, typed
}

type placementContext struct {
	depth     int
	optionals int
	excluded  bool
}

// placement finds the graph pattern whose own triples mention key inside the
// most OPTIONALs, then at the greatest depth; the first one found wins ties.
// Patterns below MINUS and EXISTS do not bind and are ignored.
func placement(cq *ast.ConstructQuery, key string) *ast.GraphPattern {
	var best *ast.GraphPattern
	var bestCtx placementContext

	ast.Walk(cq.Where, placementContext{}, func(n ast.Node, ctx placementContext) (placementContext, bool) {
		switch t := n.(type) {
		case *ast.GraphPattern:
			if !ctx.excluded && mentions(t, key, cq.Prologue) {
				if best == nil || ctx.optionals > bestCtx.optionals ||
					ctx.optionals == bestCtx.optionals && ctx.depth > bestCtx.depth {
					best, bestCtx = t, ctx
				}
			}
			ctx.depth++
		case *ast.OptionalGraph:
			ctx.optionals++
		case *ast.MinusGraph, *ast.ExistsExpression:
			ctx.excluded = true
		}
		return ctx, false
	})

	return best
}

// mentions reports whether a triples block directly inside gp has key as
// subject or object
func mentions(gp *ast.GraphPattern, key string, prologue *ast.Prologue) bool {
	for _, g := range gp.Patterns {
		if n, ok := g.(ast.GraphNode); ok && blockMentions(n, key, prologue) {
			return true
		}
	}
	return false
}

func blockMentions(n ast.GraphNode, key string, prologue *ast.Prologue) bool {
	if nodeKey(n, prologue) == key {
		return true
	}
	pl := n.PropertyList()
	if pl == nil {
		return false
	}
	for _, pp := range pl.Patterns {
		if nodeKey(pp.Object, prologue) == key {
			return true
		}
		if b, ok := pp.Object.(*ast.BNode); ok && b.Label == "" && blockMentions(b, key, prologue) {
			return true
		}
	}
	return false
}

func rootPattern(cq *ast.ConstructQuery) *ast.GraphPattern {
	if gp, ok := cq.Where.(*ast.GraphPattern); ok {
		return gp
	}
	gp := &ast.GraphPattern{}
	if cq.Where != nil {
		gp.Patterns = append(gp.Patterns, cq.Where)
	}
	cq.Where = gp
	return gp
}

// nodeKey identifies variables by name and IRIs by their expanded form;
// other nodes have no key
func nodeKey(n ast.GraphNode, prologue *ast.Prologue) string {
	if v, ok := n.(*ast.Variable); ok {
		return "?" + v.Name
	}
	if iri, ok := ast.ResolveIRI(n, prologue); ok {
		return "<" + iri + ">"
	}
	return ""
}
