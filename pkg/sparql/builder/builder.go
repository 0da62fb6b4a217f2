// Package builder composes and rewrites query trees: SELECT to CONSTRUCT
// conversion, merging of optional sub-queries and type-fetch augmentation.
package builder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/sparql/parser"
)

// ResultNodeIRI marks template nodes that correspond to the results of the
// outer query. It is stripped by Build.
const ResultNodeIRI = "urn:komma:Result"

// Diagnostic records a builder call that could not be applied completely.
// The query stays structurally valid.
type Diagnostic struct {
	Operation string
	Message   string
}

func (d Diagnostic) String() string {
	return d.Operation + ": " + d.Message
}

// Builder rewrites a working query through a sequence of calls. It is not
// safe for concurrent use.
type Builder struct {
	query        ast.Query
	resultNodes  []ast.GraphNode
	usedVarNames map[string]struct{}
	diagnostics  []Diagnostic
}

// New creates a builder that takes ownership of q
func New(q ast.Query) *Builder {
	b := &Builder{
		query:        q,
		usedVarNames: make(map[string]struct{}),
	}
	for _, name := range ast.VariableNames(q) {
		b.usedVarNames[name] = struct{}{}
	}
	b.resultNodes = collectResultNodes(q)
	return b
}

// Parse parses query text into a new builder
func Parse(text string) (*Builder, error) {
	q, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return New(q), nil
}

// Query returns the working query, result markers included
func (b *Builder) Query() ast.Query {
	return b.query
}

// Diagnostics returns the inconsistencies recorded so far
func (b *Builder) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(b.diagnostics))
	copy(out, b.diagnostics)
	return out
}

// ResultVariables returns the names of the variable result nodes in
// template order
func (b *Builder) ResultVariables() []string {
	var names []string
	for _, n := range b.resultNodes {
		if v, ok := n.(*ast.Variable); ok {
			names = append(names, v.Name)
		}
	}
	return names
}

// Build returns a copy of the working query with the result markers removed
// and template entries left without properties dropped.
func (b *Builder) Build() ast.Query {
	q := ast.CopyQuery(b.query)
	cq, ok := q.(*ast.ConstructQuery)
	if !ok {
		return q
	}

	seen := make(map[ast.GraphNode]struct{})
	var template []ast.GraphNode
	for _, n := range cq.Template {
		stripResultMarkers(n, cq.Prologue, seen)
		if ast.HasProperties(n) {
			template = append(template, n)
		}
	}
	cq.Template = template
	return cq
}

// String renders the built query
func (b *Builder) String() string {
	return ast.Format(b.Build())
}

func (b *Builder) diagnose(operation, format string, args ...any) {
	d := Diagnostic{Operation: operation, Message: fmt.Sprintf(format, args...)}
	b.diagnostics = append(b.diagnostics, d)
	slog.Debug("query builder", "operation", operation, "message", d.Message)
}

// ToConstructQuery converts a SELECT query into a CONSTRUCT query whose
// template tags every projected variable (or every used variable for
// SELECT *) as a result node. CONSTRUCT queries are left unchanged.
func (b *Builder) ToConstructQuery() *Builder {
	switch q := b.query.(type) {
	case *ast.ConstructQuery:
		return b
	case *ast.SelectQuery:
		var names []string
		if len(q.Projection) == 0 {
			names = ast.VariableNames(q.Where)
		} else {
			for _, v := range q.Projection {
				names = append(names, v.Name)
			}
		}

		construct := &ast.ConstructQuery{QueryCommon: q.QueryCommon}
		seen := make(map[string]struct{})
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			node := ast.NewVariable(name)
			tagResult(node)
			construct.Template = append(construct.Template, node)
		}

		b.query = construct
		b.resultNodes = append([]ast.GraphNode(nil), construct.Template...)
	default:
		b.diagnose("toConstructQuery", "cannot convert %T into a CONSTRUCT query", b.query)
	}
	return b
}

// OptionalBuilder merges the working query of other; see Optional.
func (b *Builder) OptionalBuilder(property, variable, param string, other *Builder) *Builder {
	return b.Optional(property, variable, param, other.query)
}

// Optional merges other into the working query as an OPTIONAL pattern.
//
// The variables of other are renamed so that they do not collide with the
// variables of this query. If param is set, the variable of other with that
// name is bound to the first result node instead. If property is set, the
// variable named by variable (or every template/projection entry of other
// if variable is empty) is attached to each result node via property.
func (b *Builder) Optional(property, variable, param string, other ast.Query) *Builder {
	const op = "optional"

	b.ToConstructQuery()
	cq, ok := b.query.(*ast.ConstructQuery)
	if !ok {
		return b
	}

	other = ast.CopyQuery(other)
	if other == nil {
		b.diagnose(op, "nothing to merge")
		return b
	}
	oc := other.Common()

	mapping := make(map[string]string)
	if param != "" {
		switch {
		case len(b.resultNodes) == 0:
			b.diagnose(op, "parameter ?%s cannot be bound: the query has no result node", param)
		default:
			// Bound by position: only the first result node is considered
			if v, ok := b.resultNodes[0].(*ast.Variable); ok {
				mapping[param] = v.Name
			} else {
				b.diagnose(op, "parameter ?%s cannot be bound: first result node %s is not a variable",
					param, ast.FormatTerm(b.resultNodes[0]))
			}
		}
		if len(b.resultNodes) > 1 {
			slog.Debug("query builder: parameter bound to first of several result nodes",
				"param", param, "resultNodes", len(b.resultNodes))
		}
	}

	renamer := NewVarRenamer(b.usedVarNames, mapping)
	renamer.Rename(other)

	if cq.Prologue == nil {
		cq.Prologue = ast.NewPrologue()
	}
	if cq.Dataset == nil {
		cq.Dataset = ast.NewDataset()
	}
	b.isolatePrefixes(op, cq.Prologue, other)
	cq.Prologue.Merge(oc.Prologue)
	cq.Dataset.Union(oc.Dataset)

	if property != "" {
		predicate, err := b.propertyNode(property)
		if err != nil {
			b.diagnose(op, "invalid property %q: %v", property, err)
		} else {
			targets := b.attachTargets(op, variable, renamer, other)
			if len(b.resultNodes) == 0 && len(targets) > 0 {
				b.diagnose(op, "no result node to attach %s to", property)
			}
			for _, r := range b.resultNodes {
				for _, t := range targets {
					ast.AddProperty(r, ast.CopyNode(predicate, false), ast.CopyNode(t, false))
				}
			}
		}
	}

	if oq, ok := other.(*ast.ConstructQuery); ok {
		seen := make(map[ast.GraphNode]struct{})
		for _, n := range oq.Template {
			stripResultMarkers(n, cq.Prologue, seen)
			if ast.HasProperties(n) {
				cq.Template = append(cq.Template, n)
			}
		}
	}

	if len(oc.Modifiers) > 0 {
		b.diagnose(op, "solution modifiers of the merged query are ignored")
	}

	var optional *ast.OptionalGraph
	if og, ok := oc.Where.(*ast.OptionalGraph); ok {
		optional = og
	} else {
		where := oc.Where
		if where == nil {
			where = &ast.GraphPattern{}
		}
		optional = &ast.OptionalGraph{Graph: where}
	}

	if cq.Where == nil {
		cq.Where = &ast.GraphPattern{Patterns: []ast.Graph{optional}}
	} else {
		cq.Where = &ast.GraphPattern{Patterns: []ast.Graph{cq.Where, optional}}
	}

	return b
}

// attachTargets returns the nodes of other that are attached to the result
// nodes: the named variable, or the top-level template/projection entries.
func (b *Builder) attachTargets(op, variable string, renamer *VarRenamer, other ast.Query) []ast.GraphNode {
	if variable != "" {
		variable = strings.TrimLeft(variable, "?$")
		name, ok := renamer.NameOf(variable)
		if !ok {
			b.diagnose(op, "variable ?%s does not occur in the merged query", variable)
			return nil
		}
		return []ast.GraphNode{ast.NewVariable(name)}
	}

	var targets []ast.GraphNode
	switch q := other.(type) {
	case *ast.ConstructQuery:
		targets = append(targets, q.Template...)
	case *ast.SelectQuery:
		if len(q.Projection) == 0 {
			for _, name := range ast.VariableNames(q.Where) {
				targets = append(targets, ast.NewVariable(name))
			}
		}
		for _, v := range q.Projection {
			targets = append(targets, v)
		}
	default:
		b.diagnose(op, "%T has no template or projection to attach", other)
	}
	return targets
}

// propertyNode turns "<iri>", "prefix:local" or a bare IRI into a predicate
func (b *Builder) propertyNode(property string) (ast.GraphNode, error) {
	if strings.HasPrefix(property, "<") && strings.HasSuffix(property, ">") {
		return ast.NewIriRef(property[1 : len(property)-1]), nil
	}
	prologue := b.query.Common().Prologue
	if idx := strings.Index(property, ":"); idx >= 0 && prologue != nil {
		if _, ok := prologue.Namespace(property[:idx]); ok {
			return &ast.QName{Prefix: property[:idx], Local: property[idx+1:]}, nil
		}
	}
	if ns, _ := rdf.SplitIRI(property); ns == "" {
		return nil, fmt.Errorf("not an IRI")
	}
	return ast.NewIriRef(property), nil
}

func newResultNode() *ast.IriRef {
	return ast.NewIriRef(ResultNodeIRI)
}

func tagResult(n ast.GraphNode) {
	ast.AddProperty(n, ast.NewIriRef(ast.RDFTypeIRI), newResultNode())
}

func isResultMarker(pp *ast.PropertyPattern, prologue *ast.Prologue) bool {
	if !ast.IsType(pp.Predicate, prologue) {
		return false
	}
	iri, ok := ast.ResolveIRI(pp.Object, prologue)
	return ok && iri == ResultNodeIRI
}

func isResultNode(n ast.GraphNode, prologue *ast.Prologue) bool {
	pl := n.PropertyList()
	if pl == nil {
		return false
	}
	for _, pp := range pl.Patterns {
		if isResultMarker(pp, prologue) {
			return true
		}
	}
	return false
}

func collectResultNodes(q ast.Query) []ast.GraphNode {
	cq, ok := q.(*ast.ConstructQuery)
	if !ok {
		return nil
	}
	var nodes []ast.GraphNode
	for _, n := range cq.Template {
		if isResultNode(n, cq.Prologue) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// stripResultMarkers removes the result tags from n and the nodes nested in
// its property list
func stripResultMarkers(n ast.GraphNode, prologue *ast.Prologue, seen map[ast.GraphNode]struct{}) {
	if _, done := seen[n]; done {
		return
	}
	seen[n] = struct{}{}

	pl := n.PropertyList()
	if pl == nil {
		return
	}
	kept := pl.Patterns[:0]
	for _, pp := range pl.Patterns {
		if isResultMarker(pp, prologue) {
			continue
		}
		stripResultMarkers(pp.Object, prologue, seen)
		kept = append(kept, pp)
	}
	pl.Patterns = kept
	if len(kept) == 0 {
		n.SetPropertyList(nil)
	}
}
