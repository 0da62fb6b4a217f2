package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/internal/storage"
	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/sparql/builder"
	"github.com/aleksaelezovic/komma/pkg/sparql/parser"
	"github.com/aleksaelezovic/komma/pkg/store"
)

const people = `
<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .
<http://example.org/alice> <http://example.org/name> "Alice" .
<http://example.org/alice> <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/bob> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .
<http://example.org/bob> <http://example.org/name> "Bob" .
<http://example.org/bob> <http://example.org/age> "25"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://example.org/carol> <http://example.org/name> "Carol" .
<http://example.org/carol> <http://example.org/knows> _:x .
_:x <http://example.org/name> "Unknown" .
`

const prefix = "PREFIX ex: <http://example.org/>\n"

// graphs returns the test data as an in-memory graph and as a badger store
func graphs(t *testing.T) map[string]Graph {
	t.Helper()
	triples, err := rdf.ParseNTriples(people)
	require.NoError(t, err)

	memory := rdf.NewGraph()
	for _, triple := range triples {
		require.NoError(t, memory.InsertTriple(triple))
	}

	ts, err := storage.OpenTripleStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ts.Close() })
	require.NoError(t, ts.InsertTriples(triples))

	return map[string]Graph{"memory": memory, "badger": ts}
}

func execute(t *testing.T, g Graph, query string) QueryResult {
	t.Helper()
	q, err := parser.Parse(prefix + query)
	require.NoError(t, err)
	result, err := NewExecutor(g).Execute(q)
	require.NoError(t, err)
	return result
}

// column renders the values of one variable, "" for unbound
func column(t *testing.T, result QueryResult, name string) []string {
	t.Helper()
	sr, ok := result.(*SelectResult)
	require.True(t, ok, "expected a SELECT result, got %T", result)
	values := make([]string, 0, len(sr.Bindings))
	for _, b := range sr.Bindings {
		if term, ok := b.Vars[name]; ok {
			values = append(values, term.String())
		} else {
			values = append(values, "")
		}
	}
	return values
}

func TestExecute_Select(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		variable string
		want     []string
	}{
		{
			name:     "join and order",
			query:    `SELECT ?name WHERE { ?p a ex:Person ; ex:name ?name } ORDER BY ?name`,
			variable: "name",
			want:     []string{`"Alice"`, `"Bob"`},
		},
		{
			name:     "descending order",
			query:    `SELECT ?p WHERE { ?p ex:age ?age } ORDER BY DESC(?age)`,
			variable: "p",
			want:     []string{"<http://example.org/alice>", "<http://example.org/bob>"},
		},
		{
			name:     "filter",
			query:    `SELECT ?p WHERE { ?p ex:age ?age FILTER(?age > 26) }`,
			variable: "p",
			want:     []string{"<http://example.org/alice>"},
		},
		{
			name:     "optional",
			query:    `SELECT ?friend WHERE { ?p ex:name ?n OPTIONAL { ?p ex:knows ?friend } } ORDER BY ?n`,
			variable: "friend",
			want:     []string{"<http://example.org/bob>", "", "_:x", ""},
		},
		{
			name:     "optional with inner filter",
			query:    `SELECT ?friend WHERE { ?p ex:name ?n OPTIONAL { ?p ex:knows ?friend FILTER isIRI(?friend) } } ORDER BY ?n`,
			variable: "friend",
			want:     []string{"<http://example.org/bob>", "", "", ""},
		},
		{
			name:     "union",
			query:    `SELECT ?v WHERE { { ?p ex:age ?v } UNION { ?p a ?v } } ORDER BY ?v`,
			variable: "v",
			want: []string{
				"<http://example.org/Person>",
				"<http://example.org/Person>",
				`"25"^^<http://www.w3.org/2001/XMLSchema#integer>`,
				`"30"^^<http://www.w3.org/2001/XMLSchema#integer>`,
			},
		},
		{
			name:     "minus",
			query:    `SELECT ?p WHERE { ?p a ex:Person MINUS { ?p ex:knows ?f } }`,
			variable: "p",
			want:     []string{"<http://example.org/bob>"},
		},
		{
			name:     "not exists",
			query:    `SELECT ?n WHERE { ?p ex:name ?n FILTER NOT EXISTS { ?p a ex:Person } } ORDER BY ?n`,
			variable: "n",
			want:     []string{`"Carol"`, `"Unknown"`},
		},
		{
			name:     "blank node in pattern",
			query:    `SELECT ?n WHERE { ?p ex:knows [ ex:name ?n ] } ORDER BY ?n`,
			variable: "n",
			want:     []string{`"Bob"`, `"Unknown"`},
		},
		{
			name:     "repeated variable",
			query:    `SELECT ?p WHERE { ?p ex:knows ?p }`,
			variable: "p",
			want:     []string{},
		},
		{
			name:     "distinct",
			query:    `SELECT DISTINCT ?type WHERE { ?p a ?type }`,
			variable: "type",
			want:     []string{"<http://example.org/Person>"},
		},
		{
			name:     "offset and limit",
			query:    `SELECT ?n WHERE { ?p ex:name ?n } ORDER BY ?n LIMIT 2 OFFSET 1`,
			variable: "n",
			want:     []string{`"Bob"`, `"Carol"`},
		},
	}

	for name, g := range graphs(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				result := execute(t, g, tt.query)
				assert.Equal(t, tt.want, column(t, result, tt.variable))
			})
		}
	}
}

func TestExecute_SelectStarVariables(t *testing.T) {
	g := graphs(t)["memory"]
	result := execute(t, g, `SELECT * WHERE { ?p ex:knows ?f . ?f ex:name ?n }`)

	sr := result.(*SelectResult)
	assert.Equal(t, []string{"p", "f", "n"}, sr.Variables)
	require.Len(t, sr.Bindings, 2)
	for _, b := range sr.Bindings {
		assert.Len(t, b.Vars, 3)
	}
}

func TestExecute_Ask(t *testing.T) {
	for name, g := range graphs(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, &AskResult{Result: true}, execute(t, g, `ASK { ex:alice ex:knows ex:bob }`))
			assert.Equal(t, &AskResult{Result: false}, execute(t, g, `ASK { ex:bob ex:knows ?anyone }`))
		})
	}
}

func TestExecute_Construct(t *testing.T) {
	for name, g := range graphs(t) {
		t.Run(name, func(t *testing.T) {
			result := execute(t, g, `CONSTRUCT { ?p ex:profile [ ex:label ?n ] . ?p ex:friend ?f }
WHERE { ?p a ex:Person ; ex:name ?n OPTIONAL { ?p ex:knows ?f } }`)

			cr, ok := result.(*ConstructResult)
			require.True(t, ok)
			// two profiles with labels plus alice's friend; bob has no friend
			require.Len(t, cr.Triples, 5)

			profiles := make(map[string]struct{})
			for _, triple := range cr.Triples {
				if triple.Predicate.Equals(rdf.NewNamedNode("http://example.org/profile")) {
					blank, ok := triple.Object.(*rdf.BlankNode)
					require.True(t, ok)
					profiles[blank.ID] = struct{}{}
				}
			}
			assert.Len(t, profiles, 2, "template blank nodes are fresh per solution")
		})
	}
}

func TestExecute_ConstructDeduplicates(t *testing.T) {
	g := graphs(t)["memory"]
	result := execute(t, g, `CONSTRUCT { ?type a ex:Class } WHERE { ?p a ?type }`)
	assert.Len(t, result.(*ConstructResult).Triples, 1)
}

func TestExecute_Describe(t *testing.T) {
	for name, g := range graphs(t) {
		t.Run(name, func(t *testing.T) {
			result := execute(t, g, `DESCRIBE ex:carol`)
			cr := result.(*ConstructResult)
			assert.Len(t, cr.Triples, 3, "carol's triples plus the blank node she knows")

			result = execute(t, g, `DESCRIBE ?p WHERE { ?p ex:age 25 }`)
			cr = result.(*ConstructResult)
			assert.Len(t, cr.Triples, 3)
			for _, triple := range cr.Triples {
				assert.Equal(t, "<http://example.org/bob>", triple.Subject.String())
			}
		})
	}
}

func TestExecute_NamedGraphUnsupported(t *testing.T) {
	q, err := parser.Parse(`SELECT * WHERE { GRAPH ?g { ?s ?p ?o } }`)
	require.NoError(t, err)
	_, err = NewExecutor(rdf.NewGraph()).Execute(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRAPH patterns are not supported")
}

func TestExecute_UndefinedPrefix(t *testing.T) {
	// Rewritten queries can carry prefixed names the prologue lacks
	subject := ast.NewVariable("s")
	ast.AddProperty(subject, &ast.QName{Prefix: "foaf", Local: "name"}, ast.NewVariable("o"))
	q := &ast.SelectQuery{QueryCommon: ast.QueryCommon{
		Prologue: ast.NewPrologue(),
		Where:    &ast.GraphPattern{Patterns: []ast.Graph{subject}},
	}}

	_, err := NewExecutor(rdf.NewGraph()).Execute(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined prefix")
}

func TestExecute_FetchTypes(t *testing.T) {
	b, err := builder.Parse(prefix + `SELECT ?p ?f WHERE { ?p ex:knows ?f }`)
	require.NoError(t, err)
	query := b.FetchTypes().Build()

	for name, g := range graphs(t) {
		t.Run(name, func(t *testing.T) {
			result, err := NewExecutor(g).Execute(query)
			require.NoError(t, err)

			var got []string
			for _, triple := range result.(*ConstructResult).Triples {
				got = append(got, triple.String())
			}
			assert.ElementsMatch(t, []string{
				"<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .",
				"<http://example.org/bob> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .",
			}, got)
		})
	}
}

func TestExecute_Optional(t *testing.T) {
	main, err := builder.Parse(prefix + `SELECT ?p WHERE { ?p a ex:Person }`)
	require.NoError(t, err)
	names, err := builder.Parse(prefix + `SELECT ?who ?label WHERE { ?who ex:name ?label }`)
	require.NoError(t, err)

	query := main.OptionalBuilder("http://example.org/name", "label", "who", names).ToConstructQuery().Build()

	g := graphs(t)["badger"]
	result, err := NewExecutor(g).Execute(query)
	require.NoError(t, err)
	var got []string
	for _, triple := range result.(*ConstructResult).Triples {
		got = append(got, triple.String())
	}
	assert.ElementsMatch(t, []string{
		`<http://example.org/alice> <http://example.org/name> "Alice" .`,
		`<http://example.org/bob> <http://example.org/name> "Bob" .`,
	}, got)
}

var _ Graph = (*store.TripleStore)(nil)
var _ Graph = (*rdf.Graph)(nil)
