package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
)

func TestParse_Select(t *testing.T) {
	q, err := Parse(`
		PREFIX ex: <http://example.org/>
		SELECT DISTINCT ?s ?o
		FROM <http://example.org/g>
		WHERE {
			?s a ex:Person ; ex:name ?o .
			OPTIONAL { ?s ex:age ?age }
			FILTER (?age > 18)
		}
		ORDER BY DESC(?o)
		LIMIT 10 OFFSET 5`)
	require.NoError(t, err)

	sq, ok := q.(*ast.SelectQuery)
	require.True(t, ok)
	assert.True(t, sq.Distinct)
	require.Len(t, sq.Projection, 2)
	assert.Equal(t, "o", sq.Projection[1].Name)
	assert.Equal(t, []string{"http://example.org/g"}, sq.Dataset.Default)

	where := sq.Where.(*ast.GraphPattern)
	require.Len(t, where.Patterns, 2)
	subject := where.Patterns[0].(*ast.Variable)
	require.Len(t, subject.Properties.Patterns, 2)
	assert.True(t, ast.IsType(subject.Properties.Patterns[0].Predicate, sq.Prologue))
	assert.Equal(t, &ast.QName{Prefix: "ex", Local: "Person"}, subject.Properties.Patterns[0].Object)
	assert.IsType(t, &ast.OptionalGraph{}, where.Patterns[1])

	require.Len(t, where.Filters, 1)
	filter := where.Filters[0].(*ast.BinaryExpression)
	assert.Equal(t, ast.OpGreaterThan, filter.Operator)

	require.Len(t, sq.Modifiers, 3)
	orderBy := sq.Modifiers[0].(*ast.OrderBy)
	assert.True(t, orderBy.Conditions[0].Descending)
	assert.Equal(t, &ast.Limit{Count: 10}, sq.Modifiers[1])
	assert.Equal(t, &ast.Offset{Count: 5}, sq.Modifiers[2])
}

func TestParse_PropertyListShorthand(t *testing.T) {
	q, err := Parse(`SELECT * { ?s <http://example.org/p> ?o ; <http://example.org/q> ?r , ?t ; . }`)
	require.NoError(t, err)

	sq := q.(*ast.SelectQuery)
	assert.Empty(t, sq.Projection)
	where := sq.Where.(*ast.GraphPattern)
	require.Len(t, where.Patterns, 1)
	subject := where.Patterns[0].(*ast.Variable)
	require.Len(t, subject.Properties.Patterns, 3)
	assert.Equal(t, "t", subject.Properties.Patterns[2].Object.(*ast.Variable).Name)
}

func TestParse_BlankNodePropertyList(t *testing.T) {
	q, err := Parse(`ASK { ?s <http://example.org/p> [ <http://example.org/q> "x"@en ] . [] <http://example.org/r> _:b1 }`)
	require.NoError(t, err)

	where := q.Common().Where.(*ast.GraphPattern)
	require.Len(t, where.Patterns, 2)
	object := where.Patterns[0].(*ast.Variable).Properties.Patterns[0].Object.(*ast.BNode)
	assert.Equal(t, "", object.Label)
	literal := object.Properties.Patterns[0].Object.(*ast.Literal)
	assert.Equal(t, "x", literal.Value)
	assert.Equal(t, "en", literal.Language)

	anon := where.Patterns[1].(*ast.BNode)
	assert.Equal(t, "b1", anon.Properties.Patterns[0].Object.(*ast.BNode).Label)
}

func TestParse_GraphForms(t *testing.T) {
	q, err := Parse(`SELECT ?s WHERE {
		{ ?s <http://example.org/p> 1 } UNION { ?s <http://example.org/p> 2.5 } UNION { ?s <http://example.org/p> 1e3 }
		MINUS { ?s <http://example.org/q> false }
		GRAPH ?g { ?s ?p ?o }
	}`)
	require.NoError(t, err)

	where := q.Common().Where.(*ast.GraphPattern)
	require.Len(t, where.Patterns, 3)
	union := where.Patterns[0].(*ast.UnionGraph)
	assert.Len(t, union.Alternatives, 3)
	assert.IsType(t, &ast.MinusGraph{}, where.Patterns[1])
	named := where.Patterns[2].(*ast.NamedGraph)
	assert.Equal(t, "g", named.Name.(*ast.Variable).Name)

	decimal := union.Alternatives[1].(*ast.GraphPattern).Patterns[0].(*ast.Variable).Properties.Patterns[0].Object.(*ast.Literal)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#decimal", decimal.Datatype.(*ast.IriRef).IRI)
}

func TestParse_ConstructWhere(t *testing.T) {
	q, err := Parse(`CONSTRUCT WHERE { ?s <http://example.org/p> ?o }`)
	require.NoError(t, err)

	cq := q.(*ast.ConstructQuery)
	require.Len(t, cq.Template, 1)
	assert.NotSame(t, cq.Template[0], cq.Where.(*ast.GraphPattern).Patterns[0])

	_, err = Parse(`CONSTRUCT WHERE { ?s ?p ?o FILTER(?o) }`)
	assert.Error(t, err)
}

func TestParse_Describe(t *testing.T) {
	q, err := Parse(`DESCRIBE <http://example.org/a> ?x WHERE { ?x ?p ?o }`)
	require.NoError(t, err)
	dq := q.(*ast.DescribeQuery)
	assert.Len(t, dq.Resources, 2)

	q, err = Parse(`DESCRIBE <http://example.org/a>`)
	require.NoError(t, err)
	assert.Nil(t, q.Common().Where)
}

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		expected string
	}{
		{"precedence", `FILTER (?a || ?b && ?c)`, "(?a || (?b && ?c))"},
		{"arithmetic", `FILTER (?a + ?b * 2 >= -3)`, "((?a + (?b * 2)) >= -3)"},
		{"builtin", `FILTER isIRI(?t)`, "isIRI(?t)"},
		{"regex", `FILTER regex(str(?n), "^a", "i")`, `regex(str(?n), "^a", "i")`},
		{"not in", `FILTER (?x NOT IN (1, 2))`, "(?x NOT IN (1, 2))"},
		{"negation", `FILTER (!bound(?x))`, "!bound(?x)"},
		{"iri function", `FILTER (<http://example.org/f>(?x))`, "<http://example.org/f>(?x)"},
		{"prefixed function", `FILTER (xsd:integer(?x) = 1)`, "(xsd:integer(?x) = 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse("PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>\nASK { ?s ?p ?o " + tt.filter + " }")
			require.NoError(t, err)
			where := q.Common().Where.(*ast.GraphPattern)
			require.Len(t, where.Filters, 1)
			assert.Equal(t, tt.expected, ast.FormatExpression(where.Filters[0]))
		})
	}
}

func TestParse_Exists(t *testing.T) {
	q, err := Parse(`ASK { ?s ?p ?o FILTER NOT EXISTS { ?s a ?t } }`)
	require.NoError(t, err)
	exists := q.Common().Where.(*ast.GraphPattern).Filters[0].(*ast.ExistsExpression)
	assert.True(t, exists.Not)
	assert.Len(t, exists.Pattern.Patterns, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		column   int
		expected string
		message  string
	}{
		{
			name:     "missing object",
			input:    "SELECT ?x WHERE { ?x ?p }",
			line:     1,
			column:   25,
			expected: "variable",
		},
		{
			name:     "unknown query form",
			input:    "INSERT DATA {}",
			line:     1,
			column:   1,
			expected: "SELECT",
		},
		{
			name:    "undefined prefix",
			input:   "SELECT ?x WHERE {\n  ?x foaf:name ?n }",
			line:    2,
			column:  6,
			message: "undefined prefix: 'foaf'",
		},
		{
			name:     "unclosed group",
			input:    "ASK { ?s ?p ?o ",
			line:     1,
			column:   16,
			expected: "'}'",
		},
		{
			name:     "trailing input",
			input:    "ASK {} garbage",
			line:     1,
			column:   8,
			expected: "end of input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, q)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.column, pe.Column)
			if tt.expected != "" {
				assert.Contains(t, pe.Expected, tt.expected)
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, pe.Message)
			}
		})
	}
}

func TestParse_FormatRoundTrip(t *testing.T) {
	queries := []string{
		`PREFIX ex: <http://example.org/>
SELECT ?s ?o WHERE { ?s a ex:Person ; ex:name ?o . OPTIONAL { ?s ex:age ?age } FILTER (?age > 18) } ORDER BY DESC(?o) LIMIT 10`,
		`CONSTRUCT { ?s <http://example.org/p> [ <http://example.org/q> "a\"b" ] } WHERE { { ?s ?p ?o } UNION { ?o ?p ?s } MINUS { ?s a <http://example.org/T> } }`,
		`ASK FROM NAMED <http://example.org/g> { GRAPH <http://example.org/g> { ?s ?p "x"@en , "3"^^<http://example.org/dt> } FILTER NOT EXISTS { ?s ?q true } }`,
		`DESCRIBE ?s WHERE { ?s ?p 1.5 } ORDER BY ?s ASC(?p)`,
	}

	for _, text := range queries {
		q, err := Parse(text)
		require.NoError(t, err, text)

		formatted := ast.Format(q)
		again, err := Parse(formatted)
		require.NoError(t, err, formatted)
		assert.Equal(t, formatted, ast.Format(again))
	}
}

func TestParse_FormatOutput(t *testing.T) {
	q, err := Parse(`PREFIX ex: <http://example.org/>
SELECT ?s ?o WHERE { ?s a ex:Person ; ex:name ?o . OPTIONAL { ?s ex:age ?age } FILTER (?age > 18) } ORDER BY DESC(?o) LIMIT 10`)
	require.NoError(t, err)

	expected := `PREFIX ex: <http://example.org/>
SELECT ?s ?o
WHERE {
  ?s a ex:Person ; ex:name ?o .
  OPTIONAL {
    ?s ex:age ?age .
  }
  FILTER (?age > 18)
}
ORDER BY DESC(?o)
LIMIT 10
`
	assert.Equal(t, expected, ast.Format(q))
}
