package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/komma/pkg/owl/manchester"
)

const personDocument = `Prefix: : <http://example.org/>

ObjectProperty: :knows

Class: :Person
  SubClassOf: :knows some :Person
`

const peopleTriples = `<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .
<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/bob> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .
`

func TestManchesterFormat_Description(t *testing.T) {
	config := writeFile(t, "komma.yaml", "prefixes:\n  ex: http://example.org/\n")

	out, err := execute(t, "ex:A and (ex:B or ex:C)", "--config", config, "manchester", "format", "--description")
	require.NoError(t, err)
	assert.Equal(t, "ex:A and (ex:B or ex:C)\n", out)
}

func TestManchesterFormat_ParseError(t *testing.T) {
	_, err := execute(t, "owl:Thing and", "manchester", "format", "--description")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var parseErr *manchester.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
}

func TestManchesterFormat_ParseErrorJSON(t *testing.T) {
	out, err := execute(t, "owl:Thing and", "--format", "json", "manchester", "format", "--description")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1, resp.Error.Line)
}

func TestManchesterLoadAndDescribe(t *testing.T) {
	db := t.TempDir()
	doc := writeFile(t, "people.omn", personDocument)

	out, err := execute(t, "", "--db", db, "manchester", "load", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 2 frame(s)")

	out, err = execute(t, "", "--db", db, "describe", ":Person")
	require.NoError(t, err)
	assert.Equal(t, "Class: :Person\n  SubClassOf: :knows some :Person\n", out)

	out, err = execute(t, "", "--db", db, "describe", "<http://example.org/knows>")
	require.NoError(t, err)
	assert.Equal(t, "ObjectProperty: :knows\n", out)

	_, err = execute(t, "", "--db", db, "describe", ":Nobody")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err = execute(t, "", "--db", db, "store", "prefixes")
	require.NoError(t, err)
	assert.Contains(t, out, ": <http://example.org/>")
}

func TestManchesterLoad_NTriples(t *testing.T) {
	out, err := execute(t, personDocument, "manchester", "load", "--ntriples", "-")
	require.NoError(t, err)
	assert.Contains(t, out,
		"<http://example.org/knows> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#ObjectProperty> .")
	assert.Contains(t, out, "<http://example.org/Person> <http://www.w3.org/2000/01/rdf-schema#subClassOf> _:")
}

func TestStoreImportExport(t *testing.T) {
	db := t.TempDir()
	file := writeFile(t, "people.nt", peopleTriples)

	out, err := execute(t, "", "--db", db, "store", "import", file)
	require.NoError(t, err)
	assert.Equal(t, "imported 3 triple(s); store holds 3\n", out)

	out, err = execute(t, "", "--db", db, "store", "export")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.ElementsMatch(t, strings.Split(strings.TrimSpace(peopleTriples), "\n"), lines)
}

func TestStoreImport_JSON(t *testing.T) {
	out, err := execute(t, peopleTriples, "--format", "json", "store", "import", "-")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   importSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, importSummary{Imported: 3, Total: 3}, resp.Data)
}

func TestStoreImport_Invalid(t *testing.T) {
	_, err := execute(t, "<http://example.org/a> <http://example.org/b> .", "store", "import", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSparqlConstruct(t *testing.T) {
	out, err := execute(t, "", "sparql", "construct", `SELECT ?s WHERE { ?s a <http://example.org/Person> }`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "CONSTRUCT {"), out)
	assert.Contains(t, out, "WHERE {\n  ?s a <http://example.org/Person> .\n}\n")
	assert.NotContains(t, out, "urn:komma:Result")
}

func TestSparqlRun(t *testing.T) {
	db := t.TempDir()
	file := writeFile(t, "people.nt", peopleTriples)
	_, err := execute(t, "", "--db", db, "store", "import", file)
	require.NoError(t, err)

	out, err := execute(t, "", "--db", db, "sparql", "fetch-types", "--run",
		`SELECT ?f WHERE { ?p <http://example.org/knows> ?f }`)
	require.NoError(t, err)
	assert.Equal(t, "<http://example.org/bob> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .\n", out)

	out, err = execute(t, "", "--db", db, "sparql", "query", `ASK { <http://example.org/alice> <http://example.org/knows> ?x }`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, "", "--db", db, "sparql", "query",
		`SELECT ?p WHERE { ?p a <http://example.org/Person> } ORDER BY ?p`)
	require.NoError(t, err)
	assert.Contains(t, out, "| p                    |")
	assert.Contains(t, out, "<http://example.org/alice>")
	assert.Contains(t, out, "<http://example.org/bob>")
}

func TestSparqlOptional(t *testing.T) {
	out, err := execute(t, "", "sparql", "optional",
		`SELECT ?s WHERE { ?s a <http://example.org/Person> }`,
		`SELECT ?x ?l WHERE { ?x <http://example.org/label> ?l }`,
		"--param", "x", "--variable", "l", "--property", "http://example.org/label")
	require.NoError(t, err)
	assert.Contains(t, out, "OPTIONAL {")
	assert.Contains(t, out, "?s <http://example.org/label> ?l")
}

func TestSparql_ParseError(t *testing.T) {
	_, err := execute(t, "", "sparql", "construct", `SELECT ?s WHERE { ?s }`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSparqlQuery_Results(t *testing.T) {
	db := t.TempDir()
	file := writeFile(t, "people.nt", peopleTriples)
	_, err := execute(t, "", "--db", db, "store", "import", file)
	require.NoError(t, err)

	out, err := execute(t, "", "--db", db, "sparql", "query", "--results", "tsv",
		`SELECT ?p WHERE { ?p a <http://example.org/Person> } ORDER BY ?p`)
	require.NoError(t, err)
	assert.Equal(t, "?p\n<http://example.org/alice>\n<http://example.org/bob>\n", out)

	out, err = execute(t, "", "--db", db, "sparql", "query", "--results", "csv",
		`ASK { <http://example.org/bob> a <http://example.org/Person> }`)
	require.NoError(t, err)
	assert.Equal(t, "result\r\ntrue\r\n", out)

	_, err = execute(t, "", "--db", db, "sparql", "query", "--results", "html", `ASK { ?s ?p ?o }`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
