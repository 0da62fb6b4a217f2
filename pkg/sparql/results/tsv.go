package results

import (
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/executor"
)

// SPARQL TSV Results Format
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// FormatSelectResultsTSV converts a SELECT result to SPARQL TSV format
func FormatSelectResultsTSV(result *executor.SelectResult) []byte {
	var builder strings.Builder

	for i, name := range result.Variables {
		if i > 0 {
			builder.WriteString("\t")
		}
		builder.WriteString("?" + name)
	}
	builder.WriteString("\n")

	for _, binding := range result.Bindings {
		for i, name := range result.Variables {
			if i > 0 {
				builder.WriteString("\t")
			}
			if term, ok := binding.Vars[name]; ok {
				builder.WriteString(termToTSVValue(term))
			}
		}
		builder.WriteString("\n")
	}

	return []byte(builder.String())
}

// FormatAskResultTSV converts an ASK result to SPARQL TSV format
func FormatAskResultTSV(result *executor.AskResult) []byte {
	if result.Result {
		return []byte("?result\ntrue\n")
	}
	return []byte("?result\nfalse\n")
}

// termToTSVValue writes a term in N-Triples syntax, except that integer,
// decimal and double literals are written bare
func termToTSVValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return "<" + t.IRI + ">"
	case *rdf.BlankNode:
		return "_:" + t.ID
	case *rdf.Literal:
		value := "\"" + escapeTSVString(t.Value) + "\""
		switch {
		case t.Language != "":
			return value + "@" + t.Language
		case t.Datatype == nil || t.Datatype.IRI == rdf.XSDString.IRI:
			return value
		}
		switch t.Datatype.IRI {
		case rdf.XSDInteger.IRI, rdf.XSDDecimal.IRI, rdf.XSDDouble.IRI:
			return t.Value
		}
		return value + "^^<" + t.Datatype.IRI + ">"
	default:
		return term.String()
	}
}

var tsvEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\t", "\\t",
	"\n", "\\n",
	"\r", "\\r",
	"\"", "\\\"",
)

func escapeTSVString(s string) string {
	return tsvEscaper.Replace(s)
}
