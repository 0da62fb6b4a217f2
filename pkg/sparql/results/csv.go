package results

import (
	"encoding/csv"
	"strings"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/executor"
)

// SPARQL CSV Results Format
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// FormatSelectResultsCSV converts a SELECT result to SPARQL CSV format
func FormatSelectResultsCSV(result *executor.SelectResult) ([]byte, error) {
	var builder strings.Builder
	w := csv.NewWriter(&builder)
	w.UseCRLF = true

	if err := w.Write(result.Variables); err != nil {
		return nil, err
	}

	for _, binding := range result.Bindings {
		row := make([]string, len(result.Variables))
		for i, name := range result.Variables {
			// unbound variables stay empty
			if term, ok := binding.Vars[name]; ok {
				row[i] = termToCSVValue(term)
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(builder.String()), nil
}

// FormatAskResultCSV converts an ASK result to SPARQL CSV format
func FormatAskResultCSV(result *executor.AskResult) ([]byte, error) {
	var builder strings.Builder
	w := csv.NewWriter(&builder)
	w.UseCRLF = true

	value := "false"
	if result.Result {
		value = "true"
	}
	if err := w.WriteAll([][]string{{"result"}, {value}}); err != nil {
		return nil, err
	}
	return []byte(builder.String()), nil
}

// termToCSVValue drops the syntax of a term: IRIs lose their brackets and
// literals their quotes and datatype
func termToCSVValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return t.IRI
	case *rdf.BlankNode:
		return "_:" + t.ID
	case *rdf.Literal:
		return t.Value
	default:
		return term.String()
	}
}
