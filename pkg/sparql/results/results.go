// Package results serializes query results in the W3C SPARQL result formats.
package results

import (
	"fmt"
	"io"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/executor"
)

// Formats lists the supported result formats
var Formats = []string{"csv", "tsv", "json", "xml"}

// Write serializes a SELECT or ASK result in format. CONSTRUCT results are
// written as N-Triples whatever the format.
func Write(w io.Writer, format string, result executor.QueryResult) error {
	if r, ok := result.(*executor.ConstructResult); ok {
		return rdf.WriteNTriples(w, r.Triples)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "csv":
		data, err = formatCSV(result)
	case "tsv":
		data, err = formatTSV(result)
	case "json":
		data, err = formatJSON(result)
	case "xml":
		data, err = formatXML(result)
	default:
		return fmt.Errorf("unsupported result format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func formatCSV(result executor.QueryResult) ([]byte, error) {
	switch r := result.(type) {
	case *executor.SelectResult:
		return FormatSelectResultsCSV(r)
	case *executor.AskResult:
		return FormatAskResultCSV(r)
	}
	return nil, unsupported(result)
}

func formatTSV(result executor.QueryResult) ([]byte, error) {
	switch r := result.(type) {
	case *executor.SelectResult:
		return FormatSelectResultsTSV(r), nil
	case *executor.AskResult:
		return FormatAskResultTSV(r), nil
	}
	return nil, unsupported(result)
}

func formatJSON(result executor.QueryResult) ([]byte, error) {
	switch r := result.(type) {
	case *executor.SelectResult:
		return FormatSelectResultsJSON(r)
	case *executor.AskResult:
		return FormatAskResultJSON(r)
	}
	return nil, unsupported(result)
}

func formatXML(result executor.QueryResult) ([]byte, error) {
	switch r := result.(type) {
	case *executor.SelectResult:
		return FormatSelectResultsXML(r)
	case *executor.AskResult:
		return FormatAskResultXML(r)
	}
	return nil, unsupported(result)
}

func unsupported(result executor.QueryResult) error {
	return fmt.Errorf("unsupported result type %T", result)
}
