package results

import (
	"encoding/json"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/executor"
)

// SPARQL JSON Results Format
// https://www.w3.org/TR/sparql11-results-json/

// SPARQLResultsJSON represents the JSON format for SPARQL query results
type SPARQLResultsJSON struct {
	Head    ResultHead      `json:"head"`
	Results *ResultBindings `json:"results,omitempty"`
	Boolean *bool           `json:"boolean,omitempty"`
}

// ResultHead contains the variable names
type ResultHead struct {
	Vars []string `json:"vars"`
}

// ResultBindings contains the result bindings
type ResultBindings struct {
	Bindings []map[string]BindingValue `json:"bindings"`
}

// BindingValue represents a single bound value
type BindingValue struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	XMLLang  string `json:"xml:lang,omitempty"`
}

// FormatSelectResultsJSON converts a SELECT result to SPARQL JSON format
func FormatSelectResultsJSON(result *executor.SelectResult) ([]byte, error) {
	vars := result.Variables
	if vars == nil {
		vars = []string{}
	}

	bindings := make([]map[string]BindingValue, 0, len(result.Bindings))
	for _, binding := range result.Bindings {
		row := make(map[string]BindingValue, len(binding.Vars))
		for name, term := range binding.Vars {
			row[name] = termToBindingValue(term)
		}
		bindings = append(bindings, row)
	}

	return json.MarshalIndent(SPARQLResultsJSON{
		Head:    ResultHead{Vars: vars},
		Results: &ResultBindings{Bindings: bindings},
	}, "", "  ")
}

// FormatAskResultJSON converts an ASK result to SPARQL JSON format
func FormatAskResultJSON(result *executor.AskResult) ([]byte, error) {
	value := result.Result
	return json.MarshalIndent(SPARQLResultsJSON{
		Head:    ResultHead{Vars: []string{}},
		Boolean: &value,
	}, "", "  ")
}

func termToBindingValue(term rdf.Term) BindingValue {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return BindingValue{Type: "uri", Value: t.IRI}
	case *rdf.BlankNode:
		return BindingValue{Type: "bnode", Value: t.ID}
	case *rdf.Literal:
		bv := BindingValue{Type: "literal", Value: t.Value}
		if t.Language != "" {
			bv.XMLLang = t.Language
		} else if t.Datatype != nil {
			bv.Datatype = t.Datatype.IRI
		}
		return bv
	default:
		return BindingValue{Type: "literal", Value: term.String()}
	}
}
