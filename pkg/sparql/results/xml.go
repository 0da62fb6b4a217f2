package results

import (
	"encoding/xml"
	"sort"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/executor"
)

// SPARQL XML Results Format
// https://www.w3.org/TR/rdf-sparql-XMLres/

const resultsNamespace = "http://www.w3.org/2005/sparql-results#"

// Results is the sparql document element
type Results struct {
	XMLName xml.Name        `xml:"sparql"`
	XMLNS   string          `xml:"xmlns,attr"`
	Head    Head            `xml:"head"`
	Results *ResultsElement `xml:"results,omitempty"`
	Boolean *bool           `xml:"boolean,omitempty"`
}

// Head represents the head element with variable names
type Head struct {
	Variables []Variable `xml:"variable"`
}

// Variable represents a variable declaration
type Variable struct {
	Name string `xml:"name,attr"`
}

// ResultsElement contains the result bindings
type ResultsElement struct {
	Results []Result `xml:"result"`
}

// Result represents a single solution
type Result struct {
	Bindings []Binding `xml:"binding"`
}

// Binding holds exactly one of URI, Literal or BNode
type Binding struct {
	Name    string   `xml:"name,attr"`
	URI     *string  `xml:"uri"`
	Literal *Literal `xml:"literal"`
	BNode   *string  `xml:"bnode"`
}

// Literal represents a literal value
type Literal struct {
	Value    string `xml:",chardata"`
	Lang     string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Datatype string `xml:"datatype,attr,omitempty"`
}

// FormatSelectResultsXML converts a SELECT result to SPARQL XML format
func FormatSelectResultsXML(result *executor.SelectResult) ([]byte, error) {
	doc := Results{XMLNS: resultsNamespace, Results: &ResultsElement{}}
	for _, name := range result.Variables {
		doc.Head.Variables = append(doc.Head.Variables, Variable{Name: name})
	}

	for _, binding := range result.Bindings {
		names := make([]string, 0, len(binding.Vars))
		for name := range binding.Vars {
			names = append(names, name)
		}
		sort.Strings(names)

		var r Result
		for _, name := range names {
			r.Bindings = append(r.Bindings, termToBinding(name, binding.Vars[name]))
		}
		doc.Results.Results = append(doc.Results.Results, r)
	}
	return marshalXML(doc)
}

// FormatAskResultXML converts an ASK result to SPARQL XML format
func FormatAskResultXML(result *executor.AskResult) ([]byte, error) {
	value := result.Result
	return marshalXML(Results{XMLNS: resultsNamespace, Boolean: &value})
}

func marshalXML(doc Results) ([]byte, error) {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	out := append([]byte(xml.Header), data...)
	return append(out, '\n'), nil
}

func termToBinding(name string, term rdf.Term) Binding {
	b := Binding{Name: name}
	switch t := term.(type) {
	case *rdf.NamedNode:
		iri := t.IRI
		b.URI = &iri
	case *rdf.BlankNode:
		id := t.ID
		b.BNode = &id
	case *rdf.Literal:
		lit := &Literal{Value: t.Value, Lang: t.Language}
		if t.Language == "" && t.Datatype != nil {
			lit.Datatype = t.Datatype.IRI
		}
		b.Literal = lit
	default:
		b.Literal = &Literal{Value: term.String()}
	}
	return b
}
