package manchester

import (
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/komma/pkg/owl"
)

// PrefixBinder is implemented by sinks that keep a prefix table
type PrefixBinder interface {
	BindPrefix(prefix, namespace string) error
}

// Load parses an ontology document and writes its RDF statements to sink.
// If sink is a PrefixBinder the document prefixes are bound first.
func Load(text string, sink owl.Sink, opts ...Option) (*Document, error) {
	p := NewParser(text, opts...)
	doc, err := p.ParseDocument()
	if err != nil {
		return nil, err
	}

	if binder, ok := sink.(PrefixBinder); ok {
		var bindErr error
		doc.Namespaces.Each(func(prefix, namespace string) {
			if bindErr == nil {
				bindErr = binder.BindPrefix(prefix, namespace)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind prefixes: %w", bindErr)
		}
	}

	if err := owl.NewEncoder(sink, p.encoderOptions...).EncodeOntology(doc.Ontology); err != nil {
		return nil, fmt.Errorf("failed to encode ontology: %w", err)
	}
	slog.Debug("loaded manchester document",
		"prefixes", doc.Namespaces.Len(),
		"frames", len(doc.Ontology.Frames))
	return doc, nil
}
