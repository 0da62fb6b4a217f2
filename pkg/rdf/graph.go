package rdf

// Graph is an in-memory set of triples that keeps insertion order.
type Graph struct {
	triples []*Triple
	index   map[string]struct{}
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{index: make(map[string]struct{})}
}

// InsertTriple adds a triple unless an equal one is already present.
func (g *Graph) InsertTriple(triple *Triple) error {
	key := triple.String()
	if _, ok := g.index[key]; ok {
		return nil
	}
	g.index[key] = struct{}{}
	g.triples = append(g.triples, triple)
	return nil
}

// Match returns all triples matching the pattern; nil positions match anything.
func (g *Graph) Match(subject, predicate, object Term) ([]*Triple, error) {
	var result []*Triple
	for _, t := range g.triples {
		if t.Matches(subject, predicate, object) {
			result = append(result, t)
		}
	}
	return result, nil
}

// Len returns the number of triples
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the triples in insertion order
func (g *Graph) Triples() []*Triple {
	return g.triples
}
