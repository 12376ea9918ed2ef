package rdf

import (
	"context"
	"slices"
	"strings"
)

// DefaultGraph is the Dataset key of the default graph.
const DefaultGraph = "@default"

// Dataset groups triples by graph name. Keys are the graph IRI, the graph's
// blank node label ("_:b0"), or DefaultGraph.
type Dataset map[string][]Triple

// NewDataset groups quads by graph, preserving quad order within each graph.
func NewDataset(quads []Quad) Dataset {
	ds := Dataset{}
	for _, q := range quads {
		name := DefaultGraph
		if q.G != nil {
			name = termID(q.G)
		}
		ds[name] = append(ds[name], q.ToTriple())
	}
	return ds
}

// ParseDataset parses N-Quads text into a Dataset.
func ParseDataset(ctx context.Context, nquads string, opts ...DecodeOption) (Dataset, error) {
	quads, err := ParseNQuads(ctx, strings.NewReader(nquads), opts...)
	if err != nil {
		return nil, err
	}
	return NewDataset(quads), nil
}

// GraphNames returns the graph names in sorted order. DefaultGraph sorts first.
func (ds Dataset) GraphNames() []string {
	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == DefaultGraph:
			return -1
		case b == DefaultGraph:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return names
}

// Quads flattens the dataset, graphs in GraphNames order.
func (ds Dataset) Quads() []Quad {
	var quads []Quad
	for _, name := range ds.GraphNames() {
		var graph Term
		if name != DefaultGraph {
			graph = NewTerm(name)
		}
		for _, t := range ds[name] {
			quads = append(quads, t.ToQuadInGraph(graph))
		}
	}
	return quads
}

// NQuads renders the dataset as N-Quads text in Quads order.
func (ds Dataset) NQuads() string {
	return FormatNQuads(ds.Quads())
}

// Len returns the total number of triples across graphs.
func (ds Dataset) Len() int {
	n := 0
	for _, triples := range ds {
		n += len(triples)
	}
	return n
}
