package memory

import (
	"github.com/velora-app/flowengine/pkg/domain"
)

// Source implements ports.GraphSource over an already-built graph.
type Source struct {
	graph *domain.Graph
}

// NewSource wraps a graph value.
func NewSource(graph *domain.Graph) *Source {
	return &Source{graph: graph}
}

// Graph returns the wrapped graph.
func (s *Source) Graph() (*domain.Graph, error) {
	return s.graph, nil
}
