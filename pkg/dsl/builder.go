package dsl

import (
	"fmt"

	"github.com/velora-app/flowengine/pkg/domain"
)

// Builder manages the graph construction. Nodes and edges keep their
// declaration order, which is what breaks ties when several edges leave
// the same node.
type Builder struct {
	order []*NodeBuilder
	byID  map[string]*NodeBuilder
	edges []domain.Edge
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		byID: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.byID[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.byID[id] = nb
	b.order = append(b.order, nb)
	return nb
}

// connect registers an edge with a generated id.
func (b *Builder) connect(source, target, port string) {
	b.edges = append(b.edges, domain.Edge{
		ID:           fmt.Sprintf("e%d", len(b.edges)+1),
		Source:       source,
		Target:       target,
		SourceHandle: port,
	})
}

// Build compiles the declared nodes and edges into a validated graph.
func (b *Builder) Build() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, nb := range b.order {
		nodes = append(nodes, nb.node)
	}

	g, err := domain.NewGraph(nodes, b.edges)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}
