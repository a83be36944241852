package domain

import "fmt"

// Edge is a directed connection between two nodes.
//
// SourceHandle names the output port this edge is attached to. An empty
// handle means "default/any port" and matches regardless of the port an
// execution resolved to, preserving compatibility with unlabeled graphs.
// Declaration order is significant: the resolver returns matches in the
// order edges were authored, and the driver follows the first one.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
}

// Graph is the immutable flow definition: the set of nodes and directed
// edges authored for one conversation flow. It is created once per flow
// (external authoring) and read-only during execution.
type Graph struct {
	nodes []Node
	edges []Edge

	byID map[string]int
	out  map[string][]Edge
}

// NewGraph builds a Graph from nodes and edges, validating structural
// invariants: node ids must be unique and every edge must reference
// existing nodes on both ends.
func NewGraph(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, len(nodes)),
		edges: make([]Edge, len(edges)),
		byID:  make(map[string]int, len(nodes)),
		out:   make(map[string][]Edge),
	}
	copy(g.nodes, nodes)
	copy(g.edges, edges)

	for i, n := range g.nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node at index %d is missing an id", i)
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		g.byID[n.ID] = i
	}

	for _, e := range g.edges {
		if _, ok := g.byID[e.Source]; !ok {
			return nil, fmt.Errorf("edge %q references unknown source node %q", e.ID, e.Source)
		}
		if _, ok := g.byID[e.Target]; !ok {
			return nil, fmt.Errorf("edge %q references unknown target node %q", e.ID, e.Target)
		}
		g.out[e.Source] = append(g.out[e.Source], e)
	}

	return g, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges in declaration order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutEdges returns the outgoing edges of a node in declaration order.
func (g *Graph) OutEdges(source string) []Edge {
	return g.out[source]
}

// StartNode returns the first node of type "start", or false if the graph
// has none.
func (g *Graph) StartNode() (Node, bool) {
	for _, n := range g.nodes {
		if n.Type == NodeTypeStart {
			return n, true
		}
	}
	return Node{}, false
}
