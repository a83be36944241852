// Package yamlgraph loads flow definitions from YAML documents, the
// format the CLI consumes. The engine itself only ever sees the resulting
// domain.Graph value; no storage schema is mandated by the core.
package yamlgraph

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/velora-app/flowengine/pkg/domain"
)

// Definition is the on-disk shape of a flow.
type Definition struct {
	ID    string        `yaml:"id"`
	Name  string        `yaml:"name,omitempty"`
	Nodes []domain.Node `yaml:"nodes"`
	Edges []domain.Edge `yaml:"edges"`
}

// Source implements ports.GraphSource over a YAML file.
type Source struct {
	path string
}

// NewSource creates a source reading from the given file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Graph loads, parses and validates the flow definition.
func (s *Source) Graph() (*domain.Graph, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow definition: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a flow definition from r and builds the graph.
func Parse(r io.Reader) (*domain.Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow definition: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to parse flow definition: %w", err)
	}

	normalizeData(def.Nodes)

	g, err := domain.NewGraph(def.Nodes, def.Edges)
	if err != nil {
		return nil, fmt.Errorf("invalid flow definition: %w", err)
	}
	return g, nil
}

// normalizeData rewrites nested map[any]any values yaml decoding may
// produce into map[string]any, so node payload decoding sees uniform maps.
func normalizeData(nodes []domain.Node) {
	for i := range nodes {
		if nodes[i].Data == nil {
			continue
		}
		nodes[i].Data = normalizeMap(nodes[i].Data)
	}
}

func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
