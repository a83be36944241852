// Package validator checks flow graphs for authoring mistakes before
// they reach a live session.
package validator

import (
	"fmt"
	"strings"

	"github.com/velora-app/flowengine/pkg/domain"
)

var knownTypes = map[string]bool{
	domain.NodeTypeStart:          true,
	domain.NodeTypeMessage:        true,
	domain.NodeTypeAIResponse:     true,
	domain.NodeTypeInput:          true,
	domain.NodeTypeCondition:      true,
	domain.NodeTypeTTS:            true,
	domain.NodeTypeSTT:            true,
	domain.NodeTypeEnd:            true,
	domain.NodeTypeBusinessAction: true,
}

// ValidateGraph crawls the graph from its start node and reports
// unreachable nodes, unknown node types and missing required payload
// fields. The engine tolerates most of these at runtime by falling back
// to defaults; authors still want them surfaced before shipping a flow.
func ValidateGraph(g *domain.Graph) error {
	var errs []string

	start, ok := g.StartNode()
	if !ok {
		return fmt.Errorf("flow has no start node")
	}

	// Crawler
	visited := make(map[string]bool)
	queue := []string{start.ID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, ok := g.Node(currentID)
		if !ok {
			errs = append(errs, fmt.Sprintf("edge points to missing node '%s'", currentID))
			continue
		}

		errs = append(errs, checkNode(node)...)

		for _, e := range g.OutEdges(currentID) {
			if !visited[e.Target] {
				queue = append(queue, e.Target)
			}
		}
	}

	for _, node := range g.Nodes() {
		if !visited[node.ID] {
			errs = append(errs, fmt.Sprintf("node '%s' is unreachable from start", node.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}

// checkNode reports per-node payload problems.
func checkNode(node domain.Node) []string {
	var errs []string

	if !knownTypes[node.Type] {
		errs = append(errs, fmt.Sprintf("node '%s' has unknown type '%s'", node.ID, node.Type))
		return errs
	}

	missing := func(field string) {
		errs = append(errs, fmt.Sprintf("node '%s' (%s) is missing '%s'", node.ID, node.Type, field))
	}

	str := func(field string) string {
		v, _ := node.Data[field].(string)
		return v
	}

	switch node.Type {
	case domain.NodeTypeInput:
		if str("variableName") == "" {
			missing("variableName")
		}
	case domain.NodeTypeCondition:
		if opts, _ := node.Data["options"].([]any); len(opts) == 0 {
			if opts, _ := node.Data["options"].([]string); len(opts) == 0 {
				missing("options")
			}
		}
	case domain.NodeTypeAIResponse:
		if str("prompt") == "" {
			missing("prompt")
		}
	case domain.NodeTypeBusinessAction:
		if str("action") == "" {
			missing("action")
		}
	}

	return errs
}
