// Package graph renders flow definitions as Mermaid diagrams for docs
// and debugging.
package graph

import (
	"fmt"
	"strings"

	"github.com/velora-app/flowengine/pkg/domain"
)

// Overlay contains dynamic session state to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces Mermaid flowchart syntax from a flow graph.
// It applies semantic styling:
// - start/end: ((Circle))
// - business-action: [[Subroutine]]
// - input/stt: [/Parallelogram/]
// - condition: {Diamond}
// - default: [Rectangle]
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart, domain.NodeTypeEnd:
			opener, closer = "((", "))"
		case domain.NodeTypeBusinessAction:
			opener, closer = "[[", "]]"
		case domain.NodeTypeInput, domain.NodeTypeSTT:
			opener, closer = "[/", "/]"
		case domain.NodeTypeCondition:
			opener, closer = "{", "}"
		}

		label := node.ID
		if node.Type != "" {
			label = fmt.Sprintf("%s <br/> %s", node.ID, node.Type)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, e := range g.Edges() {
		safeFrom := sanitizeMermaidID(e.Source)
		safeTo := sanitizeMermaidID(e.Target)

		arrow := "-->"
		if e.SourceHandle != "" {
			// Escape double quotes in the port label for Mermaid
			safePort := strings.ReplaceAll(e.SourceHandle, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safePort)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			safeCurrent := sanitizeMermaidID(overlay.CurrentNode)
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safeCurrent))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
