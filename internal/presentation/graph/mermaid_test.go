package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	g, err := domain.NewGraph(
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "check-slot", Type: domain.NodeTypeCondition},
			{ID: "reschedule", Type: domain.NodeTypeBusinessAction},
			{ID: "ask", Type: domain.NodeTypeInput},
			{ID: "bye", Type: domain.NodeTypeEnd},
		},
		[]domain.Edge{
			{ID: "e1", Source: "start", Target: "check-slot"},
			{ID: "e2", Source: "check-slot", Target: "reschedule", SourceHandle: "yes"},
			{ID: "e3", Source: "check-slot", Target: "ask", SourceHandle: "no"},
			{ID: "e4", Source: "reschedule", Target: "bye", SourceHandle: "success"},
		},
	)
	require.NoError(t, err)

	out := GenerateMermaid(g, nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	// Shapes per node type
	assert.Contains(t, out, `start(("start <br/> start"))`)
	assert.Contains(t, out, `check_slot{"check-slot <br/> condition"}`)
	assert.Contains(t, out, `reschedule[["reschedule <br/> business-action"]]`)
	assert.Contains(t, out, `ask[/"ask <br/> input"/]`)
	// Labeled and unlabeled edges; ids sanitized
	assert.Contains(t, out, "start --> check_slot")
	assert.Contains(t, out, `check_slot -- "yes" --> reschedule`)
	assert.Contains(t, out, `reschedule -- "success" --> bye`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g, err := domain.NewGraph(
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "ask", Type: domain.NodeTypeInput},
		},
		[]domain.Edge{{ID: "e1", Source: "start", Target: "ask"}},
	)
	require.NoError(t, err)

	out := GenerateMermaid(g, &Overlay{
		VisitedNodes: []string{"start", "start"},
		CurrentNode:  "ask",
	})

	assert.Contains(t, out, "class start visited;")
	assert.Contains(t, out, "class ask current;")
	// Deduplicated
	assert.Equal(t, 1, strings.Count(out, "class start visited;"))
}
