package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine/pkg/domain"
)

func resolverGraph(t *testing.T, edges []domain.Edge) *domain.Graph {
	t.Helper()
	nodes := []domain.Node{
		{ID: "a", Type: domain.NodeTypeMessage},
		{ID: "b", Type: domain.NodeTypeMessage},
		{ID: "c", Type: domain.NodeTypeMessage},
	}
	g, err := domain.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func TestResolveNext(t *testing.T) {
	t.Run("Default Port Matches All Edges In Order", func(t *testing.T) {
		g := resolverGraph(t, []domain.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c"},
		})
		assert.Equal(t, []string{"b", "c"}, resolveNext(g, "a", ""))
	})

	t.Run("Named Port Filters Labeled Edges", func(t *testing.T) {
		g := resolverGraph(t, []domain.Edge{
			{ID: "e1", Source: "a", Target: "b", SourceHandle: "failure"},
			{ID: "e2", Source: "a", Target: "c", SourceHandle: "success"},
		})
		assert.Equal(t, []string{"c"}, resolveNext(g, "a", "success"))
		assert.Equal(t, []string{"b"}, resolveNext(g, "a", "failure"))
	})

	t.Run("Unlabeled Edges Are Wildcards", func(t *testing.T) {
		g := resolverGraph(t, []domain.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c", SourceHandle: "success"},
		})
		// The wildcard matches even when a port is requested.
		assert.Equal(t, []string{"b", "c"}, resolveNext(g, "a", "success"))
		assert.Equal(t, []string{"b"}, resolveNext(g, "a", "needReason"))
	})

	t.Run("Deterministic First-Match Tie-Break", func(t *testing.T) {
		g := resolverGraph(t, []domain.Edge{
			{ID: "e1", Source: "a", Target: "b", SourceHandle: "success"},
			{ID: "e2", Source: "a", Target: "c", SourceHandle: "success"},
		})
		for i := 0; i < 10; i++ {
			got := resolveNext(g, "a", "success")
			require.Equal(t, []string{"b", "c"}, got, "earlier-declared edge must always come first")
		}
	})

	t.Run("No Matches Signals Branch Termination", func(t *testing.T) {
		g := resolverGraph(t, []domain.Edge{
			{ID: "e1", Source: "a", Target: "b"},
		})
		assert.Empty(t, resolveNext(g, "b", ""))
	})
}
