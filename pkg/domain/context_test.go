package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velora-app/flowengine/pkg/domain"
)

func TestContext_ValueSemantics(t *testing.T) {
	base := domain.NewContext("start")

	t.Run("WithVariable Does Not Mutate Original", func(t *testing.T) {
		next := base.WithVariable("name", "Ana")
		assert.Equal(t, "Ana", next.Variables["name"])
		assert.NotContains(t, base.Variables, "name")
	})

	t.Run("WithProcessed Does Not Mutate Original", func(t *testing.T) {
		next := base.WithProcessed("n1")
		assert.True(t, next.HasProcessed("n1"))
		assert.False(t, base.HasProcessed("n1"))
	})

	t.Run("WithCursor", func(t *testing.T) {
		next := base.WithCursor("n2")
		assert.Equal(t, "n2", next.CurrentNodeID)
		assert.Equal(t, "start", base.CurrentNodeID)
	})

	t.Run("WithVariables Merges Patch", func(t *testing.T) {
		next := base.WithVariable("a", 1).WithVariables(map[string]any{"a": 2, "b": "x"})
		assert.Equal(t, 2, next.Variables["a"])
		assert.Equal(t, "x", next.Variables["b"])
	})
}

func TestContext_BeginRun(t *testing.T) {
	cx := domain.NewContext("start").
		WithVariable("name", "Ana").
		WithProcessed("start").
		WithProcessed("m1").
		WithCursor("")

	fresh := cx.BeginRun("start")

	// Variables survive across runs; the processed set does not.
	assert.Equal(t, "Ana", fresh.Variables["name"])
	assert.Equal(t, "start", fresh.CurrentNodeID)
	assert.False(t, fresh.HasProcessed("start"))
	assert.False(t, fresh.HasProcessed("m1"))
}
