package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine/internal/adapters/memory"
	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/persistence/middleware"
)

func TestPIIMiddleware_MasksMatchingKeys(t *testing.T) {
	inner := memory.NewStore()
	store := middleware.NewPIIMiddleware([]string{"(?i)phone", "^ssn$"})(inner)
	ctx := context.Background()

	snap := &domain.Snapshot{
		SessionID: "s1",
		Context: domain.NewContext("ask").WithVariables(map[string]any{
			"name":        "Ana",
			"phoneNumber": "+34 600 000 000",
			"ssn":         "000-00-0000",
			"nested": map[string]any{
				"contactPhone": "+34 600 111 111",
				"city":         "Madrid",
			},
		}),
	}
	require.NoError(t, store.Save(ctx, "s1", snap))

	stored, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Context.Variables["name"])
	assert.Equal(t, "***", stored.Context.Variables["phoneNumber"])
	assert.Equal(t, "***", stored.Context.Variables["ssn"])
	nested := stored.Context.Variables["nested"].(map[string]any)
	assert.Equal(t, "***", nested["contactPhone"])
	assert.Equal(t, "Madrid", nested["city"])

	// The snapshot the engine keeps in memory is untouched.
	assert.Equal(t, "+34 600 000 000", snap.Context.Variables["phoneNumber"])
}

func TestPIIMiddleware_LoadPassesThrough(t *testing.T) {
	inner := memory.NewStore()
	store := middleware.NewPIIMiddleware([]string{"phone"})(inner)
	ctx := context.Background()

	require.NoError(t, inner.Save(ctx, "s1", &domain.Snapshot{
		SessionID: "s1",
		Context:   domain.NewContext("").WithVariable("phone", "kept"),
	}))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "kept", loaded.Context.Variables["phone"])
}
