package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine/pkg/domain"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cx := domain.NewContext("start").
			WithVariable("name", "Ana").
			WithVariable("rescheduleCount", 2).
			WithProcessed("start")
		snap := &domain.Snapshot{
			SessionID: sessionID,
			TenantID:  "tenant-1",
			Context:   cx,
			UpdatedAt: time.Now().UTC(),
		}

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "tenant-1", loaded.TenantID)
		assert.Equal(t, "start", loaded.Context.CurrentNodeID)
		assert.Equal(t, "Ana", loaded.Context.Variables["name"])
		assert.True(t, loaded.Context.HasProcessed("start"))
		// JSON persistence may convert int to float64; only require presence.
		assert.NotNil(t, loaded.Context.Variables["rescheduleCount"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		snap := &domain.Snapshot{SessionID: sessionID, Context: domain.NewContext("start")}
		require.NoError(t, store.Save(ctx, sessionID, snap))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &domain.Snapshot{SessionID: id1, Context: domain.NewContext("start")})
		_ = store.Save(ctx, id2, &domain.Snapshot{SessionID: id2, Context: domain.NewContext("start")})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
