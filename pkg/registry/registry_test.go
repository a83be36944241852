package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine/pkg/ports"
	"github.com/velora-app/flowengine/pkg/registry"
)

type stubAction struct {
	port  string
	calls int
}

func (a *stubAction) Execute(ctx context.Context, tenantID string, vars, config map[string]any) (ports.ActionResult, error) {
	a.calls++
	return ports.ActionResult{Port: a.port}, nil
}

func TestRegistry_RegisterAndExecute(t *testing.T) {
	r := registry.NewRegistry()
	action := &stubAction{port: "success"}
	r.Register("reschedule", action)

	got, ok := r.Get("reschedule")
	require.True(t, ok)
	assert.Same(t, action, got.(*stubAction))

	res, err := r.Execute(context.Background(), "reschedule", "tenant-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "success", res.Port)
	assert.Equal(t, 1, action.calls)
}

func TestRegistry_ExecuteUnknown(t *testing.T) {
	r := registry.NewRegistry()
	_, err := r.Execute(context.Background(), "ghost", "tenant-1", nil, nil)
	assert.ErrorContains(t, err, "not registered")
}

func TestRegistry_NamesAndEach(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("a", &stubAction{})
	r.Register("b", &stubAction{})
	// Last registration wins.
	replacement := &stubAction{port: "failure"}
	r.Register("a", replacement)

	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())

	seen := map[string]ports.BusinessAction{}
	r.Each(func(name string, action ports.BusinessAction) {
		seen[name] = action
	})
	assert.Same(t, replacement, seen["a"].(*stubAction))
}
