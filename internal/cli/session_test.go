package cli_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine"
	"github.com/velora-app/flowengine/internal/cli"
	"github.com/velora-app/flowengine/pkg/dsl"
)

func greetingEngine(t *testing.T) *flowengine.Engine {
	t.Helper()
	b := dsl.New()
	b.Add("start").Start().Go("hello")
	b.Add("hello").Message("Hola").Go("ask")
	b.Add("ask").Question("¿Tu nombre?", "$name").Go("echo")
	b.Add("echo").Message("Hola {{name}}").Go("bye")
	b.Add("bye").End("Hasta pronto")

	g, err := b.Build()
	require.NoError(t, err)
	return flowengine.NewFromGraph(g)
}

func TestRunSession_ReadsInputAndCompletes(t *testing.T) {
	in := strings.NewReader("Ana\n")
	var out strings.Builder

	err := cli.RunSession(context.Background(), greetingEngine(t), in, &out, cli.RunOptions{})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "[agent] Hola\n")
	assert.Contains(t, got, "[agent] ¿Tu nombre?\n")
	assert.Contains(t, got, "> ")
	assert.Contains(t, got, "[agent] Hola Ana\n")
	assert.Contains(t, got, "[agent] Hasta pronto\n")
}

func TestRunSession_InputStreamClosed(t *testing.T) {
	var out strings.Builder

	err := cli.RunSession(context.Background(), greetingEngine(t), strings.NewReader(""), &out, cli.RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input stream closed")
}
