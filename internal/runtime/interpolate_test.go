package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]any{
		"name":  "Ana",
		"count": 3,
		"vip":   true,
	}

	t.Run("Resolves Known Variables", func(t *testing.T) {
		assert.Equal(t, "Hola Ana", Interpolate("Hola {{name}}", vars))
		assert.Equal(t, "3 attempts, vip=true", Interpolate("{{count}} attempts, vip={{vip}}", vars))
	})

	t.Run("Leaves Missing Variables Unresolved", func(t *testing.T) {
		assert.Equal(t, "Hola {{name}}", Interpolate("Hola {{name}}", map[string]any{}))
		assert.Equal(t, "Hola Ana, {{last}}", Interpolate("Hola {{name}}, {{last}}", vars))
	})

	t.Run("Idempotent", func(t *testing.T) {
		once := Interpolate("Hola {{name}}", vars)
		assert.Equal(t, once, Interpolate(once, vars))
	})

	t.Run("Tolerates Whitespace In Tokens", func(t *testing.T) {
		assert.Equal(t, "Hola Ana", Interpolate("Hola {{ name }}", vars))
	})

	t.Run("No Tokens Is A No-Op", func(t *testing.T) {
		assert.Equal(t, "plain text", Interpolate("plain text", vars))
		assert.Equal(t, "", Interpolate("", vars))
	})
}
