package memory_test

import (
	"testing"

	"github.com/velora-app/flowengine/internal/adapters/memory"
	"github.com/velora-app/flowengine/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}
