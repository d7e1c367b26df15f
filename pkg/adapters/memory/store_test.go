package memory_test

import (
	"testing"

	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/ports/tests"
)

func TestStore_Contract(t *testing.T) {
	tests.RunStateStoreContract(t, memory.NewStore())
}
