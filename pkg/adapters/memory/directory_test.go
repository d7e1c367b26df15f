package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Contract(t *testing.T) {
	dir := memory.NewDirectory()
	for userID, cards := range tests.ContractSeed() {
		dir.SeedUser(userID, cards...)
	}
	tests.RunDirectoryContract(t, dir)
}

func TestDirectory_ReplacementAudit(t *testing.T) {
	dir := memory.NewDirectory()
	dir.SeedUser("alice", domain.Card{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way"})

	_, err := dir.ExecuteReplacement(context.Background(), "1234", "1 Blossom Way", "alice")
	require.NoError(t, err)

	audit := dir.Replacements()
	require.Len(t, audit, 1)
	assert.Equal(t, "1234", audit[0].CardID)
	assert.Equal(t, "alice", audit[0].UserID)
	assert.Equal(t, "1 Blossom Way", audit[0].Address)
}

func TestNewDirectoryFromFile(t *testing.T) {
	seed := `
users:
  - id: alice
    cards:
      - id: "1234"
        product: Platinum Visa
        address: 1 Blossom Way, Springfield
      - id: "5678"
        product: Travel Mastercard
`
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	dir, err := memory.NewDirectoryFromFile(path)
	require.NoError(t, err)

	cards, err := dir.ListCards(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Platinum Visa", cards[0].Product)
	assert.Equal(t, "1 Blossom Way, Springfield", cards[0].Address)
}

func TestNewDirectoryFromFile_MissingFile(t *testing.T) {
	_, err := memory.NewDirectoryFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
