// Package tests provides reusable contract suites for ports implementations.
// Adapter test files call these to prove they satisfy the behavior the
// dialogue core depends on.
package tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports"
)

// ContractUser is the user the directory contract operates on.
const ContractUser = "user-contract"

// ContractSeed returns the accounts a directory must be seeded with before
// running RunDirectoryContract.
func ContractSeed() map[string][]domain.Card {
	return map[string][]domain.Card{
		ContractUser: {
			{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way, Springfield"},
			{ID: "5678", Product: "Travel Mastercard"}, // no address on file
		},
	}
}

// RunStateStoreContract verifies an adapter complies with ports.StateStore.
func RunStateStoreContract(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-session")
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		state := domain.NewState("session-a", "alice")
		state.Reason = "lost"
		state.Awaiting = domain.AwaitCardSelection
		state.Append(domain.RoleUser, "lost")

		if err := store.Save(ctx, "session-a", state); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := store.Load(ctx, "session-a")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.Reason != "lost" || loaded.Awaiting != domain.AwaitCardSelection {
			t.Errorf("state mismatch after round trip: %+v", loaded)
		}
		if len(loaded.Transcript) != 1 {
			t.Errorf("expected 1 transcript entry, got %d", len(loaded.Transcript))
		}

		// Mutating the loaded copy must not leak back into the store.
		loaded.Reason = "tampered"
		again, err := store.Load(ctx, "session-a")
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if again.Reason != "lost" {
			t.Errorf("store state leaked through a shared pointer: %q", again.Reason)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Save(ctx, "session-b", domain.NewState("session-b", "bruno")); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		lookup := make(map[string]bool, len(ids))
		for _, id := range ids {
			lookup[id] = true
		}
		if !lookup["session-a"] || !lookup["session-b"] {
			t.Errorf("expected both sessions listed, got %v", ids)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "session-a"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Load(ctx, "session-a"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}
	})
}

// RunDirectoryContract verifies an adapter complies with ports.Directory.
// The directory must be pre-seeded with ContractSeed.
func RunDirectoryContract(t *testing.T, dir ports.Directory) {
	t.Helper()
	ctx := context.Background()

	t.Run("ListCards", func(t *testing.T) {
		cards, err := dir.ListCards(ctx, ContractUser)
		if err != nil {
			t.Fatalf("list cards failed: %v", err)
		}
		if len(cards) != 2 {
			t.Fatalf("expected 2 cards, got %d", len(cards))
		}
	})

	t.Run("ListCards_UnknownUser", func(t *testing.T) {
		cards, err := dir.ListCards(ctx, "nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cards) != 0 {
			t.Errorf("expected no cards for unknown user, got %d", len(cards))
		}
	})

	t.Run("FetchAddress", func(t *testing.T) {
		addr, err := dir.FetchAddress(ctx, "1234", ContractUser)
		if err != nil {
			t.Fatalf("fetch address failed: %v", err)
		}
		if addr != "1 Blossom Way, Springfield" {
			t.Errorf("unexpected address: %q", addr)
		}
	})

	t.Run("FetchAddress_NoneOnFile", func(t *testing.T) {
		_, err := dir.FetchAddress(ctx, "5678", ContractUser)
		if !errors.Is(err, domain.ErrAddressNotFound) {
			t.Errorf("expected ErrAddressNotFound, got %v", err)
		}
	})

	t.Run("FetchAddress_UnknownCard", func(t *testing.T) {
		_, err := dir.FetchAddress(ctx, "0000", ContractUser)
		if !errors.Is(err, domain.ErrCardNotFound) {
			t.Errorf("expected ErrCardNotFound, got %v", err)
		}
	})

	t.Run("UpdateAddress", func(t *testing.T) {
		if err := dir.UpdateAddress(ctx, "5678", "42 New St", ContractUser); err != nil {
			t.Fatalf("update address failed: %v", err)
		}
		addr, err := dir.FetchAddress(ctx, "5678", ContractUser)
		if err != nil {
			t.Fatalf("fetch after update failed: %v", err)
		}
		if addr != "42 New St" {
			t.Errorf("address not persisted, got %q", addr)
		}
	})

	t.Run("ExecuteReplacement", func(t *testing.T) {
		text, err := dir.ExecuteReplacement(ctx, "1234", "1 Blossom Way, Springfield", ContractUser)
		if err != nil {
			t.Fatalf("replacement failed: %v", err)
		}
		if !strings.HasPrefix(text, "Card ending 1234 cancelled successfully.") {
			t.Errorf("unexpected confirmation text: %q", text)
		}
		if !strings.Contains(text, "1 Blossom Way, Springfield") {
			t.Errorf("confirmation does not mention the delivery address: %q", text)
		}
	})

	t.Run("ExecuteReplacement_UnknownCard", func(t *testing.T) {
		_, err := dir.ExecuteReplacement(ctx, "0000", "anywhere", ContractUser)
		if !errors.Is(err, domain.ErrCardNotFound) {
			t.Errorf("expected ErrCardNotFound, got %v", err)
		}
	})
}
