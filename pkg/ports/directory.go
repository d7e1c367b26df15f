package ports

import (
	"context"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Directory is the account/card store consulted by the dialogue core.
// The core holds no card data of its own; it reads and writes through this
// interface only.
//
// Implementations that support concurrent sessions must make the per-card
// read-modify-write operations (UpdateAddress, ExecuteReplacement) atomic, so
// two sessions touching the same card cannot interleave inconsistently.
type Directory interface {
	// ListCards returns every active card on the user's account.
	// An empty slice with a nil error means the user has no cards.
	ListCards(ctx context.Context, userID string) ([]domain.Card, error)

	// FetchAddress returns the delivery address on file for the card.
	// It returns domain.ErrAddressNotFound when the card exists but has no
	// address, and domain.ErrCardNotFound when the card does not exist.
	FetchAddress(ctx context.Context, cardID, userID string) (string, error)

	// UpdateAddress replaces the delivery address on file for the card.
	UpdateAddress(ctx context.Context, cardID, newAddress, userID string) error

	// ExecuteReplacement cancels the card and orders a replacement shipped
	// to the given address, recording the operation atomically. It returns
	// user-facing confirmation text.
	ExecuteReplacement(ctx context.Context, cardID, deliveryAddress, userID string) (string, error)
}
