package ports

import (
	"context"

	"github.com/aretw0/cardflow/pkg/domain"
)

// StateStore defines the interface for persisting session state, so a session
// can be resumed by a later request (HTTP and MCP adapters) or a new process.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}
