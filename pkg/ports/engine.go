package ports

import (
	"context"

	"github.com/aretw0/cardflow/pkg/domain"
)

// DialogueEngine is the driver-facing contract of the dialogue core.
// A driver alternates Decide and Reduce until Decide reports done; once it
// does, no further Reduce call may be issued for that session.
type DialogueEngine interface {
	// Decide inspects the state and determines the next prompt or action.
	// It returns the updated state and true when the session has reached a
	// terminal outcome. It never returns an error: directory failures are
	// folded into the state as a terminal outcome with a user-visible
	// prompt.
	Decide(ctx context.Context, state *domain.State) (*domain.State, bool)

	// Reduce folds one raw user utterance into the state, interpreting it
	// according to the Awaiting tag set by the previous Decide call.
	Reduce(ctx context.Context, state *domain.State, raw string) *domain.State
}
