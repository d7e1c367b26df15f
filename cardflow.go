package cardflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cardflow/internal/dialogue"
	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the cardflow library.
// It wraps the internal dialogue core and provides a simplified API for
// consumers: session creation, the decision function, and the input reducer.
type Engine struct {
	core      *dialogue.Engine
	directory ports.Directory
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a cardflow Engine backed by the given account directory.
func New(directory ports.Directory, opts ...Option) (*Engine, error) {
	if directory == nil {
		return nil, fmt.Errorf("a ports.Directory implementation is required")
	}

	eng := &Engine{directory: directory}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.core = dialogue.New(directory,
		dialogue.WithLogger(eng.logger),
		dialogue.WithLifecycleHooks(eng.hooks),
	)
	return eng, nil
}

// NewSession creates an empty dialogue state for the user with a fresh
// session ID.
func (e *Engine) NewSession(userID string) *domain.State {
	return domain.NewState(uuid.NewString(), userID)
}

// Decide determines the next prompt for the current state. It returns the
// updated state and true when the session has reached a terminal outcome.
func (e *Engine) Decide(ctx context.Context, state *domain.State) (*domain.State, bool) {
	return e.core.Decide(ctx, state)
}

// Reduce folds one raw user utterance into the state.
func (e *Engine) Reduce(ctx context.Context, state *domain.State, raw string) *domain.State {
	return e.core.Reduce(ctx, state, raw)
}

// Directory returns the underlying account directory used by the engine.
func (e *Engine) Directory() ports.Directory {
	return e.directory
}

var _ ports.DialogueEngine = (*Engine)(nil)
