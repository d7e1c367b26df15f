// Package dialogue implements the card replacement dialogue core: the
// decision engine that determines the next prompt from accumulated state, and
// the input reducer that folds raw utterances into that state.
package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports"
)

// Engine holds the business rules of the replacement flow. It is stateless
// between calls: all session data lives in the domain.State threaded through
// Decide and Reduce, and all card data lives behind the Directory port.
type Engine struct {
	directory ports.Directory
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an engine backed by the given account directory.
func New(directory ports.Directory, opts ...Option) *Engine {
	e := &Engine{
		directory: directory,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide maps the current state to the next prompt or action. It returns the
// updated state and true when the session is over. Calling it again on an
// unresolved state re-emits the same prompt and awaiting tag; progress only
// happens through Reduce.
//
// Slot precedence is strict: reason, card, address, address confirmation,
// final confirmation, execution. The first unmet condition wins.
func (e *Engine) Decide(ctx context.Context, state *domain.State) (*domain.State, bool) {
	// A terminal outcome may have been set by the reducer (cancellation,
	// failed address write). Emit its closing prompt exactly once per call.
	if state.Outcome.Terminal() {
		return e.finish(ctx, state, state.Outcome, closingPrompt(state.Outcome))
	}

	// Entry: nothing touched yet, consult the directory.
	if state.Cards == nil {
		cards, err := e.listCards(ctx, state)
		if err != nil {
			return e.finish(ctx, state, domain.OutcomeUnavailable, promptUnavailable)
		}
		if len(cards) == 0 {
			state.Cards = []domain.Card{}
			return e.finish(ctx, state, domain.OutcomeNoCards, promptNoCards)
		}
		state.Cards = cards
	}

	if state.Reason == "" {
		return e.ask(ctx, state, domain.AwaitReason, promptReason)
	}

	if state.SelectedCard == "" {
		if len(state.Cards) == 1 {
			// Single card: select it silently and fall through.
			state.SelectedCard = state.Cards[0].ID
			e.slotFilled(ctx, state, "card", state.SelectedCard)
		} else {
			return e.ask(ctx, state, domain.AwaitCardSelection, cardListPrompt(state.Cards))
		}
	}

	if state.Address == "" {
		// While a manual address is pending there is nothing to re-fetch,
		// and re-deciding repeats the prompt that opened the slot.
		if state.Awaiting == domain.AwaitNewAddress {
			return e.ask(ctx, state, domain.AwaitNewAddress, missingAddressPrompt(state.SelectedCard))
		}
		addr, err := e.fetchAddress(ctx, state)
		switch {
		case errors.Is(err, domain.ErrAddressNotFound):
			return e.ask(ctx, state, domain.AwaitNewAddress, missingAddressPrompt(state.SelectedCard))
		case err != nil:
			return e.finish(ctx, state, domain.OutcomeUnavailable, promptUnavailable)
		}
		state.Address = addr
		return e.ask(ctx, state, domain.AwaitAddressConfirm, confirmAddressPrompt(state.SelectedCard, addr))
	}

	if !state.AddressConfirmed {
		// "no" at the confirmation step leaves the old address in place
		// while we wait for the replacement address.
		if state.Awaiting == domain.AwaitNewAddress {
			return e.ask(ctx, state, domain.AwaitNewAddress, promptNewAddress)
		}
		return e.ask(ctx, state, domain.AwaitAddressConfirm, confirmAddressPrompt(state.SelectedCard, state.Address))
	}

	if !state.FinalConfirmed {
		return e.ask(ctx, state, domain.AwaitFinalConfirm, summaryPrompt(state))
	}

	// Every slot is resolved and the user confirmed: execute.
	text, err := e.executeReplacement(ctx, state)
	if err != nil {
		return e.finish(ctx, state, domain.OutcomeUnavailable, promptUnavailable)
	}
	return e.finish(ctx, state, domain.OutcomeCompleted, text)
}

// ask sets the prompt and awaiting tag, records the prompt in the transcript,
// and signals the driver to continue.
func (e *Engine) ask(ctx context.Context, state *domain.State, awaiting domain.Awaiting, prompt string) (*domain.State, bool) {
	state.Awaiting = awaiting
	state.Prompt = prompt
	state.Append(domain.RoleAssistant, prompt)

	e.logger.Debug("prompting user", "session_id", state.SessionID, "awaiting", awaiting)
	if e.hooks.OnPrompt != nil {
		e.hooks.OnPrompt(ctx, &domain.PromptEvent{
			Timestamp: time.Now().UTC(),
			SessionID: state.SessionID,
			Awaiting:  awaiting,
			Prompt:    prompt,
		})
	}
	return state, false
}

// finish marks the session terminal and signals the driver to stop. The
// reducer announces outcomes it sets itself, so only a fresh transition is
// announced here.
func (e *Engine) finish(ctx context.Context, state *domain.State, outcome domain.Outcome, prompt string) (*domain.State, bool) {
	fresh := state.Outcome != outcome

	state.Outcome = outcome
	state.Awaiting = domain.AwaitNone
	state.Prompt = prompt
	state.Append(domain.RoleAssistant, prompt)

	if fresh {
		e.sessionEnded(ctx, state)
	}
	return state, true
}

// sessionEnded logs the terminal transition and fires the OnOutcome hook.
// Called exactly once per session, at the point the outcome is set.
func (e *Engine) sessionEnded(ctx context.Context, state *domain.State) {
	e.logger.Info("session ended", "session_id", state.SessionID, "outcome", state.Outcome)
	if e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			Timestamp: time.Now().UTC(),
			SessionID: state.SessionID,
			Outcome:   state.Outcome,
		})
	}
}

func (e *Engine) slotFilled(ctx context.Context, state *domain.State, slot, value string) {
	e.logger.Debug("slot filled", "session_id", state.SessionID, "slot", slot)
	if e.hooks.OnSlotFill != nil {
		e.hooks.OnSlotFill(ctx, &domain.SlotEvent{
			Timestamp: time.Now().UTC(),
			SessionID: state.SessionID,
			Slot:      slot,
			Value:     value,
		})
	}
}

// observeDirectory wraps a directory call with hooks, logging and timing.
func (e *Engine) observeDirectory(ctx context.Context, state *domain.State, op, cardID string, fn func() error) error {
	start := time.Now()
	if e.hooks.OnDirectoryCall != nil {
		e.hooks.OnDirectoryCall(ctx, &domain.DirectoryEvent{
			Timestamp: start.UTC(),
			SessionID: state.SessionID,
			Op:        op,
			CardID:    cardID,
		})
	}

	err := fn()

	elapsed := time.Since(start)
	// "No address on file" is an expected answer, not a failure.
	failed := err != nil && !errors.Is(err, domain.ErrAddressNotFound)
	if failed {
		e.logger.Warn("directory call failed", "session_id", state.SessionID, "op", op, "err", err)
	}
	if e.hooks.OnDirectoryReturn != nil {
		e.hooks.OnDirectoryReturn(ctx, &domain.DirectoryEvent{
			Timestamp: time.Now().UTC(),
			SessionID: state.SessionID,
			Op:        op,
			CardID:    cardID,
			Elapsed:   elapsed,
			IsError:   failed,
		})
	}
	return err
}

func (e *Engine) listCards(ctx context.Context, state *domain.State) ([]domain.Card, error) {
	var cards []domain.Card
	err := e.observeDirectory(ctx, state, "list_cards", "", func() error {
		var err error
		cards, err = e.directory.ListCards(ctx, state.UserID)
		return err
	})
	return cards, err
}

func (e *Engine) fetchAddress(ctx context.Context, state *domain.State) (string, error) {
	var addr string
	err := e.observeDirectory(ctx, state, "fetch_address", state.SelectedCard, func() error {
		var err error
		addr, err = e.directory.FetchAddress(ctx, state.SelectedCard, state.UserID)
		return err
	})
	return addr, err
}

func (e *Engine) updateAddress(ctx context.Context, state *domain.State, addr string) error {
	return e.observeDirectory(ctx, state, "update_address", state.SelectedCard, func() error {
		return e.directory.UpdateAddress(ctx, state.SelectedCard, addr, state.UserID)
	})
}

func (e *Engine) executeReplacement(ctx context.Context, state *domain.State) (string, error) {
	var text string
	err := e.observeDirectory(ctx, state, "execute_replacement", state.SelectedCard, func() error {
		var err error
		text, err = e.directory.ExecuteReplacement(ctx, state.SelectedCard, state.Address, state.UserID)
		return err
	})
	return text, err
}
