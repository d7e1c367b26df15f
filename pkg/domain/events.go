package domain

import (
	"context"
	"time"
)

// PromptEvent is emitted whenever the decision engine asks the user something.
type PromptEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Awaiting  Awaiting  `json:"awaiting"`
	Prompt    string    `json:"prompt"`
}

// SlotEvent is emitted when a slot is resolved (by the reducer, or by the
// engine on single-card auto-selection).
type SlotEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Slot      string    `json:"slot"`
	Value     string    `json:"value,omitempty"`
}

// DirectoryEvent wraps a call to the account directory.
type DirectoryEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	Op        string        `json:"op"`
	CardID    string        `json:"card_id,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
}

// OutcomeEvent is emitted once when a session reaches a terminal outcome.
type OutcomeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Outcome   Outcome   `json:"outcome"`
}

// LifecycleHooks defines callbacks for engine observability. All fields are
// optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnPrompt          func(context.Context, *PromptEvent)
	OnSlotFill        func(context.Context, *SlotEvent)
	OnDirectoryCall   func(context.Context, *DirectoryEvent)
	OnDirectoryReturn func(context.Context, *DirectoryEvent)
	OnOutcome         func(context.Context, *OutcomeEvent)
}
