package domain

import "time"

// Awaiting identifies which slot's answer the engine expects on the next user
// turn. It is the single channel the input reducer consults to interpret raw
// text; the reducer never re-derives intent from the utterance alone.
type Awaiting string

const (
	// AwaitNone means the decision engine should advance the flow rather
	// than wait for input.
	AwaitNone Awaiting = "none"

	AwaitReason         Awaiting = "reason"
	AwaitCardSelection  Awaiting = "card_selection"
	AwaitAddressConfirm Awaiting = "address_confirmation"
	AwaitNewAddress     Awaiting = "new_address"
	AwaitFinalConfirm   Awaiting = "final_confirmation"
)

// Outcome marks how a session ended. It is empty while the dialogue is in
// flight and set exactly once when a terminal state is reached.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeNoCards   Outcome = "no_cards"

	// OutcomeUnavailable covers directory-layer failures (storage, network).
	// The session ends with an apologetic prompt instead of an error.
	OutcomeUnavailable Outcome = "directory_unavailable"
)

// Terminal reports whether the outcome ends the session.
func (o Outcome) Terminal() bool { return o != OutcomeNone }

// Role tags a transcript entry with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. The transcript is append-only and used for
// audit and debugging only; control decisions never read it.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// State is the mutable record threaded through every turn of one session.
// It is owned by the session driver and mutated only by the decision engine
// and the input reducer.
//
// The five slots (Reason, SelectedCard, Address, AddressConfirmed,
// FinalConfirmed) are filled strictly left to right; unset slots are zero
// values.
type State struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`

	// LatestUtterance is the last raw text received from the user.
	LatestUtterance string `json:"latest_utterance,omitempty"`

	// Transcript records the conversation for audit purposes.
	Transcript []Message `json:"transcript,omitempty"`

	// Prompt is the text to display to the user this turn.
	Prompt string `json:"prompt,omitempty"`

	// Cards caches the directory listing for the user. nil means the
	// directory has not been consulted yet; an entry check is pending.
	Cards []Card `json:"cards,omitempty"`

	SelectedCard     string `json:"selected_card,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Address          string `json:"address,omitempty"`
	AddressConfirmed bool   `json:"address_confirmed,omitempty"`
	FinalConfirmed   bool   `json:"final_confirmed,omitempty"`

	Awaiting Awaiting `json:"awaiting"`
	Outcome  Outcome  `json:"outcome,omitempty"`
}

// NewState creates an empty session state with all slots unset.
func NewState(sessionID, userID string) *State {
	return &State{
		SessionID: sessionID,
		UserID:    userID,
		Awaiting:  AwaitNone,
	}
}

// Append adds a message to the transcript.
func (s *State) Append(role Role, content string) {
	s.Transcript = append(s.Transcript, Message{
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	})
}

// Done reports whether the session has reached a terminal outcome.
func (s *State) Done() bool { return s.Outcome.Terminal() }

// Clone returns a deep copy of the state. Stores use it so callers cannot
// mutate persisted state through a shared pointer.
func (s *State) Clone() *State {
	cp := *s
	if s.Transcript != nil {
		cp.Transcript = make([]Message, len(s.Transcript))
		copy(cp.Transcript, s.Transcript)
	}
	if s.Cards != nil {
		cp.Cards = make([]Card, len(s.Cards))
		copy(cp.Cards, s.Cards)
	}
	return &cp
}
