package dialogue

import (
	"context"
	"strings"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Reduce applies a raw user utterance to the state according to the Awaiting
// tag set by the previous Decide call. The raw text is always recorded in the
// transcript first; whether it is accepted depends only on the tag.
//
// Exactly one slot transitions per accepted input. Rejected input re-issues a
// prompt and leaves Awaiting and every slot unchanged, so the driver can loop
// indefinitely until the user answers in the expected shape.
func (e *Engine) Reduce(ctx context.Context, state *domain.State, raw string) *domain.State {
	text := strings.TrimSpace(raw)
	state.LatestUtterance = text
	state.Append(domain.RoleUser, raw)

	switch state.Awaiting {
	case domain.AwaitNone:
		// Nothing pending; Decide advances the flow on the next call.
		return state

	case domain.AwaitReason:
		if text == "" {
			state.Prompt = promptReason
			return state
		}
		state.Reason = text
		state.Awaiting = domain.AwaitNone
		e.slotFilled(ctx, state, "reason", text)

	case domain.AwaitCardSelection:
		card, ok := findCard(state.Cards, text)
		if !ok {
			state.Prompt = invalidCardPrompt(text)
			return state
		}
		state.SelectedCard = card.ID
		state.Awaiting = domain.AwaitNone
		e.slotFilled(ctx, state, "card", card.ID)

	case domain.AwaitAddressConfirm:
		switch strings.ToLower(text) {
		case "yes", "y":
			state.AddressConfirmed = true
			state.Awaiting = domain.AwaitNone
			e.slotFilled(ctx, state, "address_confirmed", state.Address)
		case "no", "n":
			state.Awaiting = domain.AwaitNewAddress
			state.Prompt = promptNewAddress
		default:
			state.Prompt = promptYesNo
		}

	case domain.AwaitNewAddress:
		if text == "" {
			state.Prompt = promptNewAddress
			return state
		}
		// The directory record must stay consistent with the accepted
		// address; write through before committing the slot.
		if err := e.updateAddress(ctx, state, text); err != nil {
			state.Outcome = domain.OutcomeUnavailable
			state.Awaiting = domain.AwaitNone
			e.sessionEnded(ctx, state)
			return state
		}
		state.Address = text
		state.AddressConfirmed = true
		state.Awaiting = domain.AwaitNone
		e.slotFilled(ctx, state, "address", text)

	case domain.AwaitFinalConfirm:
		switch strings.ToLower(text) {
		case "confirm", "yes", "y":
			state.FinalConfirmed = true
			state.Awaiting = domain.AwaitNone
			e.slotFilled(ctx, state, "final_confirmed", "")
		case "cancel", "no", "n":
			// Terminal; the engine emits the cancellation message on
			// the next Decide. FinalConfirmed stays false and the
			// directory is never touched.
			state.Outcome = domain.OutcomeCancelled
			state.Awaiting = domain.AwaitNone
			e.sessionEnded(ctx, state)
		default:
			state.Prompt = promptConfirmCancel
		}
	}

	return state
}

// findCard matches user input against the cached card listing. Input is
// matched case-insensitively against the card identifier (last four digits).
func findCard(cards []domain.Card, input string) (domain.Card, bool) {
	for _, c := range cards {
		if strings.EqualFold(c.ID, input) {
			return c, true
		}
	}
	return domain.Card{}, false
}
