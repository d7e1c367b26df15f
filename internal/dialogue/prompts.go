package dialogue

import (
	"fmt"
	"strings"

	"github.com/aretw0/cardflow/pkg/domain"
)

const (
	promptReason = "We can help you replace your card. First, what happened to it? (for example: lost, stolen, damaged)"

	promptNewAddress = "Please enter the full delivery address for your replacement card."

	promptYesNo = "Please answer \"yes\" to ship to the address on file, or \"no\" to enter a different one."

	promptConfirmCancel = "Please reply \"confirm\" to order the replacement, or \"cancel\" to stop."

	promptNoCards = "We couldn't find any cards on your account, so there is nothing to replace. Please contact support if this doesn't look right."

	promptUnavailable = "We're having trouble reaching the card service right now. Nothing has been changed on your account - please try again in a few minutes."

	promptCancelled = "No problem - the replacement has been cancelled and nothing was changed on your account."
)

func closingPrompt(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeCancelled:
		return promptCancelled
	case domain.OutcomeNoCards:
		return promptNoCards
	case domain.OutcomeUnavailable:
		return promptUnavailable
	default:
		return promptCancelled
	}
}

func cardListPrompt(cards []domain.Card) string {
	var b strings.Builder
	b.WriteString("Which card would you like to replace? Reply with the last four digits:\n")
	for _, c := range cards {
		fmt.Fprintf(&b, "\n  - %s ending %s", c.Product, c.ID)
	}
	return b.String()
}

func invalidCardPrompt(input string) string {
	return fmt.Sprintf("%q doesn't match any of your cards. Please reply with the last four digits of one of the cards listed above.", input)
}

func confirmAddressPrompt(cardID, address string) string {
	return fmt.Sprintf("The delivery address on file for the card ending %s is:\n\n  %s\n\nShould we ship the replacement there? (yes/no)", cardID, address)
}

func missingAddressPrompt(cardID string) string {
	return fmt.Sprintf("We don't have a delivery address on file for the card ending %s. %s", cardID, promptNewAddress)
}

func summaryPrompt(state *domain.State) string {
	return fmt.Sprintf(
		"To recap: we'll cancel the card ending %s (reason: %s) and ship a replacement to:\n\n  %s\n\nReply \"confirm\" to proceed, or \"cancel\" to stop.",
		state.SelectedCard, state.Reason, state.Address,
	)
}
