package domain

import "fmt"

// Card is one card on a user's account as reported by the account directory.
// ID is the last four digits of the card number, which is the identifier the
// dialogue exposes to the user. It is unique per user.
type Card struct {
	ID      string `json:"id" yaml:"id"`
	Product string `json:"product" yaml:"product"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// ReplacementConfirmation is the canonical confirmation text produced by a
// successful replacement. Directory implementations share it so every backend
// reports the operation the same way.
func ReplacementConfirmation(cardID, address string) string {
	return fmt.Sprintf(
		"Card ending %s cancelled successfully. A replacement card will be delivered to %s within 5-7 business days.",
		cardID, address,
	)
}
