// Package memory provides in-memory implementations of the account directory
// and the session state store. They back tests, examples, and the demo CLI.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Replacement is one audit record of an executed replacement.
type Replacement struct {
	UserID  string
	CardID  string
	Address string
	At      time.Time
}

// Directory implements ports.Directory in memory.
// A single mutex serializes every operation, which satisfies the per-card
// atomicity requirement for concurrent sessions.
type Directory struct {
	mu           sync.Mutex
	accounts     map[string][]domain.Card
	replacements []Replacement
}

// NewDirectory creates an empty in-memory directory.
func NewDirectory() *Directory {
	return &Directory{
		accounts: make(map[string][]domain.Card),
	}
}

// seedFile is the YAML shape of an accounts fixture.
type seedFile struct {
	Users []struct {
		ID    string        `yaml:"id"`
		Cards []domain.Card `yaml:"cards"`
	} `yaml:"users"`
}

// NewDirectoryFromFile creates a directory seeded from a YAML accounts file.
func NewDirectoryFromFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	d := NewDirectory()
	for _, u := range seed.Users {
		d.SeedUser(u.ID, u.Cards...)
	}
	return d, nil
}

// SeedUser registers (or replaces) the cards on a user's account.
func (d *Directory) SeedUser(userID string, cards ...domain.Card) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[userID] = append([]domain.Card(nil), cards...)
}

// ListCards returns the user's active cards.
func (d *Directory) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cards := d.accounts[userID]
	out := make([]domain.Card, len(cards))
	copy(out, cards)
	return out, nil
}

// FetchAddress returns the delivery address on file for the card.
func (d *Directory) FetchAddress(ctx context.Context, cardID, userID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	card, err := d.find(cardID, userID)
	if err != nil {
		return "", err
	}
	if card.Address == "" {
		return "", domain.ErrAddressNotFound
	}
	return card.Address, nil
}

// UpdateAddress replaces the delivery address on file for the card.
func (d *Directory) UpdateAddress(ctx context.Context, cardID, newAddress, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cards := d.accounts[userID]
	for i := range cards {
		if cards[i].ID == cardID {
			cards[i].Address = newAddress
			return nil
		}
	}
	return fmt.Errorf("update address for card %s: %w", cardID, domain.ErrCardNotFound)
}

// ExecuteReplacement cancels the card, records the reissue, and returns the
// confirmation text.
func (d *Directory) ExecuteReplacement(ctx context.Context, cardID, deliveryAddress, userID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.find(cardID, userID); err != nil {
		return "", err
	}

	d.replacements = append(d.replacements, Replacement{
		UserID:  userID,
		CardID:  cardID,
		Address: deliveryAddress,
		At:      time.Now().UTC(),
	})
	return domain.ReplacementConfirmation(cardID, deliveryAddress), nil
}

// Replacements returns the audit trail of executed replacements.
func (d *Directory) Replacements() []Replacement {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Replacement, len(d.replacements))
	copy(out, d.replacements)
	return out
}

// find must be called with the mutex held.
func (d *Directory) find(cardID, userID string) (domain.Card, error) {
	for _, c := range d.accounts[userID] {
		if c.ID == cardID {
			return c, nil
		}
	}
	return domain.Card{}, fmt.Errorf("card %s for user %s: %w", cardID, userID, domain.ErrCardNotFound)
}
