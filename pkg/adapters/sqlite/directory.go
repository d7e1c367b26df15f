// Package sqlite provides a SQLite-backed account directory. It persists
// accounts, cards, and the replacement audit trail in a single database file,
// which suits long-lived deployments where the in-memory directory would lose
// state on restart.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Replacement is one audit record of an executed replacement.
type Replacement struct {
	UserID  string
	CardID  string
	Address string
	At      time.Time
}

// Directory implements ports.Directory over a SQLite file.
//
// Write operations run inside transactions so concurrent sessions touching
// the same card serialize at the database instead of interleaving.
type Directory struct {
	db *sql.DB
}

// Open opens (or creates) the directory database at path and bootstraps the
// schema.
func Open(path string) (*Directory, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("directory path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	d := &Directory{db: db}
	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return d, nil
}

// Close releases the underlying database handle.
func (d *Directory) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *Directory) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			user_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			product TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, card_id)
		)`,
		`CREATE TABLE IF NOT EXISTS replacements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			address TEXT NOT NULL,
			executed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_user ON cards(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_replacements_user ON replacements(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// seedFile mirrors the YAML accounts fixture accepted by the memory adapter.
type seedFile struct {
	Users []struct {
		ID    string        `yaml:"id"`
		Cards []domain.Card `yaml:"cards"`
	} `yaml:"users"`
}

// SeedFromFile loads a YAML accounts fixture into the database, replacing
// the cards of every user the file names.
func (d *Directory) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, u := range seed.Users {
		if err := d.SeedUser(ctx, u.ID, u.Cards...); err != nil {
			return err
		}
	}
	return nil
}

// SeedUser registers (or replaces) the cards on a user's account.
func (d *Directory) SeedUser(ctx context.Context, userID string, cards ...domain.Card) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear cards: %w", err)
		}
		for i, c := range cards {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO cards (user_id, card_id, product, address, position) VALUES (?, ?, ?, ?, ?)`,
				userID, c.ID, c.Product, c.Address, i)
			if err != nil {
				return fmt.Errorf("insert card %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// ListCards returns the user's active cards.
func (d *Directory) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT card_id, product, address FROM cards WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.Product, &c.Address); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// FetchAddress returns the delivery address on file for the card.
func (d *Directory) FetchAddress(ctx context.Context, cardID, userID string) (string, error) {
	var address string
	err := d.db.QueryRowContext(ctx,
		`SELECT address FROM cards WHERE user_id = ? AND card_id = ?`, userID, cardID).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("card %s for user %s: %w", cardID, userID, domain.ErrCardNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("fetch address: %w", err)
	}
	if address == "" {
		return "", domain.ErrAddressNotFound
	}
	return address, nil
}

// UpdateAddress replaces the delivery address on file for the card.
func (d *Directory) UpdateAddress(ctx context.Context, cardID, newAddress, userID string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE cards SET address = ? WHERE user_id = ? AND card_id = ?`, newAddress, userID, cardID)
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("update address for card %s: %w", cardID, domain.ErrCardNotFound)
		}
		return nil
	})
}

// ExecuteReplacement cancels the card, records the reissue in the audit
// table, and returns the confirmation text. The existence check and the
// audit insert share one transaction.
func (d *Directory) ExecuteReplacement(ctx context.Context, cardID, deliveryAddress, userID string) (string, error) {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM cards WHERE user_id = ? AND card_id = ?`, userID, cardID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("card %s for user %s: %w", cardID, userID, domain.ErrCardNotFound)
		}
		if err != nil {
			return fmt.Errorf("look up card: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO replacements (user_id, card_id, address, executed_at) VALUES (?, ?, ?, ?)`,
			userID, cardID, deliveryAddress, time.Now().UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("record replacement: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return domain.ReplacementConfirmation(cardID, deliveryAddress), nil
}

// Replacements returns the audit trail of executed replacements for a user,
// oldest first.
func (d *Directory) Replacements(ctx context.Context, userID string) ([]Replacement, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT user_id, card_id, address, executed_at FROM replacements WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list replacements: %w", err)
	}
	defer rows.Close()

	var out []Replacement
	for rows.Next() {
		var r Replacement
		var at int64
		if err := rows.Scan(&r.UserID, &r.CardID, &r.Address, &at); err != nil {
			return nil, fmt.Errorf("scan replacement: %w", err)
		}
		r.At = time.UnixMilli(at).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list replacements: %w", err)
	}
	return out, nil
}

// withTx runs fn inside a transaction, rolling back on any error.
func (d *Directory) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
