package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/catalog"
)

// ErrDeckNotFound is returned when a deck has no stored cards.
var ErrDeckNotFound = errors.New("deck not found")

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// CardRepository stores deck lists as ordered card definitions.
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a card repository.
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const insertCardSQL = `
INSERT INTO card_definitions
	(deck, position, name, card_type, cost, rarity, attack, health, effect, power, target_count, target_mode, durability, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
ON CONFLICT (deck, position) DO UPDATE SET
	name = EXCLUDED.name,
	card_type = EXCLUDED.card_type,
	cost = EXCLUDED.cost,
	rarity = EXCLUDED.rarity,
	attack = EXCLUDED.attack,
	health = EXCLUDED.health,
	effect = EXCLUDED.effect,
	power = EXCLUDED.power,
	target_count = EXCLUDED.target_count,
	target_mode = EXCLUDED.target_mode,
	durability = EXCLUDED.durability,
	updated_at = now()`

const selectDeckSQL = `
SELECT name, card_type, cost, rarity, attack, health, effect, power, target_count, target_mode, durability
FROM card_definitions
WHERE deck = $1
ORDER BY position`

// ReplaceDeck stores defs as the named deck, replacing any previous contents.
// Every definition is validated before anything is written.
func (r *CardRepository) ReplaceDeck(ctx context.Context, deck string, defs []catalog.Definition) error {
	for i, def := range defs {
		if _, err := catalog.Build(def); err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM card_definitions WHERE deck = $1`, deck); err != nil {
		return fmt.Errorf("failed to clear deck %s: %w", deck, err)
	}
	if err := insertDefinitions(ctx, tx, deck, defs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deck %s: %w", deck, err)
	}

	r.db.logger.Info("stored deck",
		zap.String("deck", deck),
		zap.Int("cards", len(defs)),
	)
	return nil
}

func insertDefinitions(ctx context.Context, q querier, deck string, defs []catalog.Definition) error {
	batch := &pgx.Batch{}
	for i, def := range defs {
		batch.Queue(insertCardSQL, insertArgs(deck, i, def)...)
	}
	results := q.SendBatch(ctx, batch)
	for i := range defs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert card %d of deck %s: %w", i, deck, err)
		}
	}
	return results.Close()
}

func insertArgs(deck string, position int, def catalog.Definition) []any {
	var durability *int
	if def.Durability != nil {
		d := int(*def.Durability)
		durability = &d
	}
	return []any{
		deck, position, def.Name, def.Type, def.Cost, def.Rarity,
		def.Attack, def.Health, def.Effect, def.Power, def.TargetCount, def.TargetMode,
		durability,
	}
}

// Deck returns the definitions of the named deck in position order.
func (r *CardRepository) Deck(ctx context.Context, deck string) ([]catalog.Definition, error) {
	defs, err := queryDeck(ctx, r.db, deck)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%s: %w", deck, ErrDeckNotFound)
	}
	return defs, nil
}

func queryDeck(ctx context.Context, q querier, deck string) ([]catalog.Definition, error) {
	rows, err := q.Query(ctx, selectDeckSQL, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck %s: %w", deck, err)
	}
	defs, err := pgx.CollectRows(rows, scanDefinition)
	if err != nil {
		return nil, fmt.Errorf("failed to scan deck %s: %w", deck, err)
	}
	return defs, nil
}

func scanDefinition(row pgx.CollectableRow) (catalog.Definition, error) {
	var (
		def        catalog.Definition
		durability *int
	)
	err := row.Scan(
		&def.Name, &def.Type, &def.Cost, &def.Rarity,
		&def.Attack, &def.Health, &def.Effect, &def.Power,
		&def.TargetCount, &def.TargetMode, &durability,
	)
	if err != nil {
		return catalog.Definition{}, err
	}
	if durability != nil {
		def.Durability = catalog.Uses(*durability)
	}
	return def, nil
}

// DeckNames lists the stored decks in sorted order.
func (r *CardRepository) DeckNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT deck FROM card_definitions ORDER BY deck`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan deck names: %w", err)
	}
	return names, nil
}

// Catalog loads every stored deck.
func (r *CardRepository) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	names, err := r.DeckNames(ctx)
	if err != nil {
		return nil, err
	}
	c := &catalog.Catalog{Decks: make(map[string][]catalog.Definition, len(names))}
	for _, name := range names {
		defs, err := queryDeck(ctx, r.db, name)
		if err != nil {
			return nil, err
		}
		c.Decks[name] = defs
	}
	return c, nil
}

// DeleteDeck removes the named deck and reports whether it existed.
func (r *CardRepository) DeleteDeck(ctx context.Context, deck string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM card_definitions WHERE deck = $1`, deck)
	if err != nil {
		return false, fmt.Errorf("failed to delete deck %s: %w", deck, err)
	}
	return tag.RowsAffected() > 0, nil
}
