package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStateNotFound is returned when a character has no saved loot finder state.
var ErrStateNotFound = errors.New("loot finder state not found")

// SavedState is one character's persisted loot finder payload together with
// the mod version that wrote it.
type SavedState struct {
	CharacterID int64
	ModVersion  string
	Payload     []byte
	UpdatedAt   time.Time
}

// LootFinderRepository stores loot finder payloads keyed by character.
type LootFinderRepository struct {
	db *pgxpool.Pool
}

// NewLootFinderRepository creates a LootFinderRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLootFinderRepository(db *pgxpool.Pool) *LootFinderRepository {
	return &LootFinderRepository{db: db}
}

// Save upserts the payload for characterID.
//
// Precondition: characterID > 0; modVersion must be non-empty.
// Postcondition: A later Load returns exactly modVersion and payload.
func (r *LootFinderRepository) Save(ctx context.Context, characterID int64, modVersion string, payload []byte) error {
	if characterID <= 0 {
		return fmt.Errorf("saving loot finder state: invalid character id %d", characterID)
	}
	if modVersion == "" {
		return errors.New("saving loot finder state: mod version must not be empty")
	}
	if payload == nil {
		payload = []byte{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO loot_finder_state (character_id, mod_version, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (character_id) DO UPDATE
		SET mod_version = EXCLUDED.mod_version,
		    payload     = EXCLUDED.payload,
		    updated_at  = NOW()`,
		characterID, modVersion, payload,
	)
	if err != nil {
		return fmt.Errorf("saving loot finder state for %d: %w", characterID, err)
	}
	return nil
}

// Load returns the saved payload for characterID.
//
// Postcondition: Returns ErrStateNotFound when nothing was saved.
func (r *LootFinderRepository) Load(ctx context.Context, characterID int64) (SavedState, error) {
	st := SavedState{CharacterID: characterID}
	err := r.db.QueryRow(ctx, `
		SELECT mod_version, payload, updated_at
		FROM loot_finder_state WHERE character_id = $1`,
		characterID,
	).Scan(&st.ModVersion, &st.Payload, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedState{}, ErrStateNotFound
		}
		return SavedState{}, fmt.Errorf("loading loot finder state for %d: %w", characterID, err)
	}
	return st, nil
}

// Delete removes the saved payload for characterID. Deleting absent state is
// not an error.
func (r *LootFinderRepository) Delete(ctx context.Context, characterID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM loot_finder_state WHERE character_id = $1`, characterID); err != nil {
		return fmt.Errorf("deleting loot finder state for %d: %w", characterID, err)
	}
	return nil
}
