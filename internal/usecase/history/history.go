// Package history keeps the rolling per-user conversation in a
// key-value store as a JSON array, oldest first.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"ratatoskr/internal/domain"
)

const (
	DefaultLimit = 15
	keyPrefix    = "messages:"
)

func Key(username string) string {
	return keyPrefix + username
}

type Repository struct {
	store domain.KeyValueStore
	limit int
}

func NewRepository(store domain.KeyValueStore, limit int) *Repository {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Repository{store: store, limit: limit}
}

func (r *Repository) Limit() int {
	return r.limit
}

// Load returns the stored history for username. An absent key is an
// empty history.
func (r *Repository) Load(ctx context.Context, username string) ([]domain.StoredMessage, error) {
	raw, ok, err := r.store.Get(ctx, Key(username))
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var msgs []domain.StoredMessage
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("decode history for %s: %w", username, err)
	}
	return msgs, nil
}

// Append adds msgs after the existing history and keeps only the most
// recent entries up to the limit. Callers serialize appends per user.
func (r *Repository) Append(ctx context.Context, username string, msgs ...domain.StoredMessage) error {
	current, err := r.Load(ctx, username)
	if err != nil {
		return err
	}

	current = append(current, msgs...)
	if len(current) > r.limit {
		current = current[len(current)-r.limit:]
	}

	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode history for %s: %w", username, err)
	}
	return r.store.Set(ctx, Key(username), string(data))
}

func (r *Repository) Clear(ctx context.Context, username string) error {
	return r.store.Delete(ctx, Key(username))
}
