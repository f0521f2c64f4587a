package redis

import (
	"context"
	"encoding/json"
	"fmt"
)

// AllowedUsersKey holds a JSON array of usernames.
const AllowedUsersKey = "allowed_users"

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) AllowedUsernames(ctx context.Context) ([]string, error) {
	raw, ok, err := r.store.Get(ctx, AllowedUsersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("decode %s: %w", AllowedUsersKey, err)
	}
	return names, nil
}

// SetAllowedUsernames replaces the stored allow-list.
func (r *UserRepository) SetAllowedUsernames(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, AllowedUsersKey, string(data))
}
