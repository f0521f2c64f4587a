package domain

import "context"

// KeyValueStore is the persistence surface the history layer needs.
// A missing key is reported as ok == false, never as an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type UserRepository interface {
	AllowedUsernames(ctx context.Context) ([]string, error)
}
