package kv

import (
	"context"
)

// Repository is a durable key/value store.
// Get returns (nil, nil) when the key is absent. Delete is idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Batch is implemented by stores that can apply several writes atomically.
type Batch interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}
