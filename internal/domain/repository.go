package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Extractor is the opaque text-to-JSON extraction provider
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (string, error)
}

// ProductStore is the keyed record store. Get returns ErrProductNotFound when absent.
type ProductStore interface {
	Get(ctx context.Context, url string) (*ProductRecord, error)
	Insert(ctx context.Context, record *ProductRecord) error
	Patch(ctx context.Context, url string, patch ProductPatch) error
}

// UserStore supplies authenticated profiles and records scan usage
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	FlagUser(ctx context.Context, id string, reason string) error
	IncrementScanUsage(ctx context.Context, id string) (int, error)
}
