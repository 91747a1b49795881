package domain

import (
	"context"
	"time"
)

// CacheRepository is a TTL key/value store. Values are opaque bytes so that
// in-memory and Redis backends behave the same way.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetDel returns a value and removes it in one step, so that only one
	// caller can ever take it
	GetDel(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository supplies the product snapshot of a store.
// Filtering to the right store is the repository's job; inactive products
// may be included and are skipped by the matcher.
type CatalogRepository interface {
	ProductsByStore(ctx context.Context, storeID string) ([]Product, error)
}
