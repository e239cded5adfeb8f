// Package kv provides the durable string-keyed storage the client persists
// its state into: cart contents, session data, cached settings. Values are
// serialized text; the store itself is opaque.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound signals an absent key.
var ErrNotFound = errors.New("kv: key not found")

// Store is asynchronous durable storage keyed by string. Implementations
// must return ErrNotFound from Get for absent keys and treat Delete of an
// absent key as a no-op.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Well-known keys shared across the client.
const (
	KeyUserData         = "user_data"
	KeyAuthToken        = "auth_token"
	KeyRecentSearches   = "recent_searches"
	KeyAppSettings      = "app_settings"
	KeyCartItems        = "cart_items"
	KeyFavoriteProducts = "favorite_products"
)
