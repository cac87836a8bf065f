// Package store keeps short-lived sign-in state: OAuth state values bound to a
// browser session and the ids of revoked session tokens.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is missing or expired.
var ErrNotFound = errors.New("store: key not found")

// StateStore is a TTL key/value store. Take reads and deletes in one step so
// a value can only be consumed once.
type StateStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Key prefixes
const (
	OAuthStatePrefix   = "oauth_state:"
	RevokedTokenPrefix = "revoked:"
)
