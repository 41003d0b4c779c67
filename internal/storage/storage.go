// Package storage exposes the browser-localStorage-like capability the game
// persists into: a keyed store of JSON-encoded values. Absent keys are not
// errors, they read as "no value".
package storage

import "context"

// Store is a keyed JSON value store.
//
// Get decodes the value under key into dest and reports whether the key was
// present. Set encodes value as JSON and writes it under key. Remove deletes
// the key; removing an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Keys used by the game core.
const (
	KeyFavorites = "favorites"
	KeyTopScores = "topScores"
)
