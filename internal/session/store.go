// Package session implements the per-browser session: an opaque blob of
// named JSON values kept in a pluggable backend (Redis in production,
// in-process memory for dev and tests) and addressed by a cookie.
//
// Concurrent requests for the same session race read-then-write with
// last-writer-wins semantics. That is deliberate: two tabs starting a
// login flow at once leave only the most recently saved flow state
// verifiable. Do not add locking here.
package session

import (
	"context"
	"encoding/json"
	"time"
)

// Store persists session blobs keyed by session id.
type Store interface {
	// Load returns the blob for id. The second return is false when no
	// session exists under that id.
	Load(ctx context.Context, id string) (map[string]json.RawMessage, bool, error)

	// Save writes the blob under id, replacing any existing one, with
	// the given lifetime.
	Save(ctx context.Context, id string, data map[string]json.RawMessage, ttl time.Duration) error

	// Delete removes the blob. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
