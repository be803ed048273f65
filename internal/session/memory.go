package session

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps session blobs in process memory with expiry. Meant
// for development and tests; state is lost on restart.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a memory store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(ttl, 10*time.Minute)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]json.RawMessage, bool, error) {
	v, ok := m.c.Get(id)
	if !ok {
		return nil, false, nil
	}
	stored := v.(map[string]json.RawMessage)
	// Copy so callers never mutate the cached blob in place.
	data := make(map[string]json.RawMessage, len(stored))
	for k, raw := range stored {
		data[k] = raw
	}
	return data, true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, data map[string]json.RawMessage, ttl time.Duration) error {
	copied := make(map[string]json.RawMessage, len(data))
	for k, raw := range data {
		copied[k] = raw
	}
	m.c.Set(id, copied, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.c.Delete(id)
	return nil
}
