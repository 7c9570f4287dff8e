package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store tracks active session ids. A missing id means logged out or expired.
type Store interface {
	Save(ctx context.Context, id string, userID uint, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (m *MemoryStore) Save(_ context.Context, id string, userID uint, ttl time.Duration) error {
	m.c.Set(id, userID, ttl)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.c.Get(id)
	return ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.c.Delete(id)
	return nil
}
