package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in-process. Meant for development and tests;
// records are stored as serialized JSON so Get hands out snapshots with the
// same isolation a remote backend would give.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	// Expired sessions are purged every 10 minutes.
	return &MemoryStore{cache: cache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Create(ctx context.Context, inputType, inputValue string) (*Record, error) {
	rec := NewRecord(inputType, inputValue)
	if err := s.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	raw, found := s.cache.Get(sessionKey(id))
	if !found {
		return nil, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal(raw.([]byte), &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &rec, nil
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.UserSessionId, err)
	}
	s.cache.Set(sessionKey(rec.UserSessionId), data, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*Record)) (*Record, error) {
	return readModifyWrite(ctx, s, id, mutate)
}
