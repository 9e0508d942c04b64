package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the default session backend. One key per session holding the
// record as a JSON string.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects using a redis URL (redis://host:port/db) and pings
// once so a bad address fails at startup, not on first request.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Create(ctx context.Context, inputType, inputValue string) (*Record, error) {
	rec := NewRecord(inputType, inputValue)
	if err := s.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.UserSessionId, err)
	}
	if err := s.client.Set(ctx, sessionKey(rec.UserSessionId), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", rec.UserSessionId, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, id string, mutate func(*Record)) (*Record, error) {
	return readModifyWrite(ctx, s, id, mutate)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
