package session

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("session not found")

// Store persists session records as whole documents. Writes are
// last-write-wins: Update re-reads the latest record, applies the mutation
// and puts the full document back. There is no per-field patching and no
// optimistic locking; a running flow is the only writer for its session and
// chat traffic on one session is expected to be serial.
type Store interface {
	Create(ctx context.Context, inputType, inputValue string) (*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Update(ctx context.Context, id string, mutate func(*Record)) (*Record, error)
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// readModifyWrite is the shared Update implementation for all backends.
func readModifyWrite(ctx context.Context, s Store, id string, mutate func(*Record)) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(rec)
	if err := s.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
