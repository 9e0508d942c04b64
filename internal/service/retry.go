package service

import (
	"context"
	"time"
)

// RetryPolicy reruns a failing operation a fixed number of times with a
// constant delay between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do runs op until it succeeds or the attempts are exhausted. The error from
// the last attempt is returned. Cancelling the context cuts the wait between
// attempts short and returns the most recent error.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return err
		}
	}
	return err
}
