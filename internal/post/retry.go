package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Retrier wraps a Poster with a bounded retry loop: up to MaxTries
// attempts with a fixed wait between them. Rate limits are terminal.
// The client is built once by the caller; only the attempt repeats.
type Retrier struct {
	poster   Poster
	maxTries int
	wait     time.Duration
	log      *slog.Logger

	// sleep is swappable so tests run without real delays.
	sleep func(context.Context, time.Duration) error
}

// NewRetrier builds a Retrier. maxTries below 1 is treated as 1.
func NewRetrier(poster Poster, maxTries int, wait time.Duration, log *slog.Logger) *Retrier {
	if maxTries < 1 {
		maxTries = 1
	}
	return &Retrier{
		poster:   poster,
		maxTries: maxTries,
		wait:     wait,
		log:      log,
		sleep:    sleepCtx,
	}
}

// Post attempts the post until it succeeds, the platform rate-limits,
// the context ends, or the attempt budget runs out.
func (r *Retrier) Post(ctx context.Context, text string, mediaIDs []string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxTries; attempt++ {
		id, err := r.poster.Post(ctx, text, mediaIDs)
		if err == nil {
			return id, nil
		}

		if errors.Is(err, ErrRateLimited) {
			r.log.Error("rate limited, not retrying", "attempt", attempt)
			return "", err
		}

		lastErr = err
		r.log.Warn("post attempt failed", "attempt", attempt, "of", r.maxTries, "error", err)

		if attempt < r.maxTries {
			if err := r.sleep(ctx, r.wait); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("max tries (%d) exceeded: %w", r.maxTries, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
