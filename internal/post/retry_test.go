package post

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// fakePoster fails a fixed number of times before succeeding.
type fakePoster struct {
	calls    int
	failures int
	err      error
}

func (f *fakePoster) Post(ctx context.Context, text string, mediaIDs []string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "tweet-123", nil
}

func testRetrier(p Poster, maxTries int) *Retrier {
	r := NewRetrier(p, maxTries, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRetrierSucceedsAfterFailures(t *testing.T) {
	fake := &fakePoster{failures: 2, err: errors.New("boom")}

	id, err := testRetrier(fake, 3).Post(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if id != "tweet-123" {
		t.Errorf("id = %q, want tweet-123", id)
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}

func TestRetrierRateLimitIsTerminal(t *testing.T) {
	fake := &fakePoster{failures: 10, err: ErrRateLimited}

	_, err := testRetrier(fake, 3).Post(context.Background(), "hello", nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retry on rate limit)", fake.calls)
	}
}

func TestRetrierExhaustsBudget(t *testing.T) {
	cause := errors.New("server error")
	fake := &fakePoster{failures: 10, err: cause}

	_, err := testRetrier(fake, 3).Post(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
	if !errors.Is(err, cause) {
		t.Errorf("final error should wrap the last attempt's error, got %v", err)
	}
	if !strings.Contains(err.Error(), "max tries (3) exceeded") {
		t.Errorf("err = %v, want max-tries wording", err)
	}
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	fake := &fakePoster{failures: 10, err: errors.New("boom")}

	r := NewRetrier(fake, 3, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Post(ctx, "hello", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1 before the cancelled sleep", fake.calls)
	}
}
