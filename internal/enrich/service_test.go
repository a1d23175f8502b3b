package enrich

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jgrandin/wxpost/internal/enrich/providers"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchCachedWritesThrough(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	live := providers.Conditions{Text: "Clear", CloudPct: 5}
	fetch := func(ctx context.Context) (providers.Conditions, error) { return live, nil }

	got, ok := fetchCached(context.Background(), cache, discardLogger(), "conditions", fetch)
	if !ok || got != live {
		t.Fatalf("got %+v/%v, want live payload", got, ok)
	}

	// The live result must now be on disk for the next outage.
	if _, ok := cache.Get("conditions"); !ok {
		t.Fatal("live fetch was not written through to the cache")
	}
}

func TestFetchCachedFallsBackToCache(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	if err := cache.Put("conditions", providers.Conditions{Text: "Overcast"}); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	fetch := func(ctx context.Context) (providers.Conditions, error) {
		return providers.Conditions{}, errors.New("dial tcp: timeout")
	}

	got, ok := fetchCached(context.Background(), cache, discardLogger(), "conditions", fetch)
	if !ok {
		t.Fatal("expected the cached payload to serve the outage")
	}
	if got.Text != "Overcast" {
		t.Fatalf("got %q, want cached Overcast", got.Text)
	}
}

func TestFetchCachedStaleCacheIsMiss(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }
	if err := cache.Put("conditions", providers.Conditions{Text: "Overcast"}); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}
	cache.now = func() time.Time { return base.Add(2 * time.Hour) }

	fetch := func(ctx context.Context) (providers.Conditions, error) {
		return providers.Conditions{}, errors.New("dial tcp: timeout")
	}

	if _, ok := fetchCached(context.Background(), cache, discardLogger(), "conditions", fetch); ok {
		t.Fatal("stale cache entry should not serve")
	}
}

func TestSnapshotMergesProviders(t *testing.T) {
	// With no providers wired, Snapshot degrades to near-zero but is
	// still usable: composition renders N/A lines from it.
	svc := NewService(nil, nil, nil, nil, discardLogger())

	snap := svc.Snapshot(context.Background())
	if snap.ConditionCode != nil || snap.CloudCoverPct != nil {
		t.Fatalf("zero service produced data: %+v", snap)
	}
	if !snap.Day() {
		t.Error("unknown day/night should default to day")
	}
	if snap.FetchedAt.IsZero() {
		t.Error("snapshot should be stamped")
	}
}
