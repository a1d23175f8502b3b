package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jgrandin/wxpost/internal/wx"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "archive.sdb"), "Hilltop")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.EnsureSchema(); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	return store
}

func TestLatest(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		obs := wx.Observation{
			Time:     base.Add(time.Duration(i) * 5 * time.Minute),
			OutTempF: wx.Float(40 + float64(i)),
		}
		if err := store.Insert(ctx, obs); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !got.Time.Equal(base.Add(10 * time.Minute)) {
		t.Errorf("latest time = %v, want %v", got.Time, base.Add(10*time.Minute))
	}
	if got.OutTempF == nil || *got.OutTempF != 42 {
		t.Errorf("latest outTemp = %v, want 42", got.OutTempF)
	}
	if got.Station != "Hilltop" {
		t.Errorf("station = %q, want Hilltop", got.Station)
	}
	if got.WindSpeedMph != nil {
		t.Errorf("missing column should scan as nil, got %v", *got.WindSpeedMph)
	}
}

func TestLatestEmptyArchive(t *testing.T) {
	store := testStore(t)

	_, err := store.Latest(context.Background())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestNearest(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{0, 5 * time.Minute, 3 * time.Hour} {
		obs := wx.Observation{Time: base.Add(offset), BarometerInHg: wx.Float(29.9)}
		if err := store.Insert(ctx, obs); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	// Target a point 2 minutes past base: the base row is closest.
	got, err := store.Nearest(ctx, base.Add(2*time.Minute), 30*time.Minute)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if !got.Time.Equal(base) {
		t.Errorf("nearest time = %v, want %v", got.Time, base)
	}

	// A target far from every row with a tight window finds nothing.
	_, err = store.Nearest(ctx, base.Add(90*time.Minute), 10*time.Minute)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData for empty window", err)
	}
}

func TestLastNonNull(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	// Newest row has a null dayRain; the one before carries the value.
	if err := store.Insert(ctx, wx.Observation{Time: base, DayRainIn: wx.Float(0.2)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, wx.Observation{Time: base.Add(5 * time.Minute)}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.LastNonNull(ctx, "dayRain")
	if err != nil {
		t.Fatalf("lastNonNull: %v", err)
	}
	if got == nil || *got != 0.2 {
		t.Errorf("dayRain = %v, want 0.2", got)
	}

	// Unknown columns are rejected, not interpolated into SQL.
	if _, err := store.LastNonNull(ctx, "dateTime; DROP TABLE archive"); err == nil {
		t.Fatal("expected error for non-whitelisted column")
	}

	if _, err := store.LastNonNull(ctx, "radiation"); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData for all-null column", err)
	}
}

func TestNewerThan(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		obs := wx.Observation{Time: base.Add(time.Duration(i) * 5 * time.Minute)}
		if err := store.Insert(ctx, obs); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rows, err := store.NewerThan(ctx, base.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("newerThan: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (strictly after)", len(rows))
	}
	if !rows[0].Time.Before(rows[1].Time) {
		t.Error("rows should be ordered oldest first")
	}

	rows, err = store.NewerThan(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("newerThan: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want none", len(rows))
	}
}
