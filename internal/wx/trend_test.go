package wx

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeHistory returns a fixed observation (or error) for any lookup.
type fakeHistory struct {
	obs Observation
	err error
}

func (f fakeHistory) Nearest(ctx context.Context, target time.Time, window time.Duration) (Observation, error) {
	return f.obs, f.err
}

// inHg pressure that converts to exactly the given millibar value.
func mbAsInHg(mb float64) *float64 {
	return Float(mb / 33.8639)
}

func TestPressureTrendRising(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	current := Observation{Time: now, BarometerInHg: mbAsInHg(1013)}
	past := fakeHistory{obs: Observation{Time: now.Add(-3 * time.Hour), BarometerInHg: mbAsInHg(1010)}}

	trend := PressureTrendAt(context.Background(), past, current, DefaultTrendConfig())

	// Sign convention: current minus past above +1.0mb is rising.
	if trend.Direction != TrendRising {
		t.Fatalf("direction = %q, want rising", trend.Direction)
	}
	if trend.ValueMb == nil || *trend.ValueMb < 1012.9 || *trend.ValueMb > 1013.1 {
		t.Fatalf("value = %v, want ~1013", trend.ValueMb)
	}
}

func TestPressureTrendFalling(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	current := Observation{Time: now, BarometerInHg: mbAsInHg(1013)}
	past := fakeHistory{obs: Observation{BarometerInHg: mbAsInHg(1016)}}

	trend := PressureTrendAt(context.Background(), past, current, DefaultTrendConfig())
	if trend.Direction != TrendFalling {
		t.Fatalf("direction = %q, want falling", trend.Direction)
	}
}

func TestPressureTrendSteadyWithinThreshold(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	current := Observation{Time: now, BarometerInHg: mbAsInHg(1013)}
	past := fakeHistory{obs: Observation{BarometerInHg: mbAsInHg(1012.5)}}

	trend := PressureTrendAt(context.Background(), past, current, DefaultTrendConfig())
	if trend.Direction != TrendSteady {
		t.Fatalf("direction = %q, want steady", trend.Direction)
	}
}

func TestPressureTrendNoHistory(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	current := Observation{Time: now, BarometerInHg: mbAsInHg(1013)}
	past := fakeHistory{err: errors.New("no archive data")}

	trend := PressureTrendAt(context.Background(), past, current, DefaultTrendConfig())

	// The no-history case is distinct from steady but displays as it.
	if trend.Direction != TrendUnknown {
		t.Fatalf("direction = %q, want unknown", trend.Direction)
	}
	if trend.ValueMb == nil {
		t.Fatal("current value should survive a missing historical sample")
	}
}

func TestPressureTrendNoCurrentValue(t *testing.T) {
	current := Observation{Time: time.Now()}
	trend := PressureTrendAt(context.Background(), fakeHistory{}, current, DefaultTrendConfig())
	if trend.ValueMb != nil || trend.Direction != TrendUnknown {
		t.Fatalf("got %+v, want nil value and unknown direction", trend)
	}
}

func TestRainAccumulation(t *testing.T) {
	if got := RainAccumulation(nil); got != nil {
		t.Errorf("nil total should stay nil, got %v", *got)
	}

	// 0.001in is 0.0254mm, below the noise floor.
	if got := RainAccumulation(Float(0.001)); got != nil {
		t.Errorf("noise-level total should be absent, got %v", *got)
	}

	got := RainAccumulation(Float(0.2))
	if got == nil || *got < 5.07 || *got > 5.09 {
		t.Errorf("RainAccumulation(0.2in) = %v, want ~5.08mm", got)
	}
}
