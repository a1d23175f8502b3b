package wx

import (
	"context"
	"time"
)

// TrendDirection describes how the barometric pressure has moved over the
// lookback period.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendSteady  TrendDirection = "steady"

	// TrendUnknown means no historical sample was found to compare
	// against. Callers display it as steady.
	TrendUnknown TrendDirection = "unknown"
)

// PressureTrend is the current pressure in millibars plus its direction
// of change.
type PressureTrend struct {
	ValueMb   *float64
	Direction TrendDirection
}

// TrendConfig carries the empirical site constants for trend analysis.
// The defaults match a 3-hour lookback with a 1.0mb significance
// threshold.
type TrendConfig struct {
	Lookback    time.Duration
	Window      time.Duration
	ThresholdMb float64
}

// DefaultTrendConfig returns the stock lookback/threshold settings.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		Lookback:    3 * time.Hour,
		Window:      30 * time.Minute,
		ThresholdMb: 1.0,
	}
}

// PressureTrendAt computes the pressure trend for the given current
// observation by looking up the historical sample closest to
// current.Time - Lookback (within ±Window) and comparing the two in
// millibars. Sign convention: current minus past above the threshold is
// rising.
func PressureTrendAt(ctx context.Context, h History, current Observation, cfg TrendConfig) PressureTrend {
	nowMb := InHgToMb(current.BarometerInHg)

	if h == nil || nowMb == nil {
		return PressureTrend{ValueMb: nowMb, Direction: TrendUnknown}
	}

	past, err := h.Nearest(ctx, current.Time.Add(-cfg.Lookback), cfg.Window)
	if err != nil {
		return PressureTrend{ValueMb: nowMb, Direction: TrendUnknown}
	}

	pastMb := InHgToMb(past.BarometerInHg)
	if pastMb == nil {
		return PressureTrend{ValueMb: nowMb, Direction: TrendUnknown}
	}

	return PressureTrend{ValueMb: nowMb, Direction: classifyDelta(*nowMb-*pastMb, cfg.ThresholdMb)}
}

func classifyDelta(deltaMb, threshold float64) TrendDirection {
	switch {
	case deltaMb > threshold:
		return TrendRising
	case deltaMb < -threshold:
		return TrendFalling
	default:
		return TrendSteady
	}
}

// rainNoiseFloorMm is the daily accumulation below which the gauge is
// assumed to be reporting drift, not rain.
const rainNoiseFloorMm = 0.05

// RainAccumulation converts a daily rain total from inches to
// millimetres, treating totals at or below the noise floor as no
// accumulation at all.
func RainAccumulation(dayRainIn *float64) *float64 {
	mm := InToMm(dayRainIn)
	if mm == nil || *mm <= rainNoiseFloorMm {
		return nil
	}
	return mm
}
