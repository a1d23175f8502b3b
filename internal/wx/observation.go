package wx

import (
	"context"
	"time"
)

// Observation is a single timestamped row of station sensor readings.
// Units are the station's native US units; nil means the sensor did not
// report for that interval.
type Observation struct {
	Time    time.Time
	Station string

	OutTempF      *float64
	DewpointF     *float64
	OutHumidity   *float64
	WindSpeedMph  *float64
	WindGustMph   *float64
	WindDirDeg    *float64
	BarometerInHg *float64
	RainRateInHr  *float64
	DayRainIn     *float64
	RadiationWm2  *float64
}

// History is the slice of the archive store the trend analysis needs:
// the row closest to a target time within a search window.
type History interface {
	Nearest(ctx context.Context, target time.Time, window time.Duration) (Observation, error)
}

// Float is a convenience for building optional sensor values.
func Float(v float64) *float64 {
	return &v
}
