package enrich

import "time"

// Snapshot is the merged view of all third-party data folded into a
// post: current conditions, astronomy, and snow forecast fields. The
// zero value is the fully-degraded snapshot used when every provider is
// unreachable and the cache is cold; composition must work with it.
type Snapshot struct {
	// Current conditions.
	ConditionText string
	ConditionCode *int
	IsDay         *bool
	CloudCoverPct *float64

	// Astronomy.
	Sunrise   string
	Sunset    string
	MoonPhase string

	// Gridded snow forecast.
	SnowRateCmH *float64
	SnowDayCm   *float64
	WMOCode     *int

	FetchedAt time.Time
}

// Day reports the daytime flag, defaulting to true when the conditions
// provider did not supply one.
func (s Snapshot) Day() bool {
	if s.IsDay == nil {
		return true
	}
	return *s.IsDay
}
