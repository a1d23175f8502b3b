package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jgrandin/wxpost/internal/enrich/providers"
)

// Service fetches all enrichment providers, falling back to the on-disk
// cache when a live fetch fails. Each provider degrades independently;
// a total outage yields the zero Snapshot.
type Service struct {
	conditions *providers.ConditionsProvider
	astronomy  *providers.AstronomyProvider
	snow       *providers.SnowProvider
	cache      *Cache
	log        *slog.Logger
}

// NewService wires the three providers to a shared cache. Any provider
// may be nil, in which case its fields stay degraded.
func NewService(
	conditions *providers.ConditionsProvider,
	astronomy *providers.AstronomyProvider,
	snow *providers.SnowProvider,
	cache *Cache,
	log *slog.Logger,
) *Service {
	return &Service{
		conditions: conditions,
		astronomy:  astronomy,
		snow:       snow,
		cache:      cache,
		log:        log,
	}
}

// Snapshot assembles the enrichment snapshot from live fetches, cached
// payloads, or zero values, in that order of preference.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{FetchedAt: time.Now().UTC()}

	if s.conditions != nil {
		if cond, ok := fetchCached(ctx, s.cache, s.log, s.conditions.Name(), s.conditions.Fetch); ok {
			snap.ConditionText = cond.Text
			snap.ConditionCode = &cond.Code
			snap.IsDay = &cond.IsDay
			snap.CloudCoverPct = &cond.CloudPct
		}
	}

	if s.astronomy != nil {
		if astro, ok := fetchCached(ctx, s.cache, s.log, s.astronomy.Name(), s.astronomy.Fetch); ok {
			snap.Sunrise = astro.Sunrise
			snap.Sunset = astro.Sunset
			snap.MoonPhase = astro.MoonPhase
		}
	}

	if s.snow != nil {
		if sn, ok := fetchCached(ctx, s.cache, s.log, s.snow.Name(), s.snow.Fetch); ok {
			snap.SnowRateCmH = &sn.RateCmH
			snap.SnowDayCm = &sn.DayTotalCm
			snap.WMOCode = &sn.WMOCode
			if snap.CloudCoverPct == nil {
				snap.CloudCoverPct = &sn.CloudPct
			}
		}
	}

	return snap
}

// fetchCached tries the live provider first, writing through to the
// cache on success. On failure it serves the cached payload if one is
// still fresh.
func fetchCached[T any](
	ctx context.Context,
	cache *Cache,
	log *slog.Logger,
	name string,
	fetch func(context.Context) (T, error),
) (T, bool) {
	var zero T

	payload, err := fetch(ctx)
	if err == nil {
		if cache != nil {
			if putErr := cache.Put(name, payload); putErr != nil {
				log.Warn("cache write failed", "provider", name, "error", putErr)
			}
		}
		return payload, true
	}

	log.Warn("provider fetch failed, trying cache", "provider", name, "error", err)

	if cache == nil {
		return zero, false
	}
	raw, ok := cache.Get(name)
	if !ok {
		log.Warn("no fresh cached payload", "provider", name)
		return zero, false
	}

	var cached T
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Warn("cached payload unreadable", "provider", name, "error", err)
		return zero, false
	}
	return cached, true
}
