package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// Snow is the normalized gridded-forecast payload: the current snowfall
// rate, today's accumulated total summed from the hourly series, the WMO
// weather code, and cloud cover.
type Snow struct {
	RateCmH    float64 `json:"rate_cm_h"`
	DayTotalCm float64 `json:"day_total_cm"`
	WMOCode    int     `json:"wmo_code"`
	CloudPct   float64 `json:"cloud_pct"`
}

// SnowProvider fetches current snowfall and the hourly snowfall series
// from Open-Meteo. Open-Meteo requires no API key.
type SnowProvider struct {
	name    string
	lat     float64
	lon     float64
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSnowProvider(client *http.Client, lat, lon float64) *SnowProvider {
	return &SnowProvider{
		name:    "snow",
		lat:     lat,
		lon:     lon,
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openmeteo"),
	}
}

func (p *SnowProvider) Name() string {
	return p.name
}

func (p *SnowProvider) Fetch(ctx context.Context) (Snow, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", p.lat))
		values.Set("longitude", fmt.Sprintf("%f", p.lon))
		values.Set("current", "snowfall,weather_code,cloud_cover")
		values.Set("hourly", "snowfall")
		values.Set("forecast_days", "1")
		values.Set("timezone", "auto")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetchWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return Snow{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Snowfall    float64 `json:"snowfall"`
			WeatherCode int     `json:"weather_code"`
			CloudCover  float64 `json:"cloud_cover"`
			Time        string  `json:"time"`
		} `json:"current"`
		Hourly struct {
			Time     []string  `json:"time"`
			Snowfall []float64 `json:"snowfall"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snow{}, err
	}

	return Snow{
		RateCmH:    payload.Current.Snowfall,
		DayTotalCm: sumPastHours(payload.Hourly.Time, payload.Hourly.Snowfall, payload.Current.Time),
		WMOCode:    payload.Current.WeatherCode,
		CloudPct:   payload.Current.CloudCover,
	}, nil
}

// sumPastHours totals the hourly snowfall entries up to and including
// the current hour. Open-Meteo returns local times in RFC3339 without a
// zone suffix; a missing or unparsable current time sums the whole day.
func sumPastHours(times []string, values []float64, current string) float64 {
	cutoff, err := time.Parse("2006-01-02T15:04", current)
	haveCutoff := err == nil

	var total float64
	for i, ts := range times {
		if i >= len(values) {
			break
		}
		if haveCutoff {
			t, err := time.Parse("2006-01-02T15:04", ts)
			if err != nil || t.After(cutoff) {
				continue
			}
		}
		total += values[i]
	}
	return total
}
