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

// Astronomy is the normalized astronomy payload: local sunrise/sunset
// times as provider-formatted strings plus the moon phase name.
type Astronomy struct {
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
	MoonPhase string `json:"moon_phase"`
}

// AstronomyProvider fetches sunrise/sunset and moon phase from
// WeatherAPI.com.
type AstronomyProvider struct {
	name    string
	apiKey  string
	query   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewAstronomyProvider(client *http.Client, apiKey, query string) *AstronomyProvider {
	return &AstronomyProvider{
		name:    "astronomy",
		apiKey:  apiKey,
		query:   query,
		baseURL: "https://api.weatherapi.com/v1/astronomy.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi-astronomy"),
	}
}

func (p *AstronomyProvider) Name() string {
	return p.name
}

func (p *AstronomyProvider) Fetch(ctx context.Context) (Astronomy, error) {
	if p.apiKey == "" {
		return Astronomy{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", p.query)
		values.Set("dt", time.Now().Format("2006-01-02"))
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetchWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return Astronomy{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Astronomy struct {
			Astro struct {
				Sunrise   string `json:"sunrise"`
				Sunset    string `json:"sunset"`
				MoonPhase string `json:"moon_phase"`
			} `json:"astro"`
		} `json:"astronomy"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Astronomy{}, err
	}

	return Astronomy{
		Sunrise:   payload.Astronomy.Astro.Sunrise,
		Sunset:    payload.Astronomy.Astro.Sunset,
		MoonPhase: payload.Astronomy.Astro.MoonPhase,
	}, nil
}
