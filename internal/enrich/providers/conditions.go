package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// Conditions is the normalized current-conditions payload. It is also
// the shape persisted to the enrichment cache.
type Conditions struct {
	Text     string  `json:"text"`
	Code     int     `json:"code"`
	IsDay    bool    `json:"is_day"`
	CloudPct float64 `json:"cloud_pct"`
}

// ConditionsProvider fetches current conditions from WeatherAPI.com.
type ConditionsProvider struct {
	name    string
	apiKey  string
	query   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewConditionsProvider builds a WeatherAPI current-conditions provider.
// query is whatever WeatherAPI accepts for "q": "lat,lon" or "city".
func NewConditionsProvider(client *http.Client, apiKey, query string) *ConditionsProvider {
	return &ConditionsProvider{
		name:    "conditions",
		apiKey:  apiKey,
		query:   query,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi-current"),
	}
}

func (p *ConditionsProvider) Name() string {
	return p.name
}

func (p *ConditionsProvider) Fetch(ctx context.Context) (Conditions, error) {
	if p.apiKey == "" {
		return Conditions{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", p.query)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetchWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return Conditions{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			IsDay     int     `json:"is_day"`
			Cloud     float64 `json:"cloud"`
			Condition struct {
				Text string `json:"text"`
				Code int    `json:"code"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Conditions{}, err
	}

	return Conditions{
		Text:     payload.Current.Condition.Text,
		Code:     payload.Current.Condition.Code,
		IsDay:    payload.Current.IsDay == 1,
		CloudPct: payload.Current.Cloud,
	}, nil
}
