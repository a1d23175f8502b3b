package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jgrandin/wxpost/internal/wx"
)

var validate = validator.New()

// Duration wraps time.Duration so YAML files can say "90s" or "1h"
// instead of nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full application configuration. Values come from an
// optional YAML file, overridden by environment variables; a .env file
// is loaded first when present.
type Config struct {
	// X platform credentials (OAuth1 user context).
	XAppKey           string `yaml:"x_app_key"`
	XAppKeySecret     string `yaml:"x_app_key_secret"`
	XOAuthToken       string `yaml:"x_oauth_token"`
	XOAuthTokenSecret string `yaml:"x_oauth_token_secret"`

	// Enrichment providers.
	WeatherAPIKey string  `yaml:"weatherapi_key"`
	LocationQuery string  `yaml:"location_query"` // WeatherAPI "q": "lat,lon" or city
	Latitude      float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64 `yaml:"longitude" validate:"gte=-180,lte=180"`

	// Station archive.
	ArchivePath string `yaml:"archive_path" validate:"required"`
	Station     string `yaml:"station"`

	// Enrichment cache.
	CacheDir        string   `yaml:"cache_dir"`
	CacheMaxAge     Duration `yaml:"cache_max_age"`
	SnowCacheMaxAge Duration `yaml:"snow_cache_max_age"`

	// Posting.
	FooterURL  string   `yaml:"footer_url"`
	ImagePaths []string `yaml:"image_paths"`
	MaxTries   int      `yaml:"max_tries" validate:"gte=1"`
	RetryWait  Duration `yaml:"retry_wait"`

	// Mode: "continuous" or "scheduled".
	Mode         string   `yaml:"mode" validate:"oneof=continuous scheduled"`
	PostTimes    []string `yaml:"post_times" validate:"dive,datetime=15:04"`
	Timezone     string   `yaml:"timezone"`
	PollInterval Duration `yaml:"poll_interval"`

	// Site calibration constants.
	TrendThresholdMb float64  `yaml:"trend_threshold_mb" validate:"gt=0"`
	TrendLookback    Duration `yaml:"trend_lookback"`
	UVDivisor        float64  `yaml:"uv_divisor" validate:"gt=0"`

	// Status server; empty disables it.
	ListenAddr string `yaml:"listen_addr"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Set by the CLI flags, not the file.
	DryRun bool `yaml:"-"`
}

// Load reads configuration: defaults, then the YAML file at path (if
// any), then environment overrides. Call Validate before using it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &Config{
		ArchivePath:      "weewx.sdb",
		CacheDir:         ".wxpost-cache",
		CacheMaxAge:      Duration(time.Hour),
		SnowCacheMaxAge:  Duration(time.Hour),
		MaxTries:         3,
		RetryWait:        Duration(5 * time.Second),
		Mode:             "scheduled",
		PollInterval:     Duration(30 * time.Second),
		TrendThresholdMb: 1.0,
		TrendLookback:    Duration(3 * time.Hour),
		UVDivisor:        wx.DefaultUVDivisor,
		LogLevel:         "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.XAppKey = getenvDefault("WXPOST_X_APP_KEY", c.XAppKey)
	c.XAppKeySecret = getenvDefault("WXPOST_X_APP_KEY_SECRET", c.XAppKeySecret)
	c.XOAuthToken = getenvDefault("WXPOST_X_OAUTH_TOKEN", c.XOAuthToken)
	c.XOAuthTokenSecret = getenvDefault("WXPOST_X_OAUTH_TOKEN_SECRET", c.XOAuthTokenSecret)
	c.WeatherAPIKey = getenvDefault("WXPOST_WEATHERAPI_KEY", c.WeatherAPIKey)
	c.LocationQuery = getenvDefault("WXPOST_LOCATION", c.LocationQuery)
	c.Latitude = getenvFloat("WXPOST_LAT", c.Latitude)
	c.Longitude = getenvFloat("WXPOST_LON", c.Longitude)
	c.ArchivePath = getenvDefault("WXPOST_ARCHIVE", c.ArchivePath)
	c.Station = getenvDefault("WXPOST_STATION", c.Station)
	c.CacheDir = getenvDefault("WXPOST_CACHE_DIR", c.CacheDir)
	c.FooterURL = getenvDefault("WXPOST_FOOTER_URL", c.FooterURL)
	c.Mode = getenvDefault("WXPOST_MODE", c.Mode)
	c.Timezone = getenvDefault("WXPOST_TZ", c.Timezone)
	c.ListenAddr = getenvDefault("WXPOST_LISTEN", c.ListenAddr)
	c.LogLevel = getenvDefault("WXPOST_LOG_LEVEL", c.LogLevel)
	c.MaxTries = getenvInt("WXPOST_MAX_TRIES", c.MaxTries)
	c.PostTimes = getenvList("WXPOST_POST_TIMES", c.PostTimes)
	c.ImagePaths = getenvList("WXPOST_IMAGES", c.ImagePaths)

	if v := os.Getenv("WXPOST_CACHE_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheMaxAge = Duration(d)
		}
	}
}

// Validate checks the configuration. Credential checks are skipped in
// dry-run mode so --test works without secrets.
func (c *Config) Validate() error {
	var problems []string

	if !c.DryRun {
		for _, cred := range []struct{ name, value string }{
			{"x_app_key", c.XAppKey},
			{"x_app_key_secret", c.XAppKeySecret},
			{"x_oauth_token", c.XOAuthToken},
			{"x_oauth_token_secret", c.XOAuthTokenSecret},
		} {
			if cred.value == "" {
				problems = append(problems, cred.name+" is required")
			}
		}
	}

	if c.Mode == "scheduled" && len(c.PostTimes) == 0 {
		problems = append(problems, "post_times is required in scheduled mode")
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			problems = append(problems, fmt.Sprintf("invalid timezone %q", c.Timezone))
		}
	}

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				problems = append(problems, fmt.Sprintf("%s fails %q", ve.Field(), ve.Tag()))
			}
		} else {
			return err
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration invalid:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the system
// local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ProviderQuery is what the WeatherAPI providers use for "q": the
// explicit query when set, otherwise "lat,lon".
func (c *Config) ProviderQuery() string {
	if c.LocationQuery != "" {
		return c.LocationQuery
	}
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
