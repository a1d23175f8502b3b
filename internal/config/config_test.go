package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Mode != "scheduled" {
		t.Errorf("mode = %q, want scheduled", cfg.Mode)
	}
	if cfg.CacheMaxAge.Std() != time.Hour {
		t.Errorf("cache max age = %v, want 1h", cfg.CacheMaxAge.Std())
	}
	if cfg.MaxTries != 3 {
		t.Errorf("max tries = %d, want 3", cfg.MaxTries)
	}
	if cfg.TrendThresholdMb != 1.0 {
		t.Errorf("trend threshold = %v, want 1.0", cfg.TrendThresholdMb)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wxpost.yml")
	data := `
station: Hilltop
mode: continuous
cache_max_age: 30m
poll_interval: 90s
post_times: ["07:00", "19:30"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Station != "Hilltop" {
		t.Errorf("station = %q", cfg.Station)
	}
	if cfg.Mode != "continuous" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.CacheMaxAge.Std() != 30*time.Minute {
		t.Errorf("cache max age = %v, want 30m", cfg.CacheMaxAge.Std())
	}
	if cfg.PollInterval.Std() != 90*time.Second {
		t.Errorf("poll interval = %v, want 90s", cfg.PollInterval.Std())
	}
	if len(cfg.PostTimes) != 2 || cfg.PostTimes[0] != "07:00" {
		t.Errorf("post times = %v", cfg.PostTimes)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wxpost.yml")
	if err := os.WriteFile(path, []byte("station: FileStation\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("WXPOST_STATION", "EnvStation")
	t.Setenv("WXPOST_POST_TIMES", "06:00, 18:00")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Station != "EnvStation" {
		t.Errorf("station = %q, want env override", cfg.Station)
	}
	if len(cfg.PostTimes) != 2 || cfg.PostTimes[1] != "18:00" {
		t.Errorf("post times = %v, want trimmed list from env", cfg.PostTimes)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.PostTimes = []string{"07:00"}

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure without credentials")
	}
	if !strings.Contains(err.Error(), "x_app_key is required") {
		t.Errorf("err = %v, want missing-credential message", err)
	}

	// Dry-run mode skips the credential checks.
	cfg.DryRun = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dry run validate: %v", err)
	}
}

func TestValidateScheduledNeedsTimes(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.DryRun = true
	cfg.PostTimes = nil

	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "post_times is required") {
		t.Fatalf("err = %v, want post_times message", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.DryRun = true
	cfg.PostTimes = []string{"7am"}
	cfg.Timezone = "Mars/Olympus_Mons"
	cfg.Latitude = 120

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{"invalid timezone", "Latitude", "PostTimes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err missing %q: %v", want, err)
		}
	}
}

func TestProviderQuery(t *testing.T) {
	cfg := &Config{Latitude: 44.2706, Longitude: -71.3033}
	if got := cfg.ProviderQuery(); got != "44.2706,-71.3033" {
		t.Errorf("query = %q", got)
	}

	cfg.LocationQuery = "Mount Washington"
	if got := cfg.ProviderQuery(); got != "Mount Washington" {
		t.Errorf("query = %q, want explicit override", got)
	}
}
