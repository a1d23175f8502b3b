package enrich

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheEntry is the on-disk shape of one provider's cached payload.
type cacheEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Cache is a time-boxed on-disk cache with one JSON file per provider.
// Put overwrites the provider's single slot; Get serves the payload only
// while it is younger than the provider's max age. Age is always
// checked at read time, for every provider.
type Cache struct {
	dir        string
	defaultAge time.Duration
	maxAge     map[string]time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewCache creates a cache rooted at dir. defaultAge applies to any
// provider without an explicit max age.
func NewCache(dir string, defaultAge time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Cache{
		dir:        dir,
		defaultAge: defaultAge,
		maxAge:     make(map[string]time.Duration),
		now:        time.Now,
	}, nil
}

// SetMaxAge overrides the freshness window for a single provider.
func (c *Cache) SetMaxAge(provider string, age time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAge[provider] = age
}

func (c *Cache) ageFor(provider string) time.Duration {
	if age, ok := c.maxAge[provider]; ok {
		return age
	}
	return c.defaultAge
}

func (c *Cache) path(provider string) string {
	return filepath.Join(c.dir, provider+".json")
}

// Get returns the cached payload for a provider, or false when the slot
// is absent, unreadable, or older than the provider's max age.
func (c *Cache) Get(provider string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(provider))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if c.now().Sub(entry.Timestamp) >= c.ageFor(provider) {
		return nil, false
	}
	return entry.Payload, true
}

// Put stores a payload for a provider, stamping it with the current
// time and overwriting whatever was there.
func (c *Cache) Put(provider string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", provider, err)
	}

	entry := cacheEntry{Timestamp: c.now(), Payload: raw}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding %s cache entry: %w", provider, err)
	}

	if err := os.WriteFile(c.path(provider), data, 0o644); err != nil {
		return fmt.Errorf("writing %s cache file: %w", provider, err)
	}
	return nil
}
