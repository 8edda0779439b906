// ABOUTME: Application configuration stored at XDG paths with environment overrides
// ABOUTME: Handles load, save, env layering via .env files, and device ID generation
package config

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
)

// Defaults applied when the config file is missing or partial.
const (
	DefaultDatabase        = "officesync.db"
	DefaultCacheTTL        = 60
	DefaultRefreshInterval = 300
)

// Config stores the sync layer's settings: where the local database lives,
// the realtime feed endpoint, and the cache and refresh timings in seconds.
type Config struct {
	EventFeedURL    string `json:"event_feed_url,omitempty"`
	Database        string `json:"database"`
	CacheTTL        int    `json:"cache_ttl"`
	RefreshInterval int    `json:"refresh_interval"`
	DeviceID        string `json:"device_id"`
	LogLevel        string `json:"log_level,omitempty"`
}

// Dir returns the XDG-compliant directory for configuration.
func Dir() string {
	return filepath.Join(xdg.DataHome, "officesync")
}

// Path returns the XDG-compliant path of the config file.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config file, layering a local .env file and environment
// variables on top. A missing file yields defaults. Environment overrides:
// - OFFICESYNC_EVENT_FEED_URL
// - OFFICESYNC_DATABASE
// - OFFICESYNC_CACHE_TTL
// - OFFICESYNC_REFRESH_INTERVAL
// - OFFICESYNC_DEVICE_ID
// - OFFICESYNC_LOG_LEVEL.
func Load() (*Config, error) {
	// A .env next to the binary feeds the overrides below; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Database:        DefaultDatabase,
		CacheTTL:        DefaultCacheTTL,
		RefreshInterval: DefaultRefreshInterval,
	}

	f, err := os.Open(Path())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("OFFICESYNC_EVENT_FEED_URL"); url != "" {
		cfg.EventFeedURL = url
	}
	if db := os.Getenv("OFFICESYNC_DATABASE"); db != "" {
		cfg.Database = db
	}
	if ttl := os.Getenv("OFFICESYNC_CACHE_TTL"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n > 0 {
			cfg.CacheTTL = n
		}
	}
	if interval := os.Getenv("OFFICESYNC_REFRESH_INTERVAL"); interval != "" {
		if n, err := strconv.Atoi(interval); err == nil && n >= 0 {
			cfg.RefreshInterval = n
		}
	}
	if deviceID := os.Getenv("OFFICESYNC_DEVICE_ID"); deviceID != "" {
		cfg.DeviceID = deviceID
	}
	if level := os.Getenv("OFFICESYNC_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

// Save writes the config to the XDG data directory with restricted
// permissions.
func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// DatabasePath resolves the database location: absolute values are used as
// is, bare names land in the config directory.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(Dir(), c.Database)
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// RefreshIntervalDuration returns the scheduler interval; zero disables the
// scheduler.
func (c *Config) RefreshIntervalDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// GenerateDeviceID generates a new ULID for device identification.
func GenerateDeviceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
