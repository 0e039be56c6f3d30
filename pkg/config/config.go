// Package config loads and validates the dashboard configuration.
//
// Configuration is TOML. Every field has a default, so an empty file is
// valid; an invalid value is a startup-fatal error rather than a silent
// fallback, because a dashboard that ignores its configuration is worse
// than one that refuses to start.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	apperrors "github.com/topoview/topoview/pkg/errors"
)

// Backend names accepted by the cache and store sections.
const (
	CacheNull   = "null"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"

	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the root configuration.
type Config struct {
	Source SourceConfig `toml:"source"`
	View   ViewConfig   `toml:"view"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
}

// SourceConfig selects and tunes the topology data source. Exactly one of
// BaseURL or File must be set.
type SourceConfig struct {
	// BaseURL is the router administration API root.
	BaseURL string `toml:"base_url"`

	// File points at a payload JSON file instead of a live router.
	File string `toml:"file"`

	// RefreshIntervalMs is the poll interval for full topology refreshes.
	RefreshIntervalMs int `toml:"refresh_interval_ms"`

	// TimeoutMs bounds each HTTP request.
	TimeoutMs int `toml:"timeout_ms"`

	// AuthToken is sent as a bearer token when set.
	AuthToken string `toml:"auth_token"`
}

// ViewConfig tunes the visualizer.
type ViewConfig struct {
	// MaxVisibleNodes is the total node budget including the root.
	MaxVisibleNodes int `toml:"max_visible_nodes"`

	// ViewportCulling hides nodes outside the visible viewport.
	ViewportCulling bool `toml:"viewport_culling"`

	ZoomMin float64 `toml:"zoom_min"`
	ZoomMax float64 `toml:"zoom_max"`

	CanvasWidth  float64 `toml:"canvas_width"`
	CanvasHeight float64 `toml:"canvas_height"`
}

// CacheConfig selects the response-cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	TTLMs         int    `toml:"ttl_ms"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects the layout-save backend.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// LogConfig tunes logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Default returns the configuration used when a field is absent.
func Default() Config {
	return Config{
		Source: SourceConfig{
			RefreshIntervalMs: 2000,
			TimeoutMs:         10000,
		},
		View: ViewConfig{
			MaxVisibleNodes: 50,
			ViewportCulling: true,
			ZoomMin:         0.3,
			ZoomMax:         3.0,
			CanvasWidth:     1200,
			CanvasHeight:    800,
		},
		Cache: CacheConfig{
			Backend: CacheNull,
			TTLMs:   60000,
		},
		Store: StoreConfig{
			Backend: StoreFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result. An
// empty path returns validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field. The first violation is returned as an
// INVALID_CONFIG error; callers treat it as fatal at startup.
func (c *Config) Validate() error {
	if c.Source.BaseURL != "" && c.Source.File != "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"source.base_url and source.file are mutually exclusive")
	}
	if c.Source.BaseURL != "" {
		if err := apperrors.ValidateURL(c.Source.BaseURL); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "source.base_url")
		}
	}
	if c.Source.RefreshIntervalMs <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"source.refresh_interval_ms must be > 0, got %d", c.Source.RefreshIntervalMs)
	}
	if c.Source.TimeoutMs <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"source.timeout_ms must be > 0, got %d", c.Source.TimeoutMs)
	}

	if c.View.MaxVisibleNodes < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"view.max_visible_nodes must be >= 1, got %d", c.View.MaxVisibleNodes)
	}
	if c.View.ZoomMin <= 0 || c.View.ZoomMax <= 0 || c.View.ZoomMin >= c.View.ZoomMax {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"view zoom bounds must satisfy 0 < zoom_min < zoom_max, got [%v, %v]",
			c.View.ZoomMin, c.View.ZoomMax)
	}
	if c.View.CanvasWidth <= 0 || c.View.CanvasHeight <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"view canvas dimensions must be positive, got %vx%v",
			c.View.CanvasWidth, c.View.CanvasHeight)
	}

	switch c.Cache.Backend {
	case CacheNull, CacheMemory, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig,
				"cache.redis_addr is required for the redis backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cache.backend must be one of null, memory, file, redis; got %q", c.Cache.Backend)
	}
	if c.Cache.TTLMs < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cache.ttl_ms must be >= 0, got %d", c.Cache.TTLMs)
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig,
				"store.mongo_uri is required for the mongo backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"store.backend must be one of memory, file, mongo; got %q", c.Store.Backend)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"log.format must be text or json; got %q", c.Log.Format)
	}
	return nil
}
