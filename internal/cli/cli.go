// Package cli implements the topoview command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/topoview/topoview/pkg/buildinfo"
	"github.com/topoview/topoview/pkg/cache"
	"github.com/topoview/topoview/pkg/config"
	"github.com/topoview/topoview/pkg/pipeline"
	"github.com/topoview/topoview/pkg/source"
	"github.com/topoview/topoview/pkg/store"
	"github.com/topoview/topoview/pkg/topo"
	"github.com/topoview/topoview/pkg/topo/layout"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "topoview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the TOML file loaded by every command; empty means
	// defaults only.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "topoview",
		Short:        "Topoview visualizes your home network topology",
		Long:         `Topoview is a terminal dashboard for router administration: it polls the router API and renders the network as an interactive radial map with draggable devices, pan, and zoom.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "path to topoview.toml")

	// Register all subcommands
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads and validates the configuration. Invalid configuration
// is fatal: commands refuse to start rather than run with values the user
// did not ask for.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.ConfigPath)
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCache builds the response cache selected by the configuration.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return cache.NewNullCache(), nil
	}
}

// newStore builds the layout-save store selected by the configuration.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreMongo:
		mc := store.MongoConfig{URI: cfg.MongoURI}
		if cfg.MongoDatabase != "" {
			mc.Database = cfg.MongoDatabase
		}
		if cfg.MongoCollection != "" {
			mc.Collection = cfg.MongoCollection
		}
		return store.NewMongoStore(ctx, mc)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = layoutDir(); err != nil {
				return nil, err
			}
		}
		return store.NewFileStore(dir)
	}
}

// newProvider builds the topology data source selected by the configuration.
func newProvider(cfg config.Config, responseCache cache.Cache) (source.Provider, error) {
	if cfg.Source.File != "" {
		return source.NewFileSource(cfg.Source.File), nil
	}

	opts := source.ClientOptions{
		BaseURL:  cfg.Source.BaseURL,
		Cache:    responseCache,
		CacheTTL: time.Duration(cfg.Cache.TTLMs) * time.Millisecond,
		Timeout:  time.Duration(cfg.Source.TimeoutMs) * time.Millisecond,
	}
	if cfg.Source.AuthToken != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + cfg.Source.AuthToken}
	}
	return source.NewClient(opts)
}

// newRunner wires a refresh pipeline from the configuration. The snapshot
// cache shares the response cache backend, scoped per data source so two
// routers never serve each other's fallback snapshot.
func (c *CLI) newRunner(cfg config.Config, provider source.Provider, snapshots cache.Cache) (*pipeline.Runner, error) {
	scope := cfg.Source.BaseURL
	if cfg.Source.File != "" {
		scope = cfg.Source.File
	}
	return pipeline.NewRunner(provider, pipeline.Options{
		MaxVisibleNodes: cfg.View.MaxVisibleNodes,
		ViewportCulling: cfg.View.ViewportCulling,
		Layout: layout.Options{
			Canvas: topo.Rect{MaxX: cfg.View.CanvasWidth, MaxY: cfg.View.CanvasHeight},
		},
		RefreshInterval: time.Duration(cfg.Source.RefreshIntervalMs) * time.Millisecond,
		Cache:           snapshots,
		CacheTTL:        time.Duration(cfg.Cache.TTLMs) * time.Millisecond,
		Keyer:           cache.NewScopedKeyer(cache.NewDefaultKeyer(), "router:"+scope+":"),
		Logger:          c.Logger,
	})
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/topoview/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// layoutDir returns the saved-layout directory (~/.local/share/topoview/layouts/).
func layoutDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "layouts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "layouts"), nil
}
