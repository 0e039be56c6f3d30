// Package pipeline drives the topology refresh cycle.
//
// One refresh runs fetch → build → budget filter → layout → viewport cull
// and produces a Frame for the UI. The cycle is event-driven and
// supersede-safe: every refresh takes a generation number, and a refresh
// that is no longer the newest when its fetch returns is discarded instead
// of overwriting fresher data. User interaction state (dragged positions,
// zoom, pan, selection) lives outside the pipeline and is merged in via the
// remembered-position map, so a refresh never resets what the user did.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/topoview/topoview/pkg/cache"
	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/topo"
	"github.com/topoview/topoview/pkg/topo/filter"
	"github.com/topoview/topoview/pkg/topo/layout"
)

// Default refresh tuning.
const (
	DefaultMaxVisibleNodes = 50
	DefaultRefreshInterval = 2 * time.Second
)

// =============================================================================
// Options
// =============================================================================

// Options configures the refresh pipeline.
type Options struct {
	// MaxVisibleNodes is the total node budget including the root.
	MaxVisibleNodes int

	// ViewportCulling hides placed nodes outside the viewport rectangle
	// passed to Refresh.
	ViewportCulling bool

	// Layout tunes the ring geometry and canvas.
	Layout layout.Options

	// RefreshInterval is the poll period used by Poll.
	RefreshInterval time.Duration

	// Cache stores the last successfully built snapshot so a refresh whose
	// fetch fails entirely can keep showing the network instead of a bare
	// placeholder. Nil disables snapshot caching.
	Cache cache.Cache

	// CacheTTL bounds how long a cached snapshot may be served. Zero keeps
	// the last snapshot indefinitely.
	CacheTTL time.Duration

	// Keyer scopes snapshot cache keys; defaults to the unscoped keyer.
	Keyer cache.Keyer

	// Logger defaults to a discarding logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks fields and applies defaults. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxVisibleNodes == 0 {
		o.MaxVisibleNodes = DefaultMaxVisibleNodes
	}
	if o.MaxVisibleNodes < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"max visible nodes must be >= 1, got %d", o.MaxVisibleNodes)
	}
	if o.RefreshInterval == 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.RefreshInterval < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"refresh interval must be positive, got %v", o.RefreshInterval)
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Frame
// =============================================================================

// Frame is the output of one refresh: everything the render adapter needs.
type Frame struct {
	// Generation identifies the refresh cycle that produced this frame.
	Generation uint64

	// Snapshot is the budget-filtered topology model.
	Snapshot topo.Snapshot

	// Placed carries positions for every snapshot node; culled nodes are
	// present but marked hidden.
	Placed []topo.PlacedNode

	// Edges is the drawable edge set after budget and viewport pruning.
	Edges []topo.Edge

	// Stats summarizes filtering for the dashboard counters.
	Stats filter.Stats

	// FetchedAt is when the source data was retrieved.
	FetchedAt time.Time

	// SourceErr carries partial-fetch failures. The frame is still
	// renderable; the UI surfaces the error in the status bar.
	SourceErr error
}
