package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/observability"
	"github.com/topoview/topoview/pkg/source"
	"github.com/topoview/topoview/pkg/topo"
	"github.com/topoview/topoview/pkg/topo/filter"
	"github.com/topoview/topoview/pkg/topo/layout"
)

// Runner executes refresh cycles against one data source.
//
// The runner is stateless apart from the generation counter: remembered
// positions and the viewport are passed per call, so one runner can serve
// several views of the same router.
type Runner struct {
	provider source.Provider
	engine   *layout.Engine
	opts     Options
	logger   *log.Logger

	generation atomic.Uint64
}

// NewRunner creates a runner for the given provider.
func NewRunner(provider source.Provider, opts Options) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Runner{
		provider: provider,
		engine:   layout.New(opts.Layout),
		opts:     opts,
		logger:   opts.Logger,
	}, nil
}

// Canvas returns the layout canvas, for wiring the interaction controller.
func (r *Runner) Canvas() topo.Rect {
	return r.engine.Canvas()
}

// snapshotLatest tags the single last-good-snapshot cache slot.
const snapshotLatest = "latest"

// storeSnapshot caches a fully fetched snapshot for failure fallback.
func (r *Runner) storeSnapshot(ctx context.Context, snap topo.Snapshot) {
	data, err := topo.MarshalSnapshot(snap)
	if err != nil {
		return
	}
	key := r.opts.Keyer.SnapshotKey(snapshotLatest)
	if err := r.opts.Cache.Set(ctx, key, data, r.opts.CacheTTL); err != nil {
		r.logger.Debug("snapshot cache write failed", "err", err)
	}
}

// cachedSnapshot returns the last good snapshot, if one is cached and still
// valid.
func (r *Runner) cachedSnapshot(ctx context.Context) (topo.Snapshot, bool) {
	key := r.opts.Keyer.SnapshotKey(snapshotLatest)
	data, hit, err := r.opts.Cache.Get(ctx, key)
	if err != nil || !hit {
		return topo.Snapshot{}, false
	}
	snap, err := topo.UnmarshalSnapshot(data)
	if err != nil || snap.Validate() != nil {
		_ = r.opts.Cache.Delete(ctx, key)
		return topo.Snapshot{}, false
	}
	return snap, true
}

// Refresh runs one fetch → build → filter → layout → cull cycle.
//
// remembered positions are used verbatim by the layout stage. A non-nil
// viewport enables culling (when the options allow it). If a newer refresh
// starts while this one is fetching, the stale result is discarded and a
// SUPERSEDED error is returned; the caller keeps its current frame.
func (r *Runner) Refresh(ctx context.Context, remembered map[string]topo.Point, viewport *topo.Rect) (*Frame, error) {
	gen := r.generation.Add(1)

	observability.Refresh().OnFetchStart(ctx, gen)
	fetchStart := time.Now()
	payload, srcErr := r.provider.Fetch(ctx)
	fetchTime := time.Since(fetchStart)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if current := r.generation.Load(); current != gen {
		observability.Refresh().OnRefreshSuperseded(ctx, gen, current)
		r.logger.Debug("refresh superseded", "generation", gen, "current", current)
		return nil, apperrors.New(apperrors.ErrCodeSuperseded,
			"refresh %d superseded by %d", gen, current)
	}
	observability.Refresh().OnFetchComplete(ctx, gen, len(payload.Devices), fetchTime, srcErr)
	if srcErr != nil {
		r.logger.Warn("partial fetch", "generation", gen, "err", srcErr)
	}

	var snap topo.Snapshot
	if srcErr != nil && payload.Empty() {
		// Nothing came back at all; the last good snapshot beats a bare
		// placeholder root.
		if cached, ok := r.cachedSnapshot(ctx); ok {
			r.logger.Warn("fetch failed, serving cached snapshot", "generation", gen)
			snap = cached
		} else {
			snap = topo.Build(payload.ToBuildInput())
		}
	} else {
		snap = topo.Build(payload.ToBuildInput())
		if srcErr == nil {
			r.storeSnapshot(ctx, snap)
		}
	}
	if err := snap.Validate(); err != nil {
		// The builder guarantees a valid snapshot; a failure here is a bug.
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "built snapshot invalid")
	}

	filtered, stats := filter.ApplyBudget(snap, r.opts.MaxVisibleNodes)

	observability.Refresh().OnLayoutStart(ctx, gen, len(filtered.Nodes))
	layoutStart := time.Now()
	placed := r.engine.Place(filtered, remembered)
	edges := filtered.Edges
	if r.opts.ViewportCulling && viewport != nil {
		placed, edges, stats.HiddenByView = filter.CullViewport(placed, edges, *viewport)
		stats.VisibleDevices = filter.CountVisibleDevices(placed)
	}
	observability.Refresh().OnLayoutComplete(ctx, gen, time.Since(layoutStart), nil)

	r.logger.Debug("refresh complete",
		"generation", gen,
		"devices", stats.TotalDevices,
		"visible", stats.VisibleDevices,
		"hidden", stats.HiddenByView,
		"fetch", fetchTime)

	return &Frame{
		Generation: gen,
		Snapshot:   filtered,
		Placed:     placed,
		Edges:      edges,
		Stats:      stats,
		FetchedAt:  fetchStart,
		SourceErr:  srcErr,
	}, nil
}

// Poll runs Refresh on a ticker until ctx is cancelled, sending each frame
// on the returned channel. Superseded cycles are skipped silently; other
// refresh errors are logged and polling continues. The channel is closed
// on cancellation.
func (r *Runner) Poll(ctx context.Context, remembered func() map[string]topo.Point, viewport func() *topo.Rect) <-chan *Frame {
	frames := make(chan *Frame, 1)

	go func() {
		defer close(frames)
		ticker := time.NewTicker(r.opts.RefreshInterval)
		defer ticker.Stop()

		for {
			frame, err := r.Refresh(ctx, remembered(), viewport())
			switch {
			case err == nil:
				select {
				case frames <- frame:
				case <-ctx.Done():
					return
				}
			case apperrors.Is(err, apperrors.ErrCodeSuperseded):
				// A newer cycle owns the next frame.
			case ctx.Err() != nil:
				return
			default:
				r.logger.Error("refresh failed", "err", err)
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames
}
