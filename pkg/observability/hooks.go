// Package observability provides instrumentation hooks for the dashboard.
//
// The dashboard core stays free of metrics-backend dependencies: hook
// interfaces are defined here with no-op defaults, and the application
// registers concrete implementations at startup. Libraries emit events
// through the registry without knowing what consumes them.
//
// Register hooks before any pipeline work starts:
//
//	func main() {
//	    observability.SetRefreshHooks(&myRefreshHooks{})
//	    // ... run application
//	}
//
// Libraries emit events:
//
//	observability.Refresh().OnFetchStart(ctx, generation)
//	// ... fetch ...
//	observability.Refresh().OnFetchComplete(ctx, generation, deviceCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Refresh Hooks
// =============================================================================

// RefreshHooks receives events from the refresh pipeline. The generation
// counter identifies each refresh cycle; superseded cycles report through
// OnRefreshSuperseded rather than completing.
type RefreshHooks interface {
	OnFetchStart(ctx context.Context, generation uint64)
	OnFetchComplete(ctx context.Context, generation uint64, deviceCount int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, generation uint64, nodeCount int)
	OnLayoutComplete(ctx context.Context, generation uint64, duration time.Duration, err error)

	OnRefreshSuperseded(ctx context.Context, generation, currentGeneration uint64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the router API client.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRefreshHooks is a no-op implementation of RefreshHooks.
type NoopRefreshHooks struct{}

func (NoopRefreshHooks) OnFetchStart(context.Context, uint64) {}
func (NoopRefreshHooks) OnFetchComplete(context.Context, uint64, int, time.Duration, error) {
}
func (NoopRefreshHooks) OnLayoutStart(context.Context, uint64, int)                     {}
func (NoopRefreshHooks) OnLayoutComplete(context.Context, uint64, time.Duration, error) {}
func (NoopRefreshHooks) OnRefreshSuperseded(context.Context, uint64, uint64)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	refreshHooks RefreshHooks = NoopRefreshHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetRefreshHooks registers custom refresh hooks. Call once at startup
// before the pipeline runs.
func SetRefreshHooks(h RefreshHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		refreshHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Refresh returns the registered refresh hooks.
func Refresh() RefreshHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return refreshHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults. Primarily for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	refreshHooks = NoopRefreshHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
