// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about scrape runs, cache operations, and
// HTTP requests; the CLI uses scrape hooks to drive its live progress
// display.
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Register hooks at application startup:
//
//	observability.SetScrapeHooks(&myScrapeHooks{})
//	observability.SetHTTPHooks(&myHTTPHooks{})
//
// Libraries call hooks to emit events:
//
//	observability.Scrape().OnPackageStart(ctx, name)
//	// ... fetch and parse ...
//	observability.Scrape().OnPackageDone(ctx, name, failReason, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ScrapeHooks receives events from scrape runs.
type ScrapeHooks interface {
	// OnRunStart is called once before any package is fetched.
	OnRunStart(ctx context.Context, total int)

	// OnPackageStart is called when a package fetch begins.
	OnPackageStart(ctx context.Context, name string)

	// OnPackageDone is called when a package fetch finishes. failReason is
	// non-empty for packages recorded as failed (e.g. "HTTP 404"); err is
	// non-nil for transport errors that produced no record at all.
	OnPackageDone(ctx context.Context, name, failReason string, duration time.Duration, err error)

	// OnRunComplete is called once after the run, successful or not.
	OnRunComplete(ctx context.Context, scraped, failed int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopScrapeHooks is a no-op implementation of ScrapeHooks.
type NoopScrapeHooks struct{}

func (NoopScrapeHooks) OnRunStart(context.Context, int)                                    {}
func (NoopScrapeHooks) OnPackageStart(context.Context, string)                             {}
func (NoopScrapeHooks) OnPackageDone(context.Context, string, string, time.Duration, error) {}
func (NoopScrapeHooks) OnRunComplete(context.Context, int, int, time.Duration)             {}

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

var (
	scrapeHooks ScrapeHooks = NoopScrapeHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetScrapeHooks registers custom scrape hooks.
// This should be called once at application startup before any scrape runs.
func SetScrapeHooks(h ScrapeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scrapeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Scrape returns the registered scrape hooks.
func Scrape() ScrapeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scrapeHooks
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

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scrapeHooks = NoopScrapeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
