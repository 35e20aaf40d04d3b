// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about pipeline runs, embedding codec
// operations, and cache activity.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This keeps the engine packages free of observability framework imports
// while still letting a host wire in whatever backend it runs.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCodecHooks(&myCodecHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnPassStart(ctx, runID, pass)
//	// ... generate ...
//	observability.Pipeline().OnPassComplete(ctx, runID, pass, cells, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the pass pipeline.
type PipelineHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, passes int)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, cancelled bool)

	// Pass events
	OnPassStart(ctx context.Context, runID string, pass int)
	OnPassComplete(ctx context.Context, runID string, pass int, cells int, duration time.Duration)
}

// =============================================================================
// Codec Hooks
// =============================================================================

// CodecHooks receives events from the particle embedding codec.
type CodecHooks interface {
	// OnEncode records a completed encode attempt.
	OnEncode(ctx context.Context, payloadBytes int, cells int, err error)

	// OnDecode records a completed decode attempt. memoized reports
	// whether the result came from the scan cache.
	OnDecode(ctx context.Context, memoized bool, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, time.Duration, bool)    {}
func (NoopPipelineHooks) OnPassStart(context.Context, string, int)                      {}
func (NoopPipelineHooks) OnPassComplete(context.Context, string, int, int, time.Duration) {
}

// NoopCodecHooks is a no-op implementation of CodecHooks.
type NoopCodecHooks struct{}

func (NoopCodecHooks) OnEncode(context.Context, int, int, error) {}
func (NoopCodecHooks) OnDecode(context.Context, bool, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	codecHooks    CodecHooks    = NoopCodecHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any runs.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCodecHooks registers custom codec hooks.
// This should be called once at application startup before any codec use.
func SetCodecHooks(h CodecHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		codecHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache use.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Codec returns the registered codec hooks.
func Codec() CodecHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return codecHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	codecHooks = NoopCodecHooks{}
	cacheHooks = NoopCacheHooks{}
}
