// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; by default every
// hook is a no-op. Register implementations once at startup:
//
//	counters := observability.NewCounters()
//	observability.SetPipelineHooks(counters)
//	observability.SetCacheHooks(counters)
//	observability.SetHTTPHooks(counters)
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnAcquireStart(ctx, scenario)
//	// ... fetch ...
//	observability.Pipeline().OnAcquireComplete(ctx, scenario, n, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the acquire → layout pipeline.
type PipelineHooks interface {
	OnAcquireStart(ctx context.Context, scenario string)
	OnAcquireComplete(ctx context.Context, scenario string, objectives int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, mode string, objectives int)
	OnLayoutComplete(ctx context.Context, mode string, marks int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType is one of
// "http", "dataset" or "layout".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing API requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnAcquireStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnAcquireComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error)  {}

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

// registry holds the current implementation of one hook interface.
type registry[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newRegistry[T any](noop T) *registry[T] {
	return &registry[T]{cur: noop, noop: noop}
}

func (r *registry[T]) set(h T) {
	if any(h) == nil {
		return
	}
	r.mu.Lock()
	r.cur = h
	r.mu.Unlock()
}

func (r *registry[T]) get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur
}

func (r *registry[T]) reset() {
	r.mu.Lock()
	r.cur = r.noop
	r.mu.Unlock()
}

var (
	pipelineHooks = newRegistry[PipelineHooks](NoopPipelineHooks{})
	cacheHooks    = newRegistry[CacheHooks](NoopCacheHooks{})
	httpHooks     = newRegistry[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineHooks.set(h) }

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h) }

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
