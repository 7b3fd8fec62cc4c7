package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnAcquireStart(ctx, "s0020")
	p.OnAcquireComplete(ctx, "s0020", 100, time.Second, nil)
	p.OnLayoutStart(ctx, "tiers", 100)
	p.OnLayoutComplete(ctx, "tiers", 120, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "dataset")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "http", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.coeqwal.org", "/api/tier-map/scenarios")
	h.OnResponse(ctx, "GET", "api.coeqwal.org", "/api/tier-map/scenarios", 200, time.Second)
	h.OnError(ctx, "GET", "api.coeqwal.org", "/api/tier-map/scenarios", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	c := NewCounters()
	SetPipelineHooks(c)
	SetCacheHooks(c)
	SetHTTPHooks(c)
	if Pipeline() != PipelineHooks(c) || Cache() != CacheHooks(c) || HTTP() != HTTPHooks(c) {
		t.Error("Set*Hooks should register the counters")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	c := NewCounters()
	SetPipelineHooks(c)
	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(c) {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	c.OnAcquireComplete(ctx, "s0020", 10, time.Millisecond, nil)
	c.OnAcquireComplete(ctx, "s9999", 0, time.Millisecond, errors.New("not found"))
	c.OnLayoutComplete(ctx, "tiers", 12, 2*time.Millisecond, nil)
	c.OnLayoutComplete(ctx, "bar", 10, 3*time.Millisecond, nil)
	c.OnCacheHit(ctx, "dataset")
	c.OnCacheHit(ctx, "dataset")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 512)
	c.OnRequest(ctx, "GET", "h", "/p")
	c.OnResponse(ctx, "GET", "h", "/p", 503, time.Millisecond)
	c.OnError(ctx, "GET", "h", "/p", errors.New("reset"))

	s := c.Snapshot()
	if s.Acquires != 2 || s.AcquireErrors != 1 {
		t.Errorf("acquires = %d/%d errors, want 2/1", s.Acquires, s.AcquireErrors)
	}
	if s.Layouts != 2 || s.Marks != 22 || s.LayoutDuration != 5*time.Millisecond {
		t.Errorf("layouts = %d, marks = %d, duration = %v", s.Layouts, s.Marks, s.LayoutDuration)
	}
	if s.CacheHits["dataset"] != 2 || s.CacheMisses["layout"] != 1 || s.CacheBytes != 512 {
		t.Errorf("cache counters = %+v %+v %d", s.CacheHits, s.CacheMisses, s.CacheBytes)
	}
	if s.Requests != 1 || s.RequestErrors != 1 || s.StatusCounts[503] != 1 {
		t.Errorf("http counters = %d %d %v", s.Requests, s.RequestErrors, s.StatusCounts)
	}

	// Snapshots are copies.
	s.CacheHits["dataset"] = 100
	if c.Snapshot().CacheHits["dataset"] != 2 {
		t.Error("Snapshot() should not share maps with the counters")
	}
}
