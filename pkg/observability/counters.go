package observability

import (
	"context"
	"sync"
	"time"
)

// Counters implements every hook interface by counting events. The API
// server registers one and serves its Snapshot.
type Counters struct {
	mu   sync.Mutex
	snap Snapshot
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Acquires       int64            `json:"acquires"`
	AcquireErrors  int64            `json:"acquireErrors"`
	Layouts        int64            `json:"layouts"`
	LayoutErrors   int64            `json:"layoutErrors"`
	Marks          int64            `json:"marks"`
	CacheHits      map[string]int64 `json:"cacheHits"`
	CacheMisses    map[string]int64 `json:"cacheMisses"`
	CacheBytes     int64            `json:"cacheBytesWritten"`
	Requests       int64            `json:"upstreamRequests"`
	RequestErrors  int64            `json:"upstreamErrors"`
	StatusCounts   map[int]int64    `json:"upstreamStatus"`
	LayoutDuration time.Duration    `json:"layoutDurationNs"`
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{snap: Snapshot{
		CacheHits:    map[string]int64{},
		CacheMisses:  map[string]int64{},
		StatusCounts: map[int]int64{},
	}}
}

// Snapshot returns a copy safe to encode while counting continues.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snap
	s.CacheHits = cloneMap(c.snap.CacheHits)
	s.CacheMisses = cloneMap(c.snap.CacheMisses)
	s.StatusCounts = cloneMap(c.snap.StatusCounts)
	return s
}

func cloneMap[K comparable](m map[K]int64) map[K]int64 {
	out := make(map[K]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *Counters) add(fn func(s *Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	c.mu.Unlock()
}

func (c *Counters) OnAcquireStart(context.Context, string) {}

func (c *Counters) OnAcquireComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	c.add(func(s *Snapshot) {
		s.Acquires++
		if err != nil {
			s.AcquireErrors++
		}
	})
}

func (c *Counters) OnLayoutStart(context.Context, string, int) {}

func (c *Counters) OnLayoutComplete(_ context.Context, _ string, marks int, d time.Duration, err error) {
	c.add(func(s *Snapshot) {
		s.Layouts++
		s.Marks += int64(marks)
		s.LayoutDuration += d
		if err != nil {
			s.LayoutErrors++
		}
	})
}

func (c *Counters) OnCacheHit(_ context.Context, keyType string) {
	c.add(func(s *Snapshot) { s.CacheHits[keyType]++ })
}

func (c *Counters) OnCacheMiss(_ context.Context, keyType string) {
	c.add(func(s *Snapshot) { s.CacheMisses[keyType]++ })
}

func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.add(func(s *Snapshot) { s.CacheBytes += int64(size) })
}

func (c *Counters) OnRequest(context.Context, string, string, string) {
	c.add(func(s *Snapshot) { s.Requests++ })
}

func (c *Counters) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	c.add(func(s *Snapshot) { s.StatusCounts[status]++ })
}

func (c *Counters) OnError(context.Context, string, string, string, error) {
	c.add(func(s *Snapshot) { s.RequestErrors++ })
}

var (
	_ PipelineHooks = (*Counters)(nil)
	_ CacheHooks    = (*Counters)(nil)
	_ HTTPHooks     = (*Counters)(nil)
)
