package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get = %q, %v; want miss", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		key  string
		data []byte
		ttl  time.Duration
	}{
		{"no expiry", "http:coeqwal::tiers/s0020", []byte(`{"tiers":{}}`), 0},
		{"with ttl", "layout:abc", []byte("payload"), time.Hour},
		{"empty payload", "dataset:empty", []byte{}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.key, tt.data, tt.ttl); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, hit, err := c.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !hit {
				t.Fatal("Get missed a stored key")
			}
			if string(got) != string(tt.data) {
				t.Errorf("Get = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	_, hit, err := c.Get(context.Background(), "missing")
	if err != nil || hit {
		t.Errorf("Get(missing) = %v, %v; want miss without error", hit, err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v; want clean miss", hit, err)
	}
}

func TestFileCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted key still present")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestFileCachePathLayout(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	p := c.path("key")
	rel, err := filepath.Rel(c.Dir(), p)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || len(parts[0]) != 2 || !strings.HasSuffix(parts[1], ".json") {
		t.Errorf("unexpected entry path %q", rel)
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	c := NewRedisCacheFromClient(client, "tierviz:")
	defer c.Close()
	if got := c.key("layout:abc"); got != "tierviz:layout:abc" {
		t.Errorf("key = %q", got)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("coeqwal", "tiers/s0020"); got != "http:coeqwal:tiers/s0020" {
		t.Errorf("HTTPKey = %q", got)
	}

	d1 := k.DatasetKey("s0020", DatasetKeyOpts{})
	d2 := k.DatasetKey("s0020", DatasetKeyOpts{Baseline: "s0011"})
	if d1 == d2 {
		t.Error("baseline should change the dataset key")
	}
	if !strings.HasPrefix(d1, "dataset:") {
		t.Errorf("DatasetKey = %q, want dataset: prefix", d1)
	}

	l1 := k.LayoutKey("hash", LayoutKeyOpts{Mode: "tiers", Width: 1200, Height: 800})
	l2 := k.LayoutKey("hash", LayoutKeyOpts{Mode: "treemap", Width: 1200, Height: 800})
	l3 := k.LayoutKey("hash", LayoutKeyOpts{Mode: "tiers", Width: 1200, Height: 800})
	if l1 == l2 {
		t.Error("mode should change the layout key")
	}
	if l1 != l3 {
		t.Error("LayoutKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "api:")
	if got := scoped.HTTPKey("coeqwal", "x"); got != "api:http:coeqwal:x" {
		t.Errorf("HTTPKey = %q", got)
	}
	if got := scoped.LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(got, "api:layout:") {
		t.Errorf("LayoutKey = %q, want api:layout: prefix", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	if got := scoped.HTTPKey("ns", "k"); got != "p:http:ns:k" {
		t.Errorf("HTTPKey = %q", got)
	}
}
