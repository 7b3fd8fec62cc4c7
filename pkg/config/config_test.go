package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[layout]
width = 1600
widths = "equal"

[layout.margin]
left = 140

[api]
timeout = "30s"
tiers = ["Tier 1", "Tier 2"]

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "6h"
`)
	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	if cfg.Layout.Width != 1600 || cfg.Layout.Height != 800 {
		t.Errorf("canvas = %vx%v, want 1600x800", cfg.Layout.Width, cfg.Layout.Height)
	}
	if cfg.Layout.Widths != "equal" {
		t.Errorf("widths = %q, want equal", cfg.Layout.Widths)
	}
	if cfg.Layout.Margin.Left != 140 || cfg.Layout.Margin.Top != layout.DefaultMargin.Top {
		t.Errorf("margin = %+v, want left 140 over the defaults", cfg.Layout.Margin)
	}
	if cfg.API.Timeout.Duration != 30*time.Second {
		t.Errorf("api.timeout = %v, want 30s", cfg.API.Timeout)
	}
	if diff := cmp.Diff([]string{"Tier 1", "Tier 2"}, cfg.API.Tiers); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL.Duration != 6*time.Hour {
		t.Errorf("cache = %+v, want redis with 6h ttl", cfg.Cache)
	}
	if cfg.Store.Backend != StoreMemory {
		t.Errorf("store backend = %q, want default memory", cfg.Store.Backend)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[layout]
widht = 10
`)
	_, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "layout.widht") {
		t.Errorf("warnings = %v, want one about layout.widht", warnings)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[layout\nwidth = 1", errors.ErrCodeInvalidInput},
		{"bad duration", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidInput},
		{"negative width", "[layout]\nwidth = -1", errors.ErrCodeInvalidDimensions},
		{"unknown cache", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidInput},
		{"file store without dir", "[store]\nbackend = \"file\"", errors.ErrCodeInvalidInput},
		{"sqlite store without path", "[store]\nbackend = \"sqlite\"", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errors.ErrCodeInvalidInput},
		{"unknown widths", "[layout]\nwidths = \"random\"", errors.ErrCodeInvalidInput},
		{"padding ratio", "[layout]\nbar_padding_ratio = 1.5", errors.ErrCodeInvalidInput},
		{"no tiers", "[api]\ntiers = []", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layout.Width = 900
	cfg.Cache.TTL = Duration{90 * time.Minute}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !strings.Contains(buf.String(), `ttl = "1h30m0s"`) {
		t.Errorf("encoded config missing ttl:\n%s", buf.String())
	}

	got, _, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutOptions(t *testing.T) {
	cfg := Default()
	cfg.Layout.Widths = string(layout.WidthEqual)
	cfg.Layout.Margin = layout.Margin{}

	objs := []layout.Objective{
		{ID: 1, Tier: "Tier 1", Category: "a"},
		{ID: 2, Tier: "Tier 1", Category: "b"},
		{ID: 3, Tier: "Tier 1", Category: "b"},
	}
	got := layout.CategoryWidths(objs, []string{"a", "b"}, 600, cfg.LayoutOptions()...)
	for _, l := range got {
		if l.Width != 300 {
			t.Errorf("%s width = %v, want 300", l.Category, l.Width)
		}
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/xdg-config/tierviz/config.toml" {
		t.Errorf("DefaultPath() = %q", p)
	}

	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg-cache/tierviz" {
		t.Errorf("CacheDir() = %q", dir)
	}

	cfg := Default()
	cfg.Cache.Dir = "/srv/cache"
	if dir, _ := cfg.CacheDir(); dir != "/srv/cache" {
		t.Errorf("CacheDir() with override = %q", dir)
	}
}
