// Package config loads tierviz settings from a TOML file.
//
// The file is optional; every field has a default. A minimal file:
//
//	[layout]
//	width = 1600
//	widths = "equal"
//
//	[layout.margin]
//	left = 140
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "6h"
//
// Keys present in the file override the defaults; anything left out keeps
// its default value.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	tverrors "github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/layout"
)

const appName = "tierviz"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config is the complete settings file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	API    APIConfig    `toml:"api"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds canvas size and geometry constants.
type LayoutConfig struct {
	Width            float64       `toml:"width"`
	Height           float64       `toml:"height"`
	DotSize          float64       `toml:"dot_size"`
	SpacingFactor    float64       `toml:"spacing_factor"`
	MinCategoryWidth float64       `toml:"min_category_width"`
	TreemapPadding   float64       `toml:"treemap_padding"`
	BarPaddingMax    float64       `toml:"bar_padding_max"`
	BarPaddingRatio  float64       `toml:"bar_padding_ratio"`
	Widths           string        `toml:"widths"`
	Margin           layout.Margin `toml:"margin"`
}

// APIConfig configures the COEQWAL client.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
	Tiers   []string `toml:"tiers"`
}

// CacheConfig selects and configures the response/layout cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
}

// StoreConfig selects where the API server keeps layouts.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	Path       string `toml:"path"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as "90s" or "6h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	cfg := layout.DefaultConfig()
	return Config{
		Layout: LayoutConfig{
			Width:            1200,
			Height:           800,
			DotSize:          cfg.DotSize,
			SpacingFactor:    cfg.SpacingFactor,
			MinCategoryWidth: cfg.MinCategoryWidth,
			TreemapPadding:   cfg.TreemapPadding,
			BarPaddingMax:    cfg.BarPaddingMax,
			BarPaddingRatio:  cfg.BarPaddingRatio,
			Widths:           string(cfg.Widths),
			Margin:           cfg.Margin,
		},
		API: APIConfig{
			BaseURL: "https://api.coeqwal.org/api",
			Timeout: Duration{15 * time.Second},
			Tiers:   []string{"Tier 1", "Tier 2", "Tier 3", "Tier 4"},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{24 * time.Hour},
			Prefix:  appName + ":",
		},
		Store: StoreConfig{
			Backend:    StoreMemory,
			Database:   appName,
			Collection: "layouts",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Unknown keys are returned as warnings so typos do not go unnoticed.
func Load(path string) (Config, []string, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil, nil
	}
	if err != nil {
		return Config{}, nil, tverrors.Wrap(tverrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	var warnings []string
	for _, k := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown config key %q", k.String()))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

// Validate checks enumerations and numeric ranges.
func (c Config) Validate() error {
	if err := tverrors.ValidateDimensions(c.Layout.Width, c.Layout.Height); err != nil {
		return err
	}
	if c.Layout.DotSize <= 0 || c.Layout.SpacingFactor <= 0 {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "dot_size and spacing_factor must be positive")
	}
	if c.Layout.MinCategoryWidth < 0 || c.Layout.TreemapPadding < 0 || c.Layout.BarPaddingMax < 0 {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "layout widths and paddings cannot be negative")
	}
	if c.Layout.BarPaddingRatio < 0 || c.Layout.BarPaddingRatio >= 1 {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "bar_padding_ratio must be in [0, 1)")
	}
	if w := layout.WidthStrategy(c.Layout.Widths); w != layout.WidthProportional && w != layout.WidthEqual {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "widths must be %q or %q, got %q",
			layout.WidthProportional, layout.WidthEqual, c.Layout.Widths)
	}
	if len(c.API.Tiers) == 0 {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "api.tiers cannot be empty")
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if !slices.Contains([]string{StoreMemory, StoreFile, StoreSQLite, StoreMongo}, c.Store.Backend) {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreFile && c.Store.Dir == "" {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "store.dir is required for the file backend")
	}
	if c.Store.Backend == StoreSQLite && c.Store.Path == "" {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "store.path is required for the sqlite backend")
	}
	if c.Store.Backend == StoreMongo && c.Store.URI == "" {
		return tverrors.New(tverrors.ErrCodeInvalidInput, "store.uri is required for the mongo backend")
	}
	return nil
}

// LayoutOptions converts the geometry settings into layout options.
func (c Config) LayoutOptions() []layout.Option {
	cfg := layout.DefaultConfig()
	cfg.Margin = c.Layout.Margin
	cfg.DotSize = c.Layout.DotSize
	cfg.SpacingFactor = c.Layout.SpacingFactor
	cfg.MinCategoryWidth = c.Layout.MinCategoryWidth
	cfg.TreemapPadding = c.Layout.TreemapPadding
	cfg.BarPaddingMax = c.Layout.BarPaddingMax
	cfg.BarPaddingRatio = c.Layout.BarPaddingRatio
	cfg.Widths = layout.WidthStrategy(c.Layout.Widths)
	return []layout.Option{layout.WithConfig(cfg)}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// DefaultPath returns $XDG_CONFIG_HOME/tierviz/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir, err := baseDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or
// $XDG_CACHE_HOME/tierviz (~/.cache/tierviz).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir)
	}
	dir, err := baseDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

func baseDir(env, fallback string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
