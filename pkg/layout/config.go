package layout

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
)

// Margin is the space reserved around the plot area for axis labels.
type Margin struct {
	Top    float64 `json:"top" toml:"top" bson:"top"`
	Right  float64 `json:"right" toml:"right" bson:"right"`
	Bottom float64 `json:"bottom" toml:"bottom" bson:"bottom"`
	Left   float64 `json:"left" toml:"left" bson:"left"`
}

// PlotSize returns the drawing area left inside a canvas of the given size.
func (m Margin) PlotSize(width, height float64) (float64, float64) {
	return width - m.Left - m.Right, height - m.Top - m.Bottom
}

// WidthStrategy selects how the grid width is split among categories.
type WidthStrategy string

const (
	// WidthProportional sizes categories by objective count with a
	// minimum-width floor.
	WidthProportional WidthStrategy = "proportional"
	// WidthEqual gives every category the same width.
	WidthEqual WidthStrategy = "equal"
)

const (
	DefaultDotSize          = 16.0
	DefaultSpacingFactor    = 1.2
	DefaultMinCategoryWidth = 120.0
	DefaultTreemapPadding   = 2.0
	DefaultBarPaddingMax    = 2.0
	DefaultBarPaddingRatio  = 0.1
)

// DefaultMargin leaves room for tier labels on the left and category
// labels below the plot.
var DefaultMargin = Margin{Top: 60, Right: 50, Bottom: 150, Left: 100}

// Config holds the geometry constants shared by all layouts.
type Config struct {
	Margin           Margin
	DotSize          float64
	SpacingFactor    float64
	MinCategoryWidth float64
	TreemapPadding   float64
	TreemapRound     bool
	BarPaddingMax    float64
	BarPaddingRatio  float64
	Widths           WidthStrategy
	Logger           *log.Logger
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		Margin:           DefaultMargin,
		DotSize:          DefaultDotSize,
		SpacingFactor:    DefaultSpacingFactor,
		MinCategoryWidth: DefaultMinCategoryWidth,
		TreemapPadding:   DefaultTreemapPadding,
		TreemapRound:     true,
		BarPaddingMax:    DefaultBarPaddingMax,
		BarPaddingRatio:  DefaultBarPaddingRatio,
		Widths:           WidthProportional,
	}
}

// Spacing returns the pitch between neighbouring dots.
func (c Config) Spacing() float64 { return c.DotSize * c.SpacingFactor }

// DotsPerRow returns how many dots fit side by side in a cell of the
// given width. At least one dot always fits.
func (c Config) DotsPerRow(cellWidth float64) int {
	spacing := c.Spacing()
	n := math.Floor((cellWidth - spacing/2) / spacing)
	if math.IsNaN(n) || n < 1 {
		return 1
	}
	return int(n)
}

// Option configures a layout call.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithMargin sets the plot margins.
func WithMargin(m Margin) Option {
	return func(c *Config) { c.Margin = m }
}

// WithDotSize sets the side length of grid dots.
func WithDotSize(size float64) Option {
	return func(c *Config) { c.DotSize = size }
}

// WithMinCategoryWidth sets the floor applied by the proportional strategy.
func WithMinCategoryWidth(w float64) Option {
	return func(c *Config) { c.MinCategoryWidth = w }
}

// WithWidthStrategy selects the category width strategy.
func WithWidthStrategy(s WidthStrategy) Option {
	return func(c *Config) { c.Widths = s }
}

// WithLogger enables debug output from the layout functions.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = discard
	}
	return cfg
}

var discard = log.NewWithOptions(io.Discard, log.Options{})
