// Package store persists computed layouts for the API server.
//
// Four backends implement [Store]:
//   - [MemoryStore]: in-process, for development and tests
//   - [FileStore]: one JSON file per layout, for single-host deployments
//   - [SQLiteStore]: a single database file, for single-host deployments
//     with many layouts
//   - [MongoStore]: a MongoDB collection shared by server instances
//
// Layouts are keyed by their ID and listed newest first.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/matzehuels/tierviz/pkg/chart"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a layout does not exist.
	ErrNotFound = errors.New("layout not found")

	// ErrInvalidID is returned when saving a layout without a usable ID.
	ErrInvalidID = errors.New("invalid layout id")
)

// Store is the interface for layout storage backends.
type Store interface {
	// Save inserts or replaces a layout by ID.
	Save(ctx context.Context, l chart.Layout) error

	// Get retrieves a layout. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (chart.Layout, error)

	// List returns layouts newest first.
	List(ctx context.Context, opts ListOptions) ([]chart.Layout, error)

	// Delete removes a layout. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	Close() error
}

// ListOptions filters List results. Zero values match everything.
type ListOptions struct {
	Scenario string
	Mode     chart.Mode
	Limit    int
}

func (o ListOptions) matches(l chart.Layout) bool {
	return (o.Scenario == "" || l.Scenario == o.Scenario) &&
		(o.Mode == "" || l.Mode == o.Mode)
}

// filterSorted applies opts to layouts in place and orders them by
// descending CreatedAt, breaking ties by ID.
func filterSorted(layouts []chart.Layout, opts ListOptions) []chart.Layout {
	layouts = slices.DeleteFunc(layouts, func(l chart.Layout) bool { return !opts.matches(l) })
	slices.SortFunc(layouts, func(a, b chart.Layout) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if opts.Limit > 0 && len(layouts) > opts.Limit {
		layouts = layouts[:opts.Limit]
	}
	return layouts
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
