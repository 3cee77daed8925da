package tilemap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb/maptile"
)

var (
	// ErrOutOfRange reports geographic input outside the validity range of
	// the web mercator projection.
	ErrOutOfRange = errors.New("coordinate out of projection range")

	// ErrUnsupportedRegion reports a bounding box that cannot be planned as
	// a tile mosaic.
	ErrUnsupportedRegion = errors.New("unsupported region")

	// ErrTileNotFound is returned by caches when no entry exists for a key.
	ErrTileNotFound = errors.New("tile not found")

	// ErrDryRun is returned by the fetcher for cache misses while dry-run
	// mode is active.
	ErrDryRun = errors.New("dry run, tile not fetched")
)

// FetchError wraps the failure to resolve a single tile from a source.
type FetchError struct {
	Source string
	Tile   maptile.Tile
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("fetch %d/%d/%d: %v", e.Tile.Z, e.Tile.X, e.Tile.Y, e.Cause)
	}
	return fmt.Sprintf("fetch %s/%d/%d/%d: %v", e.Source, e.Tile.Z, e.Tile.X, e.Tile.Y, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// FetchReport aggregates the per-tile failures of one mosaic composition.
// Individual failures never abort the mosaic; the caller inspects the report
// to decide whether a retry is worthwhile.
type FetchReport struct {
	Planned int
	Fetched int
	Failed  []maptile.Tile
}

func (r *FetchReport) addFailure(t maptile.Tile) {
	r.Failed = append(r.Failed, t)
}

// sortFailures puts the failed tiles in row-major order so the report is
// deterministic regardless of worker scheduling.
func (r *FetchReport) sortFailures() {
	sort.Slice(r.Failed, func(i, j int) bool {
		if r.Failed[i].Y != r.Failed[j].Y {
			return r.Failed[i].Y < r.Failed[j].Y
		}
		return r.Failed[i].X < r.Failed[j].X
	})
}

func (r *FetchReport) Summary() string {
	if len(r.Failed) == 0 {
		return fmt.Sprintf("%d/%d tiles fetched", r.Fetched, r.Planned)
	}

	coords := make([]string, 0, len(r.Failed))
	for _, t := range r.Failed {
		coords = append(coords, fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y))
	}
	return fmt.Sprintf("%d/%d tiles fetched, %d failed: %s",
		r.Fetched, r.Planned, len(r.Failed), strings.Join(coords, ", "))
}
