package tilemap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Placement assigns one tile to its destination pixel offset on the canvas.
type Placement struct {
	Tile maptile.Tile
	DX   int
	DY   int
}

// MosaicPlan is the immutable blueprint of one mosaic: the canvas size and
// the ordered set of tiles with disjoint destination regions. Plans that
// cross the antimeridian carry two contiguous horizontal tile spans stitched
// left to right.
type MosaicPlan struct {
	Zoom     maptile.Zoom
	TileSize int
	Origin   maptile.Tile
	Width    int
	Height   int

	Placements []Placement
}

// TileCount returns the number of tile columns and rows in the plan.
func (p *MosaicPlan) TileCount() (int, int) {
	return p.Width / p.TileSize, p.Height / p.TileSize
}

// Transform returns the pixel transform anchored at the plan's origin tile.
func (p *MosaicPlan) Transform() *Transform {
	return &Transform{Zoom: p.Zoom, Origin: p.Origin, TileSize: p.TileSize}
}

// PlanMosaic enumerates the inclusive tile index range covering bounds at
// the given zoom and lays the tiles out on a canvas. An edge that falls
// exactly on a tile boundary does not pull in the next tile. A bound whose
// west edge lies east of its east edge wraps across the antimeridian and is
// planned as two spans.
func PlanMosaic(bounds orb.Bound, zoom maptile.Zoom, tileSize int) (*MosaicPlan, error) {
	if err := validateBound(bounds); err != nil {
		return nil, err
	}

	clamped := ClampBound(bounds)
	n := int(uint64(1) << zoom)

	y0 := firstTile(tileFractionY(clamped.Max.Y(), zoom))
	y1 := lastTile(tileFractionY(clamped.Min.Y(), zoom))
	if y1 < y0 {
		return nil, ErrUnsupportedRegion
	}

	type span struct {
		x0, x1 int
	}

	var spans []span
	if clamped.Min.X() > clamped.Max.X() {
		// Antimeridian wraparound: the western span runs to the edge of the
		// tile grid, the eastern span starts at column zero.
		spans = []span{
			{firstTile(tileFractionX(clamped.Min.X(), zoom)), n - 1},
			{0, lastTile(tileFractionX(clamped.Max.X(), zoom))},
		}
	} else {
		spans = []span{
			{firstTile(tileFractionX(clamped.Min.X(), zoom)), lastTile(tileFractionX(clamped.Max.X(), zoom))},
		}
	}

	cols := 0
	for _, s := range spans {
		if s.x1 < s.x0 {
			return nil, ErrUnsupportedRegion
		}
		cols += s.x1 - s.x0 + 1
	}
	rows := y1 - y0 + 1

	plan := &MosaicPlan{
		Zoom:       zoom,
		TileSize:   tileSize,
		Origin:     maptile.New(uint32(spans[0].x0), uint32(y0), zoom),
		Width:      cols * tileSize,
		Height:     rows * tileSize,
		Placements: make([]Placement, 0, cols*rows),
	}

	for row := 0; row < rows; row++ {
		col := 0
		for _, s := range spans {
			for x := s.x0; x <= s.x1; x++ {
				plan.Placements = append(plan.Placements, Placement{
					Tile: maptile.New(uint32(x), uint32(y0+row), zoom),
					DX:   col * tileSize,
					DY:   row * tileSize,
				})
				col++
			}
		}
	}

	return plan, nil
}

// firstTile and lastTile convert fractional tile-unit edges to the inclusive
// tile index range. An east or south edge landing exactly on a tile boundary
// excludes the tile beyond it.
func firstTile(f float64) int {
	return int(math.Floor(f))
}

func lastTile(f float64) int {
	if f == math.Trunc(f) {
		return int(f) - 1
	}
	return int(math.Floor(f))
}

func tileFractionX(lon float64, zoom maptile.Zoom) float64 {
	return (lon + 180.0) / 360.0 * float64(uint64(1)<<zoom)
}

func tileFractionY(lat float64, zoom maptile.Zoom) float64 {
	f := maptile.Fraction(orb.Point{0, lat}, zoom)
	return f.Y()
}
