package tilemap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Transform is the affine mapping between geographic coordinates and pixel
// coordinates on a mosaic canvas. It is anchored at the canvas origin tile
// and is the only projection surface overlay renderers may use, so every
// overlay lands in the same pixel space as the base raster.
//
// A Transform is read-only; overlays share one instance per mosaic.
type Transform struct {
	Zoom     maptile.Zoom
	Origin   maptile.Tile
	TileSize int
}

// Project converts a lon/lat coordinate to canvas pixel coordinates.
// Coordinates east of the antimeridian seam of a wrapped mosaic continue
// rightward past the seam.
func (t *Transform) Project(ll orb.Point) (float64, float64, error) {
	px, py, err := GeoToPixel(ll, t.Zoom, t.TileSize)
	if err != nil {
		return 0, 0, err
	}

	dx := px - float64(int(t.Origin.X)*t.TileSize)
	dy := py - float64(int(t.Origin.Y)*t.TileSize)

	// Points on the far side of a wrapped mosaic's seam come out almost a
	// full world west of the origin; shift them past the seam instead.
	if dx < -t.worldPixels()/2 {
		dx += t.worldPixels()
	}

	return dx, dy, nil
}

// Unproject converts canvas pixel coordinates back to lon/lat.
func (t *Transform) Unproject(px, py float64) orb.Point {
	gx := px + float64(int(t.Origin.X)*t.TileSize)
	gy := py + float64(int(t.Origin.Y)*t.TileSize)

	world := t.worldPixels()
	if gx >= world {
		gx -= world
	}

	return PixelToGeo(gx, gy, t.Zoom, t.TileSize)
}

func (t *Transform) worldPixels() float64 {
	return float64(uint64(1)<<t.Zoom) * float64(t.TileSize)
}
