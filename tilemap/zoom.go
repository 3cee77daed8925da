package tilemap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom is the largest zoom level the selector considers. Raster tile
// servers rarely publish anything deeper.
const MaxZoom maptile.Zoom = 19

// PixelExtent is the exact, not yet tile-aligned pixel bounding box of a
// geographic bound at a fixed zoom level. X0/Y0 is the north-west corner.
type PixelExtent struct {
	Zoom   maptile.Zoom
	X0, Y0 float64
	X1, Y1 float64
}

func (e PixelExtent) Width() float64  { return e.X1 - e.X0 }
func (e PixelExtent) Height() float64 { return e.Y1 - e.Y0 }

// Extent computes the pixel extent of bounds at the given zoom. A bound
// whose west edge lies east of its east edge wraps across the antimeridian;
// its width is measured across the seam and X1 exceeds the world width.
func Extent(bounds orb.Bound, zoom maptile.Zoom, tileSize int) (PixelExtent, error) {
	if err := validateBound(bounds); err != nil {
		return PixelExtent{}, err
	}

	clamped := ClampBound(bounds)

	x0, y0, err := GeoToPixel(orb.Point{clamped.Min.X(), clamped.Max.Y()}, zoom, tileSize)
	if err != nil {
		return PixelExtent{}, err
	}
	x1, y1, err := GeoToPixel(orb.Point{clamped.Max.X(), clamped.Min.Y()}, zoom, tileSize)
	if err != nil {
		return PixelExtent{}, err
	}

	if bounds.Min.X() > bounds.Max.X() {
		worldPx := float64(uint64(1)<<zoom) * float64(tileSize)
		x1 += worldPx
	}

	return PixelExtent{Zoom: zoom, X0: x0, Y0: y0, X1: x1, Y1: y1}, nil
}

// SelectZoom picks the largest zoom level at which the pixel extent of
// bounds fits within targetW x targetH, maximizing detail without exceeding
// the page. Falls back to zoom 0 when nothing fits.
func SelectZoom(bounds orb.Bound, targetW, targetH int, tileSize int) (maptile.Zoom, PixelExtent, error) {
	if err := validateBound(bounds); err != nil {
		return 0, PixelExtent{}, err
	}

	best, err := Extent(bounds, 0, tileSize)
	if err != nil {
		return 0, PixelExtent{}, err
	}

	for z := maptile.Zoom(1); z <= MaxZoom; z++ {
		ext, err := Extent(bounds, z, tileSize)
		if err != nil {
			return 0, PixelExtent{}, err
		}

		if ext.Width() > float64(targetW) || ext.Height() > float64(targetH) {
			break
		}
		best = ext
	}

	return best.Zoom, best, nil
}

func validateBound(b orb.Bound) error {
	if b.Min.Y() >= b.Max.Y() {
		return ErrOutOfRange
	}
	if b.Min.Y() > webMercatorLatLimit || b.Max.Y() < -webMercatorLatLimit {
		return ErrOutOfRange
	}
	if b.Min.X() < -180.0 || b.Min.X() > 180.0 || b.Max.X() < -180.0 || b.Max.X() > 180.0 {
		return ErrOutOfRange
	}
	if b.Min.X() == b.Max.X() {
		return ErrUnsupportedRegion
	}
	return nil
}
