// Package tilemap plans, fetches and assembles XYZ map tile mosaics for a
// geographic bounding box, and exposes the geo-to-pixel transform that
// overlay renderers use to align themselves with the assembled raster.
package tilemap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const (
	// DefaultTileSize is the pixel edge length of tiles served by most XYZ
	// tile servers.
	DefaultTileSize = 256

	webMercatorLatLimit float64 = 85.05112877980659
)

// GeoToPixel converts a lon/lat coordinate to absolute pixel coordinates on
// the world raster at the given zoom level. Latitude must be within the web
// mercator validity range and longitude within [-180, 180]; callers clamp
// before calling.
func GeoToPixel(ll orb.Point, zoom maptile.Zoom, tileSize int) (px float64, py float64, err error) {
	if ll.Lat() < -webMercatorLatLimit || ll.Lat() > webMercatorLatLimit {
		return 0, 0, ErrOutOfRange
	}
	if ll.Lon() < -180.0 || ll.Lon() > 180.0 {
		return 0, 0, ErrOutOfRange
	}

	f := maptile.Fraction(ll, zoom)
	return f.X() * float64(tileSize), f.Y() * float64(tileSize), nil
}

// PixelToGeo is the exact algebraic inverse of GeoToPixel at the same zoom
// and tile size.
func PixelToGeo(px, py float64, zoom maptile.Zoom, tileSize int) orb.Point {
	n := float64(uint64(1)<<zoom) * float64(tileSize)

	lon := px/n*360.0 - 180.0
	lat := math.Atan(math.Sinh(math.Pi*(1.0-2.0*py/n))) * 180.0 / math.Pi

	return orb.Point{lon, lat}
}

// ClampBound trims a bounding box to the validity range of the projection,
// leaving longitude untouched.
func ClampBound(b orb.Bound) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min.X(), math.Max(-webMercatorLatLimit, b.Min.Y())},
		Max: orb.Point{b.Max.X(), math.Min(webMercatorLatLimit, b.Max.Y())},
	}
}
