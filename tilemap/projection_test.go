package tilemap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_geoToPixelKnownValues(t *testing.T) {
	testData := []struct {
		name string
		ll   orb.Point
		zoom maptile.Zoom
		px   float64
		py   float64
	}{
		{"origin z0", orb.Point{-180.0, webMercatorLatLimit}, 0, 0.0, 0.0},
		{"center z0", orb.Point{0.0, 0.0}, 0, 128.0, 128.0},
		{"center z3", orb.Point{0.0, 0.0}, 3, 1024.0, 1024.0},
		{"east edge z1", orb.Point{180.0, 0.0}, 1, 512.0, 256.0},
	}

	for _, tst := range testData {
		t.Run(tst.name, func(t *testing.T) {
			px, py, err := GeoToPixel(tst.ll, tst.zoom, DefaultTileSize)
			require.NoError(t, err)
			assert.InDelta(t, tst.px, px, 1e-6)
			assert.InDelta(t, tst.py, py, 1e-6)
		})
	}
}

func Test_geoToPixelOutOfRange(t *testing.T) {
	testData := []orb.Point{
		{0.0, 86.0},
		{0.0, -86.0},
		{181.0, 0.0},
		{-200.0, 45.0},
	}

	for _, ll := range testData {
		_, _, err := GeoToPixel(ll, 4, DefaultTileSize)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func Test_projectionRoundTrip(t *testing.T) {
	// Round-tripping must reproduce the coordinate to within 1e-9 of a tile
	// unit at the given zoom.
	zooms := []maptile.Zoom{0, 4, 8, 12, 16}
	points := []orb.Point{
		{-112.23, 34.85},
		{-104.58, 40.67},
		{13.4, 52.52},
		{151.2, -33.87},
		{-179.99, 84.9},
		{179.99, -84.9},
		{0.0, 0.0},
	}

	for _, zoom := range zooms {
		tolerance := 1e-9 * float64(DefaultTileSize)
		for _, ll := range points {
			px, py, err := GeoToPixel(ll, zoom, DefaultTileSize)
			require.NoError(t, err)

			back := PixelToGeo(px, py, zoom, DefaultTileSize)
			bx, by, err := GeoToPixel(back, zoom, DefaultTileSize)
			require.NoError(t, err)

			assert.InDelta(t, px, bx, tolerance, "lon %f zoom %d", ll.Lon(), zoom)
			assert.InDelta(t, py, by, tolerance, "lat %f zoom %d", ll.Lat(), zoom)
		}
	}
}

func Test_pixelToGeoTileCorner(t *testing.T) {
	// Top-left pixel of tile 14/11583/6049, from the slippy map tile
	// numbering reference.
	ll := PixelToGeo(11583.0*256.0, 6049.0*256.0, 14, DefaultTileSize)
	assert.InEpsilon(t, 74.509277, ll.Lon(), 1e-4)
	assert.InEpsilon(t, 42.536892, ll.Lat(), 1e-4)
}
