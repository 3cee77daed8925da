package tilemap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_transformAnchoredAtOrigin(t *testing.T) {
	plan, err := PlanMosaic(roadTripBounds, 8, DefaultTileSize)
	require.NoError(t, err)

	tr := plan.Transform()

	// The north-west corner of the origin tile is the canvas origin.
	nw := PixelToGeo(float64(int(plan.Origin.X)*256), float64(int(plan.Origin.Y)*256), 8, DefaultTileSize)
	px, py, err := tr.Project(nw)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, px, 1e-6)
	assert.InDelta(t, 0.0, py, 1e-6)

	// Any point inside the bounds lands inside the canvas.
	px, py, err = tr.Project(orb.Point{-108.0, 37.0})
	require.NoError(t, err)
	assert.Greater(t, px, 0.0)
	assert.Less(t, px, float64(plan.Width))
	assert.Greater(t, py, 0.0)
	assert.Less(t, py, float64(plan.Height))
}

func Test_transformRoundTrip(t *testing.T) {
	tr := &Transform{Zoom: 8, Origin: maptile.New(48, 96, 8), TileSize: DefaultTileSize}

	for _, ll := range []orb.Point{{-112.23, 34.85}, {-104.58, 40.67}, {-108.4, 38.1}} {
		px, py, err := tr.Project(ll)
		require.NoError(t, err)

		back := tr.Unproject(px, py)
		assert.InDelta(t, ll.Lon(), back.Lon(), 1e-9)
		assert.InDelta(t, ll.Lat(), back.Lat(), 1e-9)
	}
}

func Test_transformAcrossSeam(t *testing.T) {
	wrapped := orb.Bound{Min: orb.Point{177.0, -21.0}, Max: orb.Point{-157.0, -12.0}}
	plan, err := PlanMosaic(wrapped, 4, DefaultTileSize)
	require.NoError(t, err)

	tr := plan.Transform()

	west, _, err := tr.Project(orb.Point{178.0, -15.0})
	require.NoError(t, err)
	east, _, err := tr.Project(orb.Point{-170.0, -15.0})
	require.NoError(t, err)

	// A point east of the seam continues rightward on the canvas.
	assert.Greater(t, east, west)
	assert.Less(t, east, float64(plan.Width))
}

func Test_transformRejectsOutOfRange(t *testing.T) {
	tr := &Transform{Zoom: 4, Origin: maptile.New(0, 0, 4), TileSize: DefaultTileSize}
	_, _, err := tr.Project(orb.Point{0.0, 89.0})
	assert.ErrorIs(t, err, ErrOutOfRange)
}
