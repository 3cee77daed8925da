package tilemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_lookupSource(t *testing.T) {
	s, err := LookupSource("wikimedia")
	require.NoError(t, err)
	assert.Equal(t, "wikimedia", s.ID)
	assert.Equal(t, DefaultTileSize, s.TileSize)

	_, err = LookupSource("nope")
	assert.Error(t, err)
}

func Test_tileURL(t *testing.T) {
	s := CustomSource("https://tiles.example.com/{z}/{x}/{y}.png")
	url := s.TileURL(maptile.New(48, 96, 8))
	assert.Equal(t, "https://tiles.example.com/8/48/96.png", url)

	// Some providers order the template y-before-x.
	arcgis, err := LookupSource("esri-topo")
	require.NoError(t, err)
	assert.Equal(t,
		"https://services.arcgisonline.com/arcgis/rest/services/World_Topo_Map/MapServer/tile/8/96/48.jpg",
		arcgis.TileURL(maptile.New(48, 96, 8)))
}

func Test_loadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hillshade:
  url: https://tiles.example.org/hills/{z}/{x}/{y}.png
  style: stamen
  attribution: Example Org
terrain-s3:
  url: s3://elevation-tiles-prod/terrarium/{z}/{x}/{y}.png
`), 0644))

	sources, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	hs := sources["hillshade"]
	assert.Equal(t, "hillshade", hs.ID)
	assert.Equal(t, "stamen", hs.Style)
	assert.Equal(t, DefaultTileSize, hs.TileSize)
	assert.False(t, hs.IsS3())

	s3src := sources["terrain-s3"]
	assert.True(t, s3src.IsS3())
	bucket, keyTemplate, err := s3src.S3Location()
	require.NoError(t, err)
	assert.Equal(t, "elevation-tiles-prod", bucket)
	assert.Equal(t, "terrarium/{z}/{x}/{y}.png", keyTemplate)
}

func Test_loadRegistryRejectsMissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("broken:\n  style: default\n"), 0644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}
