package overlay

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DrawRoads renders a road network from a GeoJSON FeatureCollection of
// LineString/MultiLineString features. The "level" property selects the
// line style, falling back to the "class" property and then to Other.
func DrawRoads(c *Canvas, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read roads: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("parse roads %s: %w", path, err)
	}

	for _, feature := range fc.Features {
		class := feature.Properties.MustString("level", "")
		if class == "" {
			class = feature.Properties.MustString("class", ClassOther)
		}

		switch geom := feature.Geometry.(type) {
		case orb.LineString:
			c.Polyline(geom, class)
		case orb.MultiLineString:
			for _, line := range geom {
				c.Polyline(line, class)
			}
		default:
			// Road data sometimes carries stray points or polygons; only
			// line geometry is drawn.
		}
	}

	return nil
}
