package tilemap

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb/maptile"
	"gopkg.in/yaml.v3"
)

// Source describes one tile provider: a short identifier, a URL template
// with {z}, {x} and {y} placeholders, and the style overlays should render
// with. Sources are immutable once loaded.
type Source struct {
	ID          string `yaml:"-"`
	URLTemplate string `yaml:"url"`
	Style       string `yaml:"style"`
	Attribution string `yaml:"attribution"`
	TileSize    int    `yaml:"tilesize"`
}

// builtinSources is the fixed registry of known providers. A user-supplied
// URL template or YAML registry overrides it.
var builtinSources = map[string]Source{
	"natgeo": {
		Style:       "natgeo",
		URLTemplate: "https://services.arcgisonline.com/ArcGIS/rest/services/NatGeo_World_Map/MapServer/tile/{z}/{y}/{x}.jpg",
	},
	"natgeo-us-topo": {
		Style:       "natgeo",
		URLTemplate: "https://services.arcgisonline.com/arcgis/rest/services/USA_Topo_Maps/MapServer/tile/{z}/{y}/{x}.jpg",
	},
	"esri-terrain": {
		Style:       "esri",
		URLTemplate: "https://services.arcgisonline.com/arcgis/rest/services/World_Terrain_Base/MapServer/tile/{z}/{y}/{x}.jpg",
	},
	"esri-topo": {
		Style:       "esri",
		URLTemplate: "https://services.arcgisonline.com/arcgis/rest/services/World_Topo_Map/MapServer/tile/{z}/{y}/{x}.jpg",
	},
	"usgs-relief": {
		Style:       "default",
		URLTemplate: "https://basemap.nationalmap.gov/arcgis/rest/services/USGSShadedReliefOnly/MapServer/tile/{z}/{y}/{x}",
	},
	"stamen-terrain": {
		Style:       "stamen",
		URLTemplate: "https://tiles.stadiamaps.com/tiles/stamen_terrain/{z}/{x}/{y}.png",
	},
	"stamen-terrain-background": {
		Style:       "stamen",
		URLTemplate: "https://tiles.stadiamaps.com/tiles/stamen_terrain_background/{z}/{x}/{y}.png",
	},
	"stamen-toner": {
		Style:       "stamen",
		URLTemplate: "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}.png",
	},
	"opentopomap": {
		Style:       "default",
		URLTemplate: "https://tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, SRTM | © OpenTopoMap (CC-BY-SA)",
	},
	"wikimedia-labels": {
		Style:       "wikimedia",
		URLTemplate: "https://maps.wikimedia.org/osm-intl/{z}/{x}/{y}.png",
	},
	"wikimedia": {
		Style:       "wikimedia",
		URLTemplate: "https://maps.wikimedia.org/osm/{z}/{x}/{y}.png",
	},
}

// DefaultSource is used when neither a source ID nor a URL template is given.
const DefaultSource = "wikimedia"

// KnownSources returns the sorted identifiers of the built-in registry.
func KnownSources() []string {
	ids := make([]string, 0, len(builtinSources))
	for id := range builtinSources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LookupSource resolves a provider identifier against the built-in registry.
func LookupSource(id string) (Source, error) {
	s, ok := builtinSources[id]
	if !ok {
		return Source{}, fmt.Errorf("unknown tile source %q, known sources: %s",
			id, strings.Join(KnownSources(), ", "))
	}
	return normalizeSource(id, s), nil
}

// CustomSource wraps a user-supplied URL template as a source.
func CustomSource(urlTemplate string) Source {
	return normalizeSource("user", Source{URLTemplate: urlTemplate, Style: "default"})
}

// LoadRegistry reads additional sources from a YAML file keyed by source ID.
// Entries shadow the built-in registry.
func LoadRegistry(path string) (map[string]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var entries map[string]Source
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}

	sources := make(map[string]Source, len(entries))
	for id, s := range entries {
		if s.URLTemplate == "" {
			return nil, fmt.Errorf("registry source %q has no url", id)
		}
		sources[id] = normalizeSource(id, s)
	}
	return sources, nil
}

func normalizeSource(id string, s Source) Source {
	s.ID = id
	if s.TileSize == 0 {
		s.TileSize = DefaultTileSize
	}
	if s.Style == "" {
		s.Style = "default"
	}
	return s
}

// TileURL substitutes a tile index into the source's URL template.
func (s Source) TileURL(t maptile.Tile) string {
	return strings.NewReplacer(
		"{x}", fmt.Sprintf("%d", t.X),
		"{y}", fmt.Sprintf("%d", t.Y),
		"{z}", fmt.Sprintf("%d", t.Z)).Replace(s.URLTemplate)
}

// IsS3 reports whether the source addresses tiles in an S3 bucket rather
// than an HTTP tile server.
func (s Source) IsS3() bool {
	return strings.HasPrefix(s.URLTemplate, "s3://")
}

// S3Location splits an s3://bucket/key-template URL into bucket and key
// template.
func (s Source) S3Location() (bucket, keyTemplate string, err error) {
	if !s.IsS3() {
		return "", "", fmt.Errorf("source %s is not an s3 source", s.ID)
	}

	rest := strings.TrimPrefix(s.URLTemplate, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed s3 template %q", s.URLTemplate)
	}
	return parts[0], parts[1], nil
}
