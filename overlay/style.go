// Package overlay draws vector data (road networks, GPX tracks and
// waypoints, town labels) on top of an assembled tile mosaic. All geometry
// is placed through the mosaic's pixel transform, never through a private
// projection, so every overlay stays aligned with the base raster.
package overlay

// Road and track classes the style tables know about.
const (
	ClassInterstate = "Interstate"
	ClassFederal    = "Federal"
	ClassState      = "State"
	ClassOther      = "Other"
	ClassTrack      = "Track"
)

// Town label classes, most important first.
const (
	TownCapital = "capitals"
	TownCity    = "cities"
	TownTown    = "towns"
)

// Style holds the drawing parameters for one map style. Colors are CSS hex
// strings.
type Style struct {
	LineWidth    map[string]float64
	LineColor    map[string]string
	OutlineWidth map[string]float64
	OutlineColor map[string]string

	MarkerSize map[string]float64
	FontSize   map[string]float64

	WaypointBackground string
	WaypointText       string

	// ColorAdjust, when set, is applied to the base raster before overlays
	// are drawn.
	ColorAdjust *ColorAdjust
}

var defaultStyle = Style{
	LineWidth: map[string]float64{
		ClassInterstate: 5,
		ClassFederal:    5,
		ClassState:      5,
		ClassOther:      5,
		ClassTrack:      6,
	},
	LineColor: map[string]string{
		ClassInterstate: "#87CEFA",
		ClassFederal:    "#B8B8B8",
		ClassState:      "#C8C8C8",
		ClassOther:      "#C8C8C8",
		ClassTrack:      "#FF5500",
	},
	MarkerSize: map[string]float64{
		TownCapital: 14,
		TownCity:    10,
		TownTown:    8,
	},
	FontSize: map[string]float64{
		TownCapital: 56,
		TownCity:    44,
		TownTown:    44,
		"waypoints": 48,
	},
	WaypointBackground: "#FF5500",
	WaypointText:       "#FF0000",
}

// styleOverrides adjusts the defaults per map style; muted base maps get
// stronger road colors and an outline pass.
var styleOverrides = map[string]Style{
	"stamen": {
		LineWidth: map[string]float64{
			ClassInterstate: 6,
			ClassFederal:    6,
			ClassState:      6,
			ClassOther:      6,
			ClassTrack:      7,
		},
		LineColor: map[string]string{
			ClassInterstate: "#A0D0A0",
			ClassFederal:    "#E8A8A8",
			ClassState:      "#B0B0B0",
			ClassOther:      "#B0B0B0",
			ClassTrack:      "#FF5500",
		},
		OutlineWidth: map[string]float64{
			ClassInterstate: 1,
			ClassFederal:    1,
			ClassState:      1,
			ClassOther:      1,
			ClassTrack:      1,
		},
		OutlineColor: map[string]string{
			ClassInterstate: "#B0F0B0",
			ClassFederal:    "#FFB0FF",
			ClassState:      "#FFFFFF",
			ClassOther:      "#FFFFFF",
			ClassTrack:      "#FF0000",
		},
		// Wash the base map out so overlays stand out on it.
		ColorAdjust: &ColorAdjust{Saturation: 1.0, Contrast: 0.4, Brightness: 1.15},
	},
}

// StyleFor returns the style table for a map style identifier, overlaying
// its overrides on the defaults.
func StyleFor(id string) Style {
	s := defaultStyle.clone()

	override, ok := styleOverrides[id]
	if !ok {
		return s
	}

	mergeFloats(s.LineWidth, override.LineWidth)
	mergeStrings(s.LineColor, override.LineColor)
	mergeFloats(s.MarkerSize, override.MarkerSize)
	mergeFloats(s.FontSize, override.FontSize)

	if override.OutlineWidth != nil {
		s.OutlineWidth = override.OutlineWidth
	}
	if override.OutlineColor != nil {
		s.OutlineColor = override.OutlineColor
	}
	if override.ColorAdjust != nil {
		s.ColorAdjust = override.ColorAdjust
	}
	if override.WaypointBackground != "" {
		s.WaypointBackground = override.WaypointBackground
	}
	if override.WaypointText != "" {
		s.WaypointText = override.WaypointText
	}

	return s
}

func (s Style) clone() Style {
	c := s
	c.LineWidth = cloneFloats(s.LineWidth)
	c.LineColor = cloneStrings(s.LineColor)
	c.OutlineWidth = cloneFloats(s.OutlineWidth)
	c.OutlineColor = cloneStrings(s.OutlineColor)
	c.MarkerSize = cloneFloats(s.MarkerSize)
	c.FontSize = cloneFloats(s.FontSize)
	return c
}

// lineClass maps an arbitrary class attribute to a styled class.
func (s Style) lineClass(class string) string {
	if _, ok := s.LineWidth[class]; ok {
		return class
	}
	return ClassOther
}

func cloneFloats(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func mergeFloats(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}

func mergeStrings(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
