package overlay

import (
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/woelfisch/fetchmap/tilemap"
)

var (
	labelFont     *truetype.Font
	labelFontOnce sync.Once
)

func loadLabelFont() *truetype.Font {
	labelFontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			// goregular.TTF is embedded and known-good.
			panic(err)
		}
		labelFont = f
	})
	return labelFont
}

// box is a pixel rectangle used for label collision checks.
type box struct {
	x0, y0, x1, y1 float64
}

func (b box) intersects(o box) bool {
	return b.x0 < o.x1 && o.x0 < b.x1 && b.y0 < o.y1 && o.y0 < b.y1
}

// Canvas draws overlay geometry on a mosaic. It paints directly into the
// mosaic's pixel buffer; the transform stays untouched.
type Canvas struct {
	dc     *gg.Context
	tr     *tilemap.Transform
	style  Style
	faces  map[float64]font.Face
	labels []box
}

// NewCanvas wraps a composed mosaic for overlay drawing with the given
// style table.
func NewCanvas(m *tilemap.Mosaic, style Style) *Canvas {
	return &Canvas{
		dc:    gg.NewContextForRGBA(m.Canvas),
		tr:    m.Transform,
		style: style,
		faces: make(map[float64]font.Face),
	}
}

// Project converts a geographic coordinate to canvas pixels. Overlays must
// place all geometry through this method.
func (c *Canvas) Project(ll orb.Point) (float64, float64, error) {
	return c.tr.Project(ll)
}

func (c *Canvas) face(size float64) font.Face {
	// Font sizes are specified for 300 dpi output.
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(loadLabelFont(), &truetype.Options{Size: size})
	c.faces[size] = f
	return f
}

// Polyline draws a connected line through geographic coordinates with the
// style of the given class. Styles with an outline table get a wider
// outline pass below the fill pass.
func (c *Canvas) Polyline(line orb.LineString, class string) {
	if len(line) < 2 {
		return
	}

	class = c.style.lineClass(class)
	width := c.style.LineWidth[class]

	if c.style.OutlineColor != nil {
		outline := width + 2*c.style.OutlineWidth[class]
		c.strokeLine(line, outline, c.style.OutlineColor[class])
	}

	c.strokeLine(line, width, c.style.LineColor[class])
}

func (c *Canvas) strokeLine(line orb.LineString, width float64, hexColor string) {
	started := false
	for _, ll := range line {
		px, py, err := c.Project(ll)
		if err != nil {
			continue
		}
		if !started {
			c.dc.MoveTo(px, py)
			started = true
			continue
		}
		c.dc.LineTo(px, py)
	}
	if !started {
		return
	}

	c.dc.SetHexColor(hexColor)
	c.dc.SetLineWidth(width)
	c.dc.Stroke()
}

// TownLabel draws a marker dot and name for one town. Labels that would
// overlap an earlier label are dropped, except capitals, which always win.
func (c *Canvas) TownLabel(town Town) {
	px, py, err := c.Project(orb.Point{town.Lon, town.Lat})
	if err != nil {
		return
	}

	class := town.Class
	if _, ok := c.style.FontSize[class]; !ok {
		class = TownTown
	}

	c.dc.SetFontFace(c.face(c.style.FontSize[class]))
	tw, th := c.dc.MeasureString(town.Name)
	msize := c.style.MarkerSize[class]

	textX := px - tw/2
	textY := py - msize - 4
	textBox := box{textX, textY - th, textX + tw, textY}

	if class != TownCapital {
		for _, placed := range c.labels {
			if textBox.intersects(placed) {
				return
			}
		}
	}

	c.dc.SetHexColor("#000000")
	c.dc.DrawString(town.Name, textX, textY)
	c.labels = append(c.labels, textBox)

	c.dc.DrawCircle(px, py, msize)
	c.dc.Fill()
	c.labels = append(c.labels, box{px - msize, py - msize, px + msize, py + msize})
}

// Waypoint draws a waypoint marker with an optional text flag.
func (c *Canvas) Waypoint(ll orb.Point, text string) {
	px, py, err := c.Project(ll)
	if err != nil {
		return
	}

	size := c.style.FontSize["waypoints"] / 2

	c.dc.SetHexColor(c.style.WaypointBackground)
	c.dc.DrawCircle(px, py, size/2)
	c.dc.FillPreserve()
	c.dc.SetHexColor(c.style.WaypointText)
	c.dc.SetLineWidth(2)
	c.dc.Stroke()

	if text == "" {
		return
	}

	c.dc.SetFontFace(c.face(c.style.FontSize["waypoints"]))
	tw, th := c.dc.MeasureString(text)

	bgX := px + size
	bgY := py - th - 4

	c.dc.SetRGBA(1, 1, 1, 0.75)
	c.dc.DrawRectangle(bgX-4, bgY-4, tw+8, th+8)
	c.dc.Fill()

	c.dc.SetHexColor(c.style.WaypointText)
	c.dc.DrawString(text, bgX, bgY+th)
}
