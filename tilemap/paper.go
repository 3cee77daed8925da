package tilemap

import (
	"fmt"
	"math"
	"strings"
)

// paperSizes lists ISO 216 A-series dimensions in millimeters, portrait.
var paperSizes = map[string][2]int{
	"A0": {841, 1189},
	"A1": {594, 841},
	"A2": {420, 594},
	"A3": {297, 420},
	"A4": {210, 297},
	"A5": {148, 210},
	"A6": {105, 148},
	"A7": {74, 105},
}

// PaperFormats returns the known paper format names.
func PaperFormats() []string {
	names := make([]string, 0, len(paperSizes))
	for name := range paperSizes {
		names = append(names, name)
	}
	return names
}

// PaperPixels converts a paper format to the usable output dimensions in
// pixels at the given print resolution, after subtracting the margin.
func PaperPixels(format string, landscape bool, dpi int, marginMM int) (width, height int, err error) {
	size, ok := paperSizes[strings.ToUpper(format)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown paper format %q", format)
	}

	w := size[0]
	h := size[1]
	if landscape {
		w, h = h, w
	}

	width = int(math.Round(float64(w-marginMM) / 25.4 * float64(dpi)))
	height = int(math.Round(float64(h-marginMM) / 25.4 * float64(dpi)))
	return width, height, nil
}
