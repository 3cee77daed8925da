package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrajina/gpxgo/gpx"
)

func Test_writeWaypointHTML(t *testing.T) {
	groups := []WaypointGroup{
		{
			Title: "Day one",
			Waypoints: []gpx.GPXPoint{
				{Point: gpx.Point{Latitude: 38.57, Longitude: -109.55}, Name: "Camp", Description: "By the river"},
				{Point: gpx.Point{Latitude: 38.60, Longitude: -109.60}, Name: "Overlook"},
			},
		},
		{Title: "Tracks only"},
	}

	var buf strings.Builder
	require.NoError(t, WriteWaypointHTML(&buf, groups, "/maps/moab.png", 5))
	out := buf.String()

	assert.Contains(t, out, "<title>moab</title>")
	assert.Contains(t, out, `<img src="moab.png"`)
	assert.Contains(t, out, "margin: 5mm 5mm 5mm 5mm")
	assert.Contains(t, out, "<h1>Day one</h1>")
	assert.Contains(t, out, "<li>Camp<br>By the river</li>")
	assert.Contains(t, out, "<li>Overlook</li>")

	// Files without waypoints get no section.
	assert.NotContains(t, out, "Tracks only")
}

func Test_writeWaypointHTMLEscapes(t *testing.T) {
	groups := []WaypointGroup{
		{
			Title: "A <b>trip</b>",
			Waypoints: []gpx.GPXPoint{
				{Name: "Fish & Chips"},
			},
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteWaypointHTML(&buf, groups, "out.png", 5))
	out := buf.String()

	assert.Contains(t, out, "Fish &amp; Chips")
	assert.NotContains(t, out, "<b>trip</b>")
}
