package overlay

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tkrajina/gpxgo/gpx"
)

// GPX feature selectors, matching the CLI's "[feature,]file.gpx" syntax.
const (
	GPXTracks    = "trk"
	GPXWaypoints = "wpt"
	GPXAny       = "any"
)

// WaypointGroup collects the waypoints of one GPX file, titled after the
// file's metadata, for marker drawing and the waypoint listing page.
type WaypointGroup struct {
	Title     string
	Waypoints []gpx.GPXPoint
}

// DrawGPX renders the tracks and/or waypoints of one GPX file. Tracks are
// drawn immediately; waypoints are returned as a group so the caller can
// place their markers above later overlays, the way the original tool layers
// them over town labels.
func DrawGPX(c *Canvas, path string, features string) (WaypointGroup, error) {
	doc, err := gpx.ParseFile(path)
	if err != nil {
		return WaypointGroup{}, fmt.Errorf("parse gpx %s: %w", path, err)
	}

	if features == GPXTracks || features == GPXAny {
		for _, track := range doc.Tracks {
			for _, segment := range track.Segments {
				line := make(orb.LineString, 0, len(segment.Points))
				for _, p := range segment.Points {
					line = append(line, orb.Point{p.Longitude, p.Latitude})
				}
				c.Polyline(line, ClassTrack)
			}
		}
	}

	group := WaypointGroup{Title: gpxTitle(doc, path)}
	if features == GPXWaypoints || features == GPXAny {
		group.Waypoints = doc.Waypoints
	}
	return group, nil
}

func gpxTitle(doc *gpx.GPX, path string) string {
	if doc.Description != "" {
		return doc.Description
	}
	if doc.Name != "" {
		return doc.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DrawWaypoints places the waypoint markers collected by DrawGPX.
func DrawWaypoints(c *Canvas, groups []WaypointGroup) {
	for _, group := range groups {
		for _, wpt := range group.Waypoints {
			c.Waypoint(orb.Point{wpt.Longitude, wpt.Latitude}, wpt.Name)
		}
	}
}
