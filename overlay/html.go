package overlay

import (
	"html/template"
	"io"
	"path/filepath"
	"strings"
)

// waypointPage is the printable companion page: the map image followed by a
// numbered listing of every waypoint, one section per GPX file.
var waypointPage = template.Must(template.New("waypoints").Parse(`<!doctype html>
<html>
	<head>
		<meta http-equiv="Content-type" content="text/html; charset=utf-8">
		<title>{{.Title}}</title>
		<style>
			@page {
				size: auto;
				margin: {{.MarginMM}}mm {{.MarginMM}}mm {{.MarginMM}}mm {{.MarginMM}}mm;
			}
			img.map {max-width: 100%}
			div.map {page-break-after: always}
		</style>
	</head>
	<body>
{{- if .Image}}
	<div class="map"><img src="{{.Image}}" class="map" alt="{{.Title}}"/></div>
{{- end}}
{{- range .Groups}}
{{- if .Waypoints}}
	<h1>{{.Title}}</h1>
	<div class="waypoints"><ol>
{{- range .Waypoints}}
		<li>{{.Name}}{{if .Description}}<br>{{.Description}}{{end}}</li>
{{- end}}
	</ol></div>
{{- end}}
{{- end}}
	</body>
</html>
`))

type waypointPageData struct {
	Title    string
	Image    string
	MarginMM int
	Groups   []WaypointGroup
}

// WriteWaypointHTML writes the waypoint listing page for a map image. The
// image is referenced by file name, so the page works next to the image it
// describes.
func WriteWaypointHTML(w io.Writer, groups []WaypointGroup, imagePath string, marginMM int) error {
	base := filepath.Base(imagePath)
	ext := strings.ToLower(filepath.Ext(base))

	data := waypointPageData{
		Title:    strings.TrimSuffix(base, filepath.Ext(base)),
		MarginMM: marginMM,
		Groups:   groups,
	}

	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff":
		data.Image = base
	}

	return waypointPage.Execute(w, data)
}
