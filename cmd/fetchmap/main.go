package main

import (
	"context"
	"flag"
	"fmt"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/woelfisch/fetchmap/overlay"
	"github.com/woelfisch/fetchmap/tilemap"
)

// stringList collects repeatable flags like -gpx.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	sourceID := flag.String("source", tilemap.DefaultSource, "Tile source identifier. Use -list-sources for the registry.")
	urlTemplateStr := flag.String("url-template", "", "Custom tile URL template with {z}, {x} and {y} placeholders. Overrides -source.")
	registryPath := flag.String("registry", "", "YAML file with additional tile sources, shadowing the built-in registry.")
	listSources := flag.Bool("list-sources", false, "List known tile sources and exit.")

	paperFormat := flag.String("paper", "A3", "Paper format to size the output for (A0..A7).")
	landscape := flag.Bool("landscape", false, "Force landscape orientation instead of picking the one that fits the deeper zoom.")
	portrait := flag.Bool("portrait", false, "Force portrait orientation instead of picking the one that fits the deeper zoom.")
	dpi := flag.Int("dpi", 300, "Print resolution in dots per inch.")
	marginMM := flag.Int("margin", 5, "Unprintable margin in millimeters, subtracted from the paper size.")
	zoomOverride := flag.Int("zoom", -1, "Fixed zoom level. Overrides the paper-based zoom selection.")

	cacheDir := flag.String("cache-dir", defaultCacheDir(), "Directory for the persistent tile cache.")
	cacheMbtiles := flag.String("cache-mbtiles", "", "Use an mbtiles file as the tile cache instead of -cache-dir.")
	noCache := flag.Bool("no-cache", false, "Fetch every tile, bypassing the persistent cache.")

	numTileFetchWorkers := flag.Int("workers", 4, "Number of tile fetch workers to use.")
	requestTimeout := flag.Int("timeout", 60, "HTTP client timeout for tile requests, in seconds.")
	userAgent := flag.String("user-agent", "", "Override the User-Agent header on tile requests.")
	dryRun := flag.Bool("dry-run", false, "Plan the mosaic and report it without fetching any tiles.")
	quiet := flag.Bool("quiet", false, "Suppress the progress bar.")

	var gpxFiles stringList
	flag.Var(&gpxFiles, "gpx", "GPX file to draw, optionally prefixed with trk, wpt or any and a comma. Repeatable.")
	roadsPath := flag.String("roads", "", "GeoJSON file with a road network to draw.")
	townsPath := flag.String("towns", "", "JSON file with town labels to draw.")

	outputPath := flag.String("o", "map.png", "Output image path. The extension selects PNG or JPEG.")
	flag.Parse()

	if *listSources {
		for _, id := range tilemap.KnownSources() {
			fmt.Println(id)
		}
		return
	}

	bounds, err := parseBounds(flag.Args())
	if err != nil {
		log.Fatalf("%v. Usage: fetchmap [options] west south east north", err)
	}

	source, err := resolveSource(*sourceID, *urlTemplateStr, *registryPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var zoom maptile.Zoom
	if *zoomOverride >= 0 {
		if *zoomOverride > int(tilemap.MaxZoom) {
			log.Fatalf("Zoom %d exceeds the maximum of %d", *zoomOverride, tilemap.MaxZoom)
		}
		zoom = maptile.Zoom(*zoomOverride)
	} else {
		page, err := selectPageZoom(bounds, *paperFormat, *dpi, *marginMM, source.TileSize, *landscape, *portrait)
		if err != nil {
			log.Fatalf("Couldn't select a zoom level: %v", err)
		}

		zoom = page.zoom
		orientation := "portrait"
		if page.landscape {
			orientation = "landscape"
		}
		log.Printf("Zoom %d fills %.0fx%.0f of %dx%d pixels (%s %s at %d dpi)",
			zoom, page.ext.Width(), page.ext.Height(), page.width, page.height,
			*paperFormat, orientation, *dpi)
	}

	plan, err := tilemap.PlanMosaic(bounds, zoom, source.TileSize)
	if err != nil {
		log.Fatalf("Couldn't plan the mosaic: %v", err)
	}

	cols, rows := plan.TileCount()
	log.Printf("Fetching %d tiles (%dx%d) from %s at zoom %d", len(plan.Placements), cols, rows, source.ID, zoom)

	var cache tilemap.TileCache
	if !*noCache {
		cache, err = openCache(*cacheDir, *cacheMbtiles)
		if err != nil {
			log.Fatalf("Couldn't open the tile cache: %v", err)
		}
		defer cache.Close()
	}

	fetcher, err := tilemap.NewFetcher(source, cache, tilemap.FetcherOptions{
		Timeout:   time.Duration(*requestTimeout) * time.Second,
		UserAgent: *userAgent,
		DryRun:    *dryRun,
	})
	if err != nil {
		log.Fatalf("Couldn't create the tile fetcher: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mosaic, err := tilemap.Compose(ctx, plan, fetcher, tilemap.ComposeOptions{
		Workers:  *numTileFetchWorkers,
		Progress: !*quiet && !*dryRun,
	})
	if err != nil {
		log.Fatalf("Mosaic assembly aborted: %v", err)
	}

	log.Print(mosaic.Report.Summary())

	style := overlay.StyleFor(source.Style)
	style.ColorAdjust.Apply(mosaic.Canvas)

	groups, err := drawOverlays(mosaic, style, gpxFiles, *roadsPath, *townsPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *dryRun {
		if len(gpxFiles) > 0 {
			if err := overlay.WriteWaypointHTML(os.Stdout, groups, *outputPath, *marginMM); err != nil {
				log.Fatalf("Couldn't render waypoint listing: %v", err)
			}
		}
		log.Printf("Dry run, not writing %s", *outputPath)
		return
	}

	if err := writeImage(*outputPath, mosaic); err != nil {
		log.Fatalf("Couldn't write %s: %v", *outputPath, err)
	}

	log.Printf("Wrote %s (%dx%d)", *outputPath, plan.Width, plan.Height)

	// The printable companion page listing the GPX waypoints.
	if len(gpxFiles) > 0 {
		htmlPath := strings.TrimSuffix(*outputPath, filepath.Ext(*outputPath)) + ".html"
		if err := writeWaypointPage(htmlPath, groups, *outputPath, *marginMM); err != nil {
			log.Fatalf("Couldn't write %s: %v", htmlPath, err)
		}
		log.Printf("Wrote %s", htmlPath)
	}

	if source.Attribution != "" {
		log.Printf("Map data: %s", source.Attribution)
	}
}

func parseBounds(args []string) (orb.Bound, error) {
	if len(args) != 4 {
		return orb.Bound{}, fmt.Errorf("need exactly 4 coordinates, got %d", len(args))
	}

	coords := make([]float64, 4)
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("coordinate %q is not a number", arg)
		}
		coords[i] = f
	}

	west, south, east, north := coords[0], coords[1], coords[2], coords[3]
	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}, nil
}

type pageLayout struct {
	zoom      maptile.Zoom
	ext       tilemap.PixelExtent
	width     int
	height    int
	landscape bool
}

// selectPageZoom picks the zoom level and page orientation. Unless one
// orientation is forced, both are tried and the one that fits the deeper
// zoom wins, portrait on a tie.
func selectPageZoom(bounds orb.Bound, format string, dpi, marginMM, tileSize int, landscape, portrait bool) (pageLayout, error) {
	layoutFor := func(isLandscape bool) (pageLayout, error) {
		w, h, err := tilemap.PaperPixels(format, isLandscape, dpi, marginMM)
		if err != nil {
			return pageLayout{}, err
		}
		zoom, ext, err := tilemap.SelectZoom(bounds, w, h, tileSize)
		if err != nil {
			return pageLayout{}, err
		}
		return pageLayout{zoom: zoom, ext: ext, width: w, height: h, landscape: isLandscape}, nil
	}

	if landscape && !portrait {
		return layoutFor(true)
	}
	if portrait && !landscape {
		return layoutFor(false)
	}

	p, err := layoutFor(false)
	if err != nil {
		return pageLayout{}, err
	}
	l, err := layoutFor(true)
	if err != nil {
		return pageLayout{}, err
	}

	if l.zoom > p.zoom {
		return l, nil
	}
	return p, nil
}

func resolveSource(id, urlTemplate, registryPath string) (tilemap.Source, error) {
	if urlTemplate != "" {
		return tilemap.CustomSource(urlTemplate), nil
	}

	if registryPath != "" {
		registry, err := tilemap.LoadRegistry(registryPath)
		if err != nil {
			return tilemap.Source{}, err
		}
		if s, ok := registry[id]; ok {
			return s, nil
		}
	}

	return tilemap.LookupSource(id)
}

func openCache(cacheDir, cacheMbtiles string) (tilemap.TileCache, error) {
	if cacheMbtiles != "" {
		return tilemap.NewMbtilesCache(cacheMbtiles)
	}
	return tilemap.NewDiskCache(cacheDir)
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".fetchmap-cache"
	}
	return filepath.Join(base, "fetchmap")
}

func drawOverlays(mosaic *tilemap.Mosaic, style overlay.Style, gpxFiles []string, roadsPath, townsPath string) ([]overlay.WaypointGroup, error) {
	if len(gpxFiles) == 0 && roadsPath == "" && townsPath == "" {
		return nil, nil
	}

	canvas := overlay.NewCanvas(mosaic, style)

	if roadsPath != "" {
		if err := overlay.DrawRoads(canvas, roadsPath); err != nil {
			return nil, err
		}
	}

	var groups []overlay.WaypointGroup
	for _, spec := range gpxFiles {
		features, path := splitGPXSpec(spec)
		group, err := overlay.DrawGPX(canvas, path, features)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	if townsPath != "" {
		towns, err := overlay.LoadTowns(townsPath)
		if err != nil {
			return nil, err
		}
		overlay.DrawTownLabels(canvas, towns)
	}

	// Waypoints go on last so their flags sit above the town labels.
	overlay.DrawWaypoints(canvas, groups)
	return groups, nil
}

func writeWaypointPage(htmlPath string, groups []overlay.WaypointGroup, imagePath string, marginMM int) error {
	f, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	if err := overlay.WriteWaypointHTML(f, groups, imagePath, marginMM); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// splitGPXSpec parses "[feature,]file.gpx" into a feature selector and path.
func splitGPXSpec(spec string) (features, path string) {
	switch {
	case strings.HasPrefix(spec, overlay.GPXTracks+","):
		return overlay.GPXTracks, strings.TrimPrefix(spec, overlay.GPXTracks+",")
	case strings.HasPrefix(spec, overlay.GPXWaypoints+","):
		return overlay.GPXWaypoints, strings.TrimPrefix(spec, overlay.GPXWaypoints+",")
	case strings.HasPrefix(spec, overlay.GPXAny+","):
		return overlay.GPXAny, strings.TrimPrefix(spec, overlay.GPXAny+",")
	default:
		return overlay.GPXAny, spec
	}
}

func writeImage(path string, mosaic *tilemap.Mosaic) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, mosaic.Canvas, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, mosaic.Canvas)
	}
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
