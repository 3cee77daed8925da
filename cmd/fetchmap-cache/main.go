package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/woelfisch/fetchmap/tilemap"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func main() {
	sourceID := flag.String("source", tilemap.DefaultSource, "Tile source whose cache entries to operate on.")
	migrateTo := flag.String("migrate", "", "Copy all cached tiles of the source into this mbtiles file.")
	stats := flag.Bool("stats", false, "Print tile count, zoom span and bounding box of the cached tiles.")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Usage: fetchmap-cache [options] cache-dir")
	}

	cache, err := tilemap.NewDiskCache(flag.Arg(0))
	if err != nil {
		log.Fatalf("Couldn't open tile cache: %v", err)
	}
	defer cache.Close()

	switch {
	case *migrateTo != "":
		if err := migrate(cache, *sourceID, *migrateTo); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	case *stats:
		if err := printStats(cache, *sourceID); err != nil {
			log.Fatalf("Couldn't read cache: %v", err)
		}
	default:
		log.Fatalf("Nothing to do, pass -migrate or -stats")
	}
}

func migrate(cache *tilemap.DiskCache, source, output string) error {
	// Never clobber an existing archive.
	if pathExists(output) {
		return fmt.Errorf("output path %s already exists and cannot be overwritten", output)
	}

	mbtiles, err := tilemap.NewMbtilesCache(output)
	if err != nil {
		return err
	}
	defer mbtiles.Close()

	count := 0
	err = cache.VisitAll(source, func(t maptile.Tile, data []byte) {
		if err := mbtiles.Put(source, t, data); err != nil {
			log.Printf("Couldn't save tile %d/%d/%d: %v", t.Z, t.X, t.Y, err)
			return
		}
		count++
	})
	if err != nil {
		return err
	}

	log.Printf("Migrated %d %s tiles to %s", count, source, output)
	return nil
}

func printStats(cache *tilemap.DiskCache, source string) error {
	var bounds *orb.Bound
	var count int
	var bytes int64
	minZoom := tilemap.MaxZoom + 1
	maxZoom := maptile.Zoom(0)

	err := cache.VisitAll(source, func(t maptile.Tile, data []byte) {
		tb := t.Bound()
		if bounds == nil {
			bounds = &tb
		} else {
			tb = bounds.Union(tb)
			bounds = &tb
		}

		minZoom = min(minZoom, t.Z)
		maxZoom = max(maxZoom, t.Z)
		count++
		bytes += int64(len(data))
	})
	if err != nil {
		return err
	}

	if count == 0 {
		fmt.Printf("%s: no cached tiles\n", source)
		return nil
	}

	fmt.Printf("%s: %d tiles, %.1f MB, zoom %d-%d\n", source, count, float64(bytes)/(1<<20), minZoom, maxZoom)
	fmt.Printf("bounds: %.4f,%.4f,%.4f,%.4f (west,south,east,north)\n",
		bounds.Min.X(), bounds.Min.Y(), bounds.Max.X(), bounds.Max.Y())
	return nil
}
