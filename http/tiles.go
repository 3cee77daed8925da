// Package http serves tiles out of a local tile cache, for previewing
// fetched areas in a browser slippy map before printing.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	gohttp "net/http"
	"regexp"
	"strconv"

	"github.com/paulmach/orb/maptile"

	"github.com/woelfisch/fetchmap/tilemap"
)

var tilePathRegex = regexp.MustCompile(`^/(\d+)/(\d+)/(\d+)\.png$`)

// CacheHandler serves cached tiles of one source at /{z}/{x}/{y}.png.
// Tiles missing from the cache are a 404; the handler never fetches.
func CacheHandler(cache tilemap.TileCache, source string) gohttp.HandlerFunc {
	return func(w gohttp.ResponseWriter, r *gohttp.Request) {
		tile, err := parseTileFromPath(r.URL.Path)
		if err != nil {
			gohttp.NotFound(w, r)
			return
		}

		data, err := cache.Get(source, tile)
		if errors.Is(err, tilemap.ErrTileNotFound) {
			gohttp.NotFound(w, r)
			return
		}
		if err != nil {
			slog.Error("cache read failed", "tile", tile, "error", err)
			gohttp.Error(w, "cache read failed", gohttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(data)
	}
}

func parseTileFromPath(url string) (maptile.Tile, error) {
	match := tilePathRegex.FindStringSubmatch(url)
	if match == nil {
		return maptile.Tile{}, fmt.Errorf("invalid tile path")
	}

	z, _ := strconv.ParseUint(match[1], 10, 32)
	x, _ := strconv.ParseUint(match[2], 10, 32)
	y, _ := strconv.ParseUint(match[3], 10, 32)

	if z > uint64(tilemap.MaxZoom) || x >= 1<<z || y >= 1<<z {
		return maptile.Tile{}, fmt.Errorf("tile %d/%d/%d out of range", z, x, y)
	}

	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), nil
}
