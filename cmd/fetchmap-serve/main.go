package main

import (
	"flag"
	"log"
	gohttp "net/http"
	"os"
	"time"

	"github.com/woelfisch/fetchmap/http"
	"github.com/woelfisch/fetchmap/tilemap"
)

func loggingMiddleware(logger *log.Logger) func(gohttp.Handler) gohttp.Handler {
	return func(next gohttp.Handler) gohttp.Handler {
		return gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			defer func() {
				logger.Println(r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent())
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	cacheDir := flag.String("cache-dir", "", "Directory of the tile cache to serve from.")
	cacheMbtiles := flag.String("cache-mbtiles", "", "Mbtiles tile cache to serve from instead of -cache-dir.")
	sourceID := flag.String("source", tilemap.DefaultSource, "Tile source identifier whose cached tiles to serve.")
	addr := flag.String("listen", ":8080", "The address and port to listen on")
	flag.Parse()

	logger := log.New(os.Stdout, "http: ", log.LstdFlags)

	var cache tilemap.TileCache
	var err error
	switch {
	case *cacheMbtiles != "":
		cache, err = tilemap.NewMbtilesCache(*cacheMbtiles)
	case *cacheDir != "":
		cache, err = tilemap.NewDiskCache(*cacheDir)
	default:
		logger.Fatal("Need to provide -cache-dir or -cache-mbtiles")
	}
	if err != nil {
		logger.Fatalf("Couldn't open tile cache: %v", err)
	}
	defer cache.Close()

	router := gohttp.NewServeMux()
	router.Handle("/", http.CacheHandler(cache, *sourceID))

	server := &gohttp.Server{
		Addr:         *addr,
		Handler:      loggingMiddleware(logger)(router),
		ErrorLog:     logger,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	logger.Printf("Serving %s tiles on %s", *sourceID, *addr)
	if err := server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		logger.Fatalf("Could not listen on %s: %v\n", *addr, err)
	}
}
