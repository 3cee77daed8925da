package tilemap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/singleflight"
)

const (
	defaultUserAgent   = "fetchmap/1.0"
	defaultHTTPTimeout = 60 * time.Second
	memoryCacheSize    = 256
)

// TileResolver resolves a tile index to raw image bytes. The mosaic
// compositor only depends on this interface.
type TileResolver interface {
	Resolve(ctx context.Context, t maptile.Tile) ([]byte, error)
}

// FetcherOptions tune a Fetcher. The zero value picks sane defaults.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string

	// DryRun suppresses all network activity and cache writes; cache misses
	// come back as ErrDryRun so the compositor can substitute placeholders.
	DryRun bool
}

// Fetcher resolves tiles for one source, consulting the persistent cache
// before going to the network. Concurrent requests for the same tile are
// coalesced into a single fetch; each miss gets exactly one attempt.
type Fetcher struct {
	source Source
	cache  TileCache
	memory *lru.Cache
	remote remoteFetcher
	group  singleflight.Group
	dryRun bool
	logger *slog.Logger

	// cacheWarn fires on the first cache failure only, so a broken cache
	// does not produce one warning per tile.
	cacheWarn sync.Once
}

// remoteFetcher is the transport behind a cache miss: HTTP for tile servers,
// S3 for bucket-hosted tile sets.
type remoteFetcher interface {
	fetch(ctx context.Context, t maptile.Tile) ([]byte, error)
}

func NewFetcher(source Source, cache TileCache, opts FetcherOptions) (*Fetcher, error) {
	if opts.Timeout == 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	memory, err := lru.New(memoryCacheSize)
	if err != nil {
		return nil, err
	}

	var remote remoteFetcher
	if source.IsS3() {
		remote, err = newS3Remote(source)
		if err != nil {
			return nil, err
		}
	} else {
		remote = newHTTPRemote(source, opts.Timeout, opts.UserAgent)
	}

	return &Fetcher{
		source: source,
		cache:  cache,
		memory: memory,
		remote: remote,
		dryRun: opts.DryRun,
		logger: slog.Default().With("source", source.ID),
	}, nil
}

// Source returns the tile source this fetcher is bound to.
func (f *Fetcher) Source() Source {
	return f.source
}

// Resolve returns the bytes for one tile: from the in-process cache, the
// persistent cache, or a single network fetch whose result is written back
// to the cache. Failures surface as *FetchError.
func (f *Fetcher) Resolve(ctx context.Context, t maptile.Tile) ([]byte, error) {
	key := fmt.Sprintf("%s/%d/%d/%d", f.source.ID, t.Z, t.X, t.Y)

	if data, ok := f.memory.Get(key); ok {
		return data.([]byte), nil
	}

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		return f.resolveSlow(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	data := v.([]byte)
	f.memory.Add(key, data)
	return data, nil
}

func (f *Fetcher) resolveSlow(ctx context.Context, t maptile.Tile) ([]byte, error) {
	if f.cache != nil {
		data, err := f.cache.Get(f.source.ID, t)
		if err == nil {
			return data, nil
		}
		if err != ErrTileNotFound {
			// A broken cache degrades to always-fetch, it never aborts.
			f.warnOnce("tile cache unreadable, fetching directly", err)
		}
	}

	if f.dryRun {
		return nil, ErrDryRun
	}

	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: f.source.ID, Tile: t, Cause: err}
	}

	data, err := f.remote.fetch(ctx, t)
	if err != nil {
		return nil, &FetchError{Source: f.source.ID, Tile: t, Cause: err}
	}

	if f.cache != nil {
		if err := f.cache.Put(f.source.ID, t, data); err != nil {
			f.warnOnce("tile cache unwritable", err)
		}
	}

	return data, nil
}

func (f *Fetcher) warnOnce(msg string, err error) {
	f.cacheWarn.Do(func() {
		f.logger.Warn(msg, "error", err)
	})
}

type httpRemote struct {
	source    Source
	client    *http.Client
	userAgent string
}

func newHTTPRemote(source Source, timeout time.Duration, userAgent string) *httpRemote {
	// Configure the HTTP client with a timeout and connection pools
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 500,
		},
	}

	return &httpRemote{source: source, client: client, userAgent: userAgent}
}

func (h *httpRemote) fetch(ctx context.Context, t maptile.Tile) ([]byte, error) {
	url := h.source.TileURL(t)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return data, nil
}
