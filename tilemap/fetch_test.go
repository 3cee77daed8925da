package tilemap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTileServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		fmt.Fprintf(w, "tile:%s", r.URL.Path)
	}))
}

func testSource(serverURL string) Source {
	return normalizeSource("test", Source{URLTemplate: serverURL + "/{z}/{x}/{y}.png"})
}

func Test_fetcherCacheIdempotence(t *testing.T) {
	var hits int32
	server := newTileServer(t, &hits)
	defer server.Close()

	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)

	fetcher, err := NewFetcher(testSource(server.URL), cache, FetcherOptions{})
	require.NoError(t, err)

	tile := maptile.New(3, 5, 7)

	first, err := fetcher.Resolve(context.Background(), tile)
	require.NoError(t, err)

	second, err := fetcher.Resolve(context.Background(), tile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second resolve must be served from cache")
}

func Test_fetcherCachePersistsAcrossInstances(t *testing.T) {
	var hits int32
	server := newTileServer(t, &hits)
	defer server.Close()

	root := t.TempDir()
	tile := maptile.New(1, 2, 3)

	cache, err := NewDiskCache(root)
	require.NoError(t, err)
	fetcher, err := NewFetcher(testSource(server.URL), cache, FetcherOptions{})
	require.NoError(t, err)
	_, err = fetcher.Resolve(context.Background(), tile)
	require.NoError(t, err)

	cache2, err := NewDiskCache(root)
	require.NoError(t, err)
	fetcher2, err := NewFetcher(testSource(server.URL), cache2, FetcherOptions{})
	require.NoError(t, err)
	_, err = fetcher2.Resolve(context.Background(), tile)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func Test_fetcherCoalescesConcurrentRequests(t *testing.T) {
	var hits int32
	server := newTileServer(t, &hits)
	defer server.Close()

	fetcher, err := NewFetcher(testSource(server.URL), nil, FetcherOptions{})
	require.NoError(t, err)

	tile := maptile.New(9, 9, 9)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fetcher.Resolve(context.Background(), tile)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Coalescing keeps concurrent resolves of one key to very few fetches;
	// with no in-between resolves it collapses to one.
	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(2))
}

func Test_fetcherDryRun(t *testing.T) {
	var hits int32
	server := newTileServer(t, &hits)
	defer server.Close()

	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)

	fetcher, err := NewFetcher(testSource(server.URL), cache, FetcherOptions{DryRun: true})
	require.NoError(t, err)

	_, err = fetcher.Resolve(context.Background(), maptile.New(3, 5, 7))
	assert.ErrorIs(t, err, ErrDryRun)
	assert.Zero(t, atomic.LoadInt32(&hits))

	// A cached tile is still served in dry-run mode.
	cached := maptile.New(1, 1, 1)
	require.NoError(t, cache.Put("test", cached, []byte("cached")))

	data, err := fetcher.Resolve(context.Background(), cached)
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), data)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func Test_fetcherSurfacesFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher, err := NewFetcher(testSource(server.URL), nil, FetcherOptions{})
	require.NoError(t, err)

	_, err = fetcher.Resolve(context.Background(), maptile.New(3, 5, 7))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "test", fetchErr.Source)
	assert.Equal(t, maptile.New(3, 5, 7), fetchErr.Tile)
}

func Test_fetchErrorMessage(t *testing.T) {
	withSource := &FetchError{Source: "test", Tile: maptile.New(3, 5, 9), Cause: assert.AnError}
	assert.Contains(t, withSource.Error(), "fetch test/9/3/5")

	// Decode failures carry no source; the message must not render a bare slash.
	withoutSource := &FetchError{Tile: maptile.New(3, 5, 9), Cause: assert.AnError}
	assert.Contains(t, withoutSource.Error(), "fetch 9/3/5")
	assert.NotContains(t, withoutSource.Error(), "fetch /")
}

func Test_fetcherSingleAttempt(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher, err := NewFetcher(testSource(server.URL), nil, FetcherOptions{})
	require.NoError(t, err)

	_, err = fetcher.Resolve(context.Background(), maptile.New(0, 0, 0))
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "no automatic retry")
}
