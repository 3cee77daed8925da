package tilemap

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb/maptile"
)

// TileCache persists raw tile bytes keyed by (source, zoom, x, y). Entries
// are created on first successful fetch, never mutated and never expired;
// lifecycle is operator-managed. Implementations must be safe for
// concurrent use.
type TileCache interface {
	// Get returns the cached bytes for a key, or ErrTileNotFound.
	Get(source string, t maptile.Tile) ([]byte, error)
	// Put stores bytes under a key. Storing an already-cached key is a no-op.
	Put(source string, t maptile.Tile, data []byte) error
	Close() error
}

// DiskCache stores each tile as one file under
// {root}/{source}/{zoom}/{x}/{y}.png, matching the layout tile servers use.
// Existence of an entry is checked by direct path lookup; there is no index.
type DiskCache struct {
	root string
}

func NewDiskCache(root string) (*DiskCache, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, 0755); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !info.IsDir():
		return nil, fmt.Errorf("cache root %s is not a directory", abs)
	}

	return &DiskCache{root: abs}, nil
}

func (c *DiskCache) entryPath(source string, t maptile.Tile) string {
	return filepath.Join(c.root, source,
		strconv.Itoa(int(t.Z)), strconv.Itoa(int(t.X)), fmt.Sprintf("%d.png", t.Y))
}

func (c *DiskCache) Get(source string, t maptile.Tile) ([]byte, error) {
	data, err := os.ReadFile(c.entryPath(source, t))
	if os.IsNotExist(err) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put writes the entry via a temporary file and rename, so concurrent
// writers for the same key cannot leave a torn entry behind. The first
// writer wins; later writers for an existing key return without touching it.
func (c *DiskCache) Put(source string, t maptile.Tile, data []byte) error {
	path := c.entryPath(source, t)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func (c *DiskCache) Close() error {
	return nil
}

// VisitAll runs the visitor on every cached tile of one source, in no
// particular order.
func (c *DiskCache) VisitAll(source string, visitor func(maptile.Tile, []byte)) error {
	root := filepath.Join(c.root, source)

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		var z, x, y int
		if n, _ := fmt.Sscanf(filepath.ToSlash(rel), "%d/%d/%d.png", &z, &x, &y); n != 3 {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		visitor(maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), data)
		return nil
	})
}
