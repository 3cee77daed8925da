package tilemap

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"sync"

	_ "github.com/mattn/go-sqlite3" // Register sqlite3 database driver
	"github.com/paulmach/orb/maptile"
)

// MbtilesCache keeps tiles in an mbtiles database instead of loose files,
// which is friendlier to filesystems when caches grow to many thousand
// tiles. One database holds every source; the source ID is folded into the
// tile_id.
type MbtilesCache struct {
	db *sql.DB
	mu sync.Mutex
}

func NewMbtilesCache(dsn string) (*MbtilesCache, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	c := &MbtilesCache{db: db}
	if err := c.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

func (c *MbtilesCache) createTables() error {
	_, err := c.db.Exec(`
		BEGIN TRANSACTION;
		CREATE TABLE IF NOT EXISTS map (
			source TEXT NOT NULL,
			zoom_level INTEGER NOT NULL,
			tile_column INTEGER NOT NULL,
			tile_row INTEGER NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (source, zoom_level, tile_column, tile_row);
		CREATE TABLE IF NOT EXISTS images (
			tile_data BLOB NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
		CREATE VIEW IF NOT EXISTS tiles AS
		SELECT
			map.source AS source,
			map.zoom_level AS zoom_level,
			map.tile_column AS tile_column,
			map.tile_row AS tile_row,
			images.tile_data AS tile_data
		FROM map
		JOIN images ON images.tile_id = map.tile_id;
		COMMIT;
		PRAGMA synchronous=OFF;
	`)
	return err
}

func (c *MbtilesCache) Get(source string, t maptile.Tile) ([]byte, error) {
	var data []byte

	row := c.db.QueryRow(
		"SELECT tile_data FROM tiles WHERE source=? AND zoom_level=? AND tile_column=? AND tile_row=? LIMIT 1",
		source, t.Z, t.X, t.Y)

	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTileNotFound
		}
		return nil, err
	}

	return data, nil
}

func (c *MbtilesCache) Put(source string, t maptile.Tile, data []byte) error {
	hash := md5.Sum(data)
	tileID := hex.EncodeToString(hash[:])

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("INSERT OR IGNORE INTO images (tile_id, tile_data) VALUES (?, ?);", tileID, data); err != nil {
		return err
	}

	_, err := c.db.Exec(
		"INSERT OR IGNORE INTO map (source, zoom_level, tile_column, tile_row, tile_id) VALUES (?, ?, ?, ?, ?);",
		source, t.Z, t.X, t.Y, tileID)
	return err
}

func (c *MbtilesCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// VisitAll runs the visitor on every cached tile of one source.
func (c *MbtilesCache) VisitAll(source string, visitor func(maptile.Tile, []byte)) error {
	rows, err := c.db.Query(
		"SELECT zoom_level, tile_column, tile_row, tile_data FROM tiles WHERE source=?", source)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var x, y uint32
		var z maptile.Zoom
		var data []byte
		if err := rows.Scan(&z, &x, &y, &data); err != nil {
			return err
		}
		visitor(maptile.New(x, y, z), data)
	}
	return rows.Err()
}
