/*
Package catalog maintains a sqlite index of farbfeld images.

Each indexed file is recorded with its path, a content hash, its
dimensions and a small dominant-color palette so collections can be
browsed without re-decoding anything.
*/
package catalog

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"image/color"
	"io"

	"github.com/jmp/farbfeld"
	_ "github.com/mattn/go-sqlite3"
)

// DB is an open catalog database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the catalog database at file.
func Open(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, path TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, palette BLOB)"); err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.db.Close()
}

// Image is one catalog entry.
type Image struct {
	Path    string
	SHA1    string
	Width   int
	Height  int
	Palette color.Palette
}

// Put decodes the farbfeld image supplied by r and records it under path.
// Content already present, identified by hash, keeps its row and only has
// its path refreshed.
func (db *DB) Put(path string, r io.Reader) error {
	h := sha1.New()
	m, err := farbfeld.Decode(io.TeeReader(r, h))
	if err != nil {
		return err
	}
	sum := fmt.Sprintf("%X", h.Sum(nil))

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM image WHERE sha1 = ?", sum).Scan(&id); err {
	case sql.ErrNoRows:
		b := m.Bounds()
		_, err := db.db.Exec("INSERT INTO image (sha1, path, width, height, palette) VALUES (?, ?, ?, ?, ?)",
			sum, path, b.Dx(), b.Dy(), marshalPalette(dominantColors(m)))
		return err
	case nil:
		_, err := db.db.Exec("UPDATE image SET path = ? WHERE id = ?", path, id)
		return err
	default:
		return err
	}
}

func scanImage(row *sql.Row) (*Image, error) {
	var m Image
	var palette []byte
	switch err := row.Scan(&m.Path, &m.SHA1, &m.Width, &m.Height, &palette); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		if m.Palette, err = unmarshalPalette(palette); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, err
	}
}

// ByPath returns the entry recorded under path, or nil if there is none.
func (db *DB) ByPath(path string) (*Image, error) {
	return scanImage(db.db.QueryRow("SELECT path, sha1, width, height, palette FROM image WHERE path = ?", path))
}

// BySHA1 returns the entry with the given content hash, or nil if there is
// none.
func (db *DB) BySHA1(sum string) (*Image, error) {
	return scanImage(db.db.QueryRow("SELECT path, sha1, width, height, palette FROM image WHERE sha1 = ?", sum))
}

// Images returns every catalog entry ordered by path.
func (db *DB) Images() ([]Image, error) {
	rows, err := db.db.Query("SELECT path, sha1, width, height, palette FROM image ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var m Image
		var palette []byte
		if err := rows.Scan(&m.Path, &m.SHA1, &m.Width, &m.Height, &palette); err != nil {
			return nil, err
		}
		if m.Palette, err = unmarshalPalette(palette); err != nil {
			return nil, err
		}
		images = append(images, m)
	}
	return images, rows.Err()
}
