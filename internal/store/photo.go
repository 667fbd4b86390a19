package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// PhotoURLPrefix is the HTTP path photos are served under.
const PhotoURLPrefix = "/photos/"

// Photo represents one ornament image on the tree.
type Photo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	ModTime   time.Time `json:"modTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// PhotoRepository handles photo catalog persistence.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns a PhotoRepository for the store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// PhotoID returns the catalog id for the photo at position i.
func PhotoID(i int) string {
	return fmt.Sprintf("photo-%d", i)
}

// ImportDir replaces the catalog with the .jpg files in dir, oldest first.
// Ids are positional so the renderer and the catalog agree on "photo-<i>".
func (r *PhotoRepository) ImportDir(dir string) ([]Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo dir: %w", err)
	}

	var photos []Photo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".jpg") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		photos = append(photos, Photo{
			Filename: e.Name(),
			ModTime:  info.ModTime().UTC(),
		})
	}
	sort.SliceStable(photos, func(i, j int) bool {
		if photos[i].ModTime.Equal(photos[j].ModTime) {
			return photos[i].Filename < photos[j].Filename
		}
		return photos[i].ModTime.Before(photos[j].ModTime)
	})

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM photos`); err != nil {
		return nil, fmt.Errorf("failed to clear photos: %w", err)
	}

	now := time.Now().UTC()
	for i := range photos {
		p := &photos[i]
		p.ID = PhotoID(i)
		p.URL = PhotoURLPrefix + p.Filename
		p.Position = i
		p.CreatedAt = now
		_, err := tx.Exec(
			`INSERT INTO photos (id, filename, url, position, mod_time, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Filename, p.URL, p.Position, p.ModTime, p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert photo %s: %w", p.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit photos: %w", err)
	}
	return photos, nil
}

// GetByID retrieves a photo by its catalog id.
func (r *PhotoRepository) GetByID(id string) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(
		`SELECT id, filename, url, position, mod_time, created_at FROM photos WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Filename, &p.URL, &p.Position, &p.ModTime, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

// List returns all photos in tree order.
func (r *PhotoRepository) List() ([]Photo, error) {
	rows, err := r.db.Query(
		`SELECT id, filename, url, position, mod_time, created_at FROM photos ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.URL, &p.Position, &p.ModTime, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// PhotoURL resolves a hit target id to the image URL. Unknown ids report false.
func (r *PhotoRepository) PhotoURL(id string) (string, bool) {
	p, err := r.GetByID(id)
	if err != nil {
		return "", false
	}
	return p.URL, true
}
