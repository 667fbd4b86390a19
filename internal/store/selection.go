package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Selection is one photo opened in the modal.
type Selection struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	PhotoID   string    `json:"photoId,omitempty"`
	PhotoURL  string    `json:"photoUrl"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"createdAt"`
}

// SelectionRepository handles selection history persistence.
type SelectionRepository struct {
	db *sql.DB
}

// Selections returns a SelectionRepository for the store.
func (s *Store) Selections() *SelectionRepository {
	return &SelectionRepository{db: s.db}
}

// Record inserts a selection. ID and CreatedAt are filled in when empty.
func (r *SelectionRepository) Record(sel *Selection) error {
	if sel.ID == "" {
		sel.ID = uuid.New().String()
	}
	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = time.Now().UTC()
	}

	var photoID any
	if sel.PhotoID != "" {
		photoID = sel.PhotoID
	}

	_, err := r.db.Exec(
		`INSERT INTO selections (id, session_id, photo_id, photo_url, method, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sel.ID, sel.SessionID, photoID, sel.PhotoURL, sel.Method, sel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record selection: %w", err)
	}
	return nil
}

// GetByID retrieves a selection by id.
func (r *SelectionRepository) GetByID(id string) (*Selection, error) {
	sel := &Selection{}
	var photoID sql.NullString
	err := r.db.QueryRow(
		`SELECT id, session_id, photo_id, photo_url, method, created_at FROM selections WHERE id = ?`,
		id,
	).Scan(&sel.ID, &sel.SessionID, &photoID, &sel.PhotoURL, &sel.Method, &sel.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}
	sel.PhotoID = photoID.String
	return sel, nil
}

// Recent returns up to limit selections, newest first.
func (r *SelectionRepository) Recent(limit int) ([]Selection, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, photo_id, photo_url, method, created_at FROM selections ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	defer rows.Close()

	var out []Selection
	for rows.Next() {
		var sel Selection
		var photoID sql.NullString
		if err := rows.Scan(&sel.ID, &sel.SessionID, &photoID, &sel.PhotoURL, &sel.Method, &sel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		sel.PhotoID = photoID.String
		out = append(out, sel)
	}
	return out, rows.Err()
}
