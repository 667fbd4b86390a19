package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Photos table - the catalog the renderer places on the tree
		`CREATE TABLE IF NOT EXISTS photos (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL,
			position INTEGER NOT NULL,
			mod_time DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Selections table - every photo opened by dwell, pinch or the UI
		`CREATE TABLE IF NOT EXISTS selections (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			photo_id TEXT REFERENCES photos(id) ON DELETE SET NULL,
			photo_url TEXT NOT NULL,
			method TEXT NOT NULL CHECK(method IN ('dwell', 'pinch', 'manual')),
			created_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_photos_position ON photos(position)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_created_at ON selections(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_photo_id ON selections(photo_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
