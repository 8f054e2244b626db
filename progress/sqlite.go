package progress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLite is a file-backed Store. One row per level plus a single-row
// session table carrying the current level counter
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (and creates if missing) the progress database
// Configures busy timeout and WAL journaling
func OpenSQLite(dsn string, log zerolog.Logger) (*SQLite, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}

	s := &SQLite{db: db, log: log.With().Str("component", "progress").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS session (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	current_level INTEGER NOT NULL DEFAULT 1
);
INSERT OR IGNORE INTO session (id, current_level) VALUES (1, 1);

CREATE TABLE IF NOT EXISTS levels (
	level     INTEGER PRIMARY KEY,
	completed INTEGER NOT NULL DEFAULT 0,
	first_try INTEGER NOT NULL DEFAULT 0,
	retries   INTEGER NOT NULL DEFAULT 0
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CurrentLevel implements Store
func (s *SQLite) CurrentLevel() (int, error) {
	var level int
	err := s.db.QueryRow(`SELECT current_level FROM session WHERE id = 1`).Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("current level: %w", err)
	}
	return level, nil
}

// LevelCompleted implements Store, advancing the session level counter
func (s *SQLite) LevelCompleted(level int, firstTry bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("level completed: %w", err)
	}
	defer tx.Rollback()

	ft := 0
	if firstTry {
		ft = 1
	}
	if _, err := tx.Exec(`
INSERT INTO levels (level, completed, first_try) VALUES (?, 1, ?)
ON CONFLICT(level) DO UPDATE SET completed = 1, first_try = MAX(first_try, excluded.first_try)`,
		level, ft); err != nil {
		return fmt.Errorf("level completed: %w", err)
	}

	if _, err := tx.Exec(`
UPDATE session SET current_level = MAX(current_level, ?) WHERE id = 1`,
		level+1); err != nil {
		return fmt.Errorf("level completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("level completed: %w", err)
	}

	s.log.Info().Int("level", level).Bool("first_try", firstTry).Msg("level completed")
	return nil
}

// LevelFailed implements Store
func (s *SQLite) LevelFailed(level int) error {
	if _, err := s.db.Exec(`
INSERT INTO levels (level, retries) VALUES (?, 1)
ON CONFLICT(level) DO UPDATE SET retries = retries + 1`,
		level); err != nil {
		return fmt.Errorf("level failed: %w", err)
	}
	return nil
}

// RetriesForLevel implements Store
func (s *SQLite) RetriesForLevel(level int) (int, error) {
	var retries int
	err := s.db.QueryRow(`SELECT retries FROM levels WHERE level = ?`, level).Scan(&retries)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("retries: %w", err)
	}
	return retries, nil
}
