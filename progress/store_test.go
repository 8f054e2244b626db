package progress

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// storeUnderTest runs the shared Store contract against an implementation
func storeUnderTest(t *testing.T, s Store) {
	t.Helper()

	level, err := s.CurrentLevel()
	if err != nil || level != 1 {
		t.Fatalf("fresh CurrentLevel = %d, %v, want 1, nil", level, err)
	}

	if err := s.LevelCompleted(1, true); err != nil {
		t.Fatalf("LevelCompleted: %v", err)
	}
	level, _ = s.CurrentLevel()
	if level != 2 {
		t.Errorf("level after completing 1 = %d, want 2", level)
	}

	// Completing an already-passed level does not move the counter back
	if err := s.LevelCompleted(1, false); err != nil {
		t.Fatalf("repeat LevelCompleted: %v", err)
	}
	level, _ = s.CurrentLevel()
	if level != 2 {
		t.Errorf("level after re-completing 1 = %d, want 2", level)
	}

	retries, err := s.RetriesForLevel(2)
	if err != nil || retries != 0 {
		t.Errorf("retries for untouched level = %d, %v, want 0, nil", retries, err)
	}

	if err := s.LevelFailed(2); err != nil {
		t.Fatalf("LevelFailed: %v", err)
	}
	if err := s.LevelFailed(2); err != nil {
		t.Fatalf("LevelFailed: %v", err)
	}
	retries, _ = s.RetriesForLevel(2)
	if retries != 2 {
		t.Errorf("retries after two failures = %d, want 2", retries)
	}

	// Failure does not advance the level
	level, _ = s.CurrentLevel()
	if level != 2 {
		t.Errorf("level after failures = %d, want 2", level)
	}

	if err := s.LevelCompleted(2, false); err != nil {
		t.Fatalf("LevelCompleted after retries: %v", err)
	}
	level, _ = s.CurrentLevel()
	if level != 3 {
		t.Errorf("level after completing 2 = %d, want 3", level)
	}
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemory())
}

func TestMemorySetCurrentLevel(t *testing.T) {
	m := NewMemory()
	m.SetCurrentLevel(7)
	level, _ := m.CurrentLevel()
	if level != 7 {
		t.Errorf("CurrentLevel = %d, want 7", level)
	}
}

func TestSQLiteStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "progress.db")
	s, err := OpenSQLite(dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	storeUnderTest(t, s)
}

// TestSQLitePersistsAcrossReopen closes and reopens the same file and
// checks the session survived
func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "progress.db")

	s, err := OpenSQLite(dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.LevelCompleted(1, true); err != nil {
		t.Fatalf("LevelCompleted: %v", err)
	}
	if err := s.LevelFailed(2); err != nil {
		t.Fatalf("LevelFailed: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	level, err := s2.CurrentLevel()
	if err != nil || level != 2 {
		t.Errorf("reopened CurrentLevel = %d, %v, want 2, nil", level, err)
	}
	retries, err := s2.RetriesForLevel(2)
	if err != nil || retries != 1 {
		t.Errorf("reopened retries = %d, %v, want 1, nil", retries, err)
	}
}

func TestSQLiteCreatesParentDir(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "progress.db")
	s, err := OpenSQLite(dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite with nested path: %v", err)
	}
	s.Close()
}
