package progress

import "sync"

// Store is the persisted progress interface consumed by the flow
// controller. The store is the authority on the current level: the
// controller re-reads it before every round and overwrites its local
// counter on disagreement
// Implementations may be backed by memory (this package) or SQLite
type Store interface {
	// CurrentLevel returns the level the player should attempt next
	CurrentLevel() (int, error)

	// LevelCompleted records a finished round. firstTry is true when no
	// wrong step occurred during the round
	LevelCompleted(level int, firstTry bool) error

	// LevelFailed records a failed attempt at a level
	LevelFailed(level int) error

	// RetriesForLevel returns the recorded failure count for a level
	RetriesForLevel(level int) (int, error)
}

// levelRecord is one level's bookkeeping
type levelRecord struct {
	completed bool
	firstTry  bool
	retries   int
}

// Memory is a map-based Store for development and tests
// State is lost when the process restarts
type Memory struct {
	mu      sync.RWMutex
	current int
	levels  map[int]*levelRecord
}

// NewMemory constructs an in-memory store starting at level 1
func NewMemory() *Memory {
	return &Memory{
		current: 1,
		levels:  make(map[int]*levelRecord),
	}
}

// SetCurrentLevel overrides the level counter, used by tests and menu
// level selection
func (m *Memory) SetCurrentLevel(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = level
}

// CurrentLevel implements Store
func (m *Memory) CurrentLevel() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

// LevelCompleted implements Store, advancing the level counter
func (m *Memory) LevelCompleted(level int, firstTry bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(level)
	rec.completed = true
	if firstTry && rec.retries == 0 {
		rec.firstTry = true
	}
	if level >= m.current {
		m.current = level + 1
	}
	return nil
}

// LevelFailed implements Store
func (m *Memory) LevelFailed(level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(level).retries++
	return nil
}

// RetriesForLevel implements Store
func (m *Memory) RetriesForLevel(level int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.levels[level]; ok {
		return rec.retries, nil
	}
	return 0, nil
}

func (m *Memory) record(level int) *levelRecord {
	rec, ok := m.levels[level]
	if !ok {
		rec = &levelRecord{}
		m.levels[level] = rec
	}
	return rec
}
