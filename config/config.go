package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/marrowfield/memstride/constants"
)

// Config is the TOML game configuration
type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Game      GameConfig      `toml:"game"`
	Levels    LevelsConfig    `toml:"levels"`
	Narration NarrationConfig `toml:"narration"`
	Store     StoreConfig     `toml:"store"`
}

// GridConfig sets the playfield dimensions
type GridConfig struct {
	Rows    int `toml:"rows"`
	Columns int `toml:"columns"`
}

// GameConfig carries session-level switches
type GameConfig struct {
	FinalLevel int `toml:"final_level"`

	// DebugBypass makes any tile a correct step and the end tile an
	// immediate completion. Manual QA only
	DebugBypass bool `toml:"debug_bypass"`

	// Seed fixes path generation for reproducible sessions, 0 = random
	Seed int64 `toml:"seed"`
}

// LevelsConfig maps level numbers to requested path lengths:
// length = BaseLength + Growth*(level-1), clamped to the grid size
type LevelsConfig struct {
	BaseLength int `toml:"base_length"`
	Growth     int `toml:"growth"`
}

// NarrationConfig toggles the audio narration player
type NarrationConfig struct {
	Enabled bool `toml:"enabled"`
}

// StoreConfig selects the persisted progress backend
type StoreConfig struct {
	// Path to the SQLite file; empty selects the in-memory store
	Path string `toml:"path"`
}

// Default returns the standard configuration
func Default() Config {
	return Config{
		Grid: GridConfig{
			Rows:    constants.DefaultRows,
			Columns: constants.DefaultColumns,
		},
		Game: GameConfig{
			FinalLevel: constants.FinalLevel,
		},
		Levels: LevelsConfig{
			BaseLength: 4,
			Growth:     1,
		},
		Narration: NarrationConfig{
			Enabled: true,
		},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults apply
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the generator or grid cannot honor
func (c Config) Validate() error {
	if c.Grid.Rows < 2 || c.Grid.Columns < 2 {
		return fmt.Errorf("grid must be at least 2x2, got %dx%d", c.Grid.Rows, c.Grid.Columns)
	}
	if c.Game.FinalLevel < 1 {
		return fmt.Errorf("final_level must be positive, got %d", c.Game.FinalLevel)
	}
	if c.Levels.BaseLength < 2 {
		return fmt.Errorf("base_length must be at least 2, got %d", c.Levels.BaseLength)
	}
	if c.Levels.Growth < 0 {
		return fmt.Errorf("growth must not be negative, got %d", c.Levels.Growth)
	}
	return nil
}

// LengthForLevel returns the requested path length for a level, clamped
// to the grid size
func (c Config) LengthForLevel(level int) int {
	length := c.Levels.BaseLength + c.Levels.Growth*(level-1)
	if max := c.Grid.Rows * c.Grid.Columns; length > max {
		length = max
	}
	if length < 2 {
		length = 2
	}
	return length
}
