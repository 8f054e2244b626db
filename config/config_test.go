package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marrowfield/memstride/constants"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Rows != constants.DefaultRows || cfg.Grid.Columns != constants.DefaultColumns {
		t.Errorf("grid = %dx%d, want defaults", cfg.Grid.Rows, cfg.Grid.Columns)
	}
	if !cfg.Narration.Enabled {
		t.Error("narration disabled by default")
	}
	if cfg.Game.DebugBypass {
		t.Error("debug bypass enabled by default")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memstride.toml")
	data := `
[grid]
rows = 7
columns = 6

[game]
final_level = 3
debug_bypass = true
seed = 99

[levels]
base_length = 5
growth = 2

[narration]
enabled = false

[store]
path = "progress.db"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Rows != 7 || cfg.Grid.Columns != 6 {
		t.Errorf("grid = %dx%d, want 7x6", cfg.Grid.Rows, cfg.Grid.Columns)
	}
	if cfg.Game.FinalLevel != 3 || !cfg.Game.DebugBypass || cfg.Game.Seed != 99 {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Narration.Enabled {
		t.Error("narration override not applied")
	}
	if cfg.Store.Path != "progress.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"tiny grid", "[grid]\nrows = 1\ncolumns = 5"},
		{"zero final level", "[game]\nfinal_level = 0"},
		{"short base length", "[levels]\nbase_length = 1"},
		{"negative growth", "[levels]\ngrowth = -1"},
		{"malformed toml", "grid = ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("invalid config loaded without error")
			}
		})
	}
}

func TestLengthForLevel(t *testing.T) {
	cfg := Default()
	cfg.Grid.Rows, cfg.Grid.Columns = 5, 5
	cfg.Levels.BaseLength, cfg.Levels.Growth = 4, 1

	tests := []struct {
		level int
		want  int
	}{
		{1, 4},
		{2, 5},
		{10, 13},
		{50, 25}, // Clamped to 5x5
	}
	for _, tt := range tests {
		if got := cfg.LengthForLevel(tt.level); got != tt.want {
			t.Errorf("LengthForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}
