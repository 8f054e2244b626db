package grid

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/pathgen"
)

func testGrid(t *testing.T, rows, cols int, origin Vec3, yaw float64) *Grid {
	t.Helper()
	g := New(zerolog.Nop())
	g.Init(origin, yaw, rows, cols)
	return g
}

func TestWorldToGridRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		origin Vec3
		yaw    float64
	}{
		{"identity", Vec3{}, 0},
		{"translated", Vec3{X: 3.2, Y: 0.1, Z: -7.5}, 0},
		{"rotated", Vec3{}, math.Pi / 3},
		{"translated and rotated", Vec3{X: -1.4, Y: 0.5, Z: 2.2}, -2.1},
		{"full turn", Vec3{X: 0.3, Z: 0.3}, 2 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGrid(t, 5, 5, tt.origin, tt.yaw)
			for z := 0; z < 5; z++ {
				for x := 0; x < 5; x++ {
					center := g.TileCenter(x, z)
					gx, gz, ok := g.WorldToGrid(center)
					if !ok {
						t.Fatalf("tile (%d,%d): center %v mapped off grid", x, z, center)
					}
					if gx != x || gz != z {
						t.Errorf("tile (%d,%d): round-trip gave (%d,%d)", x, z, gx, gz)
					}
				}
			}
		})
	}
}

func TestWorldToGridOffGrid(t *testing.T) {
	g := testGrid(t, 5, 5, Vec3{}, 0)

	// A position well past the last column
	far := g.TileCenter(4, 0)
	far.X += 3.0
	if _, _, ok := g.WorldToGrid(far); ok {
		t.Error("position beyond the grid edge mapped onto the grid")
	}
}

func TestWorldToGridBeforeInit(t *testing.T) {
	g := New(zerolog.Nop())
	if _, _, ok := g.WorldToGrid(Vec3{}); ok {
		t.Error("uninitialized grid accepted a mapping")
	}
	if g.TileAt(0, 0) != nil {
		t.Error("uninitialized grid returned a tile")
	}
}

func TestStartRowAnchoredAtOrigin(t *testing.T) {
	origin := Vec3{X: 2, Y: 0, Z: 5}
	g := testGrid(t, 5, 5, origin, 0)

	// The center column of the nearest row (z = rows-1) sits on the origin
	c := g.TileCenter(2, 4)
	if math.Abs(c.X-origin.X) > 1e-9 || math.Abs(c.Z-origin.Z) > 1e-9 {
		t.Errorf("anchor tile center = %v, want %v", c, origin)
	}
}

func TestInstallPathMarksTiles(t *testing.T) {
	g := testGrid(t, 5, 5, Vec3{}, 0)
	path := []pathgen.Cell{{X: 2, Z: 4}, {X: 2, Z: 3}, {X: 3, Z: 3}}
	g.InstallPath(path)

	for i, c := range path {
		tile := g.TileAt(c.X, c.Z)
		if !tile.IsPathTile || tile.PathIndex != i {
			t.Errorf("tile %v: IsPathTile=%v PathIndex=%d, want true %d",
				c, tile.IsPathTile, tile.PathIndex, i)
		}
	}
	if g.TileAt(2, 4).State != TileStart {
		t.Errorf("start tile state = %v, want %v", g.TileAt(2, 4).State, TileStart)
	}
	if g.TileAt(0, 0).IsPathTile {
		t.Error("off-path tile marked as path")
	}
}

func TestRevealAndHidePath(t *testing.T) {
	g := testGrid(t, 5, 5, Vec3{}, 0)
	path := []pathgen.Cell{{X: 2, Z: 4}, {X: 2, Z: 3}, {X: 2, Z: 2}, {X: 1, Z: 2}}
	g.InstallPath(path)
	g.RevealPath()

	wantStates := []TileState{TileStart, TilePath, TilePath, TileEnd}
	for i, c := range path {
		if got := g.TileAt(c.X, c.Z).State; got != wantStates[i] {
			t.Errorf("revealed tile %d state = %v, want %v", i, got, wantStates[i])
		}
	}

	g.HidePath()
	wantStates = []TileState{TileStart, TileDefault, TileDefault, TileEnd}
	for i, c := range path {
		if got := g.TileAt(c.X, c.Z).State; got != wantStates[i] {
			t.Errorf("hidden tile %d state = %v, want %v", i, got, wantStates[i])
		}
	}
}

func TestRevealPathIndexBounds(t *testing.T) {
	g := testGrid(t, 3, 3, Vec3{}, 0)
	g.InstallPath([]pathgen.Cell{{X: 1, Z: 2}, {X: 1, Z: 1}})

	// Out-of-range indexes are ignored
	g.RevealPathIndex(-1)
	g.RevealPathIndex(5)
	if g.TileAt(1, 1).State != TileDefault {
		t.Error("out-of-range reveal changed tile state")
	}
}

func TestMarkTilesIdempotent(t *testing.T) {
	g := testGrid(t, 3, 3, Vec3{}, 0)

	g.MarkTileCorrect(1, 1)
	g.MarkTileCorrect(1, 1)
	if g.TileAt(1, 1).State != TileCorrect {
		t.Errorf("state = %v, want %v", g.TileAt(1, 1).State, TileCorrect)
	}

	g.MarkTileWrong(1, 1)
	g.MarkTileWrong(1, 1)
	if g.TileAt(1, 1).State != TileWrong {
		t.Errorf("state = %v, want %v", g.TileAt(1, 1).State, TileWrong)
	}

	// Out of bounds is a no-op
	g.MarkTileCorrect(-1, 99)
}

func TestResetTileStates(t *testing.T) {
	g := testGrid(t, 3, 3, Vec3{}, 0)
	g.InstallPath([]pathgen.Cell{{X: 0, Z: 0}, {X: 1, Z: 0}})
	g.RevealPath()
	g.MarkTileWrong(2, 2)

	g.ResetTileStates()
	g.ResetTileStates() // Idempotent

	if g.Path() != nil {
		t.Error("path survived reset")
	}
	for z := 0; z < 3; z++ {
		for x := 0; x < 3; x++ {
			tile := g.TileAt(x, z)
			if tile.State != TileDefault || tile.IsPathTile || tile.PathIndex != -1 {
				t.Errorf("tile (%d,%d) not reset: %+v", x, z, tile)
			}
		}
	}
}

func TestSnapshot(t *testing.T) {
	g := testGrid(t, 2, 3, Vec3{}, 0)
	g.MarkTileCorrect(1, 0)

	snap := g.Snapshot()
	if len(snap) != 2 || len(snap[0]) != 3 {
		t.Fatalf("snapshot shape %dx%d, want 2x3", len(snap), len(snap[0]))
	}
	if snap[0][1] != TileCorrect {
		t.Errorf("snapshot[0][1] = %v, want %v", snap[0][1], TileCorrect)
	}

	// Snapshot is a copy, later mutation must not leak in
	g.MarkTileWrong(0, 0)
	if snap[0][0] != TileDefault {
		t.Error("snapshot aliases live tile state")
	}
}
