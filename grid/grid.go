package grid

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/constants"
	"github.com/marrowfield/memstride/pathgen"
)

// Grid owns tile state and the per-tile detection volumes. The start row
// (z = rows-1) is anchored at the placement origin and the grid extends
// away from it; yaw rotates the whole layout around the vertical axis
//
// All mutating operations are issued by the flow controller; the render
// view reads snapshots concurrently, hence the lock
type Grid struct {
	mu sync.RWMutex

	rows, cols int
	origin     Vec3    // Placement anchor: center of the start row, floor height
	yaw        float64 // Rotation around the vertical axis, radians

	tiles [][]*Tile // Indexed [z][x]
	path  []pathgen.Cell

	log zerolog.Logger
}

// New creates an empty grid. Init must be called before use
func New(log zerolog.Logger) *Grid {
	return &Grid{log: log.With().Str("component", "grid").Logger()}
}

// Init allocates a fresh tile array anchored at origin. Prior tile and
// trigger state is fully discarded
func (g *Grid) Init(origin Vec3, yaw float64, rows, cols int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.origin = origin
	g.yaw = yaw
	g.rows = rows
	g.cols = cols
	g.path = nil

	g.tiles = make([][]*Tile, rows)
	for z := 0; z < rows; z++ {
		g.tiles[z] = make([]*Tile, cols)
		for x := 0; x < cols; x++ {
			g.tiles[z][x] = &Tile{
				X:         x,
				Z:         z,
				Center:    g.tileCenterLocked(x, z),
				State:     TileDefault,
				PathIndex: -1,
			}
		}
	}

	g.log.Info().Int("rows", rows).Int("cols", cols).
		Float64("yaw", yaw).Msg("grid initialized")
}

// Rows returns the grid row count
func (g *Grid) Rows() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rows
}

// Cols returns the grid column count
func (g *Grid) Cols() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cols
}

// TileAt returns the tile at (x, z), nil when out of bounds or before Init
func (g *Grid) TileAt(x, z int) *Tile {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tileAtLocked(x, z)
}

func (g *Grid) tileAtLocked(x, z int) *Tile {
	if g.tiles == nil || x < 0 || x >= g.cols || z < 0 || z >= g.rows {
		return nil
	}
	return g.tiles[z][x]
}

// TileCenter returns the world-space center of tile (x, z)
func (g *Grid) TileCenter(x, z int) Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tileCenterLocked(x, z)
}

// tileCenterLocked maps grid coordinates into world space: the start row
// is anchored at the origin, columns are centered on it, and the whole
// layout is rotated by yaw
func (g *Grid) tileCenterLocked(x, z int) Vec3 {
	local := Vec3{
		X: (float64(x) - float64(g.cols-1)/2) * constants.TileSpacing,
		Y: 0,
		Z: float64(g.rows-1-z) * constants.TileSpacing,
	}
	return g.origin.Add(local.rotateY(g.yaw))
}

// WorldToGrid maps a world position to grid coordinates, rotating into
// local space before dividing by cell spacing
func (g *Grid) WorldToGrid(pos Vec3) (x, z int, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.worldToGridLocked(pos)
}

func (g *Grid) worldToGridLocked(pos Vec3) (int, int, bool) {
	if g.tiles == nil {
		return 0, 0, false
	}

	local := pos.Sub(g.origin).rotateY(-g.yaw)
	x := int(math.Round(local.X/constants.TileSpacing + float64(g.cols-1)/2))
	z := g.rows - 1 - int(math.Round(local.Z/constants.TileSpacing))

	if x < 0 || x >= g.cols || z < 0 || z >= g.rows {
		return 0, 0, false
	}
	return x, z, true
}

// InstallPath records the active path on the tiles and highlights the
// start tile. Call ResetTileStates between rounds before installing the
// next path
func (g *Grid) InstallPath(path []pathgen.Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.path = path
	for i, c := range path {
		t := g.tileAtLocked(c.X, c.Z)
		if t == nil {
			continue
		}
		t.IsPathTile = true
		t.PathIndex = i
	}

	if len(path) > 0 {
		if t := g.tileAtLocked(path[0].X, path[0].Z); t != nil {
			t.State = TileStart
		}
	}
}

// Path returns the active path
func (g *Grid) Path() []pathgen.Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.path
}

// RevealPathIndex reveals the single path tile at the given path index
// The start and end tiles keep their own tags
func (g *Grid) RevealPathIndex(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i < 0 || i >= len(g.path) {
		return
	}
	t := g.tileAtLocked(g.path[i].X, g.path[i].Z)
	if t == nil {
		return
	}
	switch i {
	case 0:
		t.State = TileStart
	case len(g.path) - 1:
		t.State = TileEnd
	default:
		t.State = TilePath
	}
}

// RevealPath reveals every path tile at once
func (g *Grid) RevealPath() {
	for i := range g.Path() {
		g.RevealPathIndex(i)
	}
}

// HidePath returns intermediate path tiles to default, keeping the start
// and end tiles visible
func (g *Grid) HidePath() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range g.path {
		if i == 0 || i == len(g.path)-1 {
			continue
		}
		if t := g.tileAtLocked(c.X, c.Z); t != nil {
			t.State = TileDefault
		}
	}
}

// MarkTileCorrect tags a tile as a correctly taken step. Idempotent
func (g *Grid) MarkTileCorrect(x, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t := g.tileAtLocked(x, z); t != nil {
		t.State = TileCorrect
	}
}

// MarkTileWrong tags a tile as a wrong step. Idempotent
func (g *Grid) MarkTileWrong(x, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t := g.tileAtLocked(x, z); t != nil {
		t.State = TileWrong
	}
}

// ResetTileStates returns every tile to default and clears path flags
// Idempotent; must be called between rounds before the next InstallPath
func (g *Grid) ResetTileStates() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.path = nil
	for z := range g.tiles {
		for x := range g.tiles[z] {
			t := g.tiles[z][x]
			t.State = TileDefault
			t.IsPathTile = false
			t.PathIndex = -1
		}
	}
}

// Snapshot returns a copy of all tile states for rendering
func (g *Grid) Snapshot() [][]TileState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([][]TileState, g.rows)
	for z := 0; z < g.rows; z++ {
		out[z] = make([]TileState, g.cols)
		for x := 0; x < g.cols; x++ {
			out[z][x] = g.tiles[z][x].State
		}
	}
	return out
}
