package grid

// TileState is the visual state tag of a tile
type TileState int

const (
	TileDefault TileState = iota
	TilePath
	TileStart
	TileEnd
	TileCorrect
	TileWrong
)

// String returns the state name for logs and render labels
func (s TileState) String() string {
	switch s {
	case TileDefault:
		return "default"
	case TilePath:
		return "path"
	case TileStart:
		return "start"
	case TileEnd:
		return "end"
	case TileCorrect:
		return "correct"
	case TileWrong:
		return "wrong"
	}
	return "unknown"
}

// Tile is one cell of the grid. Owned exclusively by the Grid; mutated
// only through Grid commands
type Tile struct {
	X, Z int

	Center Vec3

	State      TileState
	IsPathTile bool
	PathIndex  int // Position along the active path, -1 if not on path

	trigger triggerVolume
}
