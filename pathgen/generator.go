package pathgen

import (
	"math/rand"
	"time"

	"github.com/marrowfield/memstride/constants"
)

// Cell is one grid coordinate, x across columns, z across rows
type Cell struct {
	X, Z int
}

// Config drives one generation request
type Config struct {
	Rows, Columns int

	// DesiredLength is clamped to Rows*Columns. The result may still be
	// shorter, see Result.Complete
	DesiredLength int

	Start *Cell // Optional (nil = random perimeter cell)
	Seed  int64 // Optional (0 = random)
}

// Result is a best-effort path: the longest walk found within the attempt
// budget. Callers must check Complete (or compare len(Path) against their
// request) before treating the path as full length
type Result struct {
	Path     []Cell
	Complete bool
}

var dirs = []Cell{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Generate builds a connected, non-self-intersecting path by random
// self-avoiding walk with single-step backtracking
//
// Neighbor policy: near-Hamiltonian requests (desired length within
// WarnsdorffMargin of the full grid) order candidates by their count of
// unvisited neighbors ascending, ties random, because full-grid walks die
// in corners without dead-end avoidance. Shorter requests shuffle
// uniformly; variety matters more than optimality there
func Generate(cfg Config) Result {
	rows, cols := cfg.Rows, cfg.Columns
	if rows < 1 || cols < 1 {
		return Result{}
	}

	desired := cfg.DesiredLength
	if desired > rows*cols {
		desired = rows * cols
	}
	if desired < 1 {
		return Result{}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	useWarnsdorff := desired >= rows*cols-constants.WarnsdorffMargin

	var best []Cell
	for attempt := 0; attempt < constants.GeneratorMaxAttempts; attempt++ {
		path := walk(rows, cols, desired, cfg.Start, useWarnsdorff, rng)
		if len(path) > len(best) {
			best = path
		}
		if len(best) >= desired {
			break
		}
	}

	return Result{
		Path:     best,
		Complete: len(best) >= desired,
	}
}

// GenerateAnchored fixes the start at the horizontal center of the row
// nearest the placement anchor, matching the anchored-grid convention
func GenerateAnchored(rows, cols, desiredLength int, seed int64) Result {
	start := Cell{X: cols / 2, Z: rows - 1}
	return Generate(Config{
		Rows:          rows,
		Columns:       cols,
		DesiredLength: desiredLength,
		Start:         &start,
		Seed:          seed,
	})
}

// walk runs one self-avoiding walk attempt with backtracking
func walk(rows, cols, desired int, fixedStart *Cell, useWarnsdorff bool, rng *rand.Rand) []Cell {
	visited := make([][]bool, rows)
	for i := range visited {
		visited[i] = make([]bool, cols)
	}

	start := resolveStart(rows, cols, fixedStart, rng)
	path := make([]Cell, 0, desired)
	path = append(path, start)
	visited[start.Z][start.X] = true

	budget := desired * constants.GeneratorBudgetFactor

	for len(path) < desired && budget > 0 {
		budget--
		curr := path[len(path)-1]

		candidates := unvisitedNeighbors(curr, rows, cols, visited)
		if len(candidates) == 0 {
			if len(path) == 1 {
				// Walk collapsed to the start: restart fresh
				for i := range visited {
					clear(visited[i])
				}
				start = resolveStart(rows, cols, fixedStart, rng)
				path = path[:0]
				path = append(path, start)
				visited[start.Z][start.X] = true
				continue
			}

			// Backtrack one step: pop, unmark
			last := path[len(path)-1]
			visited[last.Z][last.X] = false
			path = path[:len(path)-1]
			continue
		}

		next := chooseNext(candidates, rows, cols, visited, useWarnsdorff, rng)
		path = append(path, next)
		visited[next.Z][next.X] = true
	}

	return path
}

// chooseNext applies the neighbor selection policy
func chooseNext(candidates []Cell, rows, cols int, visited [][]bool, useWarnsdorff bool, rng *rand.Rand) Cell {
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if !useWarnsdorff {
		return candidates[0]
	}

	// Dead-end avoidance: prefer the candidate with the fewest further
	// unvisited neighbors. The shuffle above randomizes ties
	best := candidates[0]
	bestCount := len(unvisitedNeighbors(best, rows, cols, visited))
	for _, c := range candidates[1:] {
		count := len(unvisitedNeighbors(c, rows, cols, visited))
		if count < bestCount {
			best = c
			bestCount = count
		}
	}
	return best
}

func unvisitedNeighbors(c Cell, rows, cols int, visited [][]bool) []Cell {
	out := make([]Cell, 0, 4)
	for _, d := range dirs {
		nx, nz := c.X+d.X, c.Z+d.Z
		if nx >= 0 && nx < cols && nz >= 0 && nz < rows && !visited[nz][nx] {
			out = append(out, Cell{nx, nz})
		}
	}
	return out
}

// resolveStart clamps a fixed start or picks a random perimeter cell
func resolveStart(rows, cols int, fixed *Cell, rng *rand.Rand) Cell {
	if fixed != nil {
		x, z := fixed.X, fixed.Z
		if x < 0 {
			x = 0
		}
		if x >= cols {
			x = cols - 1
		}
		if z < 0 {
			z = 0
		}
		if z >= rows {
			z = rows - 1
		}
		return Cell{x, z}
	}

	perimeter := 2*cols + 2*rows - 4
	if perimeter <= 0 {
		return Cell{0, 0}
	}
	n := rng.Intn(perimeter)
	switch {
	case n < cols:
		return Cell{n, 0}
	case n < 2*cols:
		return Cell{n - cols, rows - 1}
	case n < 2*cols+rows-2:
		return Cell{0, n - 2*cols + 1}
	default:
		return Cell{cols - 1, n - (2*cols + rows - 2) + 1}
	}
}
