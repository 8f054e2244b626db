package tracker

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/events"
	"github.com/marrowfield/memstride/grid"
	"github.com/marrowfield/memstride/pathgen"
)

// Validator consumes de-duplicated tile entry events and validates them
// against the active path. Two phases: idle (entries discarded) and
// tracking (entries processed)
//
// The validator never touches tile visuals or audio, it only emits
// events; policy reactions (stopping tracking after a wrong step, marking
// tiles) belong to the flow controller
type Validator struct {
	mu sync.Mutex

	queue *events.Queue
	grid  *grid.Grid
	log   zerolog.Logger

	tracking bool
	bypass   bool // Debug mode: ordering checks skipped, end tile completes

	path     []pathgen.Cell
	progress int           // Correctly consumed path steps, 0..len(path)
	steps    []pathgen.Cell // Ordered log of accepted tiles

	current    pathgen.Cell // Last tile entered this session
	hasCurrent bool
}

// New creates a validator wired to the grid whose trigger latches it
// re-arms on StartTracking
func New(g *grid.Grid, queue *events.Queue, log zerolog.Logger) *Validator {
	return &Validator{
		queue: queue,
		grid:  g,
		log:   log.With().Str("component", "tracker").Logger(),
	}
}

// SetPath installs the path validated against. Does not reset tracking
// state; callers follow with StartTracking for a fresh session
func (v *Validator) SetPath(path []pathgen.Cell) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.path = path
}

// SetBypass toggles the diagnostic mode in which any tile counts as a
// correct step and the path's last tile completes the round regardless
// of visiting order. Manual QA only
func (v *Validator) SetBypass(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bypass = enabled
}

// StartTracking arms the validator for a fresh session: progress, the
// step log, the current tile and every trigger latch reset together, so
// no partial-arm state is observable
func (v *Validator) StartTracking() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.progress = 0
	v.steps = v.steps[:0]
	v.hasCurrent = false
	v.grid.ResetTriggers()
	v.tracking = true
}

// StopTracking disarms processing, preserving the step log for
// inspection
func (v *Validator) StopTracking() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tracking = false
}

// Reset clears tracking state and latches without changing the
// tracking-enabled flag
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.progress = 0
	v.steps = v.steps[:0]
	v.hasCurrent = false
	v.grid.ResetTriggers()
}

// IsTracking reports whether entries are being processed
func (v *Validator) IsTracking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tracking
}

// Progress returns the count of correctly consumed path steps
func (v *Validator) Progress() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.progress
}

// Steps returns a copy of the ordered log of accepted tiles
func (v *Validator) Steps() []pathgen.Cell {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]pathgen.Cell, len(v.steps))
	copy(out, v.steps)
	return out
}

// HandleEntry processes one de-duplicated tile entry. Wired as the
// detector's entry callback
func (v *Validator) HandleEntry(x, z int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.tracking {
		return
	}

	entered := pathgen.Cell{X: x, Z: z}

	// Same-tile re-entries are ignored. The trigger latch prevents most,
	// but hide/reset cycles within a round can leave an address
	// revisitable, so both layers are required
	if v.hasCurrent && v.current == entered {
		return
	}
	v.current = entered
	v.hasCurrent = true

	v.queue.Emit(events.EventTileEntered, &events.TilePayload{X: x, Z: z})

	if len(v.path) == 0 {
		return
	}

	if v.bypass {
		v.handleBypass(entered)
		return
	}

	// Entries after completion, before the controller disarms tracking
	if v.progress >= len(v.path) {
		return
	}

	expected := v.path[v.progress]
	if entered != expected {
		v.log.Info().
			Int("expected_x", expected.X).Int("expected_z", expected.Z).
			Int("actual_x", x).Int("actual_z", z).
			Int("progress", v.progress).Msg("wrong step")
		v.queue.Emit(events.EventWrongStep, &events.WrongStepPayload{
			ExpectedX: expected.X,
			ExpectedZ: expected.Z,
			ActualX:   x,
			ActualZ:   z,
			Progress:  v.progress,
		})
		return
	}

	v.steps = append(v.steps, entered)
	v.progress++

	payload := &events.StepPayload{
		X:        x,
		Z:        z,
		Progress: v.progress,
		Total:    len(v.path),
	}
	if v.progress == len(v.path) {
		v.queue.Emit(events.EventPathCompleted, payload)
		return
	}
	v.queue.Emit(events.EventCorrectStep, payload)
}

// handleBypass implements the diagnostic mode. Caller holds the lock
func (v *Validator) handleBypass(entered pathgen.Cell) {
	v.steps = append(v.steps, entered)
	if v.progress < len(v.path) {
		v.progress++
	}

	payload := &events.StepPayload{
		X:        entered.X,
		Z:        entered.Z,
		Progress: v.progress,
		Total:    len(v.path),
	}
	if entered == v.path[len(v.path)-1] {
		v.queue.Emit(events.EventPathCompleted, payload)
		return
	}
	v.queue.Emit(events.EventCorrectStep, payload)
}
