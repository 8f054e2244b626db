package flow

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/asset"
	"github.com/marrowfield/memstride/config"
	"github.com/marrowfield/memstride/constants"
	"github.com/marrowfield/memstride/engine"
	"github.com/marrowfield/memstride/engine/fsm"
	"github.com/marrowfield/memstride/events"
	"github.com/marrowfield/memstride/grid"
	"github.com/marrowfield/memstride/narration"
	"github.com/marrowfield/memstride/pathgen"
	"github.com/marrowfield/memstride/progress"
	"github.com/marrowfield/memstride/tracker"
)

// Timer slot names. One pending timer per slot; rescheduling replaces
const (
	slotCountdown  = "countdown"
	slotReveal     = "reveal"
	slotMemorize   = "memorize"
	slotIdleNudge  = "idle_nudge"
	slotGrace      = "grace"
	slotSessionEnd = "session_end"
	slotNarration  = "narration"
)

// State names matching the flow graph in the asset package
const (
	StateIdle               = "Idle"
	StatePlacingGrid        = "PlacingGrid"
	StateHostIntro          = "HostIntro"
	StateGridIntro          = "GridIntro"
	StateCountdown          = "Countdown"
	StateMemorize           = "Memorize"
	StatePlaying            = "Playing"
	StateCompleted          = "Completed"
	StateFailed             = "Failed"
	StateWaitingInStartZone = "WaitingInStartZone"
)

// Round is the per-session game state. The level number is not
// self-authoritative: the progress store wins on disagreement
type Round struct {
	Level      int
	Score      int
	WrongSteps int
	Retried    bool
}

// Controller owns the round lifecycle. It drives the path generator, the
// grid, the validator and the narration player from a TOML-configured
// state machine, with all timing funneled through cancellable scheduler
// slots. Collaborators are injected, never looked up ambiently
type Controller struct {
	cfg config.Config
	log zerolog.Logger

	machine  *fsm.Machine[*Controller]
	sched    *engine.Scheduler[*Controller]
	queue    *events.Queue
	grid     *grid.Grid
	detector *grid.Detector
	tracker  *tracker.Validator
	narrator narration.Player // nil = narration treated as fixed-duration timers
	store    progress.Store

	mu           sync.Mutex
	round        Round
	firstLaunch  bool
	expectedLine string // Narration completion filter
	countdown    int
	revealIndex  int
	roundSeq     int64 // Distinct generator seed per round when seeded
}

// Deps bundles the injected collaborators
type Deps struct {
	Grid     *grid.Grid
	Tracker  *tracker.Validator
	Narrator narration.Player
	Store    progress.Store
	Clock    *engine.PausableClock
}

// New wires a controller: builds the FSM from the embedded graph,
// registers actions, guards and event handlers, and enters Idle
func New(cfg config.Config, deps Deps, headCollider grid.ColliderID, log zerolog.Logger) (*Controller, error) {
	if deps.Store == nil {
		deps.Store = progress.NewMemory()
	}

	c := &Controller{
		cfg:      cfg,
		log:      log.With().Str("component", "flow").Logger(),
		queue:    events.NewQueue(),
		grid:     deps.Grid,
		tracker:  deps.Tracker,
		narrator: deps.Narrator,
		store:    deps.Store,
	}
	if c.tracker == nil {
		c.tracker = tracker.New(deps.Grid, c.queue, log)
	}

	c.detector = grid.NewDetector(deps.Grid, headCollider, c.tracker.HandleEntry, log)

	level, err := deps.Store.CurrentLevel()
	if err != nil {
		c.log.Warn().Err(err).Msg("progress store unreadable, starting at level 1")
		level = 1
	}
	c.round.Level = level
	retries, _ := deps.Store.RetriesForLevel(1)
	c.firstLaunch = level <= 1 && retries == 0

	machine := fsm.NewMachine[*Controller]()
	registerActions(machine)
	registerGuards(machine)
	if err := machine.LoadConfig([]byte(asset.GameFlowFSMConfig)); err != nil {
		return nil, fmt.Errorf("load flow FSM: %w", err)
	}
	c.machine = machine

	router := events.NewRouter[*Controller]()
	router.Register(stepEvents{})

	c.sched = engine.NewScheduler[*Controller](
		machine, router, c.queue, deps.Clock, constants.TickInterval, log,
	)
	c.sched.SetContext(c)

	if err := machine.Init(c); err != nil {
		return nil, fmt.Errorf("init flow FSM: %w", err)
	}
	return c, nil
}

// Scheduler exposes the tick driver: call Step from the host loop or
// Start for a background loop
func (c *Controller) Scheduler() *engine.Scheduler[*Controller] {
	return c.sched
}

// Detector returns the tile entry detector fed by the tracking service
func (c *Controller) Detector() *grid.Detector {
	return c.detector
}

// Tracker returns the step validator fed by the detector
func (c *Controller) Tracker() *tracker.Validator {
	return c.tracker
}

// === Exposed round lifecycle ===

// BeginPlacement signals that the player started placing the grid
func (c *Controller) BeginPlacement() {
	c.queue.Emit(events.EventPlacementStarted, nil)
}

// OnGridPlaced delivers the one-time placement anchor from the external
// placement service. The grid is initialized here, before the state
// machine consumes the event, so setup actions see a ready grid.
// Deliveries outside the placement phase are dropped whole: the state
// machine would ignore the event anyway, and initializing the grid
// mid-round would wipe tile states and entry latches
func (c *Controller) OnGridPlaced(origin grid.Vec3, floorY float64, yaw float64) {
	if !c.machine.Is(StatePlacingGrid) {
		c.log.Warn().Str("state", c.machine.StateName()).
			Msg("grid placement ignored outside placement phase")
		return
	}

	origin.Y = floorY
	c.grid.Init(origin, yaw, c.cfg.Grid.Rows, c.cfg.Grid.Columns)

	c.queue.Emit(events.EventGridPlaced, &events.GridPlacedPayload{
		OriginX: origin.X,
		OriginY: floorY,
		OriginZ: origin.Z,
		Yaw:     yaw,
	})
}

// StartZoneEntered mirrors the external start-zone volume
func (c *Controller) StartZoneEntered() {
	c.queue.Emit(events.EventStartZoneEntered, nil)
}

// StartZoneExited mirrors the external start-zone volume
func (c *Controller) StartZoneExited() {
	c.queue.Emit(events.EventStartZoneExited, nil)
}

// CompleteCountdown lets an external countdown display finish the
// countdown instead of the internal one-second timer
func (c *Controller) CompleteCountdown() {
	c.queue.Emit(events.EventCountdownDone, nil)
}

// ExitToMenu is the hard reset: every pending timer is swept, tracking
// disarmed, visuals cleared and the level counter reloaded from the
// store once the event is processed
func (c *Controller) ExitToMenu() {
	c.queue.Emit(events.EventExitRequest, nil)
}

// State returns the active flow state name
// Safe only from the goroutine driving the scheduler
func (c *Controller) State() string {
	return c.machine.StateName()
}

// Round returns a copy of the session state
func (c *Controller) Round() Round {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round
}

// === Exposed grid queries ===

// Path returns the active path
func (c *Controller) Path() []pathgen.Cell {
	return c.grid.Path()
}

// TileAt returns the tile at (x, z), nil when out of bounds
func (c *Controller) TileAt(x, z int) *grid.Tile {
	return c.grid.TileAt(x, z)
}

// WorldToGrid maps a world position to grid coordinates
func (c *Controller) WorldToGrid(pos grid.Vec3) (int, int, bool) {
	return c.grid.WorldToGrid(pos)
}

// === Narration sequencing ===

// playLine starts a narration line. Completion pushes EventNarrationDone
// from the audio goroutine via the queue; completions for any line other
// than the most recently requested one are dropped at the source, so a
// cut-off line cannot fake the current line's completion. Without a
// player the fixed nominal duration stands in for playback
func (c *Controller) playLine(line narration.Line) {
	c.mu.Lock()
	c.expectedLine = line.ID
	c.mu.Unlock()

	done := func() {
		c.mu.Lock()
		match := c.expectedLine == line.ID
		c.mu.Unlock()
		if match {
			c.queue.Emit(events.EventNarrationDone, &events.NarrationDonePayload{Line: line.ID})
		}
	}

	if c.narrator == nil {
		c.sched.Schedule(slotNarration, line.Duration, func(*Controller) { done() })
		return
	}
	c.narrator.Play(line, done)
}

// stepEvents routes validator output to the controller
type stepEvents struct{}

func (stepEvents) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventCorrectStep,
		events.EventWrongStep,
		events.EventPathCompleted,
	}
}

func (stepEvents) HandleEvent(c *Controller, ev events.GameEvent) {
	switch ev.Type {
	case events.EventCorrectStep:
		c.handleCorrectStep(ev.Payload.(*events.StepPayload))
	case events.EventWrongStep:
		c.handleWrongStep(ev.Payload.(*events.WrongStepPayload))
	case events.EventPathCompleted:
		c.handlePathCompleted(ev.Payload.(*events.StepPayload))
	}
}

func (c *Controller) handleCorrectStep(p *events.StepPayload) {
	c.grid.MarkTileCorrect(p.X, p.Z)

	c.mu.Lock()
	c.round.Score += constants.CorrectStepScore
	c.mu.Unlock()

	// Every correct step re-arms the inactivity reminder
	if c.machine.Is(StatePlaying) {
		c.armIdleNudge()
	}

	c.log.Debug().Int("progress", p.Progress).Int("total", p.Total).Msg("correct step")
}

// handleWrongStep applies the failure policy: tracking is disarmed at
// once, the wrong tile is marked, and FAILED follows after a grace delay
// so the wrong-tile visual registers
func (c *Controller) handleWrongStep(p *events.WrongStepPayload) {
	if !c.machine.Is(StatePlaying) {
		return
	}

	c.tracker.StopTracking()
	c.grid.MarkTileWrong(p.ActualX, p.ActualZ)
	c.sched.Cancel(slotIdleNudge)

	c.mu.Lock()
	c.round.WrongSteps++
	c.mu.Unlock()

	c.sched.EmitAfter(slotGrace, constants.WrongStepGrace, events.EventRoundFailed, nil)

	c.log.Info().
		Int("expected_x", p.ExpectedX).Int("expected_z", p.ExpectedZ).
		Int("actual_x", p.ActualX).Int("actual_z", p.ActualZ).
		Msg("wrong step, round failing after grace")
}

func (c *Controller) handlePathCompleted(p *events.StepPayload) {
	c.grid.MarkTileCorrect(p.X, p.Z)

	c.mu.Lock()
	c.round.Score += constants.CorrectStepScore
	c.mu.Unlock()
}

func (c *Controller) armIdleNudge() {
	c.sched.Schedule(slotIdleNudge, constants.IdleNudgeDelay, func(ctrl *Controller) {
		ctrl.playLine(narration.LineIdleNudge)
		ctrl.queue.Emit(events.EventIdleNudge, nil)
		ctrl.armIdleNudge()
	})
}
