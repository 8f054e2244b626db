package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/config"
	"github.com/marrowfield/memstride/constants"
	"github.com/marrowfield/memstride/engine"
	"github.com/marrowfield/memstride/flow"
	"github.com/marrowfield/memstride/grid"
	"github.com/marrowfield/memstride/narration"
	"github.com/marrowfield/memstride/progress"
	"github.com/marrowfield/memstride/render"
)

const headCollider grid.ColliderID = "player_head"

// Head movement per keypress, half a tile keeps diagonal entries honest
const moveStep = constants.TileSpacing / 2

func main() {
	configPath := flag.String("config", "memstride.toml", "config file path")
	logPath := flag.String("log", "memstride.log", "log file path")
	logLevel := flag.String("log-level", "info", "zerolog level")
	flag.Parse()

	if err := run(*configPath, *logPath, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, logPath, logLevel string) error {
	// The terminal belongs to tcell, logs go to a file
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(logFile).Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Info().Str("config", configPath).Int("rows", cfg.Grid.Rows).
		Int("cols", cfg.Grid.Columns).Msg("starting memstride")

	var store progress.Store
	if cfg.Store.Path != "" {
		sqlite, err := progress.OpenSQLite(cfg.Store.Path, log)
		if err != nil {
			return fmt.Errorf("open progress store: %w", err)
		}
		defer sqlite.Close()
		store = sqlite
	} else {
		store = progress.NewMemory()
	}

	var narrator narration.Player
	if cfg.Narration.Enabled {
		narrator = narration.NewBeepPlayer(log)
	}

	board := grid.New(log)
	clock := engine.NewPausableClock(engine.NewMonotonicTimeProvider())

	ctrl, err := flow.New(cfg, flow.Deps{
		Grid:     board,
		Narrator: narrator,
		Store:    store,
		Clock:    clock,
	}, headCollider, log)
	if err != nil {
		return fmt.Errorf("build flow controller: %w", err)
	}

	view, err := render.New()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer view.Close()

	sim := newSimulation(ctrl, board, clock, cfg)
	sim.loop(view)

	log.Info().Msg("memstride exiting")
	return nil
}

// simulation stands in for the tracked-player transport: keyboard moves
// a virtual head collider through world space and feeds overlap samples
// to the trigger detector
type simulation struct {
	ctrl  *flow.Controller
	board *grid.Grid
	clock *engine.PausableClock
	cfg   config.Config

	head    grid.Vec3
	inStart bool
	placed  bool
}

func newSimulation(ctrl *flow.Controller, board *grid.Grid, clock *engine.PausableClock, cfg config.Config) *simulation {
	return &simulation{
		ctrl:  ctrl,
		board: board,
		clock: clock,
		cfg:   cfg,
		// Head starts behind the near edge, at trigger height
		head: grid.Vec3{X: 0, Y: 1.0, Z: float64(cfg.Grid.Rows) * constants.TileSpacing / 2},
	}
}

func (s *simulation) loop(view *render.View) {
	eventCh := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := view.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	ticker := time.NewTicker(constants.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			if key, isKey := ev.(*tcell.EventKey); isKey {
				if s.handleKey(key) {
					return
				}
			}
		case <-ticker.C:
			s.ctrl.Scheduler().Step(constants.TickInterval)
			s.sample()
			view.Draw(s.frame())
		}
	}
}

// handleKey applies one input, reporting whether to quit
func (s *simulation) handleKey(ev *tcell.EventKey) bool {
	switch {
	case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
		return true
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		return true
	case ev.Key() == tcell.KeyLeft, ev.Key() == tcell.KeyRune && ev.Rune() == 'h':
		s.head.X -= moveStep
	case ev.Key() == tcell.KeyRight, ev.Key() == tcell.KeyRune && ev.Rune() == 'l':
		s.head.X += moveStep
	case ev.Key() == tcell.KeyUp, ev.Key() == tcell.KeyRune && ev.Rune() == 'k':
		s.head.Z -= moveStep
	case ev.Key() == tcell.KeyDown, ev.Key() == tcell.KeyRune && ev.Rune() == 'j':
		s.head.Z += moveStep
	case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		// First press starts placement, the next anchors the grid at
		// the world origin once the flow has entered the placing state
		switch s.ctrl.State() {
		case flow.StateIdle:
			s.ctrl.BeginPlacement()
		case flow.StatePlacingGrid:
			s.ctrl.OnGridPlaced(grid.Vec3{}, 0, 0)
			s.placed = true
		}
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'z':
		s.inStart = !s.inStart
		if s.inStart {
			s.ctrl.StartZoneEntered()
		} else {
			s.ctrl.StartZoneExited()
		}
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'p':
		// Freezes game time: Step becomes a no-op, so the memorize and
		// idle-nudge windows wait out the pause
		if s.clock.IsPaused() {
			s.clock.Resume()
		} else {
			s.clock.Pause()
		}
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'x':
		s.ctrl.ExitToMenu()
		s.placed = false
	}
	return false
}

// sample feeds the current head position to the detector, the same call
// an overlap callback would make each physics tick
func (s *simulation) sample() {
	if !s.placed || s.clock.IsPaused() {
		return
	}
	s.ctrl.Detector().Sample(headCollider, s.head)
}

func (s *simulation) frame() render.Frame {
	headX, headZ := -1, -1
	if x, z, ok := s.ctrl.WorldToGrid(s.head); ok {
		headX, headZ = x, z
	}

	state := s.ctrl.State()
	if s.clock.IsPaused() {
		state += " [paused]"
	}

	round := s.ctrl.Round()
	return render.Frame{
		Tiles:   s.board.Snapshot(),
		State:   state,
		Level:   round.Level,
		Score:   round.Score,
		HeadX:   headX,
		HeadZ:   headZ,
		InStart: s.inStart,
		Status:  fmt.Sprintf("head x=%.2f z=%.2f", s.head.X, s.head.Z),
	}
}
