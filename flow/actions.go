package flow

import (
	"github.com/marrowfield/memstride/constants"
	"github.com/marrowfield/memstride/engine/fsm"
	"github.com/marrowfield/memstride/events"
	"github.com/marrowfield/memstride/narration"
	"github.com/marrowfield/memstride/pathgen"
)

// registerActions binds the state graph's action names
func registerActions(m *fsm.Machine[*Controller]) {
	m.RegisterAction("HardReset", func(c *Controller, _ map[string]any) { c.hardReset() })
	m.RegisterAction("ClearFirstLaunch", func(c *Controller, _ map[string]any) { c.clearFirstLaunch() })
	m.RegisterAction("SetupRound", func(c *Controller, _ map[string]any) { c.setupRound() })
	m.RegisterAction("StartCountdown", func(c *Controller, _ map[string]any) { c.startCountdown() })
	m.RegisterAction("CancelCountdown", func(c *Controller, _ map[string]any) { c.sched.Cancel(slotCountdown) })
	m.RegisterAction("RevealSequential", func(c *Controller, _ map[string]any) { c.revealSequential() })
	m.RegisterAction("CancelMemorize", func(c *Controller, _ map[string]any) {
		c.sched.Cancel(slotReveal)
		c.sched.Cancel(slotMemorize)
	})
	m.RegisterAction("BeginPlay", func(c *Controller, _ map[string]any) { c.beginPlay() })
	m.RegisterAction("EndPlay", func(c *Controller, _ map[string]any) { c.endPlay() })
	m.RegisterAction("CompleteRound", func(c *Controller, _ map[string]any) { c.completeRound() })
	m.RegisterAction("FailRound", func(c *Controller, _ map[string]any) { c.failRound() })

	m.RegisterAction("PlayLine", func(c *Controller, args map[string]any) {
		id, _ := args["line"].(string)
		line, ok := narration.Catalog[id]
		if !ok {
			// Unknown line degrades to an instant completion
			c.log.Warn().Str("line", id).Msg("unknown narration line")
			c.queue.Emit(events.EventNarrationDone, &events.NarrationDonePayload{Line: id})
			return
		}
		c.playLine(line)
	})
}

// registerGuards binds the state graph's guard names
func registerGuards(m *fsm.Machine[*Controller]) {
	m.RegisterGuard("IsFirstLaunch", func(c *Controller) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.firstLaunch
	})
	m.RegisterGuard("NotFinalLevel", func(c *Controller) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.round.Level < c.cfg.Game.FinalLevel
	})
}

// hardReset is the single sweep point for every pending timer handle,
// plus tracking disarm, visual clear, and a level reload that treats the
// store as ground truth
func (c *Controller) hardReset() {
	c.sched.CancelAll()
	c.tracker.StopTracking()
	if c.narrator != nil {
		c.narrator.Stop()
	}
	c.grid.ResetTileStates()

	c.mu.Lock()
	c.expectedLine = ""
	c.round.Score = 0
	c.round.WrongSteps = 0
	c.round.Retried = false
	c.mu.Unlock()

	c.syncLevel()
	c.log.Info().Int("level", c.Round().Level).Msg("flow reset to idle")
}

func (c *Controller) clearFirstLaunch() {
	c.mu.Lock()
	c.firstLaunch = false
	c.mu.Unlock()
}

// syncLevel re-reads the level number from the progress store and
// overwrites the local counter on disagreement. A store failure keeps
// the local value; nothing here is fatal
func (c *Controller) syncLevel() {
	stored, err := c.store.CurrentLevel()
	if err != nil {
		c.log.Warn().Err(err).Msg("progress store unreadable, keeping local level")
		return
	}

	c.mu.Lock()
	if stored != c.round.Level {
		c.log.Info().Int("local", c.round.Level).Int("stored", stored).
			Msg("level desync, store wins")
		c.round.Level = stored
	}
	c.mu.Unlock()
}

// setupRound prepares a fresh round: level re-sync, clean tiles and
// latches, a newly generated path installed on grid and validator
func (c *Controller) setupRound() {
	c.syncLevel()

	c.mu.Lock()
	level := c.round.Level
	c.round.WrongSteps = 0
	c.roundSeq++
	seq := c.roundSeq
	c.mu.Unlock()

	retries, err := c.store.RetriesForLevel(level)
	if err == nil {
		c.mu.Lock()
		c.round.Retried = retries > 0
		c.mu.Unlock()
	}

	c.grid.ResetTileStates()

	length := c.cfg.LengthForLevel(level)
	var seed int64
	if c.cfg.Game.Seed != 0 {
		seed = c.cfg.Game.Seed + int64(level)*1_000_003 + seq
	}

	res := pathgen.GenerateAnchored(c.cfg.Grid.Rows, c.cfg.Grid.Columns, length, seed)
	if !res.Complete {
		// Best-effort contract: proceed with the longest path found
		c.log.Warn().Int("requested", length).Int("got", len(res.Path)).
			Msg("generator shortfall, using best-effort path")
	}

	c.grid.InstallPath(res.Path)
	c.tracker.SetPath(res.Path)
	c.tracker.Reset()

	c.log.Info().Int("level", level).Int("length", len(res.Path)).Msg("round set up")
}

// startCountdown runs the internal 3-2-1 timer chain ending in the
// "watch" cue. An external countdown display calls CompleteCountdown
// instead; the Countdown exit action cancels this chain either way
func (c *Controller) startCountdown() {
	c.mu.Lock()
	c.countdown = constants.CountdownSeconds
	c.mu.Unlock()

	c.sched.Schedule(slotCountdown, 0, (*Controller).stepCountdown)
}

func (c *Controller) stepCountdown() {
	c.mu.Lock()
	remaining := c.countdown
	c.countdown--
	c.mu.Unlock()

	if remaining > 0 {
		c.queue.Emit(events.EventCountdownTick, &events.CountdownTickPayload{Remaining: remaining})
		c.playLine(narration.LineCountdown)
		c.sched.Schedule(slotCountdown, constants.CountdownTickInterval, (*Controller).stepCountdown)
		return
	}

	c.playLine(narration.LineWatch)
	c.queue.Emit(events.EventCountdownDone, nil)
}

// revealSequential shows the path tile by tile, then holds the full
// reveal for the memorize window
func (c *Controller) revealSequential() {
	c.mu.Lock()
	c.revealIndex = 0
	c.mu.Unlock()

	c.sched.Schedule(slotReveal, 0, (*Controller).stepReveal)
}

func (c *Controller) stepReveal() {
	c.mu.Lock()
	i := c.revealIndex
	c.revealIndex++
	c.mu.Unlock()

	if i < len(c.grid.Path()) {
		c.grid.RevealPathIndex(i)
		c.sched.Schedule(slotReveal, constants.RevealStepDelay, (*Controller).stepReveal)
		return
	}

	c.sched.EmitAfter(slotMemorize, constants.MemorizeDuration, events.EventMemorizeDone, nil)
}

// beginPlay hides the path except start and end, then arms tracking:
// validator state and every trigger latch reset together before entries
// are accepted
func (c *Controller) beginPlay() {
	c.grid.HidePath()
	c.tracker.SetBypass(c.cfg.Game.DebugBypass)
	c.tracker.StartTracking()
	c.armIdleNudge()
}

func (c *Controller) endPlay() {
	c.sched.Cancel(slotIdleNudge)
	c.sched.Cancel(slotGrace)
	c.tracker.StopTracking()
}

// completeRound awards the bonus, records first-try status, and either
// prompts the next round or, after the final level, ends the session
func (c *Controller) completeRound() {
	c.mu.Lock()
	c.round.Score += constants.CompletionBonus
	level := c.round.Level
	firstTry := c.round.WrongSteps == 0 && !c.round.Retried
	final := level >= c.cfg.Game.FinalLevel
	c.mu.Unlock()

	if err := c.store.LevelCompleted(level, firstTry); err != nil {
		c.log.Warn().Err(err).Int("level", level).Msg("failed to record completion")
	}

	c.log.Info().Int("level", level).Bool("first_try", firstTry).Bool("final", final).
		Msg("round completed")

	if final {
		c.playLine(narration.LineFarewell)
		c.sched.EmitAfter(slotSessionEnd, constants.FinalLevelExitDelay, events.EventSessionEnd, nil)
		return
	}
	c.playLine(narration.LineSuccess)
}

// failRound records the failure and always reveals the true path so the
// player can see where they went wrong
func (c *Controller) failRound() {
	c.mu.Lock()
	level := c.round.Level
	c.mu.Unlock()

	if err := c.store.LevelFailed(level); err != nil {
		c.log.Warn().Err(err).Int("level", level).Msg("failed to record failure")
	}

	c.grid.RevealPath()
	c.playLine(narration.LineWrong)

	c.log.Info().Int("level", level).Msg("round failed")
}
