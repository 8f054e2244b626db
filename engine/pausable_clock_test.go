package engine

import (
	"testing"
	"time"
)

func TestPausableClockAdvances(t *testing.T) {
	tp := NewMockTimeProvider(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	pc := NewPausableClock(tp)

	start := pc.Now()
	tp.Advance(2 * time.Second)
	if got := pc.Now().Sub(start); got != 2*time.Second {
		t.Errorf("game time advanced %v, want 2s", got)
	}
}

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	tp := NewMockTimeProvider(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	pc := NewPausableClock(tp)

	tp.Advance(time.Second)
	pc.Pause()
	frozen := pc.Now()

	tp.Advance(5 * time.Second)
	if got := pc.Now(); !got.Equal(frozen) {
		t.Errorf("game time moved during pause: %v -> %v", frozen, got)
	}
	if pc.RealTime().Sub(tp.Now()) != 0 {
		t.Error("real time diverged from the source")
	}

	pc.Resume()
	tp.Advance(time.Second)
	if got := pc.Now().Sub(frozen); got != time.Second {
		t.Errorf("post-resume advance = %v, want 1s", got)
	}
	if pc.TotalPauseDuration() != 5*time.Second {
		t.Errorf("TotalPauseDuration = %v, want 5s", pc.TotalPauseDuration())
	}
}

func TestPausableClockPauseIdempotent(t *testing.T) {
	tp := NewMockTimeProvider(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	pc := NewPausableClock(tp)

	pc.Pause()
	pc.Pause()
	if !pc.IsPaused() {
		t.Error("clock not paused")
	}
	pc.Resume()
	pc.Resume()
	if pc.IsPaused() {
		t.Error("clock still paused after resume")
	}
}
