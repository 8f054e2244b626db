package narration

import "time"

// note is one synthesized tone within a line cue
type note struct {
	freq float64
	dur  time.Duration
}

// Line is one narration cue. Real products attach recorded voice lines;
// this player synthesizes a distinct tone signature per line so the flow
// sequencing is audible. Duration is the fixed fallback used when no
// audio backend is available
type Line struct {
	ID       string
	Duration time.Duration
	notes    []note
}

// Narration line catalog. Durations drive the silent-mode fallback timer
// so phase pacing survives a missing audio backend
var (
	LineHostIntro = Line{
		ID:       "host_intro",
		Duration: 4 * time.Second,
		notes:    []note{{440, 300 * time.Millisecond}, {554, 300 * time.Millisecond}, {659, 500 * time.Millisecond}},
	}

	LineGridIntro = Line{
		ID:       "grid_intro",
		Duration: 3 * time.Second,
		notes:    []note{{523, 250 * time.Millisecond}, {659, 400 * time.Millisecond}},
	}

	LineCountdown = Line{
		ID:       "countdown",
		Duration: 400 * time.Millisecond,
		notes:    []note{{880, 150 * time.Millisecond}},
	}

	LineWatch = Line{
		ID:       "watch",
		Duration: time.Second,
		notes:    []note{{988, 120 * time.Millisecond}, {1175, 250 * time.Millisecond}},
	}

	LineWrong = Line{
		ID:       "wrong",
		Duration: 2 * time.Second,
		notes:    []note{{220, 300 * time.Millisecond}, {185, 500 * time.Millisecond}},
	}

	LineSuccess = Line{
		ID:       "success",
		Duration: 3 * time.Second,
		notes:    []note{{659, 150 * time.Millisecond}, {784, 150 * time.Millisecond}, {1047, 450 * time.Millisecond}},
	}

	LineReturnToStart = Line{
		ID:       "return_to_start",
		Duration: 2500 * time.Millisecond,
		notes:    []note{{523, 200 * time.Millisecond}, {440, 350 * time.Millisecond}},
	}

	LineIdleNudge = Line{
		ID:       "idle_nudge",
		Duration: 2 * time.Second,
		notes:    []note{{587, 200 * time.Millisecond}, {587, 200 * time.Millisecond}},
	}

	LineFarewell = Line{
		ID:       "farewell",
		Duration: 3 * time.Second,
		notes:    []note{{784, 200 * time.Millisecond}, {659, 200 * time.Millisecond}, {523, 500 * time.Millisecond}},
	}
)

// Catalog maps line IDs to lines for config and lookups
var Catalog = map[string]Line{
	LineHostIntro.ID:     LineHostIntro,
	LineGridIntro.ID:     LineGridIntro,
	LineCountdown.ID:     LineCountdown,
	LineWatch.ID:         LineWatch,
	LineWrong.ID:         LineWrong,
	LineSuccess.ID:       LineSuccess,
	LineReturnToStart.ID: LineReturnToStart,
	LineIdleNudge.ID:     LineIdleNudge,
	LineFarewell.ID:      LineFarewell,
}
