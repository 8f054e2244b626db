package constants

import "time"

// Grid Geometry
const (
	// DefaultRows and DefaultColumns define the standard playfield
	DefaultRows    = 5
	DefaultColumns = 5

	// TileSize is the edge length of one square tile in meters
	TileSize = 0.45

	// TileGap is the spacing between adjacent tile edges in meters
	TileGap = 0.05

	// TileSpacing is the center-to-center distance between adjacent tiles
	TileSpacing = TileSize + TileGap
)

// Trigger Volumes
const (
	// TriggerHalfWidth is the lateral half extent of a tile's detection
	// volume. Deliberately much narrower than the tile footprint so a
	// head lean over a tile boundary does not register as a step
	TriggerHalfWidth = TileSize * 0.15

	// TriggerHeight is the vertical extent of the detection volume,
	// measured up from the floor. Tall enough to cover any standing or
	// crouching head height
	TriggerHeight = 2.2
)

// Path Generation
const (
	// GeneratorMaxAttempts is how many whole-walk restarts the generator
	// performs before settling for the longest path seen
	GeneratorMaxAttempts = 10

	// GeneratorBudgetFactor caps extension work per attempt at
	// desiredLength * GeneratorBudgetFactor steps, including backtracking
	GeneratorBudgetFactor = 100

	// WarnsdorffMargin switches neighbor ordering to dead-end avoidance
	// when desiredLength >= rows*cols - WarnsdorffMargin. On a 5x5 grid
	// this means lengths of 23 and above
	WarnsdorffMargin = 2
)

// Round Phase Timing
const (
	// CountdownSeconds is the number of countdown cues before "watch"
	CountdownSeconds = 3

	// CountdownTickInterval separates the countdown cues
	CountdownTickInterval = time.Second

	// RevealStepDelay separates sequential path tile reveals
	RevealStepDelay = 400 * time.Millisecond

	// MemorizeDuration is how long the fully revealed path stays visible
	MemorizeDuration = 5 * time.Second

	// IdleNudgeDelay is the inactivity window before a reminder line
	// plays during PLAYING. Re-armed on every correct step
	IdleNudgeDelay = 12 * time.Second

	// WrongStepGrace is the pause between a wrong step and the FAILED
	// transition, letting the wrong-tile visual register
	WrongStepGrace = 1500 * time.Millisecond

	// FinalLevelExitDelay is how long the celebration lingers after the
	// last level before the session returns to the menu
	FinalLevelExitDelay = 6 * time.Second
)

// Scoring
const (
	// CorrectStepScore is awarded per correctly reproduced path tile
	CorrectStepScore = 10

	// CompletionBonus is awarded once per completed round
	CompletionBonus = 100

	// FinalLevel ends the session when completed
	FinalLevel = 10
)

// Engine
const (
	// TickInterval is the fixed scheduler tick
	TickInterval = 50 * time.Millisecond

	// EventQueueSize is the ring buffer capacity, must be a power of two
	EventQueueSize = 256

	// EventBufferMask wraps ring indices
	EventBufferMask = EventQueueSize - 1
)
