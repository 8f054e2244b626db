package events

import (
	"time"
)

// EventType identifies a game event
type EventType int

const (
	// EventNone is reserved for FSM tick transitions, never queued
	EventNone EventType = iota

	// EventPlacementStarted signals the player began placing the grid
	// Trigger: placement service / main harness
	// Consumer: flow FSM | Payload: nil
	EventPlacementStarted

	// EventGridPlaced delivers the anchored grid origin and floor height
	// Trigger: placement service
	// Consumer: flow FSM | Payload: *GridPlacedPayload
	EventGridPlaced

	// EventNarrationDone marks a narration line's playback completion
	// Trigger: narration player callback or fallback timer
	// Consumer: flow FSM | Payload: *NarrationDonePayload
	EventNarrationDone

	// EventCountdownTick carries one 3-2-1 countdown cue
	// Trigger: countdown timer slot
	// Consumer: render listener | Payload: *CountdownTickPayload
	EventCountdownTick

	// EventCountdownDone marks the countdown's "watch" cue
	// Trigger: countdown timer slot, or an external countdown display
	// Consumer: flow FSM | Payload: nil
	EventCountdownDone

	// EventMemorizeDone marks the memorize window expiry
	// Trigger: memorize timer slot
	// Consumer: flow FSM | Payload: nil
	EventMemorizeDone

	// EventTileEntered reports a de-duplicated grid entry
	// Trigger: trigger detector via validator
	// Consumer: observers | Payload: *TilePayload
	EventTileEntered

	// EventCorrectStep reports an accepted path step
	// Trigger: step validator
	// Consumer: flow controller (visuals, nudge re-arm) | Payload: *StepPayload
	EventCorrectStep

	// EventWrongStep reports a mismatched step
	// Trigger: step validator
	// Consumer: flow controller | Payload: *WrongStepPayload
	EventWrongStep

	// EventPathCompleted reports the full path reproduced
	// Trigger: step validator
	// Consumer: flow FSM | Payload: *StepPayload
	EventPathCompleted

	// EventRoundFailed requests the PLAYING -> FAILED transition after
	// the wrong-step grace delay
	// Trigger: grace timer slot
	// Consumer: flow FSM | Payload: nil
	EventRoundFailed

	// EventStartZoneEntered and EventStartZoneExited mirror the external
	// start-zone volume
	// Consumer: flow FSM | Payload: nil
	EventStartZoneEntered
	EventStartZoneExited

	// EventIdleNudge fires after the inactivity window during PLAYING
	// Trigger: idle nudge timer slot
	// Consumer: flow controller | Payload: nil
	EventIdleNudge

	// EventSessionEnd requests the end of a finished session
	// Trigger: final level exit timer
	// Consumer: flow FSM | Payload: nil
	EventSessionEnd

	// EventExitRequest is a hard exit back to the menu from any state
	// Trigger: ExitToMenu
	// Consumer: flow FSM | Payload: nil
	EventExitRequest
)

// GameEvent is one queued event with metadata
type GameEvent struct {
	Type      EventType
	Payload   any
	Timestamp time.Time
}
