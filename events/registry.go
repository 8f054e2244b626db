package events

import (
	"strings"
)

var (
	nameToType = make(map[string]EventType)
	typeToName = make(map[EventType]string)
)

// RegisterType maps a string name to an EventType for config references
func RegisterType(name string, et EventType) {
	nameToType[name] = et
	typeToName[et] = name
}

// TypeByName returns the EventType for a given name
// "Tick" resolves to EventNone, the FSM auto-transition trigger
func TypeByName(name string) (EventType, bool) {
	if strings.EqualFold(name, "Tick") {
		return EventNone, true
	}
	et, ok := nameToType[name]
	return et, ok
}

// NameByType returns the string name for an EventType
func NameByType(et EventType) string {
	if et == EventNone {
		return "Tick"
	}
	return typeToName[et]
}

func init() {
	RegisterType("EventPlacementStarted", EventPlacementStarted)
	RegisterType("EventGridPlaced", EventGridPlaced)
	RegisterType("EventNarrationDone", EventNarrationDone)
	RegisterType("EventCountdownTick", EventCountdownTick)
	RegisterType("EventCountdownDone", EventCountdownDone)
	RegisterType("EventMemorizeDone", EventMemorizeDone)
	RegisterType("EventTileEntered", EventTileEntered)
	RegisterType("EventCorrectStep", EventCorrectStep)
	RegisterType("EventWrongStep", EventWrongStep)
	RegisterType("EventPathCompleted", EventPathCompleted)
	RegisterType("EventRoundFailed", EventRoundFailed)
	RegisterType("EventStartZoneEntered", EventStartZoneEntered)
	RegisterType("EventStartZoneExited", EventStartZoneExited)
	RegisterType("EventIdleNudge", EventIdleNudge)
	RegisterType("EventSessionEnd", EventSessionEnd)
	RegisterType("EventExitRequest", EventExitRequest)
}
