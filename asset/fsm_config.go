package asset

// GameFlowFSMConfig is the round lifecycle state graph
// Actions and guards are registered by the flow package before loading
const GameFlowFSMConfig = `

initial = "Idle"

# Idle is both the initial state and the hard-reset target. Its entry
# action sweeps every pending timer, disarms tracking and reloads the
# level counter from the progress store

[states.Idle]
on_enter = [
    { action = "HardReset" },
]
transitions = [
    { trigger = "EventPlacementStarted", target = "PlacingGrid" },
]

[states.PlacingGrid]
transitions = [
    { trigger = "EventGridPlaced", target = "HostIntro", guard = "IsFirstLaunch" },
    { trigger = "EventGridPlaced", target = "GridIntro" },
    { trigger = "EventExitRequest", target = "Idle" },
]

# HostIntro runs only on first-ever launch

[states.HostIntro]
on_enter = [
    { action = "PlayLine", args = { line = "host_intro" } },
]
on_exit = [
    { action = "ClearFirstLaunch" },
]
transitions = [
    { trigger = "EventNarrationDone", target = "GridIntro" },
    { trigger = "EventExitRequest", target = "Idle" },
]

[states.GridIntro]
on_enter = [
    { action = "PlayLine", args = { line = "grid_intro" } },
]
transitions = [
    { trigger = "EventNarrationDone", target = "Countdown" },
    { trigger = "EventExitRequest", target = "Idle" },
]

# Round setup lives here, the single funnel both entry paths share:
# GridIntro on the first round, WaitingInStartZone on every later one.
# Running it on countdown entry also keeps a revealed failure path
# visible for the whole walk back to the start zone

[states.Countdown]
on_enter = [
    { action = "SetupRound" },
    { action = "StartCountdown" },
]
on_exit = [
    { action = "CancelCountdown" },
]
transitions = [
    { trigger = "EventCountdownDone", target = "Memorize" },
    { trigger = "EventExitRequest", target = "Idle" },
]

[states.Memorize]
on_enter = [
    { action = "RevealSequential" },
]
on_exit = [
    { action = "CancelMemorize" },
]
transitions = [
    { trigger = "EventMemorizeDone", target = "Playing" },
    { trigger = "EventExitRequest", target = "Idle" },
]

# Wrong-step policy lives in the controller: it disarms tracking at once,
# waits the grace delay, then emits EventRoundFailed

[states.Playing]
on_enter = [
    { action = "BeginPlay" },
]
on_exit = [
    { action = "EndPlay" },
]
transitions = [
    { trigger = "EventPathCompleted", target = "Completed" },
    { trigger = "EventRoundFailed", target = "Failed" },
    { trigger = "EventExitRequest", target = "Idle" },
]

[states.Completed]
on_enter = [
    { action = "CompleteRound" },
]
transitions = [
    { trigger = "EventNarrationDone", target = "WaitingInStartZone", guard = "NotFinalLevel" },
    { trigger = "EventSessionEnd", target = "Idle" },
    { trigger = "EventExitRequest", target = "Idle" },
]

[states.Failed]
on_enter = [
    { action = "FailRound" },
]
transitions = [
    { trigger = "EventNarrationDone", target = "WaitingInStartZone" },
    { trigger = "EventExitRequest", target = "Idle" },
]

# The controller is a passive listener here: the external start-zone
# volume delivers enter/exit. Entry begins the next round's countdown
# immediately; exit while waiting is a no-op (the sequence, once begun,
# runs to completion)

[states.WaitingInStartZone]
on_enter = [
    { action = "PlayLine", args = { line = "return_to_start" } },
]
transitions = [
    { trigger = "EventStartZoneEntered", target = "Countdown" },
    { trigger = "EventExitRequest", target = "Idle" },
]
`
