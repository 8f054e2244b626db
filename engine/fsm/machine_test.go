package fsm

import (
	"testing"
	"time"

	"github.com/marrowfield/memstride/events"
)

// testCtx records which actions ran, in order
type testCtx struct {
	calls []string
	armed bool
}

const testGraph = `
initial = "Idle"

[states.Idle]
on_enter = [{ action = "EnterIdle" }]
transitions = [
    { trigger = "EventPlacementStarted", target = "Active" },
]

[states.Active]
on_enter = [{ action = "EnterActive", args = { label = "round" } }]
on_exit = [{ action = "ExitActive" }]
transitions = [
    { trigger = "EventRoundFailed", target = "Idle" },
    { trigger = "EventPathCompleted", target = "Done", guard = "IsArmed" },
    { trigger = "Tick", target = "Done", guard = "TimeInStateExceeds", guard_args = { ms = 500 } },
]

[states.Done]
transitions = [
    { trigger = "EventExitRequest", target = "Idle" },
]
`

func newTestMachine(t *testing.T) (*Machine[*testCtx], *testCtx) {
	t.Helper()
	m := NewMachine[*testCtx]()
	for _, name := range []string{"EnterIdle", "EnterActive", "ExitActive"} {
		name := name
		m.RegisterAction(name, func(ctx *testCtx, args map[string]any) {
			call := name
			if label, ok := args["label"].(string); ok {
				call += ":" + label
			}
			ctx.calls = append(ctx.calls, call)
		})
	}
	m.RegisterGuard("IsArmed", func(ctx *testCtx) bool { return ctx.armed })

	if err := m.LoadConfig([]byte(testGraph)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	ctx := &testCtx{}
	if err := m.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, ctx
}

func TestLoadConfigAndInit(t *testing.T) {
	m, ctx := newTestMachine(t)

	if !m.Is("Idle") {
		t.Errorf("initial state = %q, want Idle", m.StateName())
	}
	if len(ctx.calls) != 1 || ctx.calls[0] != "EnterIdle" {
		t.Errorf("init calls = %v, want [EnterIdle]", ctx.calls)
	}
}

func TestEventTransitionRunsActions(t *testing.T) {
	m, ctx := newTestMachine(t)

	if !m.HandleEvent(ctx, events.EventPlacementStarted) {
		t.Fatal("PlacementStarted did not transition")
	}
	if !m.Is("Active") {
		t.Fatalf("state = %q, want Active", m.StateName())
	}
	want := []string{"EnterIdle", "EnterActive:round"}
	if len(ctx.calls) != len(want) || ctx.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", ctx.calls, want)
	}

	// Exit action fires before re-entering Idle
	m.HandleEvent(ctx, events.EventRoundFailed)
	want = append(want, "ExitActive", "EnterIdle")
	if len(ctx.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ctx.calls, want)
	}
	for i := range want {
		if ctx.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, ctx.calls[i], want[i])
		}
	}
}

func TestUnmatchedEventIgnored(t *testing.T) {
	m, ctx := newTestMachine(t)

	if m.HandleEvent(ctx, events.EventPathCompleted) {
		t.Error("event with no transition in Idle reported a transition")
	}
	if !m.Is("Idle") {
		t.Errorf("state = %q, want Idle", m.StateName())
	}
}

func TestGuardBlocksTransition(t *testing.T) {
	m, ctx := newTestMachine(t)
	m.HandleEvent(ctx, events.EventPlacementStarted)

	if m.HandleEvent(ctx, events.EventPathCompleted) {
		t.Error("guarded transition fired with guard false")
	}

	ctx.armed = true
	if !m.HandleEvent(ctx, events.EventPathCompleted) {
		t.Error("guarded transition did not fire with guard true")
	}
	if !m.Is("Done") {
		t.Errorf("state = %q, want Done", m.StateName())
	}
}

func TestTimeInStateExceedsGuard(t *testing.T) {
	m, ctx := newTestMachine(t)
	m.HandleEvent(ctx, events.EventPlacementStarted)

	m.Update(ctx, 300*time.Millisecond)
	if !m.Is("Active") {
		t.Fatalf("transitioned early at 300ms, state = %q", m.StateName())
	}

	m.Update(ctx, 300*time.Millisecond)
	if !m.Is("Done") {
		t.Errorf("state after 600ms = %q, want Done", m.StateName())
	}
}

func TestTimeInStateResetsOnTransition(t *testing.T) {
	m, ctx := newTestMachine(t)
	m.Update(ctx, time.Second)
	if m.TimeInState() != time.Second {
		t.Errorf("TimeInState = %v, want 1s", m.TimeInState())
	}

	m.HandleEvent(ctx, events.EventPlacementStarted)
	if m.TimeInState() != 0 {
		t.Errorf("TimeInState after transition = %v, want 0", m.TimeInState())
	}
}

func TestReset(t *testing.T) {
	m, ctx := newTestMachine(t)
	m.HandleEvent(ctx, events.EventPlacementStarted)
	ctx.calls = nil

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !m.Is("Idle") {
		t.Errorf("state after reset = %q, want Idle", m.StateName())
	}
	want := []string{"ExitActive", "EnterIdle"}
	if len(ctx.calls) != 2 || ctx.calls[0] != want[0] || ctx.calls[1] != want[1] {
		t.Errorf("reset calls = %v, want %v", ctx.calls, want)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"missing initial", `[states.A]`},
		{"unknown initial", `initial = "B"` + "\n" + `[states.A]`},
		{"unknown target", `
initial = "A"
[states.A]
transitions = [{ trigger = "Tick", target = "Nowhere" }]
`},
		{"unknown trigger", `
initial = "A"
[states.A]
transitions = [{ trigger = "NoSuchEvent", target = "A" }]
`},
		{"unknown action", `
initial = "A"
[states.A]
on_enter = [{ action = "NoSuchAction" }]
`},
		{"unknown guard", `
initial = "A"
[states.B]
[states.A]
transitions = [{ trigger = "Tick", target = "B", guard = "NoSuchGuard" }]
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine[*testCtx]()
			if err := m.LoadConfig([]byte(tt.cfg)); err == nil {
				t.Error("invalid config loaded without error")
			}
		})
	}
}

func TestDeterministicStateIDs(t *testing.T) {
	a := NewMachine[*testCtx]()
	a.RegisterGuard("IsArmed", func(*testCtx) bool { return false })
	a.RegisterAction("EnterIdle", func(*testCtx, map[string]any) {})
	a.RegisterAction("EnterActive", func(*testCtx, map[string]any) {})
	a.RegisterAction("ExitActive", func(*testCtx, map[string]any) {})
	if err := a.LoadConfig([]byte(testGraph)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// Sorted names: Active=1, Done=2, Idle=3
	if a.IDByName("Active") != 1 || a.IDByName("Done") != 2 || a.IDByName("Idle") != 3 {
		t.Errorf("IDs = %d %d %d, want 1 2 3",
			a.IDByName("Active"), a.IDByName("Done"), a.IDByName("Idle"))
	}
}
