package fsm

import (
	"time"

	"github.com/marrowfield/memstride/events"
)

// StateID is a unique identifier for a state node
type StateID int

const (
	StateNone StateID = 0
)

// Machine is a generic flat finite state machine runtime
// T is the context type passed to actions and guards
type Machine[T any] struct {
	// Graph data (immutable after load)
	nodes    map[StateID]*State[T]
	nameToID map[string]StateID

	// Configuration
	InitialStateID StateID // Stored during load for reset/init

	// Runtime state
	activeStateID StateID
	timeInState   time.Duration

	// Dependency injection
	guardReg        map[string]GuardFunc[T]
	guardFactoryReg map[string]GuardFactoryFunc[T]
	actionReg       map[string]ActionFunc[T]
}

// State represents one node in the graph
type State[T any] struct {
	ID   StateID
	Name string

	// Lifecycle actions
	OnEnter []Action[T]
	OnExit  []Action[T]

	// Transitions sorted by declaration order (evaluation priority)
	Transitions []Transition[T]
}

// Transition defines a link between states
type Transition[T any] struct {
	TargetID StateID
	Event    events.EventType // EventNone = Tick (auto-transition)
	Guard    GuardFunc[T]     // nil = always true
}

// Action represents a side effect with pre-compiled arguments
type Action[T any] struct {
	Func ActionFunc[T]
	Args map[string]any
}

// GuardFunc returns true if the transition should occur
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect
type ActionFunc[T any] func(ctx T, args map[string]any)

// GuardFactoryFunc creates a parameterized guard from config args
// Used for configurable guards like TimeInStateExceeds
type GuardFactoryFunc[T any] func(m *Machine[T], args map[string]any) GuardFunc[T]
