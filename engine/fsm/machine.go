package fsm

import (
	"fmt"
	"time"

	"github.com/marrowfield/memstride/events"
)

// NewMachine creates a new FSM instance with built-in guard factories
func NewMachine[T any]() *Machine[T] {
	m := &Machine[T]{
		nodes:           make(map[StateID]*State[T]),
		nameToID:        make(map[string]StateID),
		guardReg:        make(map[string]GuardFunc[T]),
		guardFactoryReg: make(map[string]GuardFactoryFunc[T]),
		actionReg:       make(map[string]ActionFunc[T]),
	}
	m.RegisterGuardFactory("TimeInStateExceeds", timeInStateExceeds[T])
	return m
}

// timeInStateExceeds builds a guard passing once the active state has been
// held for at least args["ms"] milliseconds
func timeInStateExceeds[T any](m *Machine[T], args map[string]any) GuardFunc[T] {
	ms, _ := toInt(args["ms"])
	threshold := time.Duration(ms) * time.Millisecond
	return func(ctx T) bool {
		return m.timeInState >= threshold
	}
}

// RegisterGuard adds a predicate function to the registry
func (m *Machine[T]) RegisterGuard(name string, fn GuardFunc[T]) {
	m.guardReg[name] = fn
}

// RegisterGuardFactory adds a parameterized guard factory to the registry
func (m *Machine[T]) RegisterGuardFactory(name string, factory GuardFactoryFunc[T]) {
	m.guardFactoryReg[name] = factory
}

// RegisterAction adds a side-effect function to the registry
func (m *Machine[T]) RegisterAction(name string, fn ActionFunc[T]) {
	m.actionReg[name] = fn
}

// AddState adds a node to the machine manually
// Useful for constructing the graph programmatically or in tests
func (m *Machine[T]) AddState(id StateID, name string) *State[T] {
	node := &State[T]{
		ID:          id,
		Name:        name,
		Transitions: make([]Transition[T], 0),
		OnEnter:     make([]Action[T], 0),
		OnExit:      make([]Action[T], 0),
	}
	m.nodes[id] = node
	m.nameToID[name] = id
	return node
}

// AddTransition adds a transition to a specific node
func (m *Machine[T]) AddTransition(sourceID StateID, t Transition[T]) {
	if node, ok := m.nodes[sourceID]; ok {
		node.Transitions = append(node.Transitions, t)
	}
}

// Init enters the initial state, executing its OnEnter actions
func (m *Machine[T]) Init(ctx T) error {
	node, ok := m.nodes[m.InitialStateID]
	if !ok {
		return fmt.Errorf("initial state ID %d not found", m.InitialStateID)
	}

	m.activeStateID = node.ID
	m.timeInState = 0

	for _, action := range node.OnEnter {
		action.Func(ctx, action.Args)
	}
	return nil
}

// Update advances the FSM by delta time and evaluates tick transitions
func (m *Machine[T]) Update(ctx T, dt time.Duration) {
	if m.activeStateID == StateNone {
		return
	}
	m.timeInState += dt

	node := m.nodes[m.activeStateID]
	for _, trans := range node.Transitions {
		if trans.Event == events.EventNone {
			if trans.Guard == nil || trans.Guard(ctx) {
				m.transition(ctx, trans.TargetID)
				return
			}
		}
	}
}

// HandleEvent routes an external event through the active state
// Returns true if the event triggered a transition
func (m *Machine[T]) HandleEvent(ctx T, eventType events.EventType) bool {
	if m.activeStateID == StateNone {
		return false
	}

	node := m.nodes[m.activeStateID]
	for _, trans := range node.Transitions {
		if trans.Event == eventType {
			if trans.Guard == nil || trans.Guard(ctx) {
				m.transition(ctx, trans.TargetID)
				return true
			}
		}
	}
	return false
}

// transition performs the state change
func (m *Machine[T]) transition(ctx T, targetID StateID) {
	if m.activeStateID == targetID {
		return
	}

	target, ok := m.nodes[targetID]
	if !ok {
		panic(fmt.Sprintf("fsm: attempted transition to unknown state ID %d", targetID))
	}

	if current, exists := m.nodes[m.activeStateID]; exists {
		for _, action := range current.OnExit {
			action.Func(ctx, action.Args)
		}
	}

	m.activeStateID = targetID
	m.timeInState = 0

	for _, action := range target.OnEnter {
		action.Func(ctx, action.Args)
	}
}

// Reset exits the current state and re-enters the initial state
func (m *Machine[T]) Reset(ctx T) error {
	if node, ok := m.nodes[m.activeStateID]; ok {
		for _, action := range node.OnExit {
			action.Func(ctx, action.Args)
		}
	}
	m.activeStateID = StateNone
	return m.Init(ctx)
}

// StateName returns the name of the active state
func (m *Machine[T]) StateName() string {
	if node, ok := m.nodes[m.activeStateID]; ok {
		return node.Name
	}
	return ""
}

// StateID returns the active state's ID
func (m *Machine[T]) StateID() StateID {
	return m.activeStateID
}

// IDByName resolves a state name to its ID, StateNone if unknown
func (m *Machine[T]) IDByName(name string) StateID {
	return m.nameToID[name]
}

// Is reports whether the active state has the given name
func (m *Machine[T]) Is(name string) bool {
	return m.activeStateID != StateNone && m.nameToID[name] == m.activeStateID
}

// TimeInState returns time spent in the active state
func (m *Machine[T]) TimeInState() time.Duration {
	return m.timeInState
}
