package fsm

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/marrowfield/memstride/events"
)

// RootConfig is the top-level TOML structure
type RootConfig struct {
	InitialState string                  `toml:"initial"`
	States       map[string]*StateConfig `toml:"states"`
}

// StateConfig is a single state definition
type StateConfig struct {
	OnEnter     []ActionConfig     `toml:"on_enter,omitempty"`
	OnExit      []ActionConfig     `toml:"on_exit,omitempty"`
	Transitions []TransitionConfig `toml:"transitions,omitempty"`
}

// TransitionConfig is a transition definition
type TransitionConfig struct {
	Trigger   string         `toml:"trigger"`              // Event name or "Tick"
	Target    string         `toml:"target"`               // Target state name
	Guard     string         `toml:"guard,omitempty"`      // Guard function name
	GuardArgs map[string]any `toml:"guard_args,omitempty"` // Parameters for factory guards
}

// ActionConfig is an action definition
type ActionConfig struct {
	Action string         `toml:"action"`         // Action function name
	Args   map[string]any `toml:"args,omitempty"` // Pre-compiled arguments
}

// LoadConfig parses a TOML byte slice and populates the Machine
// Validates all references (states, guards, actions, events)
// Clears existing graph data before loading
func (m *Machine[T]) LoadConfig(data []byte) error {
	var config RootConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to unmarshal FSM config: %w", err)
	}

	if config.InitialState == "" {
		return fmt.Errorf("FSM config missing initial state")
	}
	if _, ok := config.States[config.InitialState]; !ok {
		return fmt.Errorf("initial state '%s' not defined", config.InitialState)
	}

	// Clear existing graph
	m.nodes = make(map[StateID]*State[T])
	m.nameToID = make(map[string]StateID)
	m.activeStateID = StateNone
	m.timeInState = 0

	// First pass: deterministic IDs from sorted state names
	stateNames := make([]string, 0, len(config.States))
	for name := range config.States {
		stateNames = append(stateNames, name)
	}
	sort.Strings(stateNames)

	nextID := StateID(1)
	for _, name := range stateNames {
		m.AddState(nextID, name)
		nextID++
	}
	m.InitialStateID = m.nameToID[config.InitialState]

	// Second pass: resolve actions and transitions
	for name, cfg := range config.States {
		node := m.nodes[m.nameToID[name]]

		var err error
		if node.OnEnter, err = m.compileActions(cfg.OnEnter); err != nil {
			return fmt.Errorf("state '%s' on_enter: %w", name, err)
		}
		if node.OnExit, err = m.compileActions(cfg.OnExit); err != nil {
			return fmt.Errorf("state '%s' on_exit: %w", name, err)
		}

		for _, tc := range cfg.Transitions {
			targetID, ok := m.nameToID[tc.Target]
			if !ok {
				return fmt.Errorf("state '%s' references unknown target '%s'", name, tc.Target)
			}

			et, ok := events.TypeByName(tc.Trigger)
			if !ok {
				return fmt.Errorf("state '%s' references unknown trigger '%s'", name, tc.Trigger)
			}

			guard, err := m.compileGuard(tc.Guard, tc.GuardArgs)
			if err != nil {
				return fmt.Errorf("state '%s' transition to '%s': %w", name, tc.Target, err)
			}

			node.Transitions = append(node.Transitions, Transition[T]{
				TargetID: targetID,
				Event:    et,
				Guard:    guard,
			})
		}
	}

	return nil
}

func (m *Machine[T]) compileActions(configs []ActionConfig) ([]Action[T], error) {
	actions := make([]Action[T], 0, len(configs))
	for _, ac := range configs {
		fn, ok := m.actionReg[ac.Action]
		if !ok {
			return nil, fmt.Errorf("unknown action '%s'", ac.Action)
		}
		actions = append(actions, Action[T]{Func: fn, Args: ac.Args})
	}
	return actions, nil
}

func (m *Machine[T]) compileGuard(name string, args map[string]any) (GuardFunc[T], error) {
	if name == "" {
		return nil, nil
	}
	if factory, ok := m.guardFactoryReg[name]; ok {
		return factory(m, args), nil
	}
	if guard, ok := m.guardReg[name]; ok {
		return guard, nil
	}
	return nil, fmt.Errorf("unknown guard '%s'", name)
}

// toInt normalizes TOML numeric decode results
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
