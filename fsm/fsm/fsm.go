package fsm

import (
	"fmt"
	"strings"
	"sync"
)

const (
	StateGlobalIdle = State("__idle")
	StateGlobalDone = State("__done")
)

type State string

func (s State) String() string {
	return string(s)
}

type Event string

func (e Event) String() string {
	return string(e)
}

func (e Event) IsEmpty() bool {
	return e == ""
}

// Response carries the machine state after an event was processed and
// the callback's payload for the caller.
type Response struct {
	State State
	Data  interface{}
}

// FSM is a finite-state machine over named states and events. Internal
// events can only be emitted by callbacks, never from external calls;
// auto events run after every external transition into their source
// state, which lets a machine validate collected data without an
// explicit poke from the caller.
type FSM struct {
	name         string
	initialState State
	currentState State

	transitions     map[trKey]*trEvent
	autoTransitions map[State]*trEvent
	callbacks       Callbacks

	finStates map[State]bool

	stateMu sync.RWMutex
}

type trKey struct {
	source State
	event  Event
}

type trEvent struct {
	event      Event
	dstState   State
	isInternal bool
	isAuto     bool
}

type EventDesc struct {
	Name     Event
	SrcState []State
	DstState State

	// IsInternal events cannot be emitted from an external Do call.
	IsInternal bool

	// IsAuto events run after each external transition out of their
	// source state.
	IsAuto bool
}

type Callback func(event Event, args ...interface{}) (Event, interface{}, error)

type Callbacks map[Event]Callback

// MustNewFSM validates the machine description and panics on any
// inconsistency; machines are wired at startup, a malformed table is a
// programming error.
func MustNewFSM(machineName string, initialState State, events []EventDesc, callbacks Callbacks) *FSM {
	machineName = strings.TrimSpace(machineName)
	initialState = State(strings.TrimSpace(initialState.String()))

	if machineName == "" {
		panic("machine name cannot be empty")
	}
	if initialState == "" {
		panic("initial state cannot be empty")
	}
	if len(events) == 0 {
		panic("cannot init fsm with empty events")
	}

	f := &FSM{
		name:            machineName,
		currentState:    initialState,
		initialState:    initialState,
		transitions:     make(map[trKey]*trEvent),
		autoTransitions: make(map[State]*trEvent),
		finStates:       make(map[State]bool),
		callbacks:       make(map[Event]Callback),
	}

	allEvents := make(map[Event]bool)
	allSources := make(map[State]bool)
	allStates := make(map[State]bool)

	for _, event := range events {
		if event.Name.IsEmpty() {
			panic("cannot init empty event")
		}
		if event.DstState == "" {
			panic(fmt.Sprintf("event \"%s\" has no destination state", event.Name))
		}
		if allEvents[event.Name] {
			panic(fmt.Sprintf("duplicate event \"%s\"", event.Name))
		}

		allEvents[event.Name] = true
		allStates[event.DstState] = true

		if len(event.SrcState) == 0 {
			panic(fmt.Sprintf("event \"%s\" has no source states", event.Name))
		}

		for _, sourceState := range event.SrcState {
			if sourceState == StateGlobalDone {
				panic("StateGlobalDone cannot be a source state")
			}

			tKey := trKey{sourceState, event.Name}
			if _, ok := f.transitions[tKey]; ok {
				panic(fmt.Sprintf("duplicate transition for pair \"%s\" + \"%s\"", sourceState, event.Name))
			}

			tr := &trEvent{
				event:      event.Name,
				dstState:   event.DstState,
				isInternal: event.IsInternal,
				isAuto:     event.IsAuto,
			}
			f.transitions[tKey] = tr

			if event.IsAuto {
				if _, ok := f.autoTransitions[sourceState]; ok {
					panic(fmt.Sprintf("auto event already exists for state \"%s\"", sourceState))
				}
				f.autoTransitions[sourceState] = tr
			}

			allSources[sourceState] = true
		}
	}

	if len(allStates) < 2 {
		panic("machine must contain at least two states")
	}

	for event, callback := range callbacks {
		if event.IsEmpty() {
			panic("callback event cannot be empty")
		}
		if !allEvents[event] {
			panic(fmt.Sprintf("callback for unknown event \"%s\"", event))
		}
		f.callbacks[event] = callback
	}

	for state := range allStates {
		if state == StateGlobalIdle {
			continue
		}
		if !allSources[state] || state == StateGlobalDone {
			f.finStates[state] = true
		}
	}

	if len(f.finStates) == 0 {
		panic("cannot initialize machine without final states")
	}

	return f
}

// Do processes an externally emitted event.
func (f *FSM) Do(event Event, args ...interface{}) (*Response, error) {
	tr, ok := f.transitions[trKey{f.State(), event}]
	if !ok {
		return nil, fmt.Errorf("cannot execute event \"%s\" for state \"%s\"", event, f.State())
	}
	if tr.isInternal {
		return nil, fmt.Errorf("event \"%s\" is internal", event)
	}

	return f.do(tr, args...)
}

// DoInternal processes an event regardless of its internal flag. Only
// machine callbacks should call it.
func (f *FSM) DoInternal(event Event, args ...interface{}) (*Response, error) {
	tr, ok := f.transitions[trKey{f.State(), event}]
	if !ok {
		return nil, fmt.Errorf("cannot execute event \"%s\" for state \"%s\"", event, f.State())
	}

	return f.do(tr, args...)
}

func (f *FSM) do(tr *trEvent, args ...interface{}) (*Response, error) {
	resp := &Response{
		State: f.State(),
	}

	var outEvent Event
	if callback, ok := f.callbacks[tr.event]; ok {
		var err error
		outEvent, resp.Data, err = callback(tr.event, args...)
		// State is not changed on a callback error.
		if err != nil {
			return resp, err
		}
	}

	if outEvent.IsEmpty() || outEvent == tr.event {
		if err := f.setState(tr.event); err != nil {
			return resp, err
		}
	} else {
		if err := f.setState(outEvent); err != nil {
			return resp, err
		}
	}

	// Run the auto event of the reached state, if any.
	if autoEvent, ok := f.autoTransitions[f.State()]; ok {
		var autoOutEvent Event
		var autoData interface{}
		if callback, ok := f.callbacks[autoEvent.event]; ok {
			var err error
			autoOutEvent, autoData, err = callback(autoEvent.event, args...)
			if err != nil {
				resp.State = f.State()
				return resp, err
			}
		}
		if autoOutEvent.IsEmpty() {
			autoOutEvent = autoEvent.event
		}
		// An auto event that resolves to itself keeps the state as is:
		// the machine is still waiting for more input.
		if autoOutEvent != autoEvent.event || autoEvent.dstState != f.State() {
			if err := f.setState(autoOutEvent); err != nil {
				resp.State = f.State()
				return resp, err
			}
		}
		if autoData != nil {
			resp.Data = autoData
		}
	}

	resp.State = f.State()

	return resp, nil
}

// State returns the machine's current state.
func (f *FSM) State() State {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()
	return f.currentState
}

func (f *FSM) setState(event Event) error {
	f.stateMu.Lock()
	defer f.stateMu.Unlock()

	tr, ok := f.transitions[trKey{f.currentState, event}]
	if !ok {
		return fmt.Errorf("no transition for event \"%s\" from state \"%s\"", event, f.currentState)
	}

	f.currentState = tr.dstState

	return nil
}

func (f *FSM) Name() string {
	return f.name
}

func (f *FSM) InitialState() State {
	return f.initialState
}

func (f *FSM) IsFinState(state State) bool {
	return f.finStates[state]
}

// MustCopyWithState clones the machine description positioned at the
// given state. Used when restoring a machine from a dump.
func (f *FSM) MustCopyWithState(state State) *FSM {
	clone := &FSM{
		name:            f.name,
		initialState:    f.initialState,
		currentState:    f.initialState,
		transitions:     f.transitions,
		autoTransitions: f.autoTransitions,
		callbacks:       f.callbacks,
		finStates:       f.finStates,
	}

	if state == "" {
		return clone
	}

	known := state == f.initialState || f.finStates[state]
	if !known {
		for key := range f.transitions {
			if key.source == state {
				known = true
				break
			}
		}
	}
	if !known {
		panic(fmt.Sprintf("unknown state \"%s\" for machine \"%s\"", state, f.name))
	}
	clone.currentState = state

	return clone
}
