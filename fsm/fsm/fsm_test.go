package fsm

import (
	"errors"
	"testing"
)

const (
	testMachineName = "test_machine"

	stateIdle      = State("state_idle")
	stateCollect   = State("state_collect")
	stateCollected = State("state_collected")
	stateCanceled  = State("state_canceled")

	eventStart    = Event("event_start")
	eventItem     = Event("event_item")
	eventCancel   = Event("event_cancel")
	eventValidate = Event("event_validate_internal")
	eventComplete = Event("event_complete_internal")
)

// collectMachine fills a counter and flips to the collected state once
// three items arrived, through its auto validation event.
type collectMachine struct {
	*FSM
	items int
}

func newCollectMachine(callbackErr error) *collectMachine {
	m := &collectMachine{}

	m.FSM = MustNewFSM(
		testMachineName,
		stateIdle,
		[]EventDesc{
			{Name: eventStart, SrcState: []State{stateIdle}, DstState: stateCollect},
			{Name: eventItem, SrcState: []State{stateCollect}, DstState: stateCollect},
			{Name: eventCancel, SrcState: []State{stateCollect}, DstState: stateCanceled},
			{Name: eventValidate, SrcState: []State{stateCollect}, DstState: stateCollect, IsInternal: true, IsAuto: true},
			{Name: eventComplete, SrcState: []State{stateCollect}, DstState: stateCollected, IsInternal: true},
		},
		Callbacks{
			eventItem: func(event Event, args ...interface{}) (Event, interface{}, error) {
				if callbackErr != nil {
					return "", nil, callbackErr
				}
				m.items++
				return "", nil, nil
			},
			eventValidate: func(event Event, args ...interface{}) (Event, interface{}, error) {
				if m.items >= 3 {
					return eventComplete, m.items, nil
				}
				return "", nil, nil
			},
		},
	)

	return m
}

func TestMustNewFSM_Table(t *testing.T) {
	m := newCollectMachine(nil)

	if m.Name() != testMachineName {
		t.Fatalf("expected machine name {%s}, got {%s}", testMachineName, m.Name())
	}
	if m.InitialState() != stateIdle {
		t.Fatalf("expected initial state {%s}, got {%s}", stateIdle, m.InitialState())
	}
	if !m.IsFinState(stateCollected) || !m.IsFinState(stateCanceled) {
		t.Fatalf("expected {%s} and {%s} to be final states", stateCollected, stateCanceled)
	}
	if m.IsFinState(stateCollect) {
		t.Fatalf("state {%s} must not be final", stateCollect)
	}
}

func TestMustNewFSM_PanicsOnDuplicateEvent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for duplicate event")
		}
	}()

	MustNewFSM(testMachineName, stateIdle, []EventDesc{
		{Name: eventStart, SrcState: []State{stateIdle}, DstState: stateCollect},
		{Name: eventStart, SrcState: []State{stateCollect}, DstState: stateCollected},
	}, nil)
}

func TestMustNewFSM_PanicsOnEmptyEvents(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty events")
		}
	}()

	MustNewFSM(testMachineName, stateIdle, nil, nil)
}

func TestDo_UnknownTransition(t *testing.T) {
	m := newCollectMachine(nil)

	if _, err := m.Do(eventItem); err == nil {
		t.Fatalf("expected error for event {%s} in state {%s}", eventItem, stateIdle)
	}
	if m.State() != stateIdle {
		t.Fatalf("state must not change on a rejected event")
	}
}

func TestDo_InternalEventRejected(t *testing.T) {
	m := newCollectMachine(nil)

	if _, err := m.Do(eventStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Do(eventComplete); err == nil {
		t.Fatalf("expected error for external emission of internal event")
	}
}

func TestDo_CallbackErrorKeepsState(t *testing.T) {
	callbackErr := errors.New("item rejected")
	m := newCollectMachine(callbackErr)

	if _, err := m.Do(eventStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Do(eventItem); !errors.Is(err, callbackErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if m.State() != stateCollect {
		t.Fatalf("state must not change on callback error, got {%s}", m.State())
	}
}

func TestDo_AutoEventCompletesCollection(t *testing.T) {
	m := newCollectMachine(nil)

	if _, err := m.Do(eventStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp *Response
	var err error
	for i := 0; i < 3; i++ {
		resp, err = m.Do(eventItem)
		if err != nil {
			t.Fatalf("unexpected error on item %d: %v", i, err)
		}
	}

	if resp.State != stateCollected {
		t.Fatalf("expected state {%s} after three items, got {%s}", stateCollected, resp.State)
	}
	if items, ok := resp.Data.(int); !ok || items != 3 {
		t.Fatalf("expected auto event data {3}, got %v", resp.Data)
	}
}

func TestMustCopyWithState(t *testing.T) {
	m := newCollectMachine(nil)

	clone := m.FSM.MustCopyWithState(stateCollect)
	if clone.State() != stateCollect {
		t.Fatalf("expected restored state {%s}, got {%s}", stateCollect, clone.State())
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown state")
		}
	}()
	m.FSM.MustCopyWithState(State("state_unknown"))
}
