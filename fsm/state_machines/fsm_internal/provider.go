package internal

import (
	"github.com/frostline/fc4tx/fsm/fsm"
)

type MachineProvider interface {
	Do(event fsm.Event, args ...interface{}) (*fsm.Response, error)

	Name() string
	InitialState() fsm.State
	State() fsm.State
	IsFinState(state fsm.State) bool
}

// DumpedMachineProvider is a machine that can be re-hydrated from a
// persisted state and payload.
type DumpedMachineProvider interface {
	MachineProvider
	WithSetup(state fsm.State, payload *CeremonyStatePayload) DumpedMachineProvider
}
