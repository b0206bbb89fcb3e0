package state_machines

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/fsm/state_machines/fsm_internal"
	"github.com/frostline/fc4tx/fsm/state_machines/signing_ceremony_fsm"
)

// FSMDump is the persisted form of one ceremony machine: its identity,
// position and collected payload.
type FSMDump struct {
	Id      string
	State   fsm.State
	Payload internal.CeremonyStatePayload
}

// FSMInstance couples a live machine with the dump it restores from and
// writes back to after every event.
type FSMInstance struct {
	machine internal.DumpedMachineProvider
	dump    *FSMDump
}

// Create makes a fresh instance for a new ceremony.
func Create(ceremonyID string) (*FSMInstance, error) {
	if len(ceremonyID) == 0 {
		return nil, errors.New("ceremony id cannot be empty")
	}

	i := &FSMInstance{
		dump: &FSMDump{
			Id:    ceremonyID,
			State: signing_ceremony_fsm.StateCeremonyIdle,
		},
	}
	i.machine = signing_ceremony_fsm.New().WithSetup(i.dump.State, &i.dump.Payload)

	return i, nil
}

// FromDump restores an instance from a persisted dump.
func FromDump(data []byte) (*FSMInstance, error) {
	if len(data) < 2 {
		return nil, errors.New("machine dump is empty")
	}

	i := &FSMInstance{
		dump: &FSMDump{},
	}
	if err := i.dump.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("cannot read machine dump: %w", err)
	}

	i.machine = signing_ceremony_fsm.New().WithSetup(i.dump.State, &i.dump.Payload)

	return i, nil
}

// Do runs an event and returns the machine response together with the
// refreshed dump for persistence.
func (i *FSMInstance) Do(event fsm.Event, args ...interface{}) (*fsm.Response, []byte, error) {
	result, err := i.machine.Do(event, args...)

	if result != nil {
		i.dump.State = result.State
	}

	dump, dumpErr := i.dump.Marshal()
	if dumpErr != nil {
		return result, []byte{}, dumpErr
	}

	return result, dump, err
}

func (i *FSMInstance) State() fsm.State {
	return i.machine.State()
}

func (i *FSMInstance) Id() string {
	return i.dump.Id
}

func (i *FSMInstance) CeremonyQuorum() internal.CeremonyQuorum {
	if i.dump.Payload.CeremonyPayload == nil {
		return nil
	}
	return i.dump.Payload.CeremonyPayload.Quorum
}

// GetPubKeyByUsername returns the communication key a quorum member
// registered at ceremony start.
func (i *FSMInstance) GetPubKeyByUsername(username string) (ed25519.PublicKey, error) {
	if i.dump.Payload.CeremonyPayload == nil {
		return nil, errors.New("ceremony is not started")
	}

	participant, ok := i.dump.Payload.CeremonyPayload.Quorum[username]
	if !ok {
		return nil, fmt.Errorf("participant \"%s\" is not a member of the ceremony quorum", username)
	}

	return participant.PubKey, nil
}

func (i *FSMInstance) FSMDump() *FSMDump {
	return i.dump
}

func (d *FSMDump) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *FSMDump) Unmarshal(data []byte) error {
	return json.Unmarshal(data, d)
}
