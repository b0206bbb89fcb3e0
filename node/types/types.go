package types

import (
	"bytes"
	"fmt"
	"time"

	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/storage"
)

type OperationType string

const (
	// CommitmentAwait asks the participant machine to produce a nonce
	// commitment for the ceremony.
	CommitmentAwait OperationType = "ceremony_commitment_await"

	// PartialSignatureAwait asks the participant machine to produce a
	// partial signature over the distributed signing package.
	PartialSignatureAwait OperationType = "ceremony_partial_signature_await"

	// OperationProcessed marks an operation that produced no result
	// messages on the participant side.
	OperationProcessed fsm.Event = "operation_processed_by_participant"
)

type Participant struct {
	Username string `json:"username"`
	PubKey   []byte `json:"pub_key"`
}

type ReconstructedSignature struct {
	CeremonyID      string
	UnsignedMessage []byte
	Signature       []byte
	Username        string
}

// Operation is a unit of work for the participant machine: the node
// publishes it, the participant processes it and returns result
// messages for the append-only log.
type Operation struct {
	ID         string // UUID4
	Type       OperationType
	Payload    []byte
	ResultMsgs []storage.Message
	CreatedAt  time.Time
	CeremonyID string
	To         string
	Event      fsm.Event
}

func (o *Operation) Equal(o2 *Operation) error {
	if o.ID != o2.ID {
		return fmt.Errorf("o1.ID (%s) != o2.ID (%s)", o.ID, o2.ID)
	}

	if o.Type != o2.Type {
		return fmt.Errorf("o1.Type (%s) != o2.Type (%s)", o.Type, o2.Type)
	}

	if !bytes.Equal(o.Payload, o2.Payload) {
		return fmt.Errorf("o1.Payload (%v) != o2.Payload (%v)", o.Payload, o2.Payload)
	}

	if o.CeremonyID != o2.CeremonyID {
		return fmt.Errorf("o1.CeremonyID (%s) != o2.CeremonyID (%s)", o.CeremonyID, o2.CeremonyID)
	}

	return nil
}
