package requests

import (
	"time"

	"github.com/frostline/fc4tx/ceremony"
	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/node/types"
	"github.com/frostline/fc4tx/storage"
)

type MessageForm struct {
	ID            string `json:"id"`
	CeremonyID    string `json:"ceremony_id" validate:"attr=ceremony_id,min=3"`
	Offset        uint64 `json:"offset"`
	Event         string `json:"event"`
	Data          []byte `json:"data"`
	Signature     []byte `json:"signature"`
	SenderAddr    string `json:"sender"`
	RecipientAddr string `json:"recipient"`
}

type OperationIdForm struct {
	OperationID string `query:"operationID" json:"operationID"`
}

type CeremonyIdForm struct {
	CeremonyID string `query:"ceremonyID" json:"ceremonyID"`
}

type OperationForm struct {
	ID         string // UUID4
	Type       string
	Payload    []byte
	ResultMsgs []storage.Message
	CreatedAt  time.Time
	CeremonyID string
	To         string
	Event      fsm.Event
}

type StartCeremonyForm struct {
	CeremonyID      string              `json:"ceremony_id" validate:"attr=ceremony_id,min=3"`
	UnsignedMessage string              `json:"unsigned_message"`
	GroupKey        string              `json:"group_key"`
	Threshold       int                 `json:"threshold"`
	Participants    []types.Participant `json:"participants"`
}

type PostCommitmentForm struct {
	CeremonyID        string `json:"ceremony_id" validate:"attr=ceremony_id,min=3"`
	HidingCommitment  string `json:"hiding_commitment"`
	BindingCommitment string `json:"binding_commitment"`
}

// BuildSigningPackageForm accepts two request shapes: a ceremony id,
// which builds from commitments the machine already collected, or an
// unsigned transaction with an explicit commitment set for a stateless
// build.
type BuildSigningPackageForm struct {
	CeremonyID          string                     `json:"ceremony_id,omitempty"`
	UnsignedTransaction string                     `json:"unsigned_transaction,omitempty"`
	Commitments         []ceremony.CommitmentEntry `json:"commitments,omitempty"`
}

type PostPartialSignatureForm struct {
	CeremonyID       string `json:"ceremony_id" validate:"attr=ceremony_id,min=3"`
	PartialSignature []byte `json:"partial_signature"`
}

type StateOffsetForm struct {
	Offset uint64 `json:"offset"`
}

type ResetStateForm struct {
	NewStateDBDSN      string   `json:"new_state_dbdsn,omitempty"`
	UseOffset          bool     `json:"use_offset"`
	KafkaConsumerGroup string   `json:"kafka_consumer_group"`
	Messages           []string `json:"messages,omitempty"`
}
