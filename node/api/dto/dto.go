package dto

import (
	"time"

	"github.com/frostline/fc4tx/ceremony"
	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/node/types"
	"github.com/frostline/fc4tx/storage"
)

// This packages contains DTO (Data Transfer Object) structures
// for providing validated and sanitized values to service layer

type MessageDTO struct {
	ID            string
	CeremonyID    string
	Offset        uint64
	Event         string
	Data          []byte
	Signature     []byte
	SenderAddr    string
	RecipientAddr string
}

type OperationIdDTO struct {
	OperationID string
}

type CeremonyIdDTO struct {
	CeremonyID string
}

type OperationDTO struct {
	ID         string // UUID4
	Type       string
	Payload    []byte
	ResultMsgs []storage.Message
	CreatedAt  time.Time
	CeremonyID string
	To         string
	Event      fsm.Event
}

type StartCeremonyDTO struct {
	CeremonyID      string
	UnsignedMessage string
	GroupKey        string
	Threshold       int
	Participants    []types.Participant
}

type PostCommitmentDTO struct {
	CeremonyID        string
	HidingCommitment  string
	BindingCommitment string
}

type BuildSigningPackageDTO struct {
	CeremonyID          string
	UnsignedTransaction string
	Commitments         []ceremony.CommitmentEntry
}

type PostPartialSignatureDTO struct {
	CeremonyID       string
	PartialSignature []byte
}

type StateOffsetDTO struct {
	Offset uint64
}

type ResetStateDTO struct {
	NewStateDBDSN      string
	UseOffset          bool
	KafkaConsumerGroup string
	Messages           []string
}
