package requests

import "time"

// States: "state_ceremony_idle"
// Events: "event_ceremony_start"
type CeremonyStartRequest struct {
	CeremonyID      string
	UnsignedMessage string // hex
	GroupKey        string // hex
	Threshold       int
	Participants    []*CeremonyParticipantEntry
	CreatedAt       time.Time
}

type CeremonyParticipantEntry struct {
	Username string
	PubKey   []byte // ed25519 communication key
}

// States: "state_ceremony_await_commitments"
// Events: "event_ceremony_commitment_received"
type CeremonyCommitmentConfirmationRequest struct {
	CeremonyID        string
	ParticipantID     string
	HidingCommitment  string // hex
	BindingCommitment string // hex
	CreatedAt         time.Time
}

// States: "state_ceremony_commitments_collected"
// Events: "event_ceremony_package_built"
type CeremonyPackageBuiltRequest struct {
	CeremonyID     string
	SigningPackage string // hex
	CreatedAt      time.Time
}

// States: "state_ceremony_await_partial_signatures"
// Events: "event_ceremony_partial_signature_received"
type CeremonyPartialSignatureRequest struct {
	CeremonyID       string
	ParticipantID    string
	PartialSignature []byte
	CreatedAt        time.Time
}

// States: "state_ceremony_partial_signatures_collected"
// Events: "event_ceremony_signature_finalized"
type CeremonySignatureFinalizedRequest struct {
	CeremonyID string
	Signature  string // hex
	CreatedAt  time.Time
}

// Events: "event_ceremony_participant_error_received"
type CeremonyConfirmationErrorRequest struct {
	CeremonyID    string
	ParticipantID string
	Error         string
	CreatedAt     time.Time
}
