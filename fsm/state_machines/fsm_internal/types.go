package internal

import (
	"sort"
	"time"
)

type CeremonyParticipantStatus uint8

const (
	CommitmentAwaitConfirmation CeremonyParticipantStatus = iota
	CommitmentConfirmed
	CommitmentDeclined
	PartialSignatureAwaitConfirmation
	PartialSignatureConfirmed
	CeremonyParticipantError
)

func (s CeremonyParticipantStatus) String() string {
	var str = "undefined"
	switch s {
	case CommitmentAwaitConfirmation:
		str = "CommitmentAwaitConfirmation"
	case CommitmentConfirmed:
		str = "CommitmentConfirmed"
	case CommitmentDeclined:
		str = "CommitmentDeclined"
	case PartialSignatureAwaitConfirmation:
		str = "PartialSignatureAwaitConfirmation"
	case PartialSignatureConfirmed:
		str = "PartialSignatureConfirmed"
	case CeremonyParticipantError:
		str = "CeremonyParticipantError"
	}
	return str
}

// CeremonyParticipant tracks one participant through both collection
// rounds. HidingCommitment and BindingCommitment are kept as opaque hex
// values; their interpretation belongs to the cryptographic layer.
type CeremonyParticipant struct {
	Username          string
	PubKey            []byte // ed25519 communication key
	HidingCommitment  string
	BindingCommitment string
	PartialSignature  []byte
	Status            CeremonyParticipantStatus
	Error             string
	UpdatedAt         time.Time
}

// CeremonyQuorum is keyed by the participant identifier, which is
// unique within one ceremony by construction.
type CeremonyQuorum map[string]*CeremonyParticipant

// GetOrderedIdentifiers returns quorum keys in lexicographic order, the
// same order the signing package canonicalizes by.
func (q CeremonyQuorum) GetOrderedIdentifiers() []string {
	identifiers := make([]string, 0, len(q))
	for identifier := range q {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)
	return identifiers
}

// CeremonyConfirmation is the signing ceremony payload: the message
// under signature, the collected quorum and the produced artifacts.
type CeremonyConfirmation struct {
	CeremonyID      string
	Threshold       int
	UnsignedMessage string // hex
	GroupKey        string // hex
	SigningPackage  string // hex, set once the package is built
	SignatureHex    string // hex, set once the signature is reconstructed
	Quorum          CeremonyQuorum
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       time.Time
}

func (c *CeremonyConfirmation) IsExpired() bool {
	return c.ExpiresAt.Before(c.UpdatedAt)
}

// CeremonyStatePayload is the dumped machine scope.
type CeremonyStatePayload struct {
	CeremonyPayload *CeremonyConfirmation
}

func (p *CeremonyStatePayload) QuorumExists(identifier string) bool {
	_, ok := p.CeremonyPayload.Quorum[identifier]
	return ok
}

func (p *CeremonyStatePayload) QuorumGet(identifier string) *CeremonyParticipant {
	return p.CeremonyPayload.Quorum[identifier]
}

func (p *CeremonyStatePayload) QuorumUpdate(identifier string, participant *CeremonyParticipant) {
	p.CeremonyPayload.Quorum[identifier] = participant
}

func (p *CeremonyStatePayload) QuorumCount() int {
	return len(p.CeremonyPayload.Quorum)
}

func (p *CeremonyStatePayload) GetThreshold() int {
	return p.CeremonyPayload.Threshold
}
