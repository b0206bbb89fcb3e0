package responses

// Event: "event_ceremony_start"
// States: "state_ceremony_await_commitments"
type CeremonyStartResponse struct {
	CeremonyID      string
	UnsignedMessage string
	Threshold       int
	Participants    []string
}

// Event: "event_ceremony_commitments_collected_internal"
// States: "state_ceremony_commitments_collected"
type CeremonyCommitmentsCollectedResponse struct {
	CeremonyID      string
	UnsignedMessage string
	Commitments     []*CeremonyCommitmentEntry
}

type CeremonyCommitmentEntry struct {
	ParticipantID     string
	HidingCommitment  string
	BindingCommitment string
}

// Event: "event_ceremony_package_built"
// States: "state_ceremony_await_partial_signatures"
type CeremonyPackageBuiltResponse struct {
	CeremonyID     string
	SigningPackage string
	Threshold      int
	Participants   []string
}

// Event: "event_ceremony_partial_signatures_collected_internal"
// States: "state_ceremony_partial_signatures_collected"
type CeremonyPartialSignaturesCollectedResponse struct {
	CeremonyID        string
	SigningPackage    string
	PartialSignatures map[string][]byte
}

// Event: "event_ceremony_signature_finalized"
// States: "state_ceremony_signature_reconstructed"
type CeremonySignatureReconstructedResponse struct {
	CeremonyID string
	Signature  string
}
