package config

import "time"

const (
	// CommitmentConfirmationDeadline bounds the commitment collection
	// round; a ceremony with missing commitments past the deadline is
	// cancelled rather than built from a partial set.
	CommitmentConfirmationDeadline = time.Hour * 24

	// PartialSignatureConfirmationDeadline bounds the partial signature
	// round.
	PartialSignatureConfirmationDeadline = time.Hour * 24
)
