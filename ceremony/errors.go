package ceremony

import "errors"

// The builder fails loudly on every defect in the commitment set: a
// silently dropped or overwritten commitment could exclude a legitimate
// participant from the signing package without any signal.
var (
	// ErrMessageDecoding marks a malformed or empty hex-encoded message.
	ErrMessageDecoding = errors.New("unsigned message is not valid hex")

	// ErrEmptyIdentifier marks a commitment entry with no participant identifier.
	ErrEmptyIdentifier = errors.New("participant identifier cannot be empty")

	// ErrDuplicateIdentifier marks two commitment entries sharing an identifier.
	ErrDuplicateIdentifier = errors.New("duplicate participant identifier")

	// ErrEmptyCommitmentSet marks a request with no commitments at all.
	ErrEmptyCommitmentSet = errors.New("commitment set cannot be empty")

	// ErrCryptoPrimitive marks a commitment set the cryptographic layer
	// rejected: a malformed curve point or a set below the key's threshold.
	ErrCryptoPrimitive = errors.New("cryptographic layer rejected the commitment set")
)
