package ceremony

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/frostline/fc4tx/frost"
)

// Binder is the cryptographic primitives collaborator: it performs the
// actual Fiat-Shamir binding of a message to a canonical commitment set
// and owns the package's byte encoding.
type Binder interface {
	BuildSigningPackage(message []byte, commitments []*frost.SigningCommitment) (*frost.SigningPackage, error)
	EncodeSigningPackage(pkg *frost.SigningPackage) ([]byte, error)
}

// Commitment is the wire form of one participant's nonce commitment:
// two hex-encoded curve points whose positions are never interchangeable.
type Commitment struct {
	Hiding  string `json:"hiding"`
	Binding string `json:"binding"`
}

// CommitmentEntry pairs a participant identifier with its commitment.
type CommitmentEntry struct {
	Identifier string     `json:"identifier"`
	Commitment Commitment `json:"commitment"`
}

// Builder validates and canonicalizes a commitment set, then binds it
// to an unsigned message through the Binder. It holds no state; a single
// Builder may serve concurrent requests.
type Builder struct {
	binder Binder
}

func NewBuilder(binder Binder) *Builder {
	return &Builder{binder: binder}
}

// Build turns a hex-encoded unsigned message and a sequence of
// commitment entries into a hex-encoded signing package.
//
// Entries are folded into a mapping with an explicit presence check:
// a duplicate identifier fails the whole request instead of silently
// overwriting an earlier entry. The mapping is flattened in lexicographic
// identifier order before binding, so permuting the input entries does
// not change the output.
func (b *Builder) Build(unsignedMessageHex string, entries []CommitmentEntry) (string, error) {
	message, err := hex.DecodeString(unsignedMessageHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMessageDecoding, err)
	}
	if len(message) == 0 {
		return "", fmt.Errorf("%w: message is empty", ErrMessageDecoding)
	}

	byIdentifier := make(map[string]Commitment, len(entries))
	for _, entry := range entries {
		if len(entry.Identifier) == 0 {
			return "", ErrEmptyIdentifier
		}
		if _, exists := byIdentifier[entry.Identifier]; exists {
			return "", fmt.Errorf("%w: %q", ErrDuplicateIdentifier, entry.Identifier)
		}
		byIdentifier[entry.Identifier] = entry.Commitment
	}

	if len(byIdentifier) == 0 {
		return "", ErrEmptyCommitmentSet
	}

	identifiers := make([]string, 0, len(byIdentifier))
	for identifier := range byIdentifier {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)

	commitments := make([]*frost.SigningCommitment, 0, len(identifiers))
	for _, identifier := range identifiers {
		entry := byIdentifier[identifier]

		hiding, err := hex.DecodeString(entry.Hiding)
		if err != nil {
			return "", fmt.Errorf("%w: hiding commitment of %q is not valid hex: %v", ErrCryptoPrimitive, identifier, err)
		}
		binding, err := hex.DecodeString(entry.Binding)
		if err != nil {
			return "", fmt.Errorf("%w: binding commitment of %q is not valid hex: %v", ErrCryptoPrimitive, identifier, err)
		}

		commitment, err := frost.NewSigningCommitment(identifier, hiding, binding)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCryptoPrimitive, err)
		}
		commitments = append(commitments, commitment)
	}

	pkg, err := b.binder.BuildSigningPackage(message, commitments)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptoPrimitive, err)
	}

	encoded, err := b.binder.EncodeSigningPackage(pkg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptoPrimitive, err)
	}

	return hex.EncodeToString(encoded), nil
}
