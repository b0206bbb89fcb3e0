package requests

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

func (r *CeremonyStartRequest) Validate() error {
	if len(r.CeremonyID) == 0 {
		return errors.New("{CeremonyID} cannot be empty")
	}

	if len(r.UnsignedMessage) == 0 {
		return errors.New("{UnsignedMessage} cannot be empty")
	}

	if _, err := hex.DecodeString(r.UnsignedMessage); err != nil {
		return errors.New("{UnsignedMessage} must be a hex string")
	}

	if _, err := hex.DecodeString(r.GroupKey); err != nil || len(r.GroupKey) == 0 {
		return errors.New("{GroupKey} must be a non-empty hex string")
	}

	if r.Threshold < 2 {
		return errors.New("{Threshold} cannot be lower than 2")
	}

	if len(r.Participants) < r.Threshold {
		return errors.New("{Participants} cannot be fewer than {Threshold}")
	}

	for _, participant := range r.Participants {
		if len(participant.Username) == 0 {
			return errors.New("{Participants} cannot contain an empty {Username}")
		}
		if len(participant.PubKey) != ed25519.PublicKeySize {
			return fmt.Errorf("{Participants} entry %s must carry an ed25519 {PubKey}", participant.Username)
		}
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} cannot be a zero time")
	}

	return nil
}

func (r *CeremonyCommitmentConfirmationRequest) Validate() error {
	if len(r.CeremonyID) == 0 {
		return errors.New("{CeremonyID} cannot be empty")
	}

	if len(r.ParticipantID) == 0 {
		return errors.New("{ParticipantID} cannot be empty")
	}

	if _, err := hex.DecodeString(r.HidingCommitment); err != nil || len(r.HidingCommitment) == 0 {
		return errors.New("{HidingCommitment} must be a non-empty hex string")
	}

	if _, err := hex.DecodeString(r.BindingCommitment); err != nil || len(r.BindingCommitment) == 0 {
		return errors.New("{BindingCommitment} must be a non-empty hex string")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} cannot be a zero time")
	}

	return nil
}

func (r *CeremonyPackageBuiltRequest) Validate() error {
	if len(r.CeremonyID) == 0 {
		return errors.New("{CeremonyID} cannot be empty")
	}

	if _, err := hex.DecodeString(r.SigningPackage); err != nil || len(r.SigningPackage) == 0 {
		return errors.New("{SigningPackage} must be a non-empty hex string")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} cannot be a zero time")
	}

	return nil
}

func (r *CeremonyPartialSignatureRequest) Validate() error {
	if len(r.CeremonyID) == 0 {
		return errors.New("{CeremonyID} cannot be empty")
	}

	if len(r.ParticipantID) == 0 {
		return errors.New("{ParticipantID} cannot be empty")
	}

	if len(r.PartialSignature) == 0 {
		return errors.New("{PartialSignature} cannot be empty")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} cannot be a zero time")
	}

	return nil
}

func (r *CeremonySignatureFinalizedRequest) Validate() error {
	if len(r.CeremonyID) == 0 {
		return errors.New("{CeremonyID} cannot be empty")
	}

	if _, err := hex.DecodeString(r.Signature); err != nil || len(r.Signature) == 0 {
		return errors.New("{Signature} must be a non-empty hex string")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} cannot be a zero time")
	}

	return nil
}

func (r *CeremonyConfirmationErrorRequest) Validate() error {
	if len(r.CeremonyID) == 0 {
		return errors.New("{CeremonyID} cannot be empty")
	}

	if len(r.ParticipantID) == 0 {
		return errors.New("{ParticipantID} cannot be empty")
	}

	if len(r.Error) == 0 {
		return errors.New("{Error} cannot be empty")
	}

	return nil
}
