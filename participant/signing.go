package participant

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corestario/kyber/util/random"

	"github.com/frostline/fc4tx/frost"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/fsm/types/responses"
	"github.com/frostline/fc4tx/node/types"
)

// DealKeyShares generates a fresh group key for the given roster and
// returns every participant's share. Trusted dealer mode: the caller
// distributes the foreign shares out of band and keeps none of them.
func (m *Machine) DealKeyShares(ceremonyID string, threshold int, participants []string) ([]*frost.KeyShare, error) {
	f, err := frost.New(threshold, len(participants))
	if err != nil {
		return nil, fmt.Errorf("failed to init signing scheme: %w", err)
	}

	shares, _, err := f.DealShares(random.New(m.rand), participants)
	if err != nil {
		return nil, fmt.Errorf("failed to deal key shares: %w", err)
	}

	for _, share := range shares {
		if share.Name == m.username {
			if err := m.saveKeyShare(ceremonyID, share); err != nil {
				return nil, fmt.Errorf("failed to save own key share: %w", err)
			}
		}
	}

	return shares, nil
}

// ImportKeyShare stores a share this participant received from a dealer.
func (m *Machine) ImportKeyShare(ceremonyID string, share *frost.KeyShare) error {
	if share == nil || share.Name != m.username {
		return fmt.Errorf("key share does not belong to %s", m.username)
	}
	return m.saveKeyShare(ceremonyID, share)
}

// GroupKey returns the hex-encoded group public key of a ceremony this
// participant holds a share for.
func (m *Machine) GroupKey(ceremonyID string) (string, error) {
	share, err := m.loadKeyShare(ceremonyID)
	if err != nil {
		return "", err
	}

	groupKeyBz, err := share.GroupKey.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to marshal group key: %w", err)
	}

	return hex.EncodeToString(groupKeyBz), nil
}

// VerifySignature checks a reconstructed group signature against the
// group key stored with this participant's share.
func (m *Machine) VerifySignature(ceremonyID string, message, signatureBz []byte) error {
	share, err := m.loadKeyShare(ceremonyID)
	if err != nil {
		return fmt.Errorf("failed to load key share: %w", err)
	}

	var sig frost.Signature
	if err := json.Unmarshal(signatureBz, &sig); err != nil {
		return fmt.Errorf("failed to unmarshal signature: %w", err)
	}

	return frost.VerifySignature(message, &sig, share.GroupKey)
}

func (m *Machine) handleCommitmentAwait(o *types.Operation) error {
	var (
		payload responses.CeremonyStartResponse
		err     error
	)

	if err = json.Unmarshal(o.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	share, err := m.loadKeyShare(o.CeremonyID)
	if err != nil {
		return fmt.Errorf("failed to load key share: %w", err)
	}

	f, err := frost.New(payload.Threshold, len(payload.Participants))
	if err != nil {
		return fmt.Errorf("failed to init signing scheme: %w", err)
	}

	nonce, commitment, err := f.Commit(random.New(m.rand), share)
	if err != nil {
		return fmt.Errorf("failed to generate commitment: %w", err)
	}

	if err := m.saveSigningNonce(o.CeremonyID, nonce); err != nil {
		return fmt.Errorf("failed to save signing nonce: %w", err)
	}

	hidingBz, err := commitment.Hiding.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal hiding commitment: %w", err)
	}
	bindingBz, err := commitment.Binding.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal binding commitment: %w", err)
	}

	req := requests.CeremonyCommitmentConfirmationRequest{
		CeremonyID:        o.CeremonyID,
		ParticipantID:     m.username,
		HidingCommitment:  hex.EncodeToString(hidingBz),
		BindingCommitment: hex.EncodeToString(bindingBz),
		CreatedAt:         time.Now(),
	}
	reqBz, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to generate fsm request: %w", err)
	}

	o.ResultMsgs = append(o.ResultMsgs, createMessage(*o, reqBz))

	return nil
}

func (m *Machine) handlePartialSignatureAwait(o *types.Operation) error {
	var (
		payload responses.CeremonyPackageBuiltResponse
		err     error
	)

	if err = json.Unmarshal(o.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	share, err := m.loadKeyShare(o.CeremonyID)
	if err != nil {
		return fmt.Errorf("failed to load key share: %w", err)
	}

	nonce, err := m.loadSigningNonce(o.CeremonyID)
	if err != nil {
		return fmt.Errorf("failed to load signing nonce: %w", err)
	}

	f, err := frost.New(payload.Threshold, len(payload.Participants))
	if err != nil {
		return fmt.Errorf("failed to init signing scheme: %w", err)
	}

	pkgBz, err := hex.DecodeString(payload.SigningPackage)
	if err != nil {
		return fmt.Errorf("failed to decode signing package hex: %w", err)
	}

	pkg, err := f.DecodeSigningPackage(pkgBz)
	if err != nil {
		return fmt.Errorf("failed to decode signing package: %w", err)
	}

	// The coalition tolerates missing commitments, so our own may not be
	// in the package. Nothing to sign in that case.
	inCoalition := false
	for _, commitment := range pkg.Commitments {
		if commitment.Name == m.username {
			inCoalition = true
			break
		}
	}
	if !inCoalition {
		return nil
	}

	partial, err := f.PartialSign(share, nonce, pkg)
	if err != nil {
		return fmt.Errorf("failed to produce partial signature: %w", err)
	}

	// The nonce is spent, it must never sign a second package.
	if err := m.deleteSigningNonce(o.CeremonyID); err != nil {
		return err
	}

	partialBz, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to marshal partial signature: %w", err)
	}

	req := requests.CeremonyPartialSignatureRequest{
		CeremonyID:       o.CeremonyID,
		ParticipantID:    m.username,
		PartialSignature: partialBz,
		CreatedAt:        time.Now(),
	}
	reqBz, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to generate fsm request: %w", err)
	}

	o.ResultMsgs = append(o.ResultMsgs, createMessage(*o, reqBz))

	return nil
}
