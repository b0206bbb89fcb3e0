package signature

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frostline/fc4tx/node/modules/state"
	"github.com/frostline/fc4tx/node/types"
)

const (
	SignaturesKeyPrefix = "signatures"
)

type SignatureRepo interface {
	SaveSignatures(signatures []types.ReconstructedSignature) error
	GetSignatures(ceremonyID string) ([]types.ReconstructedSignature, error)
}

type BaseSignatureRepo struct {
	state state.State
}

func NewSignatureRepo(state state.State) *BaseSignatureRepo {
	return &BaseSignatureRepo{state}
}

// GetSignatures returns the reconstructed signature reported by every
// participant of the given ceremony.
func (r *BaseSignatureRepo) GetSignatures(ceremonyID string) (signatures []types.ReconstructedSignature, err error) {
	key := state.MakeCompositeKeyString(SignaturesKeyPrefix, ceremonyID)

	bz, err := r.state.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures for ceremonyID %s: %w", ceremonyID, err)
	}

	if bz == nil {
		return nil, nil
	}

	if err := json.Unmarshal(bz, &signatures); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signature: %w", err)
	}

	return signatures, nil
}

func (r *BaseSignatureRepo) SaveSignatures(signaturesToSave []types.ReconstructedSignature) error {
	if len(signaturesToSave) == 0 {
		return errors.New("nothing to save")
	}

	signatures, err := r.GetSignatures(signaturesToSave[0].CeremonyID)
	if err != nil {
		return fmt.Errorf("failed to getSignatures: %w", err)
	}

	for _, signatureToSave := range signaturesToSave {
		usernameFound := false
		for i, s := range signatures {
			if s.Username == signatureToSave.Username {
				signatures[i] = signatureToSave
				usernameFound = true
				break
			}
		}
		if !usernameFound {
			signatures = append(signatures, signatureToSave)
		}
	}

	signaturesJSON, err := json.Marshal(signatures)
	if err != nil {
		return fmt.Errorf("failed to marshal signatures: %w", err)
	}

	key := state.MakeCompositeKeyString(SignaturesKeyPrefix, signaturesToSave[0].CeremonyID)

	if err := r.state.Set(key, signaturesJSON); err != nil {
		return fmt.Errorf("failed to save signatures: %w", err)
	}

	return nil
}
