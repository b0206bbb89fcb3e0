package signature

import (
	"bytes"
	"fmt"

	"github.com/frostline/fc4tx/node/api/dto"
	"github.com/frostline/fc4tx/node/repositories/signature"
	"github.com/frostline/fc4tx/node/types"
)

type SignatureService interface {
	GetSignatures(dto *dto.CeremonyIdDTO) ([]types.ReconstructedSignature, error)
	SaveSignatures(signatures []types.ReconstructedSignature) error
	CheckSignaturesEqual(dto *dto.CeremonyIdDTO) error
}

type BaseSignatureService struct {
	signatureRepo signature.SignatureRepo
}

func NewSignatureService(signatureRepo signature.SignatureRepo) *BaseSignatureService {
	return &BaseSignatureService{signatureRepo}
}

// GetSignatures returns the reconstructed signatures that participants
// reported for the given ceremony.
func (s *BaseSignatureService) GetSignatures(dto *dto.CeremonyIdDTO) ([]types.ReconstructedSignature, error) {
	return s.signatureRepo.GetSignatures(dto.CeremonyID)
}

func (s *BaseSignatureService) SaveSignatures(signatures []types.ReconstructedSignature) error {
	return s.signatureRepo.SaveSignatures(signatures)
}

// CheckSignaturesEqual ensures every participant reconstructed the same
// signature.
func (s *BaseSignatureService) CheckSignaturesEqual(dto *dto.CeremonyIdDTO) error {
	signatures, err := s.signatureRepo.GetSignatures(dto.CeremonyID)
	if err != nil {
		return fmt.Errorf("failed to get signatures: %w", err)
	}

	if len(signatures) == 0 {
		return fmt.Errorf("no signatures found for ceremony %s", dto.CeremonyID)
	}

	for _, sig := range signatures {
		if !bytes.Equal(sig.Signature, signatures[0].Signature) {
			return fmt.Errorf("reconstructed signatures from users %s and %s are not equal",
				sig.Username, signatures[0].Username)
		}
	}

	return nil
}
