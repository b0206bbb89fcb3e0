package ceremony

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/frostline/fc4tx/ceremony"
	"github.com/frostline/fc4tx/frost"
	"github.com/frostline/fc4tx/fsm/state_machines"
	"github.com/frostline/fc4tx/fsm/state_machines/fsm_internal"
	"github.com/frostline/fc4tx/fsm/types/responses"
	"github.com/frostline/fc4tx/node/api/dto"
	"github.com/frostline/fc4tx/node/modules/state"
	"github.com/frostline/fc4tx/storage"
	"github.com/frostline/fc4tx/storage/kafka_storage"
)

const (
	CeremoniesStateKey = "ceremonies"
)

// CeremonyService keeps the signing ceremony machines and runs the
// cryptographic steps that belong to the coordinator: assembling the
// signing package from collected commitments and reconstructing the
// final signature from partial ones.
type CeremonyService interface {
	GetFSMInstance(ceremonyID string, createIfMissing bool) (*state_machines.FSMInstance, error)
	GetFSMDump(dto *dto.CeremonyIdDTO) (*state_machines.FSMDump, error)
	GetFSMList() (map[string]string, error)
	SaveFSM(ceremonyID string, dump []byte) error
	ResetFSMState(dto *dto.ResetStateDTO) (string, error)

	BuildSigningPackage(collected *responses.CeremonyCommitmentsCollectedResponse, threshold, quorumSize int) (string, error)
	BuildDirectSigningPackage(unsignedMessage string, entries []ceremony.CommitmentEntry) (string, error)
	ReconstructSignature(confirmation *internal.CeremonyConfirmation, partialSignatures map[string][]byte) (string, error)
}

type BaseCeremonyService struct {
	state    state.State
	storage  storage.Storage
	stateKey string
}

func NewCeremonyService(state state.State, storage storage.Storage, stateNamespace string) CeremonyService {
	return &BaseCeremonyService{
		state:    state,
		storage:  storage,
		stateKey: fmt.Sprintf("%s_%s", stateNamespace, CeremoniesStateKey),
	}
}

func (s *BaseCeremonyService) getStateKey() string {
	return s.stateKey
}

func (s *BaseCeremonyService) getAllFSMData() (fsmInstances map[string][]byte, err error) {
	bz, err := s.state.Get(s.getStateKey())
	if err != nil {
		return nil, fmt.Errorf("failed to get FSM instances: %w", err)
	}

	fsmInstances = map[string][]byte{}
	if len(bz) > 0 {
		if err := json.Unmarshal(bz, &fsmInstances); err != nil {
			return nil, fmt.Errorf("failed to unmarshal FSM instances: %w", err)
		}
	}
	return fsmInstances, nil
}

func (s *BaseCeremonyService) loadFSM(ceremonyID string) (*state_machines.FSMInstance, bool, error) {
	fsmInstances, err := s.getAllFSMData()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get fsm instances: %w", err)
	}

	fsmInstanceBz, ok := fsmInstances[ceremonyID]
	if !ok {
		return nil, false, nil
	}

	fsmInstance, err := state_machines.FromDump(fsmInstanceBz)
	if err != nil {
		return nil, false, fmt.Errorf("failed to restore FSM instance from dump: %w", err)
	}

	return fsmInstance, ok, nil
}

func (s *BaseCeremonyService) SaveFSM(ceremonyID string, dump []byte) error {
	fsmInstances, err := s.getAllFSMData()
	if err != nil {
		return fmt.Errorf("failed to get fsm instances: %w", err)
	}

	fsmInstances[ceremonyID] = dump

	fsmInstancesBz, err := json.Marshal(fsmInstances)
	if err != nil {
		return fmt.Errorf("failed to marshal FSM instances: %w", err)
	}

	if err := s.state.Set(s.getStateKey(), fsmInstancesBz); err != nil {
		return fmt.Errorf("failed to save fsm state: %w", err)
	}

	return nil
}

// GetFSMInstance returns the machine for a ceremony.
func (s *BaseCeremonyService) GetFSMInstance(ceremonyID string, createIfMissing bool) (*state_machines.FSMInstance, error) {
	fsmInstance, ok, err := s.loadFSM(ceremonyID)
	if err != nil {
		return nil, fmt.Errorf("failed to loadFSM: %w", err)
	}

	if !ok {
		if !createIfMissing {
			return nil, fmt.Errorf("no ceremony with ID %s", ceremonyID)
		}

		fsmInstance, err = state_machines.Create(ceremonyID)
		if err != nil {
			return nil, fmt.Errorf("failed to create FSM instance: %w", err)
		}

		bz, err := fsmInstance.FSMDump().Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to Dump FSM instance: %w", err)
		}

		if err := s.SaveFSM(ceremonyID, bz); err != nil {
			return nil, fmt.Errorf("failed to SaveFSM: %w", err)
		}
	}

	return fsmInstance, nil
}

func (s *BaseCeremonyService) GetFSMDump(dto *dto.CeremonyIdDTO) (*state_machines.FSMDump, error) {
	fsmInstance, err := s.GetFSMInstance(dto.CeremonyID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get FSM instance for ceremony ID %s: %w", dto.CeremonyID, err)
	}
	return fsmInstance.FSMDump(), nil
}

func (s *BaseCeremonyService) GetFSMList() (map[string]string, error) {
	fsmInstancesBz, err := s.getAllFSMData()
	if err != nil {
		return nil, fmt.Errorf("failed to get fsm instances: %w", err)
	}

	fsmInstancesStates := make(map[string]string, len(fsmInstancesBz))
	for ceremonyID, bz := range fsmInstancesBz {
		fsmInstance, err := state_machines.FromDump(bz)
		if err != nil {
			return nil, fmt.Errorf("failed to restore FSM instance from dump: %w", err)
		}
		fsmInstancesStates[ceremonyID] = fsmInstance.State().String()
	}

	return fsmInstancesStates, nil
}

func (s *BaseCeremonyService) ResetFSMState(dto *dto.ResetStateDTO) (string, error) {
	if err := s.storage.IgnoreMessages(dto.Messages, dto.UseOffset); err != nil {
		return "", fmt.Errorf("failed to ignore messages while resetting state: %w", err)
	}

	switch stg := s.storage.(type) {
	case *kafka_storage.KafkaStorage:
		if err := stg.SetConsumerGroup(dto.KafkaConsumerGroup); err != nil {
			return "", fmt.Errorf("failed to set consumer group while reseting state: %w", err)
		}
	}

	newstatepath, err := s.state.Reset(dto.NewStateDBDSN)
	if err != nil {
		return "", fmt.Errorf("failed to create new state from old: %w", err)
	}

	return newstatepath, err
}

// BuildSigningPackage canonicalizes the collected commitments and binds
// them to the unsigned message. The result is the hex-encoded package
// every signer partially signs.
func (s *BaseCeremonyService) BuildSigningPackage(collected *responses.CeremonyCommitmentsCollectedResponse, threshold, quorumSize int) (string, error) {
	f, err := frost.New(threshold, quorumSize)
	if err != nil {
		return "", fmt.Errorf("failed to init frost instance: %w", err)
	}

	entries := make([]ceremony.CommitmentEntry, 0, len(collected.Commitments))
	for _, commitment := range collected.Commitments {
		entries = append(entries, ceremony.CommitmentEntry{
			Identifier: commitment.ParticipantID,
			Commitment: ceremony.Commitment{
				Hiding:  commitment.HidingCommitment,
				Binding: commitment.BindingCommitment,
			},
		})
	}

	return ceremony.NewBuilder(f).Build(collected.UnsignedMessage, entries)
}

// BuildDirectSigningPackage serves the stateless request shape: the
// caller supplies the unsigned message and the full signing coalition,
// so the commitment set itself defines the group parameters.
func (s *BaseCeremonyService) BuildDirectSigningPackage(unsignedMessage string, entries []ceremony.CommitmentEntry) (string, error) {
	coalition := len(entries)
	if coalition < 2 {
		coalition = 2
	}

	f, err := frost.New(coalition, coalition)
	if err != nil {
		return "", fmt.Errorf("failed to init frost instance: %w", err)
	}

	return ceremony.NewBuilder(f).Build(unsignedMessage, entries)
}

// ReconstructSignature aggregates the collected partial signatures into
// the final Schnorr signature and verifies it against the group key.
func (s *BaseCeremonyService) ReconstructSignature(confirmation *internal.CeremonyConfirmation, partialSignatures map[string][]byte) (string, error) {
	f, err := frost.New(confirmation.Threshold, len(confirmation.Quorum))
	if err != nil {
		return "", fmt.Errorf("failed to init frost instance: %w", err)
	}

	pkgBz, err := hex.DecodeString(confirmation.SigningPackage)
	if err != nil {
		return "", fmt.Errorf("failed to decode signing package hex: %w", err)
	}

	pkg, err := f.DecodeSigningPackage(pkgBz)
	if err != nil {
		return "", fmt.Errorf("failed to decode signing package: %w", err)
	}

	// The signing coalition is the set bound into the package, which may
	// be smaller than the ceremony quorum.
	partials := make([]*frost.PartialSignature, 0, len(pkg.Commitments))
	for _, commitment := range pkg.Commitments {
		identifier := commitment.Name
		bz, ok := partialSignatures[identifier]
		if !ok {
			return "", fmt.Errorf("no partial signature from participant %s", identifier)
		}

		var partial frost.PartialSignature
		if err := json.Unmarshal(bz, &partial); err != nil {
			return "", fmt.Errorf("failed to unmarshal partial signature from %s: %w", identifier, err)
		}
		if partial.Name != identifier {
			return "", fmt.Errorf("partial signature identifier mismatch: got %s, want %s", partial.Name, identifier)
		}

		partials = append(partials, &partial)
	}

	sig, err := f.Aggregate(pkg, partials)
	if err != nil {
		return "", fmt.Errorf("failed to aggregate partial signatures: %w", err)
	}

	groupKeyBz, err := hex.DecodeString(confirmation.GroupKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode group key hex: %w", err)
	}
	groupKey := frost.Suite().Point()
	if err := groupKey.UnmarshalBinary(groupKeyBz); err != nil {
		return "", fmt.Errorf("failed to unmarshal group key: %w", err)
	}

	if err := f.Verify(pkg.Message, sig, groupKey); err != nil {
		return "", fmt.Errorf("reconstructed signature does not verify: %w", err)
	}

	sigBz, err := json.Marshal(sig)
	if err != nil {
		return "", fmt.Errorf("failed to marshal signature: %w", err)
	}

	return hex.EncodeToString(sigBz), nil
}
