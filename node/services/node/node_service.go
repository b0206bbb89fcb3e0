package node

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/fsm/state_machines"
	scf "github.com/frostline/fc4tx/fsm/state_machines/signing_ceremony_fsm"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/fsm/types/responses"
	"github.com/frostline/fc4tx/node/api/dto"
	"github.com/frostline/fc4tx/node/config"
	"github.com/frostline/fc4tx/node/modules/keystore"
	"github.com/frostline/fc4tx/node/modules/logger"
	"github.com/frostline/fc4tx/node/modules/state"
	"github.com/frostline/fc4tx/node/services"
	ceremony_service "github.com/frostline/fc4tx/node/services/ceremony"
	operation_service "github.com/frostline/fc4tx/node/services/operation"
	signature_service "github.com/frostline/fc4tx/node/services/signature"
	"github.com/frostline/fc4tx/node/types"
	"github.com/frostline/fc4tx/storage"
)

const (
	pollingPeriod = time.Second
)

type NodeService interface {
	Poll() error
	GetLogger() logger.Logger
	GetPubKey() ed25519.PublicKey
	GetUsername() string

	SendMessage(dto *dto.MessageDTO) error
	ProcessMessage(message storage.Message) error
	ProcessOperation(dto *dto.OperationDTO) error
	GetOperations() (map[string]*types.Operation, error)
	GetOperation(dto *dto.OperationIdDTO) (*types.Operation, error)

	StartCeremony(dto *dto.StartCeremonyDTO) error
	PostCommitment(dto *dto.PostCommitmentDTO) error
	BuildSigningPackage(dto *dto.BuildSigningPackageDTO) (string, error)
	PostPartialSignature(dto *dto.PostPartialSignatureDTO) error
	GetSignature(dto *dto.CeremonyIdDTO) (string, error)

	SaveOffset(dto *dto.StateOffsetDTO) error
	GetStateOffset() (uint64, error)
	SetSkipCommKeysVerification(bool)
}

type BaseNodeService struct {
	sync.Mutex
	ctx                      context.Context
	userName                 string
	pubKey                   ed25519.PublicKey
	stateMu                  sync.RWMutex
	state                    state.State
	storage                  storage.Storage
	keyStore                 keystore.KeyStore
	Logger                   logger.Logger
	ceremonyService          ceremony_service.CeremonyService
	opService                operation_service.OperationService
	sigService               signature_service.SignatureService
	SkipCommKeysVerification bool
}

func NewNode(ctx context.Context, config *config.Config, sp *services.ServiceProvider) (NodeService, error) {
	keyPair, err := sp.GetKeyStore().LoadKeys(config.Username, "")
	if err != nil {
		return nil, fmt.Errorf("failed to LoadKeys: %w", err)
	}

	return &BaseNodeService{
		ctx:             ctx,
		userName:        config.Username,
		pubKey:          keyPair.Pub,
		state:           sp.GetState(),
		storage:         sp.GetStorage(),
		keyStore:        sp.GetKeyStore(),
		Logger:          sp.GetLogger(),
		ceremonyService: sp.GetCeremonyService(),
		opService:       sp.GetOperationService(),
		sigService:      sp.GetSignatureService(),
	}, nil
}

func (s *BaseNodeService) GetLogger() logger.Logger {
	return s.Logger
}

func (s *BaseNodeService) SetSkipCommKeysVerification(b bool) {
	s.Lock()
	defer s.Unlock()

	s.SkipCommKeysVerification = b
}

func (s *BaseNodeService) GetSkipCommKeysVerification() bool {
	s.Lock()
	defer s.Unlock()

	return s.SkipCommKeysVerification
}

// Poll is a main node loop, which gets new messages from an append-only log and processes them
func (s *BaseNodeService) Poll() error {
	tk := time.NewTicker(pollingPeriod)
	for {
		select {
		case <-tk.C:
			offset, err := s.getState().LoadOffset()
			if err != nil {
				return fmt.Errorf("failed to LoadOffset: %w", err)
			}

			messages, err := s.storage.GetMessages(offset)
			if err != nil {
				return fmt.Errorf("failed to GetMessages: %w", err)
			}

			for _, message := range messages {
				s.Logger.Log("Handling message with offset %d, type %s", message.Offset, message.Event)
				if message.RecipientAddr == "" || message.RecipientAddr == s.GetUsername() {
					if err := s.ProcessMessage(message); err != nil {
						s.Logger.Log("Failed to process message with offset %d: %v", message.Offset, err)
					} else {
						s.Logger.Log("Successfully processed message with offset %d, type %s",
							message.Offset, message.Event)
					}
				} else {
					s.Logger.Log("Message with offset %d, type %s is not intended for us, skip it",
						message.Offset, message.Event)
				}
				if err := s.getState().SaveOffset(message.Offset + 1); err != nil {
					s.Logger.Log("Failed to save offset: %v", err)
				}
			}
		case <-s.ctx.Done():
			log.Println("Context closed, stop polling...")
			return nil
		}
	}
}

func (s *BaseNodeService) getState() state.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *BaseNodeService) GetPubKey() ed25519.PublicKey {
	return s.pubKey
}

func (s *BaseNodeService) GetUsername() string {
	return s.userName
}

func (s *BaseNodeService) GetStateOffset() (uint64, error) {
	return s.getState().LoadOffset()
}

func (s *BaseNodeService) SaveOffset(dto *dto.StateOffsetDTO) error {
	if err := s.getState().SaveOffset(dto.Offset); err != nil {
		return fmt.Errorf("failed to SaveOffset: %w", err)
	}
	return nil
}

func (s *BaseNodeService) SendMessage(dto *dto.MessageDTO) error {
	if err := s.storage.Send(storage.Message{
		ID:            dto.ID,
		CeremonyID:    dto.CeremonyID,
		Offset:        dto.Offset,
		Event:         dto.Event,
		Data:          dto.Data,
		Signature:     dto.Signature,
		SenderAddr:    dto.SenderAddr,
		RecipientAddr: dto.RecipientAddr,
	}); err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	return nil
}

func (s *BaseNodeService) GetOperations() (map[string]*types.Operation, error) {
	return s.opService.GetOperations()
}

func (s *BaseNodeService) GetOperation(dto *dto.OperationIdDTO) (*types.Operation, error) {
	operation, err := s.opService.GetOperationByID(dto.OperationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	return operation, nil
}

// ProcessOperation handles an operation which was processed by the participant machine.
// It checks that the operation exists in an operation pool, signs the result messages,
// sends them to an append-only log and deletes the operation from the pool.
func (s *BaseNodeService) ProcessOperation(dto *dto.OperationDTO) error {
	operation := &types.Operation{
		ID:         dto.ID,
		Type:       types.OperationType(dto.Type),
		Payload:    dto.Payload,
		ResultMsgs: dto.ResultMsgs,
		CreatedAt:  dto.CreatedAt,
		CeremonyID: dto.CeremonyID,
		To:         dto.To,
		Event:      dto.Event,
	}

	return s.executeOperation(operation)
}

func (s *BaseNodeService) executeOperation(operation *types.Operation) error {
	if operation.Event.IsEmpty() {
		return errors.New("operation is request operation, provide result operation instead")
	}

	storedOperation, err := s.opService.GetOperationByID(operation.ID)
	if err != nil {
		return fmt.Errorf("failed to find matching operation: %w", err)
	}

	if err := storedOperation.Equal(operation); err != nil {
		return fmt.Errorf("processed operation does not match stored operation: %w", err)
	}

	// there are no result messages for OperationProcessed event type
	if operation.Event != types.OperationProcessed {
		for i, message := range operation.ResultMsgs {
			message.SenderAddr = s.GetUsername()

			sig, err := s.signMessage(message.Bytes())
			if err != nil {
				return fmt.Errorf("failed to sign a message: %w", err)
			}
			message.Signature = sig

			operation.ResultMsgs[i] = message
		}
		if err := s.storage.Send(operation.ResultMsgs...); err != nil {
			return fmt.Errorf("failed to post messages: %w", err)
		}
	}

	if err := s.opService.DeleteOperation(operation); err != nil {
		return fmt.Errorf("failed to DeleteOperation: %w", err)
	}

	return nil
}

func (s *BaseNodeService) signMessage(message []byte) ([]byte, error) {
	keyPair, err := s.keyStore.LoadKeys(s.userName, "")
	if err != nil {
		return nil, fmt.Errorf("failed to LoadKeys: %w", err)
	}

	return ed25519.Sign(keyPair.Priv, message), nil
}

func (s *BaseNodeService) verifyMessage(fsmInstance *state_machines.FSMInstance, message storage.Message) error {
	if s.GetSkipCommKeysVerification() {
		return nil
	}

	// The quorum does not exist before the start event is applied, the
	// start message itself cannot be checked against it.
	if fsm.Event(message.Event) == scf.EventCeremonyStart {
		return nil
	}

	senderPubKey, err := fsmInstance.GetPubKeyByUsername(message.SenderAddr)
	if err != nil {
		return fmt.Errorf("failed to GetPubKeyByUsername: %w", err)
	}

	if !ed25519.Verify(senderPubKey, message.Bytes(), message.Signature) {
		return errors.New("signature is corrupt")
	}

	return nil
}

func (s *BaseNodeService) buildMessage(ceremonyID string, event fsm.Event, data []byte) (*storage.Message, error) {
	message := storage.Message{
		ID:         uuid.New().String(),
		CeremonyID: ceremonyID,
		Event:      string(event),
		Data:       data,
		SenderAddr: s.GetUsername(),
	}
	signature, err := s.signMessage(message.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	message.Signature = signature
	return &message, nil
}

// StartCeremony announces a new signing ceremony to every participant
// through the append-only log.
func (s *BaseNodeService) StartCeremony(dtoMsg *dto.StartCeremonyDTO) error {
	participants := make([]*requests.CeremonyParticipantEntry, 0, len(dtoMsg.Participants))
	for _, participant := range dtoMsg.Participants {
		participants = append(participants, &requests.CeremonyParticipantEntry{
			Username: participant.Username,
			PubKey:   participant.PubKey,
		})
	}

	request := requests.CeremonyStartRequest{
		CeremonyID:      dtoMsg.CeremonyID,
		UnsignedMessage: dtoMsg.UnsignedMessage,
		GroupKey:        dtoMsg.GroupKey,
		Threshold:       dtoMsg.Threshold,
		Participants:    participants,
		CreatedAt:       time.Now(),
	}

	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid ceremony start request: %w", err)
	}

	requestBz, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal CeremonyStartRequest: %w", err)
	}

	message, err := s.buildMessage(dtoMsg.CeremonyID, scf.EventCeremonyStart, requestBz)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	return s.storage.Send(*message)
}

// PostCommitment publishes this node's nonce commitment for the
// ceremony's commitment collection round.
func (s *BaseNodeService) PostCommitment(dtoMsg *dto.PostCommitmentDTO) error {
	request := requests.CeremonyCommitmentConfirmationRequest{
		CeremonyID:        dtoMsg.CeremonyID,
		ParticipantID:     s.GetUsername(),
		HidingCommitment:  dtoMsg.HidingCommitment,
		BindingCommitment: dtoMsg.BindingCommitment,
		CreatedAt:         time.Now(),
	}

	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid commitment request: %w", err)
	}

	requestBz, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal CeremonyCommitmentConfirmationRequest: %w", err)
	}

	message, err := s.buildMessage(dtoMsg.CeremonyID, scf.EventCeremonyCommitmentReceived, requestBz)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	return s.storage.Send(*message)
}

// BuildSigningPackage assembles a signing package. With a ceremony id
// the commitments come from the machine, which must have collected a
// signing coalition already. Without one the request itself carries the
// unsigned message and the commitment set, and no ceremony state is
// touched.
func (s *BaseNodeService) BuildSigningPackage(dtoMsg *dto.BuildSigningPackageDTO) (string, error) {
	if dtoMsg.CeremonyID == "" {
		return s.ceremonyService.BuildDirectSigningPackage(dtoMsg.UnsignedTransaction, dtoMsg.Commitments)
	}

	fsmInstance, err := s.ceremonyService.GetFSMInstance(dtoMsg.CeremonyID, false)
	if err != nil {
		return "", fmt.Errorf("failed to get FSM instance: %w", err)
	}

	if fsmInstance.State() != scf.StateCeremonyCommitmentsCollected {
		return "", fmt.Errorf("required FSM state is %s, but have %s",
			scf.StateCeremonyCommitmentsCollected, fsmInstance.State())
	}

	confirmation := fsmInstance.FSMDump().Payload.CeremonyPayload
	collected := &responses.CeremonyCommitmentsCollectedResponse{
		CeremonyID:      confirmation.CeremonyID,
		UnsignedMessage: confirmation.UnsignedMessage,
	}
	for _, identifier := range confirmation.Quorum.GetOrderedIdentifiers() {
		participant := confirmation.Quorum[identifier]
		if participant.HidingCommitment == "" {
			// Quorum member outside the collected coalition.
			continue
		}
		collected.Commitments = append(collected.Commitments, &responses.CeremonyCommitmentEntry{
			ParticipantID:     identifier,
			HidingCommitment:  participant.HidingCommitment,
			BindingCommitment: participant.BindingCommitment,
		})
	}

	signingPackage, err := s.ceremonyService.BuildSigningPackage(collected, confirmation.Threshold, len(confirmation.Quorum))
	if err != nil {
		return "", err
	}

	if err := s.announceSigningPackage(dtoMsg.CeremonyID, signingPackage); err != nil {
		return "", err
	}

	return signingPackage, nil
}

func (s *BaseNodeService) announceSigningPackage(ceremonyID, signingPackage string) error {
	request := requests.CeremonyPackageBuiltRequest{
		CeremonyID:     ceremonyID,
		SigningPackage: signingPackage,
		CreatedAt:      time.Now(),
	}

	requestBz, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal CeremonyPackageBuiltRequest: %w", err)
	}

	message, err := s.buildMessage(ceremonyID, scf.EventCeremonyPackageBuilt, requestBz)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	if err := s.storage.Send(*message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// PostPartialSignature publishes this node's partial signature over the
// distributed signing package.
func (s *BaseNodeService) PostPartialSignature(dtoMsg *dto.PostPartialSignatureDTO) error {
	request := requests.CeremonyPartialSignatureRequest{
		CeremonyID:       dtoMsg.CeremonyID,
		ParticipantID:    s.GetUsername(),
		PartialSignature: dtoMsg.PartialSignature,
		CreatedAt:        time.Now(),
	}

	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid partial signature request: %w", err)
	}

	requestBz, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal CeremonyPartialSignatureRequest: %w", err)
	}

	message, err := s.buildMessage(dtoMsg.CeremonyID, scf.EventCeremonyPartialSignatureReceived, requestBz)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	return s.storage.Send(*message)
}

func (s *BaseNodeService) GetSignature(dtoMsg *dto.CeremonyIdDTO) (string, error) {
	fsmInstance, err := s.ceremonyService.GetFSMInstance(dtoMsg.CeremonyID, false)
	if err != nil {
		return "", fmt.Errorf("failed to get FSM instance: %w", err)
	}

	confirmation := fsmInstance.FSMDump().Payload.CeremonyPayload
	if confirmation == nil || confirmation.SignatureHex == "" {
		return "", fmt.Errorf("signature for ceremony %s is not reconstructed yet", dtoMsg.CeremonyID)
	}

	return confirmation.SignatureHex, nil
}

func (s *BaseNodeService) ProcessMessage(message storage.Message) error {
	operation, err := s.processMessage(message)
	if err != nil {
		return err
	}

	if operation != nil {
		if err := s.opService.PutOperation(operation); err != nil {
			return fmt.Errorf("failed to PutOperation: %w", err)
		}
	}
	return nil
}

func (s *BaseNodeService) processMessage(message storage.Message) (*types.Operation, error) {
	event := fsm.Event(message.Event)

	fsmInstance, err := s.ceremonyService.GetFSMInstance(message.CeremonyID, event == scf.EventCeremonyStart)
	if err != nil {
		return nil, fmt.Errorf("failed to getFSMInstance: %w", err)
	}

	if err := s.verifyMessage(fsmInstance, message); err != nil {
		return nil, fmt.Errorf("failed to verifyMessage %+v: %w", message, err)
	}

	request, err := unmarshalRequest(event, message.Data)
	if err != nil {
		return nil, err
	}

	resp, dump, err := fsmInstance.Do(event, request)
	if err != nil {
		return nil, fmt.Errorf("failed to Do operation in FSM: %w", err)
	}

	s.Logger.Log("message %s done successfully from %s", message.Event, message.SenderAddr)

	if err := s.ceremonyService.SaveFSM(message.CeremonyID, dump); err != nil {
		return nil, fmt.Errorf("failed to SaveFSM: %w", err)
	}

	return s.reactToState(fsmInstance, message, resp)
}

func unmarshalRequest(event fsm.Event, data []byte) (interface{}, error) {
	var request interface{}

	switch event {
	case scf.EventCeremonyStart:
		var req requests.CeremonyStartRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal CeremonyStartRequest: %w", err)
		}
		request = req
	case scf.EventCeremonyCommitmentReceived:
		var req requests.CeremonyCommitmentConfirmationRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal CeremonyCommitmentConfirmationRequest: %w", err)
		}
		request = req
	case scf.EventCeremonyPackageBuilt:
		var req requests.CeremonyPackageBuiltRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal CeremonyPackageBuiltRequest: %w", err)
		}
		request = req
	case scf.EventCeremonyPartialSignatureReceived:
		var req requests.CeremonyPartialSignatureRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal CeremonyPartialSignatureRequest: %w", err)
		}
		request = req
	case scf.EventCeremonySignatureFinalized:
		var req requests.CeremonySignatureFinalizedRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal CeremonySignatureFinalizedRequest: %w", err)
		}
		request = req
	case scf.EventCeremonyCommitmentError, scf.EventCeremonyPartialSignatureError:
		var req requests.CeremonyConfirmationErrorRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal CeremonyConfirmationErrorRequest: %w", err)
		}
		request = req
	default:
		return nil, fmt.Errorf("unknown event type %s", event)
	}

	return request, nil
}

// reactToState turns machine responses into follow-up work: operations
// for the participant machine and coordinator announcements for the
// append-only log.
func (s *BaseNodeService) reactToState(
	fsmInstance *state_machines.FSMInstance,
	message storage.Message,
	resp *fsm.Response,
) (*types.Operation, error) {
	switch data := resp.Data.(type) {
	case *responses.CeremonyStartResponse:
		// Ask the participant machine for a nonce commitment.
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal CeremonyStartResponse: %w", err)
		}
		return createOperation(types.CommitmentAwait, message.CeremonyID, scf.EventCeremonyCommitmentReceived, payload), nil

	case *responses.CeremonyCommitmentsCollectedResponse:
		// A signing coalition is complete. The package is deterministic,
		// so each node assembles it locally; duplicate announcements are
		// rejected by the machine on arrival.
		confirmation := fsmInstance.FSMDump().Payload.CeremonyPayload
		signingPackage, err := s.ceremonyService.BuildSigningPackage(data, confirmation.Threshold, len(confirmation.Quorum))
		if err != nil {
			return nil, fmt.Errorf("failed to build signing package: %w", err)
		}

		if err := s.announceSigningPackage(message.CeremonyID, signingPackage); err != nil {
			return nil, err
		}
		return nil, nil

	case *responses.CeremonyPackageBuiltResponse:
		// Ask the participant machine for a partial signature.
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal CeremonyPackageBuiltResponse: %w", err)
		}
		return createOperation(types.PartialSignatureAwait, message.CeremonyID, scf.EventCeremonyPartialSignatureReceived, payload), nil

	case *responses.CeremonyPartialSignaturesCollectedResponse:
		confirmation := fsmInstance.FSMDump().Payload.CeremonyPayload
		signatureHex, err := s.ceremonyService.ReconstructSignature(confirmation, data.PartialSignatures)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct signature: %w", err)
		}

		request := requests.CeremonySignatureFinalizedRequest{
			CeremonyID: message.CeremonyID,
			Signature:  signatureHex,
			CreatedAt:  time.Now(),
		}
		requestBz, err := json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal CeremonySignatureFinalizedRequest: %w", err)
		}

		finalizeMessage, err := s.buildMessage(message.CeremonyID, scf.EventCeremonySignatureFinalized, requestBz)
		if err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}

		if err := s.storage.Send(*finalizeMessage); err != nil {
			return nil, fmt.Errorf("failed to send message: %w", err)
		}
		return nil, nil

	case *responses.CeremonySignatureReconstructedResponse:
		signatureBz, err := hex.DecodeString(data.Signature)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signature hex: %w", err)
		}

		unsignedMessage, err := hex.DecodeString(fsmInstance.FSMDump().Payload.CeremonyPayload.UnsignedMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to decode unsigned message hex: %w", err)
		}

		if err := s.sigService.SaveSignatures([]types.ReconstructedSignature{{
			CeremonyID:      data.CeremonyID,
			UnsignedMessage: unsignedMessage,
			Signature:       signatureBz,
			Username:        message.SenderAddr,
		}}); err != nil {
			return nil, fmt.Errorf("failed to save signature: %w", err)
		}
		return nil, nil
	}

	return nil, nil
}

func createOperation(opType types.OperationType, ceremonyID string, event fsm.Event, payload []byte) *types.Operation {
	return &types.Operation{
		ID:         uuid.New().String(),
		Type:       opType,
		Payload:    payload,
		CreatedAt:  time.Now(),
		CeremonyID: ceremonyID,
		Event:      event,
	}
}
