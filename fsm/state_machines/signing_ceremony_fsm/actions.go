package signing_ceremony_fsm

import (
	"errors"
	"fmt"

	"github.com/frostline/fc4tx/fsm/config"
	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/fsm/state_machines/fsm_internal"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/fsm/types/responses"
)

func (m *SigningCeremonyFSM) actionStartCeremony(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {CeremonyStartRequest}")
		return
	}

	request, ok := args[0].(requests.CeremonyStartRequest)
	if !ok {
		err = errors.New("cannot cast {arg0} to type {CeremonyStartRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	quorum := make(internal.CeremonyQuorum, len(request.Participants))
	for _, participant := range request.Participants {
		if _, ok := quorum[participant.Username]; ok {
			err = fmt.Errorf("duplicate participant \"%s\" in ceremony roster", participant.Username)
			return
		}
		quorum[participant.Username] = &internal.CeremonyParticipant{
			Username:  participant.Username,
			PubKey:    participant.PubKey,
			Status:    internal.CommitmentAwaitConfirmation,
			UpdatedAt: request.CreatedAt,
		}
	}

	m.payload.CeremonyPayload = &internal.CeremonyConfirmation{
		CeremonyID:      request.CeremonyID,
		Threshold:       request.Threshold,
		UnsignedMessage: request.UnsignedMessage,
		GroupKey:        request.GroupKey,
		Quorum:          quorum,
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.CreatedAt,
		ExpiresAt:       request.CreatedAt.Add(config.CommitmentConfirmationDeadline),
	}

	response = &responses.CeremonyStartResponse{
		CeremonyID:      request.CeremonyID,
		UnsignedMessage: request.UnsignedMessage,
		Threshold:       request.Threshold,
		Participants:    quorum.GetOrderedIdentifiers(),
	}

	return
}

func (m *SigningCeremonyFSM) actionCommitmentReceived(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {CeremonyCommitmentConfirmationRequest}")
		return
	}

	request, ok := args[0].(requests.CeremonyCommitmentConfirmationRequest)
	if !ok {
		err = errors.New("cannot cast {arg0} to type {CeremonyCommitmentConfirmationRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	if !m.payload.QuorumExists(request.ParticipantID) {
		err = fmt.Errorf("participant \"%s\" is not a member of the ceremony quorum", request.ParticipantID)
		return
	}

	participant := m.payload.QuorumGet(request.ParticipantID)

	if participant.Status != internal.CommitmentAwaitConfirmation {
		err = fmt.Errorf(
			"participant \"%s\" already submitted a commitment, status \"%s\"",
			request.ParticipantID,
			participant.Status,
		)
		return
	}

	participant.HidingCommitment = request.HidingCommitment
	participant.BindingCommitment = request.BindingCommitment
	participant.Status = internal.CommitmentConfirmed
	participant.UpdatedAt = request.CreatedAt

	m.payload.CeremonyPayload.UpdatedAt = request.CreatedAt

	return
}

func (m *SigningCeremonyFSM) actionValidateCommitments(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if m.payload.CeremonyPayload.IsExpired() {
		outEvent = eventCeremonyCommitmentsCancelByTimeoutInternal
		return
	}

	unconfirmedParticipants := m.payload.QuorumCount()
	for _, identifier := range m.payload.CeremonyPayload.Quorum.GetOrderedIdentifiers() {
		if m.payload.QuorumGet(identifier).Status == internal.CommitmentConfirmed {
			unconfirmedParticipants--
		}
	}

	// A signing coalition of threshold size is enough; the commitment
	// round tolerates up to n - t silent participants.
	if unconfirmedParticipants > m.payload.QuorumCount()-m.payload.GetThreshold() {
		return
	}

	commitments := make([]*responses.CeremonyCommitmentEntry, 0, m.payload.QuorumCount())
	for _, identifier := range m.payload.CeremonyPayload.Quorum.GetOrderedIdentifiers() {
		participant := m.payload.QuorumGet(identifier)
		if participant.Status != internal.CommitmentConfirmed {
			continue
		}
		participant.Status = internal.PartialSignatureAwaitConfirmation
		commitments = append(commitments, &responses.CeremonyCommitmentEntry{
			ParticipantID:     identifier,
			HidingCommitment:  participant.HidingCommitment,
			BindingCommitment: participant.BindingCommitment,
		})
	}

	outEvent = eventCeremonyCommitmentsCollectedInternal
	response = &responses.CeremonyCommitmentsCollectedResponse{
		CeremonyID:      m.payload.CeremonyPayload.CeremonyID,
		UnsignedMessage: m.payload.CeremonyPayload.UnsignedMessage,
		Commitments:     commitments,
	}

	return
}

func (m *SigningCeremonyFSM) actionPackageBuilt(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {CeremonyPackageBuiltRequest}")
		return
	}

	request, ok := args[0].(requests.CeremonyPackageBuiltRequest)
	if !ok {
		err = errors.New("cannot cast {arg0} to type {CeremonyPackageBuiltRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	m.payload.CeremonyPayload.SigningPackage = request.SigningPackage
	m.payload.CeremonyPayload.UpdatedAt = request.CreatedAt
	m.payload.CeremonyPayload.ExpiresAt = request.CreatedAt.Add(config.PartialSignatureConfirmationDeadline)

	response = &responses.CeremonyPackageBuiltResponse{
		CeremonyID:     m.payload.CeremonyPayload.CeremonyID,
		SigningPackage: request.SigningPackage,
		Threshold:      m.payload.CeremonyPayload.Threshold,
		Participants:   m.payload.CeremonyPayload.Quorum.GetOrderedIdentifiers(),
	}

	return
}

func (m *SigningCeremonyFSM) actionPartialSignatureReceived(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {CeremonyPartialSignatureRequest}")
		return
	}

	request, ok := args[0].(requests.CeremonyPartialSignatureRequest)
	if !ok {
		err = errors.New("cannot cast {arg0} to type {CeremonyPartialSignatureRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	if !m.payload.QuorumExists(request.ParticipantID) {
		err = fmt.Errorf("participant \"%s\" is not a member of the ceremony quorum", request.ParticipantID)
		return
	}

	participant := m.payload.QuorumGet(request.ParticipantID)

	if participant.Status != internal.PartialSignatureAwaitConfirmation {
		err = fmt.Errorf(
			"participant \"%s\" already submitted a partial signature, status \"%s\"",
			request.ParticipantID,
			participant.Status,
		)
		return
	}

	participant.PartialSignature = request.PartialSignature
	participant.Status = internal.PartialSignatureConfirmed
	participant.UpdatedAt = request.CreatedAt

	m.payload.CeremonyPayload.UpdatedAt = request.CreatedAt

	return
}

func (m *SigningCeremonyFSM) actionValidatePartialSignatures(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if m.payload.CeremonyPayload.IsExpired() {
		outEvent = eventCeremonyPartialSignaturesCancelByTimeoutInternal
		return
	}

	// Unlike the commitment round, every participant bound into the
	// signing package must contribute its share.
	awaiting := 0
	confirmed := 0
	for _, identifier := range m.payload.CeremonyPayload.Quorum.GetOrderedIdentifiers() {
		switch m.payload.QuorumGet(identifier).Status {
		case internal.PartialSignatureAwaitConfirmation:
			awaiting++
		case internal.PartialSignatureConfirmed:
			confirmed++
		}
	}

	if awaiting > 0 || confirmed < m.payload.GetThreshold() {
		return
	}

	partialSignatures := make(map[string][]byte, confirmed)
	for _, identifier := range m.payload.CeremonyPayload.Quorum.GetOrderedIdentifiers() {
		participant := m.payload.QuorumGet(identifier)
		if participant.Status != internal.PartialSignatureConfirmed {
			continue
		}
		partialSignatures[identifier] = participant.PartialSignature
	}

	outEvent = eventCeremonyPartialSignaturesCollectedInternal
	response = &responses.CeremonyPartialSignaturesCollectedResponse{
		CeremonyID:        m.payload.CeremonyPayload.CeremonyID,
		SigningPackage:    m.payload.CeremonyPayload.SigningPackage,
		PartialSignatures: partialSignatures,
	}

	return
}

func (m *SigningCeremonyFSM) actionConfirmationError(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {CeremonyConfirmationErrorRequest}")
		return
	}

	request, ok := args[0].(requests.CeremonyConfirmationErrorRequest)
	if !ok {
		err = errors.New("cannot cast {arg0} to type {CeremonyConfirmationErrorRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	if !m.payload.QuorumExists(request.ParticipantID) {
		err = fmt.Errorf("participant \"%s\" is not a member of the ceremony quorum", request.ParticipantID)
		return
	}

	participant := m.payload.QuorumGet(request.ParticipantID)
	participant.Status = internal.CeremonyParticipantError
	participant.Error = request.Error
	participant.UpdatedAt = request.CreatedAt

	m.payload.CeremonyPayload.UpdatedAt = request.CreatedAt

	return
}

func (m *SigningCeremonyFSM) actionSignatureFinalized(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {CeremonySignatureFinalizedRequest}")
		return
	}

	request, ok := args[0].(requests.CeremonySignatureFinalizedRequest)
	if !ok {
		err = errors.New("cannot cast {arg0} to type {CeremonySignatureFinalizedRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	m.payload.CeremonyPayload.SignatureHex = request.Signature
	m.payload.CeremonyPayload.UpdatedAt = request.CreatedAt

	response = &responses.CeremonySignatureReconstructedResponse{
		CeremonyID: m.payload.CeremonyPayload.CeremonyID,
		Signature:  request.Signature,
	}

	return
}
