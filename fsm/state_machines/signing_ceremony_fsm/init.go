package signing_ceremony_fsm

import (
	"sync"

	"github.com/frostline/fc4tx/fsm/fsm"
	"github.com/frostline/fc4tx/fsm/state_machines/fsm_internal"
)

const (
	FsmName = "signing_ceremony_fsm"

	StateCeremonyIdle = fsm.State("state_ceremony_idle")

	StateCeremonyAwaitCommitments = fsm.State("state_ceremony_await_commitments")
	// Cancelled
	StateCeremonyCommitmentsAwaitCancelledByTimeout     = fsm.State("state_ceremony_commitments_await_cancelled_by_timeout")
	StateCeremonyCommitmentsAwaitCancelledByParticipant = fsm.State("state_ceremony_commitments_await_cancelled_by_participant")

	StateCeremonyCommitmentsCollected = fsm.State("state_ceremony_commitments_collected")

	StateCeremonyAwaitPartialSignatures = fsm.State("state_ceremony_await_partial_signatures")
	// Cancelled
	StateCeremonyPartialSignaturesAwaitCancelledByTimeout     = fsm.State("state_ceremony_partial_signatures_await_cancelled_by_timeout")
	StateCeremonyPartialSignaturesAwaitCancelledByParticipant = fsm.State("state_ceremony_partial_signatures_await_cancelled_by_participant")

	StateCeremonyPartialSignaturesCollected = fsm.State("state_ceremony_partial_signatures_collected")

	StateCeremonySignatureReconstructed = fsm.State("state_ceremony_signature_reconstructed")

	// Events

	EventCeremonyStart = fsm.Event("event_ceremony_start")

	EventCeremonyCommitmentReceived                 = fsm.Event("event_ceremony_commitment_received")
	EventCeremonyCommitmentError                    = fsm.Event("event_ceremony_commitment_error_received")
	eventCeremonyCommitmentsCancelByTimeoutInternal = fsm.Event("event_ceremony_commitments_canceled_by_timeout_internal")
	eventAutoValidateCommitmentsInternal            = fsm.Event("event_ceremony_commitments_validate_internal")
	eventCeremonyCommitmentsCollectedInternal       = fsm.Event("event_ceremony_commitments_collected_internal")

	EventCeremonyPackageBuilt = fsm.Event("event_ceremony_package_built")

	EventCeremonyPartialSignatureReceived                 = fsm.Event("event_ceremony_partial_signature_received")
	EventCeremonyPartialSignatureError                    = fsm.Event("event_ceremony_partial_signature_error_received")
	eventCeremonyPartialSignaturesCancelByTimeoutInternal = fsm.Event("event_ceremony_partial_signatures_canceled_by_timeout_internal")
	eventAutoValidatePartialSignaturesInternal            = fsm.Event("event_ceremony_partial_signatures_validate_internal")
	eventCeremonyPartialSignaturesCollectedInternal       = fsm.Event("event_ceremony_partial_signatures_collected_internal")

	EventCeremonySignatureFinalized = fsm.Event("event_ceremony_signature_finalized")
)

type SigningCeremonyFSM struct {
	*fsm.FSM
	payload   *internal.CeremonyStatePayload
	payloadMu sync.RWMutex
}

func New() internal.DumpedMachineProvider {
	machine := &SigningCeremonyFSM{}

	machine.FSM = fsm.MustNewFSM(
		FsmName,
		StateCeremonyIdle,
		[]fsm.EventDesc{
			// Start
			{Name: EventCeremonyStart, SrcState: []fsm.State{StateCeremonyIdle}, DstState: StateCeremonyAwaitCommitments},

			// Commitment collection
			{Name: EventCeremonyCommitmentReceived, SrcState: []fsm.State{StateCeremonyAwaitCommitments}, DstState: StateCeremonyAwaitCommitments},
			{Name: EventCeremonyCommitmentError, SrcState: []fsm.State{StateCeremonyAwaitCommitments}, DstState: StateCeremonyCommitmentsAwaitCancelledByParticipant},
			{Name: eventCeremonyCommitmentsCancelByTimeoutInternal, SrcState: []fsm.State{StateCeremonyAwaitCommitments}, DstState: StateCeremonyCommitmentsAwaitCancelledByTimeout, IsInternal: true},

			// Validate
			{Name: eventAutoValidateCommitmentsInternal, SrcState: []fsm.State{StateCeremonyAwaitCommitments}, DstState: StateCeremonyAwaitCommitments, IsInternal: true, IsAuto: true},
			{Name: eventCeremonyCommitmentsCollectedInternal, SrcState: []fsm.State{StateCeremonyAwaitCommitments}, DstState: StateCeremonyCommitmentsCollected, IsInternal: true},

			// Package
			{Name: EventCeremonyPackageBuilt, SrcState: []fsm.State{StateCeremonyCommitmentsCollected}, DstState: StateCeremonyAwaitPartialSignatures},

			// Partial signature collection
			{Name: EventCeremonyPartialSignatureReceived, SrcState: []fsm.State{StateCeremonyAwaitPartialSignatures}, DstState: StateCeremonyAwaitPartialSignatures},
			{Name: EventCeremonyPartialSignatureError, SrcState: []fsm.State{StateCeremonyAwaitPartialSignatures}, DstState: StateCeremonyPartialSignaturesAwaitCancelledByParticipant},
			{Name: eventCeremonyPartialSignaturesCancelByTimeoutInternal, SrcState: []fsm.State{StateCeremonyAwaitPartialSignatures}, DstState: StateCeremonyPartialSignaturesAwaitCancelledByTimeout, IsInternal: true},

			// Validate
			{Name: eventAutoValidatePartialSignaturesInternal, SrcState: []fsm.State{StateCeremonyAwaitPartialSignatures}, DstState: StateCeremonyAwaitPartialSignatures, IsInternal: true, IsAuto: true},
			{Name: eventCeremonyPartialSignaturesCollectedInternal, SrcState: []fsm.State{StateCeremonyAwaitPartialSignatures}, DstState: StateCeremonyPartialSignaturesCollected, IsInternal: true},

			// Finalize
			{Name: EventCeremonySignatureFinalized, SrcState: []fsm.State{StateCeremonyPartialSignaturesCollected}, DstState: StateCeremonySignatureReconstructed},
		},
		fsm.Callbacks{
			EventCeremonyStart:                         machine.actionStartCeremony,
			EventCeremonyCommitmentReceived:            machine.actionCommitmentReceived,
			EventCeremonyCommitmentError:               machine.actionConfirmationError,
			eventAutoValidateCommitmentsInternal:       machine.actionValidateCommitments,
			EventCeremonyPackageBuilt:                  machine.actionPackageBuilt,
			EventCeremonyPartialSignatureReceived:      machine.actionPartialSignatureReceived,
			EventCeremonyPartialSignatureError:         machine.actionConfirmationError,
			eventAutoValidatePartialSignaturesInternal: machine.actionValidatePartialSignatures,
			EventCeremonySignatureFinalized:            machine.actionSignatureFinalized,
		},
	)

	return machine
}

func (m *SigningCeremonyFSM) WithSetup(state fsm.State, payload *internal.CeremonyStatePayload) internal.DumpedMachineProvider {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	m.payload = payload
	m.FSM = m.FSM.MustCopyWithState(state)
	return m
}
