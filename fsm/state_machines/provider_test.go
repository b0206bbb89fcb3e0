package state_machines

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/frostline/fc4tx/fsm/fsm"
	scf "github.com/frostline/fc4tx/fsm/state_machines/signing_ceremony_fsm"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/fsm/types/responses"
)

const (
	testCeremonyID      = "d8a928b2043db77e340b523547bf16cb4aa483f0645fe0a290ed1f20aab76257"
	testUnsignedMessage = "deadbeef"
)

var (
	tm = time.Now()

	testParticipants = testRoster("P2", "P1")
)

func testRoster(usernames ...string) []*requests.CeremonyParticipantEntry {
	entries := make([]*requests.CeremonyParticipantEntry, 0, len(usernames))
	for _, username := range usernames {
		pub, _, _ := ed25519.GenerateKey(nil)
		entries = append(entries, &requests.CeremonyParticipantEntry{
			Username: username,
			PubKey:   pub,
		})
	}
	return entries
}

func testCommitment(participant string, round byte) string {
	buf := make([]byte, 32)
	copy(buf, participant)
	buf[31] = round
	return hex.EncodeToString(buf)
}

func compareErrNil(t *testing.T, got error) {
	t.Helper()
	if got != nil {
		t.Fatalf("expected nil error, got {%s}", got)
	}
}

func compareFSMInstanceNotNil(t *testing.T, got *FSMInstance) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected {*FSMInstance}")
	}
}

func compareDumpNotZero(t *testing.T, got []byte) {
	t.Helper()
	if len(got) == 0 {
		t.Fatalf("expected non zero dump, when executed without error")
	}
}

func compareFSMResponseNotNil(t *testing.T, got *fsm.Response) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected {*fsm.Response} got nil")
	}
}

func compareState(t *testing.T, expected fsm.State, got fsm.State) {
	t.Helper()
	if got != expected {
		t.Fatalf("expected state {%s} got {%s}", expected, got)
	}
}

func TestCreate_Positive(t *testing.T) {
	testFSMInstance, err := Create(testCeremonyID)
	compareErrNil(t, err)
	compareFSMInstanceNotNil(t, testFSMInstance)
	compareState(t, scf.StateCeremonyIdle, testFSMInstance.State())
}

func TestCreate_EmptyID(t *testing.T) {
	_, err := Create("")
	if err == nil {
		t.Fatalf("expected error for empty ceremony id")
	}
}

func TestFromDump_Empty(t *testing.T) {
	_, err := FromDump(nil)
	if err == nil {
		t.Fatalf("expected error for empty dump")
	}
}

func startedInstance(t *testing.T) *FSMInstance {
	t.Helper()

	testFSMInstance, err := Create(testCeremonyID)
	compareErrNil(t, err)

	resp, dump, err := testFSMInstance.Do(scf.EventCeremonyStart, requests.CeremonyStartRequest{
		CeremonyID:      testCeremonyID,
		UnsignedMessage: testUnsignedMessage,
		GroupKey:        testCommitment("group_key", 0),
		Threshold:       2,
		Participants:    testParticipants,
		CreatedAt:       tm,
	})
	compareErrNil(t, err)
	compareFSMResponseNotNil(t, resp)
	compareDumpNotZero(t, dump)
	compareState(t, scf.StateCeremonyAwaitCommitments, resp.State)

	startResponse, ok := resp.Data.(*responses.CeremonyStartResponse)
	if !ok {
		t.Fatalf("expected {*CeremonyStartResponse} in response data")
	}
	if len(startResponse.Participants) != 2 || startResponse.Participants[0] != "P1" {
		t.Fatalf("expected lexicographically ordered participants, got %v", startResponse.Participants)
	}

	return testFSMInstance
}

func TestSigningCeremony_StartToAwaitCommitments(t *testing.T) {
	startedInstance(t)
}

func TestSigningCeremony_CommitmentFromStranger(t *testing.T) {
	testFSMInstance := startedInstance(t)

	_, _, err := testFSMInstance.Do(scf.EventCeremonyCommitmentReceived, requests.CeremonyCommitmentConfirmationRequest{
		CeremonyID:        testCeremonyID,
		ParticipantID:     "P3",
		HidingCommitment:  testCommitment("P3", 0),
		BindingCommitment: testCommitment("P3", 1),
		CreatedAt:         tm,
	})
	if err == nil {
		t.Fatalf("expected error for participant outside the quorum")
	}
	compareState(t, scf.StateCeremonyAwaitCommitments, testFSMInstance.State())
}

func TestSigningCeremony_DuplicateCommitment(t *testing.T) {
	testFSMInstance := startedInstance(t)

	request := requests.CeremonyCommitmentConfirmationRequest{
		CeremonyID:        testCeremonyID,
		ParticipantID:     "P1",
		HidingCommitment:  testCommitment("P1", 0),
		BindingCommitment: testCommitment("P1", 1),
		CreatedAt:         tm,
	}

	_, _, err := testFSMInstance.Do(scf.EventCeremonyCommitmentReceived, request)
	compareErrNil(t, err)

	// A different commitment from the same participant must be refused
	// as well.
	request.HidingCommitment = testCommitment("P1", 2)
	_, _, err = testFSMInstance.Do(scf.EventCeremonyCommitmentReceived, request)
	if err == nil {
		t.Fatalf("expected error for repeated commitment from {P1}")
	}
	compareState(t, scf.StateCeremonyAwaitCommitments, testFSMInstance.State())
}

func TestSigningCeremony_FullFlow(t *testing.T) {
	testFSMInstance := startedInstance(t)

	var (
		resp *fsm.Response
		dump []byte
		err  error
	)

	for _, participant := range []string{"P1", "P2"} {
		resp, dump, err = testFSMInstance.Do(scf.EventCeremonyCommitmentReceived, requests.CeremonyCommitmentConfirmationRequest{
			CeremonyID:        testCeremonyID,
			ParticipantID:     participant,
			HidingCommitment:  testCommitment(participant, 0),
			BindingCommitment: testCommitment(participant, 1),
			CreatedAt:         tm,
		})
		compareErrNil(t, err)
		compareDumpNotZero(t, dump)
	}
	compareState(t, scf.StateCeremonyCommitmentsCollected, resp.State)

	collected, ok := resp.Data.(*responses.CeremonyCommitmentsCollectedResponse)
	if !ok {
		t.Fatalf("expected {*CeremonyCommitmentsCollectedResponse} in response data")
	}
	if len(collected.Commitments) != 2 {
		t.Fatalf("expected 2 commitments, got %d", len(collected.Commitments))
	}
	if collected.Commitments[0].ParticipantID != "P1" || collected.Commitments[1].ParticipantID != "P2" {
		t.Fatalf("expected commitments ordered by identifier")
	}
	if collected.UnsignedMessage != testUnsignedMessage {
		t.Fatalf("expected unsigned message {%s}, got {%s}", testUnsignedMessage, collected.UnsignedMessage)
	}

	// Restore from the dump and continue on the restored instance.
	restoredInstance, err := FromDump(dump)
	compareErrNil(t, err)
	compareState(t, scf.StateCeremonyCommitmentsCollected, restoredInstance.State())

	signingPackage := hex.EncodeToString([]byte(`{"message":"deadbeef"}`))
	resp, dump, err = restoredInstance.Do(scf.EventCeremonyPackageBuilt, requests.CeremonyPackageBuiltRequest{
		CeremonyID:     testCeremonyID,
		SigningPackage: signingPackage,
		CreatedAt:      tm,
	})
	compareErrNil(t, err)
	compareDumpNotZero(t, dump)
	compareState(t, scf.StateCeremonyAwaitPartialSignatures, resp.State)

	for _, participant := range []string{"P2", "P1"} {
		resp, dump, err = restoredInstance.Do(scf.EventCeremonyPartialSignatureReceived, requests.CeremonyPartialSignatureRequest{
			CeremonyID:       testCeremonyID,
			ParticipantID:    participant,
			PartialSignature: []byte(fmt.Sprintf("partial-%s", participant)),
			CreatedAt:        tm,
		})
		compareErrNil(t, err)
		compareDumpNotZero(t, dump)
	}
	compareState(t, scf.StateCeremonyPartialSignaturesCollected, resp.State)

	partials, ok := resp.Data.(*responses.CeremonyPartialSignaturesCollectedResponse)
	if !ok {
		t.Fatalf("expected {*CeremonyPartialSignaturesCollectedResponse} in response data")
	}
	if len(partials.PartialSignatures) != 2 {
		t.Fatalf("expected 2 partial signatures, got %d", len(partials.PartialSignatures))
	}
	if partials.SigningPackage != signingPackage {
		t.Fatalf("expected signing package carried into the response")
	}

	resp, dump, err = restoredInstance.Do(scf.EventCeremonySignatureFinalized, requests.CeremonySignatureFinalizedRequest{
		CeremonyID: testCeremonyID,
		Signature:  testCommitment("signature", 7),
		CreatedAt:  tm,
	})
	compareErrNil(t, err)
	compareDumpNotZero(t, dump)
	compareState(t, scf.StateCeremonySignatureReconstructed, resp.State)
}

func TestSigningCeremony_ThresholdCoalition(t *testing.T) {
	testFSMInstance, err := Create(testCeremonyID)
	compareErrNil(t, err)

	resp, _, err := testFSMInstance.Do(scf.EventCeremonyStart, requests.CeremonyStartRequest{
		CeremonyID:      testCeremonyID,
		UnsignedMessage: testUnsignedMessage,
		GroupKey:        testCommitment("group_key", 0),
		Threshold:       2,
		Participants:    testRoster("P1", "P2", "P3"),
		CreatedAt:       tm,
	})
	compareErrNil(t, err)
	compareState(t, scf.StateCeremonyAwaitCommitments, resp.State)

	// P3 never shows up. Two commitments satisfy a 2-of-3 ceremony, so
	// the machine must not wait for the third.
	var dump []byte
	for _, participant := range []string{"P1", "P2"} {
		resp, dump, err = testFSMInstance.Do(scf.EventCeremonyCommitmentReceived, requests.CeremonyCommitmentConfirmationRequest{
			CeremonyID:        testCeremonyID,
			ParticipantID:     participant,
			HidingCommitment:  testCommitment(participant, 0),
			BindingCommitment: testCommitment(participant, 1),
			CreatedAt:         tm,
		})
		compareErrNil(t, err)
		compareDumpNotZero(t, dump)
	}
	compareState(t, scf.StateCeremonyCommitmentsCollected, resp.State)

	collected, ok := resp.Data.(*responses.CeremonyCommitmentsCollectedResponse)
	if !ok {
		t.Fatalf("expected {*CeremonyCommitmentsCollectedResponse} in response data")
	}
	if len(collected.Commitments) != 2 {
		t.Fatalf("expected commitments from the 2 confirmed participants, got %d", len(collected.Commitments))
	}
	for _, entry := range collected.Commitments {
		if entry.ParticipantID == "P3" {
			t.Fatalf("expected no commitment entry for the silent participant")
		}
	}

	resp, _, err = testFSMInstance.Do(scf.EventCeremonyPackageBuilt, requests.CeremonyPackageBuiltRequest{
		CeremonyID:     testCeremonyID,
		SigningPackage: hex.EncodeToString([]byte(`{"message":"deadbeef"}`)),
		CreatedAt:      tm,
	})
	compareErrNil(t, err)
	compareState(t, scf.StateCeremonyAwaitPartialSignatures, resp.State)

	// Only the coalition members owe a partial signature.
	for _, participant := range []string{"P1", "P2"} {
		resp, _, err = testFSMInstance.Do(scf.EventCeremonyPartialSignatureReceived, requests.CeremonyPartialSignatureRequest{
			CeremonyID:       testCeremonyID,
			ParticipantID:    participant,
			PartialSignature: []byte(fmt.Sprintf("partial-%s", participant)),
			CreatedAt:        tm,
		})
		compareErrNil(t, err)
	}
	compareState(t, scf.StateCeremonyPartialSignaturesCollected, resp.State)

	partials, ok := resp.Data.(*responses.CeremonyPartialSignaturesCollectedResponse)
	if !ok {
		t.Fatalf("expected {*CeremonyPartialSignaturesCollectedResponse} in response data")
	}
	if len(partials.PartialSignatures) != 2 {
		t.Fatalf("expected 2 partial signatures, got %d", len(partials.PartialSignatures))
	}
	if _, ok := partials.PartialSignatures["P3"]; ok {
		t.Fatalf("expected no partial signature slot for the silent participant")
	}
}

func TestSigningCeremony_ParticipantError(t *testing.T) {
	testFSMInstance := startedInstance(t)

	resp, _, err := testFSMInstance.Do(scf.EventCeremonyCommitmentError, requests.CeremonyConfirmationErrorRequest{
		CeremonyID:    testCeremonyID,
		ParticipantID: "P2",
		Error:         "nonce store unavailable",
		CreatedAt:     tm,
	})
	compareErrNil(t, err)
	compareState(t, scf.StateCeremonyCommitmentsAwaitCancelledByParticipant, resp.State)
}
