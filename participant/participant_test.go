package participant

import (
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frostline/fc4tx/frost"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/fsm/types/responses"
	"github.com/frostline/fc4tx/node/types"
)

func newTestMachine(t *testing.T, username string) *Machine {
	t.Helper()

	m, err := NewMachine(filepath.Join(t.TempDir(), username), username)
	if err != nil {
		t.Fatalf("failed to create participant machine: %v", err)
	}
	m.SetEncryptionKey([]byte("test_encryption_key"))
	t.Cleanup(func() { _ = m.db.Close() })

	return m
}

func TestMachine_DropOperationsLog(t *testing.T) {
	ceremonyID := "aaa"
	m := newTestMachine(t, "P1")

	err := m.storeOperation(types.Operation{CeremonyID: ceremonyID, ID: "id_1"})
	require.NoError(t, err)
	err = m.storeOperation(types.Operation{CeremonyID: ceremonyID, ID: "id_2"})
	require.NoError(t, err)

	ops, err := m.getOperationsLog(ceremonyID)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	err = m.DropOperationsLog(ceremonyID)
	require.NoError(t, err)

	ops, err = m.getOperationsLog(ceremonyID)
	require.NoError(t, err)
	require.Len(t, ops, 0)
}

func TestMachine_KeyShareRoundTrip(t *testing.T) {
	req := require.New(t)
	ceremonyID := "key_share_round_trip"
	m := newTestMachine(t, "P1")

	shares, err := m.DealKeyShares(ceremonyID, 2, []string{"P1", "P2"})
	req.NoError(err)
	req.Len(shares, 2)

	loaded, err := m.loadKeyShare(ceremonyID)
	req.NoError(err)
	req.Equal("P1", loaded.Name)

	for _, share := range shares {
		if share.Name == "P1" {
			req.True(loaded.Secret.Equal(share.Secret))
			req.True(loaded.GroupKey.Equal(share.GroupKey))
		}
	}

	groupKeyHex, err := m.GroupKey(ceremonyID)
	req.NoError(err)
	groupKeyBz, err := shares[0].GroupKey.MarshalBinary()
	req.NoError(err)
	req.Equal(hex.EncodeToString(groupKeyBz), groupKeyHex)
}

func TestMachine_ForeignKeyShareRefused(t *testing.T) {
	m := newTestMachine(t, "P1")

	share := &frost.KeyShare{Name: "P2"}
	err := m.ImportKeyShare("ceremony", share)
	require.Error(t, err)
}

// Runs a complete two-participant signing round through the operation
// handlers: commitments out, package in, partial signatures out, and a
// final aggregate that verifies under the dealt group key.
func TestMachine_FullSigningRound(t *testing.T) {
	req := require.New(t)
	ceremonyID := "full_signing_round"
	unsignedMessageHex := "deadbeef"
	roster := []string{"P1", "P2"}

	m1 := newTestMachine(t, "P1")
	m2 := newTestMachine(t, "P2")

	shares, err := m1.DealKeyShares(ceremonyID, 2, roster)
	req.NoError(err)
	for _, share := range shares {
		if share.Name == "P2" {
			req.NoError(m2.ImportKeyShare(ceremonyID, share))
		}
	}

	startPayload, err := json.Marshal(&responses.CeremonyStartResponse{
		CeremonyID:      ceremonyID,
		UnsignedMessage: unsignedMessageHex,
		Threshold:       2,
		Participants:    roster,
	})
	req.NoError(err)

	commitments := make([]*frost.SigningCommitment, 0, 2)
	for _, m := range []*Machine{m1, m2} {
		result, err := m.ProcessOperation(types.Operation{
			ID:         "commit_" + m.Username(),
			Type:       types.CommitmentAwait,
			Payload:    startPayload,
			CeremonyID: ceremonyID,
		}, true)
		req.NoError(err)
		req.Len(result.ResultMsgs, 1)

		var commitmentReq requests.CeremonyCommitmentConfirmationRequest
		req.NoError(json.Unmarshal(result.ResultMsgs[0].Data, &commitmentReq))
		req.Equal(m.Username(), commitmentReq.ParticipantID)

		hidingBz, err := hex.DecodeString(commitmentReq.HidingCommitment)
		req.NoError(err)
		bindingBz, err := hex.DecodeString(commitmentReq.BindingCommitment)
		req.NoError(err)

		commitment, err := frost.NewSigningCommitment(commitmentReq.ParticipantID, hidingBz, bindingBz)
		req.NoError(err)
		commitments = append(commitments, commitment)
	}

	f, err := frost.New(2, 2)
	req.NoError(err)

	unsignedMessage, err := hex.DecodeString(unsignedMessageHex)
	req.NoError(err)

	pkg, err := f.BuildSigningPackage(unsignedMessage, commitments)
	req.NoError(err)
	pkgBz, err := f.EncodeSigningPackage(pkg)
	req.NoError(err)

	packagePayload, err := json.Marshal(&responses.CeremonyPackageBuiltResponse{
		CeremonyID:     ceremonyID,
		SigningPackage: hex.EncodeToString(pkgBz),
		Threshold:      2,
		Participants:   roster,
	})
	req.NoError(err)

	partials := make([]*frost.PartialSignature, 0, 2)
	for _, m := range []*Machine{m1, m2} {
		result, err := m.ProcessOperation(types.Operation{
			ID:         "partial_sign_" + m.Username(),
			Type:       types.PartialSignatureAwait,
			Payload:    packagePayload,
			CeremonyID: ceremonyID,
		}, true)
		req.NoError(err)
		req.Len(result.ResultMsgs, 1)

		var partialReq requests.CeremonyPartialSignatureRequest
		req.NoError(json.Unmarshal(result.ResultMsgs[0].Data, &partialReq))

		partial := &frost.PartialSignature{}
		req.NoError(json.Unmarshal(partialReq.PartialSignature, partial))
		partials = append(partials, partial)

		// the nonce is one-shot, the second load must fail
		_, err = m.loadSigningNonce(ceremonyID)
		req.Error(err)
	}

	sig, err := f.Aggregate(pkg, partials)
	req.NoError(err)
	req.NoError(f.Verify(unsignedMessage, sig, shares[0].GroupKey))
}

func TestMachine_ErrorWrittenToOperation(t *testing.T) {
	req := require.New(t)
	m := newTestMachine(t, "P1")

	// no key share stored for this ceremony, the handler must fail and
	// report the error through a result message
	startPayload, err := json.Marshal(&responses.CeremonyStartResponse{
		CeremonyID:      "unknown_ceremony",
		UnsignedMessage: "deadbeef",
		Threshold:       2,
		Participants:    []string{"P1", "P2"},
	})
	req.NoError(err)

	result, err := m.GetOperationResult(types.Operation{
		ID:         "commit_P1",
		Type:       types.CommitmentAwait,
		Payload:    startPayload,
		CeremonyID: "unknown_ceremony",
	})
	req.NoError(err)
	req.Len(result.ResultMsgs, 1)

	var errorReq requests.CeremonyConfirmationErrorRequest
	req.NoError(json.Unmarshal(result.ResultMsgs[0].Data, &errorReq))
	req.Equal("P1", errorReq.ParticipantID)
	req.NotEmpty(errorReq.Error)
}

func TestMachine_ReplayOperationsLog(t *testing.T) {
	req := require.New(t)
	ceremonyID := "replay_round"
	m := newTestMachine(t, "P1")

	_, err := m.DealKeyShares(ceremonyID, 2, []string{"P1", "P2"})
	req.NoError(err)

	startPayload, err := json.Marshal(&responses.CeremonyStartResponse{
		CeremonyID:      ceremonyID,
		UnsignedMessage: "deadbeef",
		Threshold:       2,
		Participants:    []string{"P1", "P2"},
	})
	req.NoError(err)

	_, err = m.ProcessOperation(types.Operation{
		ID:         "commit_P1",
		Type:       types.CommitmentAwait,
		Payload:    startPayload,
		CeremonyID: ceremonyID,
	}, true)
	req.NoError(err)

	req.NoError(m.ReplayOperationsLog(ceremonyID))
}

func TestEncryption_RoundTrip(t *testing.T) {
	req := require.New(t)

	passphrase := []byte("console passphrase")
	salt := []byte("P1")
	plaintext := []byte("key share bytes")

	blob, err := encrypt(passphrase, salt, plaintext)
	req.NoError(err)
	req.NotEqual(plaintext, blob)

	decrypted, err := decrypt(passphrase, salt, blob)
	req.NoError(err)
	req.Equal(plaintext, decrypted)

	_, err = decrypt([]byte("wrong passphrase"), salt, blob)
	req.Error(err)

	_, err = decrypt(passphrase, salt, blob[:4])
	req.ErrorIs(err, errCiphertextTooShort)
}
