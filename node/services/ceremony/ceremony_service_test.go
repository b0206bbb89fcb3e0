package ceremony

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frostline/fc4tx/ceremony"
	"github.com/frostline/fc4tx/frost"
	"github.com/frostline/fc4tx/fsm/state_machines/fsm_internal"
	"github.com/frostline/fc4tx/fsm/types/responses"
)

// signingFixture deals shares for the given roster and produces real
// commitments for the named signers.
type signingFixture struct {
	frost       *frost.Frost
	shares      map[string]*frost.KeyShare
	nonces      map[string]*frost.SigningNonce
	commitments map[string]*frost.SigningCommitment
	groupKeyHex string
}

func newSigningFixture(t *testing.T, threshold int, roster, signers []string) *signingFixture {
	t.Helper()
	req := require.New(t)

	f, err := frost.New(threshold, len(roster))
	req.NoError(err)

	shares, groupKey, err := f.DealShares(frost.Suite().RandomStream(), roster)
	req.NoError(err)

	fixture := &signingFixture{
		frost:       f,
		shares:      make(map[string]*frost.KeyShare, len(shares)),
		nonces:      make(map[string]*frost.SigningNonce, len(signers)),
		commitments: make(map[string]*frost.SigningCommitment, len(signers)),
	}
	for _, share := range shares {
		fixture.shares[share.Name] = share
	}

	groupKeyBz, err := groupKey.MarshalBinary()
	req.NoError(err)
	fixture.groupKeyHex = hex.EncodeToString(groupKeyBz)

	for _, name := range signers {
		nonce, commitment, err := f.Commit(frost.Suite().RandomStream(), fixture.shares[name])
		req.NoError(err)
		fixture.nonces[name] = nonce
		fixture.commitments[name] = commitment
	}

	return fixture
}

func (fx *signingFixture) commitmentHex(t *testing.T, name string) (string, string) {
	t.Helper()
	req := require.New(t)

	hiding, err := fx.commitments[name].Hiding.MarshalBinary()
	req.NoError(err)
	binding, err := fx.commitments[name].Binding.MarshalBinary()
	req.NoError(err)
	return hex.EncodeToString(hiding), hex.EncodeToString(binding)
}

func TestCeremonyService_BuildSigningPackageThresholdCoalition(t *testing.T) {
	req := require.New(t)

	// 2-of-3 group where carol stays silent: the package is built from
	// the two collected commitments while the group size stays 3.
	fixture := newSigningFixture(t, 2, []string{"alice", "bob", "carol"}, []string{"alice", "bob"})
	unsignedMessage := hex.EncodeToString([]byte("unsigned transaction bytes"))

	collected := &responses.CeremonyCommitmentsCollectedResponse{
		CeremonyID:      "ceremony_id",
		UnsignedMessage: unsignedMessage,
	}
	for _, name := range []string{"alice", "bob"} {
		hiding, binding := fixture.commitmentHex(t, name)
		collected.Commitments = append(collected.Commitments, &responses.CeremonyCommitmentEntry{
			ParticipantID:     name,
			HidingCommitment:  hiding,
			BindingCommitment: binding,
		})
	}

	svc := &BaseCeremonyService{}
	signingPackage, err := svc.BuildSigningPackage(collected, 2, 3)
	req.NoError(err)

	pkgBz, err := hex.DecodeString(signingPackage)
	req.NoError(err)
	pkg, err := fixture.frost.DecodeSigningPackage(pkgBz)
	req.NoError(err)
	req.Len(pkg.Commitments, 2)

	// Partial signatures come from the coalition only; reconstruction
	// must not demand one from carol.
	partialSignatures := make(map[string][]byte, 2)
	for _, name := range []string{"alice", "bob"} {
		partial, err := fixture.frost.PartialSign(fixture.shares[name], fixture.nonces[name], pkg)
		req.NoError(err)
		partialBz, err := json.Marshal(partial)
		req.NoError(err)
		partialSignatures[name] = partialBz
	}

	confirmation := &internal.CeremonyConfirmation{
		CeremonyID:     "ceremony_id",
		Threshold:      2,
		GroupKey:       fixture.groupKeyHex,
		SigningPackage: signingPackage,
		Quorum: internal.CeremonyQuorum{
			"alice": &internal.CeremonyParticipant{Username: "alice"},
			"bob":   &internal.CeremonyParticipant{Username: "bob"},
			"carol": &internal.CeremonyParticipant{Username: "carol"},
		},
	}

	signatureHex, err := svc.ReconstructSignature(confirmation, partialSignatures)
	req.NoError(err)
	req.NotEmpty(signatureHex)
}

func TestCeremonyService_BuildDirectSigningPackage(t *testing.T) {
	req := require.New(t)

	fixture := newSigningFixture(t, 2, []string{"alice", "bob"}, []string{"alice", "bob"})
	unsignedMessage := hex.EncodeToString([]byte("unsigned transaction bytes"))

	entries := make([]ceremony.CommitmentEntry, 0, 2)
	for _, name := range []string{"alice", "bob"} {
		hiding, binding := fixture.commitmentHex(t, name)
		entries = append(entries, ceremony.CommitmentEntry{
			Identifier: name,
			Commitment: ceremony.Commitment{Hiding: hiding, Binding: binding},
		})
	}

	svc := &BaseCeremonyService{}
	signingPackage, err := svc.BuildDirectSigningPackage(unsignedMessage, entries)
	req.NoError(err)

	pkgBz, err := hex.DecodeString(signingPackage)
	req.NoError(err)
	pkg, err := fixture.frost.DecodeSigningPackage(pkgBz)
	req.NoError(err)
	req.Len(pkg.Commitments, 2)
	req.Equal([]byte("unsigned transaction bytes"), pkg.Message)
}

func TestCeremonyService_BuildDirectSigningPackageRejections(t *testing.T) {
	req := require.New(t)

	fixture := newSigningFixture(t, 2, []string{"alice", "bob"}, []string{"alice", "bob"})
	unsignedMessage := hex.EncodeToString([]byte("unsigned transaction bytes"))
	hiding, binding := fixture.commitmentHex(t, "alice")
	entry := ceremony.CommitmentEntry{
		Identifier: "alice",
		Commitment: ceremony.Commitment{Hiding: hiding, Binding: binding},
	}

	svc := &BaseCeremonyService{}

	_, err := svc.BuildDirectSigningPackage(unsignedMessage, nil)
	req.ErrorIs(err, ceremony.ErrEmptyCommitmentSet)

	_, err = svc.BuildDirectSigningPackage(unsignedMessage, []ceremony.CommitmentEntry{entry, entry})
	req.ErrorIs(err, ceremony.ErrDuplicateIdentifier)

	_, err = svc.BuildDirectSigningPackage("not hex", []ceremony.CommitmentEntry{entry})
	req.ErrorIs(err, ceremony.ErrMessageDecoding)
}
