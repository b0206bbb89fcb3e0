package frost_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/frostline/fc4tx/frost"
)

func TestFrost_New(t *testing.T) {
	req := require.New(t)

	_, err := frost.New(1, 3)
	req.Error(err)

	_, err = frost.New(3, 2)
	req.Error(err)

	f, err := frost.New(2, 3)
	req.NoError(err)
	req.Equal(2, f.Threshold())
}

func TestFrost_DealShares(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 3)
	req.NoError(err)

	_, _, err = f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob"})
	req.Error(err)

	_, _, err = f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob", "alice"})
	req.Error(err)

	shares, groupKey, err := f.DealShares(frost.Suite().RandomStream(), []string{"carol", "alice", "bob"})
	req.NoError(err)
	req.Len(shares, 3)

	// Shares come out in lexicographic name order.
	req.Equal("alice", shares[0].Name)
	req.Equal("bob", shares[1].Name)
	req.Equal("carol", shares[2].Name)

	for _, share := range shares {
		req.True(share.GroupKey.Equal(groupKey))
		req.True(share.Public.Equal(frost.Suite().Point().Mul(share.Secret, nil)))
	}
}

func TestFrost_SignFullCeremony(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 3)
	req.NoError(err)

	shares, groupKey, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob", "carol"})
	req.NoError(err)

	message := []byte("unsigned transaction bytes")

	// Two of three participants sign.
	signers := shares[:2]
	nonces := make([]*frost.SigningNonce, len(signers))
	commitments := make([]*frost.SigningCommitment, len(signers))
	for i, share := range signers {
		nonces[i], commitments[i], err = f.Commit(frost.Suite().RandomStream(), share)
		req.NoError(err)
	}

	pkg, err := f.BuildSigningPackage(message, commitments)
	req.NoError(err)

	partials := make([]*frost.PartialSignature, len(signers))
	for i, share := range signers {
		partials[i], err = f.PartialSign(share, nonces[i], pkg)
		req.NoError(err)
	}

	sig, err := f.Aggregate(pkg, partials)
	req.NoError(err)
	req.NoError(f.Verify(message, sig, groupKey))

	req.Error(f.Verify([]byte("a different message"), sig, groupKey))
}

func TestFrost_BuildSigningPackageDeterminism(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 2)
	req.NoError(err)

	shares, _, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob"})
	req.NoError(err)

	message := []byte("deterministic binding")
	var commitments []*frost.SigningCommitment
	for _, share := range shares {
		_, c, err := f.Commit(frost.Suite().RandomStream(), share)
		req.NoError(err)
		commitments = append(commitments, c)
	}

	pkg1, err := f.BuildSigningPackage(message, commitments)
	req.NoError(err)

	// Permuted input must produce identical output.
	pkg2, err := f.BuildSigningPackage(message, []*frost.SigningCommitment{commitments[1], commitments[0]})
	req.NoError(err)

	bz1, err := f.EncodeSigningPackage(pkg1)
	req.NoError(err)
	bz2, err := f.EncodeSigningPackage(pkg2)
	req.NoError(err)
	req.Equal(bz1, bz2)
}

func TestFrost_BindingFactorTranscriptFraming(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 2)
	req.NoError(err)

	shares, _, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob"})
	req.NoError(err)

	var points [][2][]byte
	for _, share := range shares {
		_, c, err := f.Commit(frost.Suite().RandomStream(), share)
		req.NoError(err)
		hiding, err := c.Hiding.MarshalBinary()
		req.NoError(err)
		binding, err := c.Binding.MarshalBinary()
		req.NoError(err)
		points = append(points, [2][]byte{hiding, binding})
	}

	// Shifting a byte between the message and the first identifier keeps
	// the naive concatenation identical: "unsignedP" + "1" and
	// "unsigned" + "P1" are the same byte stream. The transcript framing
	// must still separate the two, so the binding factor of the
	// unchanged participant differs between the packages.
	first1, err := frost.NewSigningCommitment("1", points[0][0], points[0][1])
	req.NoError(err)
	first2, err := frost.NewSigningCommitment("P1", points[0][0], points[0][1])
	req.NoError(err)
	second, err := frost.NewSigningCommitment("zed", points[1][0], points[1][1])
	req.NoError(err)

	pkg1, err := f.BuildSigningPackage([]byte("unsignedP"), []*frost.SigningCommitment{first1, second})
	req.NoError(err)
	pkg2, err := f.BuildSigningPackage([]byte("unsigned"), []*frost.SigningCommitment{first2, second})
	req.NoError(err)

	var rho1, rho2 *frost.BindingFactor
	for _, bf := range pkg1.BindingFactors {
		if bf.Name == "zed" {
			rho1 = bf
		}
	}
	for _, bf := range pkg2.BindingFactors {
		if bf.Name == "zed" {
			rho2 = bf
		}
	}
	req.NotNil(rho1)
	req.NotNil(rho2)
	req.False(rho1.Factor.Equal(rho2.Factor))
}

func TestFrost_BuildSigningPackageThreshold(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 3)
	req.NoError(err)

	shares, _, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob", "carol"})
	req.NoError(err)

	_, commitment, err := f.Commit(frost.Suite().RandomStream(), shares[0])
	req.NoError(err)

	_, err = f.BuildSigningPackage([]byte("msg"), nil)
	req.Error(err)

	_, err = f.BuildSigningPackage([]byte("msg"), []*frost.SigningCommitment{commitment})
	req.Error(err)

	_, err = f.BuildSigningPackage([]byte("msg"), []*frost.SigningCommitment{commitment, commitment})
	req.Error(err)

	_, err = f.BuildSigningPackage(nil, []*frost.SigningCommitment{commitment})
	req.Error(err)
}

func TestFrost_SigningPackageRoundTrip(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 2)
	req.NoError(err)

	shares, _, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob"})
	req.NoError(err)

	var commitments []*frost.SigningCommitment
	for _, share := range shares {
		_, c, err := f.Commit(frost.Suite().RandomStream(), share)
		req.NoError(err)
		commitments = append(commitments, c)
	}

	pkg, err := f.BuildSigningPackage([]byte("round trip"), commitments)
	req.NoError(err)

	bz, err := f.EncodeSigningPackage(pkg)
	req.NoError(err)

	decoded, err := f.DecodeSigningPackage(bz)
	req.NoError(err)

	reencoded, err := f.EncodeSigningPackage(decoded)
	req.NoError(err)
	req.Empty(cmp.Diff(bz, reencoded))
}

func TestNewSigningCommitment(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 2)
	req.NoError(err)

	shares, _, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob"})
	req.NoError(err)

	_, commitment, err := f.Commit(frost.Suite().RandomStream(), shares[0])
	req.NoError(err)

	hiding, err := commitment.Hiding.MarshalBinary()
	req.NoError(err)
	binding, err := commitment.Binding.MarshalBinary()
	req.NoError(err)

	rebuilt, err := frost.NewSigningCommitment("alice", hiding, binding)
	req.NoError(err)
	req.True(rebuilt.Hiding.Equal(commitment.Hiding))
	req.True(rebuilt.Binding.Equal(commitment.Binding))

	_, err = frost.NewSigningCommitment("", hiding, binding)
	req.Error(err)

	_, err = frost.NewSigningCommitment("alice", []byte("not a point"), binding)
	req.Error(err)

	identity, err := frost.Suite().Point().Null().MarshalBinary()
	req.NoError(err)
	_, err = frost.NewSigningCommitment("alice", identity, binding)
	req.Error(err)
}

func TestSigningCommitment_JSONRoundTrip(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 2)
	req.NoError(err)

	shares, _, err := f.DealShares(frost.Suite().RandomStream(), []string{"alice", "bob"})
	req.NoError(err)

	_, commitment, err := f.Commit(frost.Suite().RandomStream(), shares[0])
	req.NoError(err)

	bz, err := json.Marshal(commitment)
	req.NoError(err)

	var decoded frost.SigningCommitment
	req.NoError(json.Unmarshal(bz, &decoded))
	req.Equal(commitment.Name, decoded.Name)
	req.True(decoded.Hiding.Equal(commitment.Hiding))
	req.True(decoded.Binding.Equal(commitment.Binding))
}
