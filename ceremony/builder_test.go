package ceremony_test

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frostline/fc4tx/ceremony"
	"github.com/frostline/fc4tx/frost"
)

// stubBinder records what the builder hands to the cryptographic layer
// and returns a deterministic package.
type stubBinder struct {
	lastMessage     []byte
	lastCommitments []*frost.SigningCommitment
	buildErr        error
}

func (s *stubBinder) BuildSigningPackage(message []byte, commitments []*frost.SigningCommitment) (*frost.SigningPackage, error) {
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	s.lastMessage = message
	s.lastCommitments = commitments
	return &frost.SigningPackage{Message: message, Commitments: commitments}, nil
}

func (s *stubBinder) EncodeSigningPackage(pkg *frost.SigningPackage) ([]byte, error) {
	out := append([]byte{}, pkg.Message...)
	for _, c := range pkg.Commitments {
		out = append(out, c.Name...)
	}
	return out, nil
}

func testEntries(t *testing.T, names ...string) []ceremony.CommitmentEntry {
	t.Helper()
	req := require.New(t)

	f, err := frost.New(2, len(names))
	if len(names) < 2 {
		f, err = frost.New(2, 2)
	}
	req.NoError(err)

	entries := make([]ceremony.CommitmentEntry, 0, len(names))
	for _, name := range names {
		share := &frost.KeyShare{Name: name}
		_, commitment, err := f.Commit(frost.Suite().RandomStream(), share)
		req.NoError(err)
		entries = append(entries, ceremony.CommitmentEntry{
			Identifier: name,
			Commitment: commitmentToWire(t, commitment),
		})
	}
	return entries
}

func commitmentToWire(t *testing.T, c *frost.SigningCommitment) ceremony.Commitment {
	t.Helper()
	req := require.New(t)

	hiding, err := c.Hiding.MarshalBinary()
	req.NoError(err)
	binding, err := c.Binding.MarshalBinary()
	req.NoError(err)
	return ceremony.Commitment{
		Hiding:  hex.EncodeToString(hiding),
		Binding: hex.EncodeToString(binding),
	}
}

func TestBuilder_MalformedHexRejection(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{})

	_, err := builder.Build("not-hex!!", testEntries(t, "P1", "P2"))
	req.ErrorIs(err, ceremony.ErrMessageDecoding)

	_, err = builder.Build("", testEntries(t, "P1", "P2"))
	req.ErrorIs(err, ceremony.ErrMessageDecoding)
}

func TestBuilder_EmptyRejection(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{})

	_, err := builder.Build("deadbeef", nil)
	req.ErrorIs(err, ceremony.ErrEmptyCommitmentSet)

	_, err = builder.Build("deadbeef", []ceremony.CommitmentEntry{})
	req.ErrorIs(err, ceremony.ErrEmptyCommitmentSet)
}

func TestBuilder_DuplicateRejection(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{})

	entries := testEntries(t, "A", "B")

	// Identical identifier, identical commitment.
	sameCommitment := []ceremony.CommitmentEntry{entries[0], entries[0]}
	_, err := builder.Build("deadbeef", sameCommitment)
	req.ErrorIs(err, ceremony.ErrDuplicateIdentifier)

	// Identical identifier, different commitment.
	differentCommitment := []ceremony.CommitmentEntry{
		entries[0],
		{Identifier: entries[0].Identifier, Commitment: entries[1].Commitment},
	}
	_, err = builder.Build("deadbeef", differentCommitment)
	req.ErrorIs(err, ceremony.ErrDuplicateIdentifier)
}

func TestBuilder_EmptyIdentifierRejection(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{})

	entries := testEntries(t, "A")
	entries[0].Identifier = ""

	_, err := builder.Build("deadbeef", entries)
	req.ErrorIs(err, ceremony.ErrEmptyIdentifier)
}

func TestBuilder_InvalidCommitmentRejection(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{})

	entries := testEntries(t, "A", "B")
	entries[0].Commitment.Hiding = "zzzz"
	_, err := builder.Build("deadbeef", entries)
	req.ErrorIs(err, ceremony.ErrCryptoPrimitive)

	entries = testEntries(t, "A", "B")
	entries[1].Commitment.Binding = "00"
	_, err = builder.Build("deadbeef", entries)
	req.ErrorIs(err, ceremony.ErrCryptoPrimitive)
}

func TestBuilder_BinderErrorSurfaced(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{buildErr: errors.New("threshold not met")})

	_, err := builder.Build("deadbeef", testEntries(t, "A", "B"))
	req.ErrorIs(err, ceremony.ErrCryptoPrimitive)
}

func TestBuilder_InputOrderIndependence(t *testing.T) {
	req := require.New(t)
	builder := ceremony.NewBuilder(&stubBinder{})

	entries := testEntries(t, "P1", "P2", "P3")

	pkg1, err := builder.Build("deadbeef", entries)
	req.NoError(err)
	req.NotEmpty(pkg1)

	permuted := []ceremony.CommitmentEntry{entries[2], entries[0], entries[1]}
	pkg2, err := builder.Build("deadbeef", permuted)
	req.NoError(err)
	req.Equal(pkg1, pkg2)

	// Repeated invocation with fixed inputs is byte-identical.
	pkg3, err := builder.Build("deadbeef", entries)
	req.NoError(err)
	req.Equal(pkg1, pkg3)
}

func TestBuilder_CanonicalOrderReachesBinder(t *testing.T) {
	req := require.New(t)
	binder := &stubBinder{}
	builder := ceremony.NewBuilder(binder)

	entries := testEntries(t, "C", "A", "B")
	_, err := builder.Build("deadbeef", entries)
	req.NoError(err)

	req.Len(binder.lastCommitments, 3)
	req.Equal("A", binder.lastCommitments[0].Name)
	req.Equal("B", binder.lastCommitments[1].Name)
	req.Equal("C", binder.lastCommitments[2].Name)
}

// TestBuilder_EndToEnd drives the whole ceremony with the real frost
// layer: a 2-of-2 group commits, the builder produces the package, both
// participants sign against it and the aggregate verifies.
func TestBuilder_EndToEnd(t *testing.T) {
	req := require.New(t)

	f, err := frost.New(2, 2)
	req.NoError(err)

	shares, groupKey, err := f.DealShares(frost.Suite().RandomStream(), []string{"P1", "P2"})
	req.NoError(err)

	nonces := make(map[string]*frost.SigningNonce, len(shares))
	entries := make([]ceremony.CommitmentEntry, 0, len(shares))
	for _, share := range shares {
		nonce, commitment, err := f.Commit(frost.Suite().RandomStream(), share)
		req.NoError(err)
		nonces[share.Name] = nonce
		entries = append(entries, ceremony.CommitmentEntry{
			Identifier: share.Name,
			Commitment: commitmentToWire(t, commitment),
		})
	}

	builder := ceremony.NewBuilder(f)
	pkgHex, err := builder.Build("deadbeef", entries)
	req.NoError(err)
	req.NotEmpty(pkgHex)

	pkgBytes, err := hex.DecodeString(pkgHex)
	req.NoError(err)

	pkg, err := f.DecodeSigningPackage(pkgBytes)
	req.NoError(err)
	req.Equal([]byte{0xde, 0xad, 0xbe, 0xef}, pkg.Message)

	// Round-trip: re-encoding the decoded package reproduces the bytes
	// returned by Build.
	reencoded, err := f.EncodeSigningPackage(pkg)
	req.NoError(err)
	req.Equal(pkgHex, hex.EncodeToString(reencoded))

	var partials []*frost.PartialSignature
	for _, share := range shares {
		partial, err := f.PartialSign(share, nonces[share.Name], pkg)
		req.NoError(err)
		partials = append(partials, partial)
	}

	sig, err := f.Aggregate(pkg, partials)
	req.NoError(err)
	req.NoError(f.Verify(pkg.Message, sig, groupKey))
}
