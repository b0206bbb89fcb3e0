package frost

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/corestario/kyber"
)

// Commit generates a one-time nonce pair and its public commitment for
// one signing attempt.
func (f *Frost) Commit(rand cipher.Stream, share *KeyShare) (*SigningNonce, *SigningCommitment, error) {
	if share == nil || len(share.Name) == 0 {
		return nil, nil, errors.New("key share is not initialized")
	}

	d := f.suite.Scalar().Pick(rand)
	e := f.suite.Scalar().Pick(rand)

	nonce := &SigningNonce{
		Name:    share.Name,
		Hiding:  d,
		Binding: e,
	}

	commitment := &SigningCommitment{
		Name:    share.Name,
		Hiding:  f.suite.Point().Mul(d, nil),
		Binding: f.suite.Point().Mul(e, nil),
	}

	return nonce, commitment, nil
}

// PartialSign produces this participant's signature share over the
// signing package: z_i = d_i + rho_i * e_i + lambda_i * s_i * c.
func (f *Frost) PartialSign(share *KeyShare, nonce *SigningNonce, pkg *SigningPackage) (*PartialSignature, error) {
	if nonce.Name != share.Name {
		return nil, fmt.Errorf("nonce belongs to %q, key share to %q", nonce.Name, share.Name)
	}

	var rho kyber.Scalar
	for i, c := range pkg.Commitments {
		if c.Name != share.Name {
			continue
		}
		// The package must echo the commitment this nonce produced,
		// otherwise a tampered package could extract the nonce.
		if !c.Hiding.Equal(f.suite.Point().Mul(nonce.Hiding, nil)) ||
			!c.Binding.Equal(f.suite.Point().Mul(nonce.Binding, nil)) {
			return nil, fmt.Errorf("package commitment of %q does not match the local nonce", share.Name)
		}
		rho = pkg.BindingFactors[i].Factor
	}
	if rho == nil {
		return nil, fmt.Errorf("participant %q is not part of the signing package", share.Name)
	}

	r, err := f.groupCommitment(pkg)
	if err != nil {
		return nil, err
	}

	c, err := f.challenge(r, share.GroupKey, pkg.Message)
	if err != nil {
		return nil, err
	}

	lambda, err := f.lagrangeCoefficient(share.ID, pkg.Commitments)
	if err != nil {
		return nil, err
	}

	z := f.suite.Scalar().Mul(rho, nonce.Binding)
	z = f.suite.Scalar().Add(nonce.Hiding, z)
	lambdaSC := f.suite.Scalar().Mul(f.suite.Scalar().Mul(lambda, share.Secret), c)
	z = f.suite.Scalar().Add(z, lambdaSC)

	return &PartialSignature{
		Name: share.Name,
		Z:    z,
	}, nil
}

// Aggregate combines signature shares from the package's participants
// into the final Schnorr signature.
func (f *Frost) Aggregate(pkg *SigningPackage, partials []*PartialSignature) (*Signature, error) {
	if len(partials) != len(pkg.Commitments) {
		return nil, fmt.Errorf("got %d signature shares for %d commitments", len(partials), len(pkg.Commitments))
	}

	byName := make(map[string]*PartialSignature, len(partials))
	for _, p := range partials {
		if _, ok := byName[p.Name]; ok {
			return nil, fmt.Errorf("duplicate signature share from %q", p.Name)
		}
		byName[p.Name] = p
	}

	r, err := f.groupCommitment(pkg)
	if err != nil {
		return nil, err
	}

	z := f.suite.Scalar().Zero()
	for _, c := range pkg.Commitments {
		p, ok := byName[c.Name]
		if !ok {
			return nil, fmt.Errorf("missing signature share from %q", c.Name)
		}
		z = f.suite.Scalar().Add(z, p.Z)
	}

	return &Signature{R: r, Z: z}, nil
}

// Verify checks the aggregated signature against the group public key:
// z*G == R + c*Y.
func (f *Frost) Verify(message []byte, sig *Signature, groupKey kyber.Point) error {
	c, err := f.challenge(sig.R, groupKey, message)
	if err != nil {
		return err
	}

	lhs := f.suite.Point().Mul(sig.Z, nil)
	rhs := f.suite.Point().Add(sig.R, f.suite.Point().Mul(c, groupKey))

	if !lhs.Equal(rhs) {
		return errors.New("signature verification failed")
	}
	return nil
}

// VerifySignature checks an aggregated signature without knowing the
// group parameters. Verification does not depend on the threshold.
func VerifySignature(message []byte, sig *Signature, groupKey kyber.Point) error {
	f := &Frost{suite: baseSuite}
	return f.Verify(message, sig, groupKey)
}

// challenge computes c = H(R || Y || message).
func (f *Frost) challenge(r, groupKey kyber.Point, message []byte) (kyber.Scalar, error) {
	rBytes, err := r.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal R: %w", err)
	}
	yBytes, err := groupKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal group key: %w", err)
	}

	return f.hashToScalar(challengeDomain, rBytes, yBytes, message), nil
}
