package frost

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"sort"

	"github.com/corestario/kyber"
	"github.com/corestario/kyber/group/edwards25519"
)

const (
	identifierDomain    = "fc4tx/frost/identifier"
	bindingFactorDomain = "fc4tx/frost/binding_factor"
	challengeDomain     = "fc4tx/frost/challenge"
)

var baseSuite = edwards25519.NewBlakeSHA256Ed25519()

// Suite returns the group suite shared by all frost instances.
func Suite() *edwards25519.SuiteEd25519 {
	return baseSuite
}

// Frost holds the threshold parameters of one signing group.
type Frost struct {
	suite     *edwards25519.SuiteEd25519
	threshold int
	total     int
}

// KeyShare is a participant's share of the group secret key, together
// with the group public key every share holder agrees on.
type KeyShare struct {
	Name     string
	ID       kyber.Scalar
	Secret   kyber.Scalar
	Public   kyber.Point
	GroupKey kyber.Point
}

func New(threshold, total int) (*Frost, error) {
	if threshold < 2 {
		return nil, errors.New("threshold must be at least 2")
	}
	if total < threshold {
		return nil, fmt.Errorf("total participants (%d) must be >= threshold (%d)", total, threshold)
	}

	return &Frost{
		suite:     baseSuite,
		threshold: threshold,
		total:     total,
	}, nil
}

func (f *Frost) Threshold() int {
	return f.threshold
}

// IdentifierScalar maps a participant name to its scalar identifier.
// The mapping is deterministic, so every party derives the same scalar
// for the same name without coordination.
func (f *Frost) IdentifierScalar(name string) (kyber.Scalar, error) {
	if len(name) == 0 {
		return nil, errors.New("participant name cannot be empty")
	}
	xof := f.suite.XOF(append([]byte(identifierDomain), name...))
	return f.suite.Scalar().Pick(xof), nil
}

// DealShares generates key shares for the given participants with a
// single trusted dealer. Names must be unique and non-empty; shares are
// dealt in lexicographic name order.
func (f *Frost) DealShares(rand cipher.Stream, names []string) ([]*KeyShare, kyber.Point, error) {
	if len(names) != f.total {
		return nil, nil, fmt.Errorf("expected %d participant names, got %d", f.total, len(names))
	}

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	seen := make(map[string]struct{}, len(sorted))
	for _, name := range sorted {
		if len(name) == 0 {
			return nil, nil, errors.New("participant name cannot be empty")
		}
		if _, ok := seen[name]; ok {
			return nil, nil, fmt.Errorf("duplicate participant name %q", name)
		}
		seen[name] = struct{}{}
	}

	// Random polynomial of degree threshold-1 with the group secret as
	// the constant term.
	coeffs := make([]kyber.Scalar, f.threshold)
	for i := range coeffs {
		coeffs[i] = f.suite.Scalar().Pick(rand)
	}

	groupKey := f.suite.Point().Mul(coeffs[0], nil)

	shares := make([]*KeyShare, 0, len(sorted))
	for _, name := range sorted {
		id, err := f.IdentifierScalar(name)
		if err != nil {
			return nil, nil, err
		}

		secret := f.evalPolynomial(coeffs, id)
		shares = append(shares, &KeyShare{
			Name:     name,
			ID:       id,
			Secret:   secret,
			Public:   f.suite.Point().Mul(secret, nil),
			GroupKey: groupKey.Clone(),
		})
	}

	return shares, groupKey, nil
}

func (f *Frost) evalPolynomial(coeffs []kyber.Scalar, x kyber.Scalar) kyber.Scalar {
	result := f.suite.Scalar().Set(coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = f.suite.Scalar().Mul(result, x)
		result = f.suite.Scalar().Add(result, coeffs[i])
	}
	return result
}

// hashToScalar derives a scalar from a domain tag and a transcript.
func (f *Frost) hashToScalar(domain string, transcript ...[]byte) kyber.Scalar {
	seed := []byte(domain)
	for _, part := range transcript {
		seed = append(seed, part...)
	}
	return f.suite.Scalar().Pick(f.suite.XOF(seed))
}

// lagrangeCoefficient computes the Lagrange coefficient at zero for id
// over the identifier set of the given commitments.
func (f *Frost) lagrangeCoefficient(id kyber.Scalar, commitments []*SigningCommitment) (kyber.Scalar, error) {
	num := f.suite.Scalar().One()
	den := f.suite.Scalar().One()

	for _, c := range commitments {
		otherID, err := f.IdentifierScalar(c.Name)
		if err != nil {
			return nil, err
		}
		if otherID.Equal(id) {
			continue
		}
		num = f.suite.Scalar().Mul(num, otherID)
		diff := f.suite.Scalar().Sub(otherID, id)
		den = f.suite.Scalar().Mul(den, diff)
	}

	if den.Equal(f.suite.Scalar().Zero()) {
		return nil, errors.New("degenerate identifier set")
	}

	return f.suite.Scalar().Mul(num, f.suite.Scalar().Inv(den)), nil
}
