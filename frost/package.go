package frost

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/corestario/kyber"
)

// BindingFactor is the per-participant scalar binding a signature share
// to the message and the full commitment set.
type BindingFactor struct {
	Name   string
	Factor kyber.Scalar
}

// SigningPackage binds an unsigned message to the canonical commitment
// set of one signing attempt. Commitments and binding factors are kept
// in lexicographic name order; every participant re-deriving the package
// from the same inputs obtains identical bytes.
type SigningPackage struct {
	Message        []byte
	Commitments    []*SigningCommitment
	BindingFactors []*BindingFactor
}

// BuildSigningPackage validates the commitment set against the group's
// threshold policy and binds it to the message. The input order of
// commitments does not matter; the package is canonicalized internally.
func (f *Frost) BuildSigningPackage(message []byte, commitments []*SigningCommitment) (*SigningPackage, error) {
	if len(message) == 0 {
		return nil, errors.New("message cannot be empty")
	}
	if len(commitments) == 0 {
		return nil, errors.New("commitment set cannot be empty")
	}
	if len(commitments) < f.threshold {
		return nil, fmt.Errorf("commitment set has %d entries, threshold requires %d", len(commitments), f.threshold)
	}
	if len(commitments) > f.total {
		return nil, fmt.Errorf("commitment set has %d entries for a group of %d", len(commitments), f.total)
	}

	ordered := make([]*SigningCommitment, len(commitments))
	copy(ordered, commitments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	seen := make(map[string]struct{}, len(ordered))
	for _, c := range ordered {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("duplicate commitment from %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	factors, err := f.bindingFactors(message, ordered)
	if err != nil {
		return nil, err
	}

	return &SigningPackage{
		Message:        message,
		Commitments:    ordered,
		BindingFactors: factors,
	}, nil
}

// bindingFactors derives rho_i = H(message || commitment list || id_i)
// for each participant in the ordered set. Every transcript element is
// length-prefixed, so no two distinct inputs concatenate to the same
// byte stream.
func (f *Frost) bindingFactors(message []byte, ordered []*SigningCommitment) ([]*BindingFactor, error) {
	var transcript bytes.Buffer
	writeFramed := func(bz []byte) {
		var frame [4]byte
		binary.BigEndian.PutUint32(frame[:], uint32(len(bz)))
		transcript.Write(frame[:])
		transcript.Write(bz)
	}

	writeFramed(message)
	for _, c := range ordered {
		hiding, err := c.Hiding.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal hiding commitment of %q: %w", c.Name, err)
		}
		binding, err := c.Binding.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal binding commitment of %q: %w", c.Name, err)
		}
		writeFramed([]byte(c.Name))
		writeFramed(hiding)
		writeFramed(binding)
	}

	factors := make([]*BindingFactor, 0, len(ordered))
	for _, c := range ordered {
		rho := f.hashToScalar(bindingFactorDomain, transcript.Bytes(), []byte(c.Name))
		factors = append(factors, &BindingFactor{Name: c.Name, Factor: rho})
	}

	return factors, nil
}

// groupCommitment computes R = sum(D_i + rho_i * E_i).
func (f *Frost) groupCommitment(pkg *SigningPackage) (kyber.Point, error) {
	r := f.suite.Point().Null()
	for i, c := range pkg.Commitments {
		bf := pkg.BindingFactors[i]
		if bf.Name != c.Name {
			return nil, fmt.Errorf("binding factor %q does not match commitment %q", bf.Name, c.Name)
		}
		rhoE := f.suite.Point().Mul(bf.Factor, c.Binding)
		r = f.suite.Point().Add(r, f.suite.Point().Add(c.Hiding, rhoE))
	}
	return r, nil
}

type signingPackageWire struct {
	Message        []byte               `json:"message"`
	Commitments    []*SigningCommitment `json:"commitments"`
	BindingFactors []bindingFactorWire  `json:"binding_factors"`
}

type bindingFactorWire struct {
	Name   string `json:"name"`
	Factor []byte `json:"factor"`
}

// EncodeSigningPackage serializes a package to its canonical bytes.
func (f *Frost) EncodeSigningPackage(pkg *SigningPackage) ([]byte, error) {
	wire := signingPackageWire{
		Message:     pkg.Message,
		Commitments: pkg.Commitments,
	}
	for _, bf := range pkg.BindingFactors {
		factor, err := bf.Factor.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal binding factor of %q: %w", bf.Name, err)
		}
		wire.BindingFactors = append(wire.BindingFactors, bindingFactorWire{Name: bf.Name, Factor: factor})
	}

	return json.Marshal(&wire)
}

// DecodeSigningPackage is the inverse of EncodeSigningPackage. Decoding
// then re-encoding yields byte-identical output.
func (f *Frost) DecodeSigningPackage(data []byte) (*SigningPackage, error) {
	var wire signingPackageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signing package: %w", err)
	}
	if len(wire.Message) == 0 {
		return nil, errors.New("signing package has an empty message")
	}
	if len(wire.Commitments) != len(wire.BindingFactors) {
		return nil, errors.New("signing package has mismatched commitment and binding factor counts")
	}

	pkg := &SigningPackage{
		Message:     wire.Message,
		Commitments: wire.Commitments,
	}
	for i, bf := range wire.BindingFactors {
		if bf.Name != wire.Commitments[i].Name {
			return nil, fmt.Errorf("binding factor %q does not match commitment %q", bf.Name, wire.Commitments[i].Name)
		}
		factor := f.suite.Scalar()
		if err := factor.UnmarshalBinary(bf.Factor); err != nil {
			return nil, fmt.Errorf("invalid binding factor of %q: %w", bf.Name, err)
		}
		pkg.BindingFactors = append(pkg.BindingFactors, &BindingFactor{Name: bf.Name, Factor: factor})
	}

	return pkg, nil
}
