package frost

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corestario/kyber"
)

// SigningNonce is a participant's one-time nonce pair. It must never be
// reused across signing attempts, even for the same message.
type SigningNonce struct {
	Name    string
	Hiding  kyber.Scalar
	Binding kyber.Scalar
}

// SigningCommitment is the public commitment to a signing nonce pair,
// broadcast in the commitment round.
type SigningCommitment struct {
	Name    string
	Hiding  kyber.Point
	Binding kyber.Point
}

// NewSigningCommitment builds a commitment from its wire encoding,
// rejecting structurally invalid curve points. The hiding and binding
// components keep their positions; they are never interchangeable.
func NewSigningCommitment(name string, hiding, binding []byte) (*SigningCommitment, error) {
	if len(name) == 0 {
		return nil, errors.New("participant name cannot be empty")
	}

	hidingPoint := baseSuite.Point()
	if err := hidingPoint.UnmarshalBinary(hiding); err != nil {
		return nil, fmt.Errorf("invalid hiding commitment: %w", err)
	}

	bindingPoint := baseSuite.Point()
	if err := bindingPoint.UnmarshalBinary(binding); err != nil {
		return nil, fmt.Errorf("invalid binding commitment: %w", err)
	}

	c := &SigningCommitment{
		Name:    name,
		Hiding:  hidingPoint,
		Binding: bindingPoint,
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *SigningCommitment) validate() error {
	if len(c.Name) == 0 {
		return errors.New("participant name cannot be empty")
	}
	if c.Hiding == nil || c.Binding == nil {
		return errors.New("commitment is missing a component")
	}

	identity := baseSuite.Point().Null()
	if c.Hiding.Equal(identity) {
		return fmt.Errorf("hiding commitment of %q is the identity element", c.Name)
	}
	if c.Binding.Equal(identity) {
		return fmt.Errorf("binding commitment of %q is the identity element", c.Name)
	}

	return nil
}

type signingCommitmentWire struct {
	Name    string `json:"name"`
	Hiding  []byte `json:"hiding"`
	Binding []byte `json:"binding"`
}

func (c *SigningCommitment) MarshalJSON() ([]byte, error) {
	hiding, err := c.Hiding.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hiding commitment: %w", err)
	}
	binding, err := c.Binding.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal binding commitment: %w", err)
	}

	return json.Marshal(&signingCommitmentWire{
		Name:    c.Name,
		Hiding:  hiding,
		Binding: binding,
	})
}

func (c *SigningCommitment) UnmarshalJSON(data []byte) error {
	var wire signingCommitmentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to unmarshal commitment: %w", err)
	}

	decoded, err := NewSigningCommitment(wire.Name, wire.Hiding, wire.Binding)
	if err != nil {
		return err
	}

	*c = *decoded
	return nil
}

// PartialSignature is one participant's share of the final signature.
type PartialSignature struct {
	Name string
	Z    kyber.Scalar
}

type partialSignatureWire struct {
	Name string `json:"name"`
	Z    []byte `json:"z"`
}

func (p *PartialSignature) MarshalJSON() ([]byte, error) {
	z, err := p.Z.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signature share: %w", err)
	}
	return json.Marshal(&partialSignatureWire{Name: p.Name, Z: z})
}

func (p *PartialSignature) UnmarshalJSON(data []byte) error {
	var wire partialSignatureWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to unmarshal signature share: %w", err)
	}
	if len(wire.Name) == 0 {
		return errors.New("participant name cannot be empty")
	}

	z := baseSuite.Scalar()
	if err := z.UnmarshalBinary(wire.Z); err != nil {
		return fmt.Errorf("invalid signature share scalar: %w", err)
	}

	p.Name = wire.Name
	p.Z = z
	return nil
}

// Signature is the aggregated Schnorr signature (R, z).
type Signature struct {
	R kyber.Point
	Z kyber.Scalar
}

type signatureWire struct {
	R []byte `json:"r"`
	Z []byte `json:"z"`
}

func (s *Signature) MarshalJSON() ([]byte, error) {
	r, err := s.R.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal R: %w", err)
	}
	z, err := s.Z.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal z: %w", err)
	}
	return json.Marshal(&signatureWire{R: r, Z: z})
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var wire signatureWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to unmarshal signature: %w", err)
	}

	r := baseSuite.Point()
	if err := r.UnmarshalBinary(wire.R); err != nil {
		return fmt.Errorf("invalid R point: %w", err)
	}
	z := baseSuite.Scalar()
	if err := z.UnmarshalBinary(wire.Z); err != nil {
		return fmt.Errorf("invalid z scalar: %w", err)
	}

	s.R = r
	s.Z = z
	return nil
}
