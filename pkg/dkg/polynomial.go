// SPDX-License-Identifier: Apache-2.0
//
// Copyright 2025 Peridot Crypto
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dkg

import (
	"encoding/binary"
	"io"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// randomScalarWidth is the number of random bytes hashed into each freshly
// drawn scalar. 64 bytes gives a negligible bias for all supported groups.
const randomScalarWidth = 64

// SecretPolynomial is one participant's degree-(t-1) secret sharing
// polynomial over the group's scalar field.
//
// f(x) = coeffs[0] + coeffs[1]*x + ... + coeffs[t-1]*x^(t-1)
//
// The constant term coeffs[0] is the participant's contribution to the
// shared secret. The polynomial is owned exclusively by the participant that
// generated it and must be destroyed once all shares derived from it have
// been distributed and the long-term share is finalized.
type SecretPolynomial struct {
	coeffs []group.Scalar
	grp    group.Group
}

// GeneratePolynomial draws t uniformly random coefficients from rng.
//
// Raw randomness is mapped to scalars through the ciphersuite's
// hash-to-scalar function, which handles scalar encoding uniformly for all
// groups. Fails only if the randomness source fails.
func GeneratePolynomial(cs ciphersuite.Ciphersuite, rng io.Reader, threshold int) (*SecretPolynomial, error) {
	if threshold <= 0 {
		return nil, &ConfigurationError{Field: "threshold", Reason: "must be at least 1"}
	}
	if threshold > MaxParticipants {
		return nil, &ConfigurationError{Field: "threshold", Reason: "exceeds maximum participant count"}
	}

	coeffs := make([]group.Scalar, threshold)
	seed := make([]byte, randomScalarWidth)
	defer ZeroBytes(seed)

	prefix := []byte(TranscriptPrefix + "poly coeff")
	for i := 0; i < threshold; i++ {
		if _, err := io.ReadFull(rng, seed); err != nil {
			return nil, err
		}

		// Input: prefix || seed || i (i as 4-byte big-endian). The index
		// keeps coefficients independent even if rng repeats output.
		input := make([]byte, len(prefix)+len(seed)+4)
		copy(input, prefix)
		copy(input[len(prefix):], seed)
		binary.BigEndian.PutUint32(input[len(prefix)+len(seed):], uint32(i))

		coeffs[i] = cs.H3(input)
		ZeroBytes(input)
	}

	return NewSecretPolynomial(cs.Group(), coeffs)
}

// NewSecretPolynomial creates a polynomial with the given coefficients,
// ordered from the constant term to the highest degree term.
//
// Returns ErrInvalidPolynomial if coeffs is empty.
func NewSecretPolynomial(grp group.Group, coeffs []group.Scalar) (*SecretPolynomial, error) {
	if len(coeffs) == 0 {
		return nil, ErrInvalidPolynomial
	}

	// Deep-copy so later mutation of the input cannot change the polynomial.
	copied := make([]group.Scalar, len(coeffs))
	for i, c := range coeffs {
		copied[i] = c.Copy()
	}

	return &SecretPolynomial{
		coeffs: copied,
		grp:    grp,
	}, nil
}

// Threshold returns the threshold value t (the number of coefficients).
func (p *SecretPolynomial) Threshold() int {
	return len(p.coeffs)
}

// Degree returns the degree of the polynomial (t-1).
func (p *SecretPolynomial) Degree() int {
	return len(p.coeffs) - 1
}

// Evaluate evaluates the polynomial at x using Horner's method in O(t)
// scalar operations:
//
//	f(x) = a0 + x(a1 + x(a2 + ... + x(a_{t-1})))
//
// Evaluation is defined for x = 0 (returns the constant term) and for
// participant indices. The result for a peer's index is that peer's share
// and leaks nothing beyond it; the constant term itself must only ever
// leave the owning participant inside the finalize step.
func (p *SecretPolynomial) Evaluate(x group.Scalar) group.Scalar {
	value := p.grp.NewScalar()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		value = value.Mul(x)
		value = value.Add(p.coeffs[i])
	}
	return value
}

// EvaluateAt evaluates the polynomial at a participant's index. This is the
// share f(id) that the owner sends privately to that participant.
func (p *SecretPolynomial) EvaluateAt(id ParticipantID) group.Scalar {
	return p.Evaluate(id.Scalar(p.grp))
}

// ConstantTerm returns a copy of the constant term a_0, the participant's
// contribution to the shared secret.
func (p *SecretPolynomial) ConstantTerm() group.Scalar {
	return p.coeffs[0].Copy()
}

// Commit maps every coefficient through scalar multiplication by the
// generator, producing the public Feldman commitment [a_0*G, ..., a_{t-1}*G].
func (p *SecretPolynomial) Commit() *Commitment {
	elements := make([]group.Element, len(p.coeffs))
	for i, coeff := range p.coeffs {
		elements[i] = p.grp.ScalarBaseMult(coeff)
	}
	return &Commitment{Coefficients: elements}
}

// Zeroize clears the polynomial coefficients.
//
// SECURITY NOTE: Due to Go's type system, this cannot directly zero the
// memory holding scalar values; the group.Scalar interface doesn't expose
// internal byte storage. Each coefficient is overwritten with a zero scalar
// and then nilled to make it GC-eligible. For high-assurance environments,
// pair this with a group implementation that supports secure zeroization.
func (p *SecretPolynomial) Zeroize() {
	if p == nil {
		return
	}
	if p.grp != nil {
		zero := p.grp.NewScalar()
		for i := range p.coeffs {
			if p.coeffs[i] != nil {
				p.coeffs[i] = zero
			}
		}
	}
	for i := range p.coeffs {
		p.coeffs[i] = nil
	}
	p.coeffs = nil
}
