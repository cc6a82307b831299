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
	"crypto/subtle"

	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// Commitment is the public Feldman commitment to a secret polynomial: the
// ordered group elements C_k = a_k * G for each coefficient a_k.
//
// A commitment is public and immutable once published. It lets any recipient
// verify a received share against the sender's polynomial without learning
// the coefficients.
type Commitment struct {
	// Coefficients are the commitment elements [a_0*G, a_1*G, ..., a_{t-1}*G].
	Coefficients []group.Element
}

// Threshold returns the threshold value t (the number of coefficients).
func (c *Commitment) Threshold() int {
	return len(c.Coefficients)
}

// ConstantTerm returns the commitment to the secret, C_0 = a_0 * G. This is
// the sender's contribution to the group public key.
func (c *Commitment) ConstantTerm() group.Element {
	if len(c.Coefficients) == 0 {
		return nil
	}
	return c.Coefficients[0].Copy()
}

// PublicShare evaluates the commitment at a participant's index:
//
//	pubshare(id) = C_0 + id*C_1 + id^2*C_2 + ... + id^(t-1)*C_(t-1)
//
// This is the public key corresponding to the secret share f(id).
func (c *Commitment) PublicShare(grp group.Group, id ParticipantID) group.Element {
	x := id.Scalar(grp)

	result := grp.Identity()
	xPower := scalarFromUint64(grp, 1)

	for k := 0; k < len(c.Coefficients); k++ {
		term := grp.ScalarMult(c.Coefficients[k], xPower)
		result = result.Add(term)
		if k < len(c.Coefficients)-1 {
			xPower = xPower.Mul(x)
		}
	}

	return result
}

// Add adds two commitments element-wise. Both commitments must have the same
// threshold; returns ErrMismatchedThreshold otherwise.
//
// Summing the verified peers' commitments yields the commitment to the joint
// polynomial, from which every participant's long-term public share and the
// group public key derive.
func (c *Commitment) Add(other *Commitment) (*Commitment, error) {
	if c.Threshold() != other.Threshold() {
		return nil, ErrMismatchedThreshold
	}

	elements := make([]group.Element, len(c.Coefficients))
	for i := range c.Coefficients {
		elements[i] = c.Coefficients[i].Add(other.Coefficients[i])
	}

	return &Commitment{Coefficients: elements}, nil
}

// Equal compares two commitments using constant-time element comparison.
func (c *Commitment) Equal(grp group.Group, other *Commitment) bool {
	if other == nil || len(c.Coefficients) != len(other.Coefficients) {
		return false
	}
	equal := 1
	for i := range c.Coefficients {
		aBytes, err := grp.SerializeElement(c.Coefficients[i])
		if err != nil {
			return false
		}
		bBytes, err := grp.SerializeElement(other.Coefficients[i])
		if err != nil {
			return false
		}
		equal &= subtle.ConstantTimeCompare(aBytes, bBytes)
	}
	return equal == 1
}

// Bytes serializes the commitment as the concatenation of all elements in
// canonical form. The total length is t * element_length bytes.
func (c *Commitment) Bytes(grp group.Group) ([]byte, error) {
	result := make([]byte, 0, len(c.Coefficients)*grp.ElementLength())

	for _, e := range c.Coefficients {
		var elemBytes []byte
		if e.IsIdentity() {
			// Identity serializes as all zeros; valid polynomials can have
			// zero higher-degree coefficients.
			elemBytes = make([]byte, grp.ElementLength())
		} else {
			var err error
			elemBytes, err = grp.SerializeElement(e)
			if err != nil {
				return nil, err
			}
		}
		result = append(result, elemBytes...)
	}

	return result, nil
}

// CommitmentFromBytes deserializes a commitment of threshold t.
//
// The input must have exactly t * element_length bytes. All-zero element
// slots decode to the identity; everything else goes through the group's
// element validation (curve and subgroup checks).
func CommitmentFromBytes(grp group.Group, b []byte, t int) (*Commitment, error) {
	elemLen := grp.ElementLength()
	if len(b) != t*elemLen {
		return nil, ErrInvalidCommitmentLength
	}

	elements := make([]group.Element, t)
	for i := 0; i < t; i++ {
		elemBytes := b[i*elemLen : (i+1)*elemLen]

		isZero := true
		for _, by := range elemBytes {
			if by != 0 {
				isZero = false
				break
			}
		}

		if isZero {
			elements[i] = grp.Identity()
		} else {
			elem, err := grp.DeserializeElement(elemBytes)
			if err != nil {
				return nil, err
			}
			elements[i] = elem
		}
	}

	return &Commitment{Coefficients: elements}, nil
}

// VerifyShare checks a received share against the sender's published
// commitment (Feldman consistency):
//
//	share * G == pubshare
//
// where pubshare is the commitment evaluated at the recipient's index. Uses
// constant-time comparison.
func VerifyShare(grp group.Group, share group.Scalar, pubshare group.Element) bool {
	actual := grp.ScalarBaseMult(share)
	return ElementsEqual(grp, actual, pubshare)
}
