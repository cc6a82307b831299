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

package sign

import (
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// Signature is a complete threshold Schnorr signature. It is
// indistinguishable from a single-signer Schnorr signature and verifies
// under the same equation.
type Signature struct {
	R group.Element
	Z group.Scalar
}

// Bytes serializes the signature as R || z.
func (s *Signature) Bytes(grp group.Group) ([]byte, error) {
	rb, err := grp.SerializeElement(s.R)
	if err != nil {
		return nil, err
	}
	zb := grp.SerializeScalar(s.Z)
	out := make([]byte, 0, len(rb)+len(zb))
	out = append(out, rb...)
	out = append(out, zb...)
	return out, nil
}

// SignatureFromBytes deserializes a signature produced by Bytes.
func SignatureFromBytes(grp group.Group, b []byte) (*Signature, error) {
	elemLen := grp.ElementLength()
	if len(b) != elemLen+grp.ScalarLength() {
		return nil, ErrInvalidSignatureEncoding
	}
	R, err := grp.DeserializeElement(b[:elemLen])
	if err != nil {
		return nil, err
	}
	z, err := grp.DeserializeScalar(b[elemLen:])
	if err != nil {
		return nil, err
	}
	return &Signature{R: R, Z: z}, nil
}

// Aggregate combines partial signatures into a threshold signature.
//
// The commitment set must be the exact set the responders signed over; a
// commitment without a matching partial signature is a dropout, reported
// as a QuorumError so the caller can retry the round with the surviving
// signers. Before summing, every partial is checked individually:
//
//	z_j*G == R_j + c*lambda_j*X_j
//
// where X_j is the signer's verification share derived from the group
// commitment. A failing check is a VerificationFailure naming the signer;
// the remaining honest partials stay valid and the round can be retried
// without the offender.
func Aggregate(cs ciphersuite.Ciphersuite, groupCom *dkg.Commitment, message []byte, commitments []*NonceCommitment, partials []*PartialSignature) (*Signature, error) {
	if groupCom == nil {
		return nil, &dkg.ConfigurationError{Field: "group commitment", Reason: "must not be nil"}
	}
	grp := cs.Group()
	threshold := groupCom.Threshold()

	sorted, err := sortCommitments(commitments)
	if err != nil {
		return nil, err
	}
	if len(partials) < threshold {
		return nil, &dkg.QuorumError{Phase: "respond", Need: threshold, Got: len(partials)}
	}

	byID := make(map[dkg.ParticipantID]*PartialSignature, len(partials))
	for _, p := range partials {
		if p == nil || p.Z == nil {
			return nil, &dkg.ConfigurationError{Field: "partials", Reason: "nil partial signature"}
		}
		if _, ok := byID[p.ID]; ok {
			return nil, ErrDuplicateSigner
		}
		byID[p.ID] = p
	}

	committed := make(map[dkg.ParticipantID]bool, len(sorted))
	responded := 0
	for _, nc := range sorted {
		committed[nc.ID] = true
		if _, ok := byID[nc.ID]; ok {
			responded++
		}
	}
	for id := range byID {
		if !committed[id] {
			return nil, ErrSignerNotCommitted
		}
	}
	if responded != len(sorted) {
		// Dropouts invalidate the binding factors the responders used;
		// the caller retries with the surviving commitment set.
		return nil, &dkg.QuorumError{Phase: "respond", Need: len(sorted), Got: responded}
	}

	groupKey := groupCom.ConstantTerm()
	factors, err := bindingFactors(cs, groupKey, message, sorted)
	if err != nil {
		return nil, err
	}
	R, perSigner := groupCommitment(grp, sorted, factors)

	c, err := challenge(cs, R, groupKey, message)
	if err != nil {
		return nil, err
	}

	ids := signerIDs(sorted)
	var z group.Scalar
	for _, nc := range sorted {
		p := byID[nc.ID]

		lambda, err := dkg.LagrangeCoefficient(grp, nc.ID, ids)
		if err != nil {
			return nil, err
		}
		X := groupCom.PublicShare(grp, nc.ID)

		// z_j*G == R_j + c*lambda_j*X_j
		lhs := grp.ScalarBaseMult(p.Z)
		rhs := perSigner[nc.ID].Add(grp.ScalarMult(X, c.Mul(lambda)))
		if !dkg.ElementsEqual(grp, lhs, rhs) {
			return nil, &dkg.VerificationFailure{ID: nc.ID, Reason: "partial signature check failed"}
		}

		if z == nil {
			z = p.Z.Copy()
		} else {
			z = z.Add(p.Z)
		}
	}

	sig := &Signature{R: R, Z: z}
	if !Verify(cs, sig, groupKey, message) {
		return nil, ErrSignatureInvalid
	}
	return sig, nil
}

// Verify checks a threshold signature under the plain Schnorr equation
// z*G == R + c*Y with c = H(R, Y, message). A caller cannot distinguish
// the signature from a single-signer one.
func Verify(cs ciphersuite.Ciphersuite, sig *Signature, groupKey group.Element, message []byte) bool {
	if sig == nil || sig.R == nil || sig.Z == nil || groupKey == nil {
		return false
	}
	grp := cs.Group()

	c, err := challenge(cs, sig.R, groupKey, message)
	if err != nil {
		return false
	}

	lhs := grp.ScalarBaseMult(sig.Z)
	rhs := sig.R.Add(grp.ScalarMult(groupKey, c))
	return dkg.ElementsEqual(grp, lhs, rhs)
}
