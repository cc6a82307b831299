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
	"sort"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// PartialSignature is one signer's response for a signing round.
type PartialSignature struct {
	ID dkg.ParticipantID
	Z  group.Scalar
}

// sortCommitments returns the commitment set in ascending id order,
// rejecting duplicates. Every party hashes the set in this order, so
// binding factors agree regardless of delivery order.
func sortCommitments(commitments []*NonceCommitment) ([]*NonceCommitment, error) {
	sorted := make([]*NonceCommitment, len(commitments))
	copy(sorted, commitments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			return nil, ErrDuplicateSigner
		}
	}
	return sorted, nil
}

// bindingFactors derives the per-signer binding factor rho_j from a
// transcript over the group key, the message, the full sorted commitment
// set, and the signer's id. Binding every signer to the complete set
// prevents a commitment from being replayed into a different round.
func bindingFactors(cs ciphersuite.Ciphersuite, groupKey group.Element, message []byte, sorted []*NonceCommitment) (map[dkg.ParticipantID]group.Scalar, error) {
	grp := cs.Group()

	var setBytes []byte
	for _, nc := range sorted {
		b, err := nc.Bytes(grp)
		if err != nil {
			return nil, err
		}
		setBytes = append(setBytes, b...)
	}

	factors := make(map[dkg.ParticipantID]group.Scalar, len(sorted))
	for _, nc := range sorted {
		tr := dkg.NewTranscript(cs, dkg.DomainSigningBinding)
		if _, err := tr.AppendElement(grp, "group-key", groupKey); err != nil {
			return nil, err
		}
		tr.Append("message", message)
		tr.Append("commitments", setBytes)
		tr.Append("id", nc.ID.Bytes())
		factors[nc.ID] = tr.Challenge()
	}
	return factors, nil
}

// groupCommitment computes each signer's effective nonce commitment
// R_j = D_j + rho_j*E_j and their sum R.
func groupCommitment(grp group.Group, sorted []*NonceCommitment, factors map[dkg.ParticipantID]group.Scalar) (group.Element, map[dkg.ParticipantID]group.Element) {
	perSigner := make(map[dkg.ParticipantID]group.Element, len(sorted))
	var R group.Element
	for _, nc := range sorted {
		rhoE := grp.ScalarMult(nc.Binding, factors[nc.ID])
		Rj := nc.Hiding.Add(rhoE)
		perSigner[nc.ID] = Rj
		if R == nil {
			R = Rj.Copy()
		} else {
			R = R.Add(Rj)
		}
	}
	return R, perSigner
}

// challenge computes the group-level Fiat-Shamir challenge
// c = H(R, groupKey, message). The same value drives every signer's
// response and the standard Schnorr verification equation.
func challenge(cs ciphersuite.Ciphersuite, R, groupKey group.Element, message []byte) (group.Scalar, error) {
	grp := cs.Group()
	tr := dkg.NewTranscript(cs, dkg.DomainSigningChallenge)
	if _, err := tr.AppendElement(grp, "nonce", R); err != nil {
		return nil, err
	}
	if _, err := tr.AppendElement(grp, "group-key", groupKey); err != nil {
		return nil, err
	}
	tr.Append("message", message)
	return tr.Challenge(), nil
}

// signerIDs extracts the sorted signer set.
func signerIDs(sorted []*NonceCommitment) []dkg.ParticipantID {
	ids := make([]dkg.ParticipantID, len(sorted))
	for i, nc := range sorted {
		ids[i] = nc.ID
	}
	return ids
}

// Respond executes the response round for one signer: given the complete
// commitment set of the round, it derives the binding factors, the group
// nonce R, the challenge, and this signer's Lagrange coefficient, and
// returns z = d + rho*e + lambda*x*c.
//
// The commitment set must contain the signer's own commitment and at
// least threshold entries; a smaller set is a QuorumError and the round
// must be retried with more signers. The nonce is consumed whether or not
// the call succeeds afterward, so a failed round never reuses it.
func Respond(cs ciphersuite.Ciphersuite, ks *dkg.KeyShare, nonce *SigningNonce, message []byte, commitments []*NonceCommitment) (*PartialSignature, error) {
	if ks == nil || ks.SecretShare == nil {
		return nil, &dkg.ConfigurationError{Field: "key share", Reason: "must hold a secret share"}
	}
	if nonce == nil {
		return nil, &dkg.ConfigurationError{Field: "nonce", Reason: "must not be nil"}
	}
	if nonce.ID() != ks.ID {
		return nil, &dkg.ConfigurationError{Field: "nonce", Reason: "nonce belongs to a different signer"}
	}

	grp := cs.Group()
	threshold := ks.GroupCommitment.Threshold()

	sorted, err := sortCommitments(commitments)
	if err != nil {
		return nil, err
	}
	if len(sorted) < threshold {
		return nil, &dkg.QuorumError{Phase: "commit", Need: threshold, Got: len(sorted)}
	}

	own := false
	for _, nc := range sorted {
		if nc.ID == ks.ID {
			own = true
			break
		}
	}
	if !own {
		return nil, &dkg.ProtocolStateError{Op: "Respond", State: "own nonce commitment absent from round"}
	}

	factors, err := bindingFactors(cs, ks.GroupPublicKey, message, sorted)
	if err != nil {
		return nil, err
	}
	R, _ := groupCommitment(grp, sorted, factors)

	c, err := challenge(cs, R, ks.GroupPublicKey, message)
	if err != nil {
		return nil, err
	}

	lambda, err := dkg.LagrangeCoefficient(grp, ks.ID, signerIDs(sorted))
	if err != nil {
		return nil, err
	}

	d, e, err := nonce.consume()
	if err != nil {
		return nil, err
	}

	// z = d + rho*e + lambda*x*c
	z := d.Add(factors[ks.ID].Mul(e))
	z = z.Add(lambda.Mul(ks.SecretShare).Mul(c))

	zero := grp.NewScalar()
	d = d.Mul(zero)
	e = e.Mul(zero)

	return &PartialSignature{ID: ks.ID, Z: z}, nil
}
