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

// Share repair implements the repairable threshold scheme from
// https://eprint.iacr.org/2017/1155: a participant that lost its share
// recovers it with help from a threshold of peers, without any party
// learning the group secret or another party's share.
//
// The exchange runs in three steps. Each helper splits its
// Lagrange-weighted contribution into random deltas, one per helper
// (RepairDeltas). Each helper sums the deltas it received into a sigma
// (RepairSigma). The recovering participant sums the sigmas and checks
// the result against the group commitment (RepairShare). Deltas and
// sigmas must travel over confidential channels.

package dkg

import (
	"io"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// RepairDeltas is the helper's first repair step. It computes the
// helper's Lagrange-weighted contribution lambda_helper(lost) * share and
// splits it into one delta per helper, uniformly random except for the
// last, which is chosen so the deltas sum to the contribution.
//
// helpers must contain the calling helper's id and must not contain the
// id of the participant being recovered.
func RepairDeltas(cs ciphersuite.Ciphersuite, helper, lost ParticipantID, share group.Scalar, helpers []ParticipantID, rng io.Reader) (map[ParticipantID]group.Scalar, error) {
	if len(helpers) < 2 {
		return nil, &QuorumError{Phase: "repair", Need: 2, Got: len(helpers)}
	}
	if lost == 0 || helper == 0 {
		return nil, &ConfigurationError{Field: "id", Reason: "participant id must be nonzero"}
	}
	for _, id := range helpers {
		if id == lost {
			return nil, &ConfigurationError{Field: "helpers", Reason: "recovering participant cannot be a helper"}
		}
	}
	if share == nil {
		return nil, &ConfigurationError{Field: "share", Reason: "must not be nil"}
	}

	grp := cs.Group()

	// lambda ranges over the helper set but is evaluated at the lost
	// participant's point, not at zero.
	lambda, err := lagrangeAt(grp, helper, uint64(lost), helpers)
	if err != nil {
		return nil, err
	}
	contribution := lambda.Mul(share)

	deltas := make(map[ParticipantID]group.Scalar, len(helpers))
	randomSum := grp.NewScalar()
	for i, id := range helpers {
		if i == len(helpers)-1 {
			break
		}
		delta, err := RandomScalar(cs, rng, "repair delta")
		if err != nil {
			return nil, err
		}
		deltas[id] = delta
		randomSum = randomSum.Add(delta)
	}
	deltas[helpers[len(helpers)-1]] = contribution.Sub(randomSum)

	return deltas, nil
}

// RepairSigma is the helper's second repair step: the sum of the deltas
// received from every helper, including the helper's own.
func RepairSigma(deltas []group.Scalar) (group.Scalar, error) {
	if len(deltas) == 0 {
		return nil, &QuorumError{Phase: "repair", Need: 1, Got: 0}
	}
	sigma := deltas[0].Copy()
	for _, d := range deltas[1:] {
		sigma = sigma.Add(d)
	}
	return sigma, nil
}

// RepairShare is the recovering participant's final step. The lost share
// is the sum of the helpers' sigmas, and when a group commitment is
// supplied the result is checked against the participant's public
// verification share before being returned.
func RepairShare(grp group.Group, lost ParticipantID, sigmas []group.Scalar, com *Commitment) (group.Scalar, error) {
	if len(sigmas) == 0 {
		return nil, &QuorumError{Phase: "repair", Need: 1, Got: 0}
	}
	if lost == 0 {
		return nil, &ConfigurationError{Field: "id", Reason: "participant id must be nonzero"}
	}

	recovered := sigmas[0].Copy()
	for _, s := range sigmas[1:] {
		recovered = recovered.Add(s)
	}

	if com != nil {
		pubshare := com.PublicShare(grp, lost)
		if !VerifyShare(grp, recovered, pubshare) {
			return nil, &VerificationFailure{ID: lost, Reason: "repaired share does not match commitment", Err: ErrShareVerification}
		}
	}

	return recovered, nil
}
