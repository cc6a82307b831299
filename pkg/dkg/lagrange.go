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
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// LagrangeCoefficient computes the Lagrange basis polynomial for the
// participant id, evaluated at zero, over the given signer set:
//
//	lambda_i(0) = prod_{j != i} x_j / (x_j - x_i)
//
// The signer set must contain id and must not contain duplicates or the
// coefficient is undefined; callers validate membership before calling.
func LagrangeCoefficient(grp group.Group, id ParticipantID, signers []ParticipantID) (group.Scalar, error) {
	return lagrangeAt(grp, id, 0, signers)
}

// lagrangeAt evaluates the Lagrange basis polynomial for id at the point
// x, given as a raw identifier value. x = 0 yields the interpolation
// coefficient for secret reconstruction; a nonzero x interpolates a share
// for that participant (share repair).
func lagrangeAt(grp group.Group, id ParticipantID, x uint64, signers []ParticipantID) (group.Scalar, error) {
	xi := id.Scalar(grp)
	xp := scalarFromUint64(grp, x)

	found := false
	num := scalarFromUint64(grp, 1)
	den := scalarFromUint64(grp, 1)

	for _, sid := range signers {
		if sid == id {
			if found {
				return nil, ErrDuplicateParticipant
			}
			found = true
			continue
		}
		xj := sid.Scalar(grp)

		// numerator *= (x - x_j), denominator *= (x_i - x_j)
		num = num.Mul(xp.Sub(xj))
		diff := xi.Sub(xj)
		if diff.IsZero() {
			return nil, ErrDuplicateParticipant
		}
		den = den.Mul(diff)
	}
	if !found {
		return nil, ErrUnknownParticipant
	}

	denInv, err := den.Inv()
	if err != nil {
		return nil, err
	}
	return num.Mul(denInv), nil
}
