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

	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// ParticipantID is a nonzero 64-bit participant identifier, unique within a
// committee run. Zero is the reserved invalid sentinel.
//
// The identifier doubles as the x-coordinate at which polynomials are
// evaluated, so it must map to a nonzero scalar. For all supported groups the
// order far exceeds 2^64, so the mapping is injective.
type ParticipantID uint64

// NewParticipantID validates v and returns it as a ParticipantID.
// Returns a *ConfigurationError if v is zero.
func NewParticipantID(v uint64) (ParticipantID, error) {
	if v == 0 {
		return 0, &ConfigurationError{Field: "participant id", Reason: "must be nonzero"}
	}
	return ParticipantID(v), nil
}

// Bytes returns the canonical 8-byte big-endian encoding of the identifier,
// used for transcript binding.
func (id ParticipantID) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// ParticipantIDFromBytes parses the 8-byte big-endian encoding produced by
// Bytes.
func ParticipantIDFromBytes(b []byte) (ParticipantID, error) {
	if len(b) != 8 {
		return 0, &ConfigurationError{Field: "participant id", Reason: "must be 8 bytes"}
	}
	return NewParticipantID(binary.BigEndian.Uint64(b))
}

// Scalar converts the identifier to a scalar of the given group, respecting
// the group's byte order.
func (id ParticipantID) Scalar(grp group.Group) group.Scalar {
	return scalarFromUint64(grp, uint64(id))
}
