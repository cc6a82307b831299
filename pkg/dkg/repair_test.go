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
	"crypto/rand"
	"errors"
	"testing"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// TestRepairRoundTrip runs the full three-step repair exchange and checks
// the recovered share equals the lost one.
func TestRepairRoundTrip(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	poly, err := GeneratePolynomial(cs, rand.Reader, 3)
	if err != nil {
		t.Fatalf("GeneratePolynomial failed: %v", err)
	}
	com := poly.Commit()

	helpers := []ParticipantID{1, 3, 4}
	var lost ParticipantID = 2
	lostShare := poly.EvaluateAt(lost)

	// Step one: each helper splits its contribution into deltas.
	deltasByHelper := make(map[ParticipantID]map[ParticipantID]group.Scalar, len(helpers))
	for _, h := range helpers {
		deltas, err := RepairDeltas(cs, h, lost, poly.EvaluateAt(h), helpers, rand.Reader)
		if err != nil {
			t.Fatalf("RepairDeltas(%d) failed: %v", h, err)
		}
		if len(deltas) != len(helpers) {
			t.Fatalf("Expected %d deltas from helper %d, got %d", len(helpers), h, len(deltas))
		}
		deltasByHelper[h] = deltas
	}

	// Step two: each helper sums the deltas addressed to it.
	sigmas := make([]group.Scalar, 0, len(helpers))
	for _, h := range helpers {
		received := make([]group.Scalar, 0, len(helpers))
		for _, from := range helpers {
			received = append(received, deltasByHelper[from][h])
		}
		sigma, err := RepairSigma(received)
		if err != nil {
			t.Fatalf("RepairSigma(%d) failed: %v", h, err)
		}
		sigmas = append(sigmas, sigma)
	}

	// Step three: the recovering participant sums the sigmas.
	recovered, err := RepairShare(grp, lost, sigmas, com)
	if err != nil {
		t.Fatalf("RepairShare failed: %v", err)
	}
	if !recovered.Equal(lostShare) {
		t.Error("Recovered share does not equal the lost share")
	}
}

// TestRepairDetectsCorruption verifies the commitment check rejects a
// corrupted sigma.
func TestRepairDetectsCorruption(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	poly, err := GeneratePolynomial(cs, rand.Reader, 2)
	if err != nil {
		t.Fatalf("GeneratePolynomial failed: %v", err)
	}
	com := poly.Commit()

	var lost ParticipantID = 3
	bad := []group.Scalar{scalarFromUint64(grp, 12345)}

	_, err = RepairShare(grp, lost, bad, com)
	if !errors.Is(err, ErrShareVerification) {
		t.Errorf("Expected ErrShareVerification, got %v", err)
	}
}

// TestRepairDeltasValidation tests helper-set validation.
func TestRepairDeltasValidation(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()
	share := scalarFromUint64(grp, 7)

	t.Run("too few helpers", func(t *testing.T) {
		var qe *QuorumError
		_, err := RepairDeltas(cs, 1, 2, share, []ParticipantID{1}, rand.Reader)
		if !errors.As(err, &qe) {
			t.Errorf("Expected QuorumError, got %v", err)
		}
	})

	t.Run("recovering participant among helpers", func(t *testing.T) {
		var cfg *ConfigurationError
		_, err := RepairDeltas(cs, 1, 2, share, []ParticipantID{1, 2}, rand.Reader)
		if !errors.As(err, &cfg) {
			t.Errorf("Expected ConfigurationError, got %v", err)
		}
	})

	t.Run("helper not in set", func(t *testing.T) {
		_, err := RepairDeltas(cs, 9, 2, share, []ParticipantID{1, 3}, rand.Reader)
		if !errors.Is(err, ErrUnknownParticipant) {
			t.Errorf("Expected ErrUnknownParticipant, got %v", err)
		}
	})
}
