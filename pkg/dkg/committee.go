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
	"fmt"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// PeerRecord is a committee member's broadcast round-one material: the
// Feldman commitment vector and the proof of knowledge over its constant
// term.
type PeerRecord struct {
	ID         ParticipantID
	Commitment *Commitment
	Proof      *ProofOfKnowledge
}

// Committee collects and verifies round-one broadcasts for a single DKG
// run. Admission is permanent: a record that fails verification is
// rejected and the same id cannot be re-admitted, and an admitted record
// cannot be replaced. Safe for concurrent use.
type Committee struct {
	cs           ciphersuite.Ciphersuite
	participants int
	threshold    int

	mu       sync.Mutex
	admitted map[ParticipantID]*PeerRecord
	rejected map[ParticipantID]error
}

// NewCommittee creates a committee for a ceremony with the given size and
// threshold. The threshold counts the number of shares sufficient to
// reconstruct the secret, so 1 <= threshold <= participants.
func NewCommittee(cs ciphersuite.Ciphersuite, participants, threshold int) (*Committee, error) {
	if participants < 1 || participants > MaxParticipants {
		return nil, &ConfigurationError{
			Field:  "participants",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", MaxParticipants, participants),
		}
	}
	if threshold < 1 || threshold > participants {
		return nil, &ConfigurationError{
			Field:  "threshold",
			Reason: fmt.Sprintf("must be between 1 and participants (%d), got %d", participants, threshold),
		}
	}
	return &Committee{
		cs:           cs,
		participants: participants,
		threshold:    threshold,
		admitted:     make(map[ParticipantID]*PeerRecord, participants),
		rejected:     make(map[ParticipantID]error),
	}, nil
}

// Threshold returns the ceremony threshold.
func (c *Committee) Threshold() int { return c.threshold }

// Participants returns the configured committee size.
func (c *Committee) Participants() int { return c.participants }

// Admit verifies a peer's round-one broadcast and records it. The
// commitment length must match the ceremony threshold and the proof of
// knowledge must verify against the commitment's constant term.
//
// A failed admission is recorded and permanent: subsequent Admit calls for
// the same id return the original failure even if handed valid material.
func (c *Committee) Admit(rec *PeerRecord) error {
	if rec == nil || rec.Commitment == nil || rec.Proof == nil {
		return &ConfigurationError{Field: "record", Reason: "nil record, commitment, or proof"}
	}
	if rec.ID == 0 {
		return &ConfigurationError{Field: "id", Reason: "participant id must be nonzero"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.rejected[rec.ID]; ok {
		return err
	}
	if _, ok := c.admitted[rec.ID]; ok {
		return &VerificationFailure{ID: rec.ID, Reason: "duplicate broadcast", Err: ErrDuplicateParticipant}
	}
	if len(c.admitted) >= c.participants {
		return &ConfigurationError{
			Field:  "participants",
			Reason: fmt.Sprintf("committee is full (%d members)", c.participants),
		}
	}

	if got := rec.Commitment.Threshold(); got != c.threshold {
		err := &VerificationFailure{
			ID:     rec.ID,
			Reason: fmt.Sprintf("commitment has %d coefficients, ceremony threshold is %d", got, c.threshold),
			Err:    ErrMismatchedThreshold,
		}
		c.rejected[rec.ID] = err
		return err
	}
	if !rec.Proof.Verify(c.cs, rec.ID, rec.Commitment.Coefficients[0]) {
		err := &VerificationFailure{ID: rec.ID, Reason: "proof of knowledge failed"}
		c.rejected[rec.ID] = err
		return err
	}

	c.admitted[rec.ID] = rec
	return nil
}

// Record returns the admitted record for id, or nil if the id has no
// admitted record.
func (c *Committee) Record(id ParticipantID) *PeerRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.admitted[id]
}

// Admitted returns the ids of all admitted members, in ascending order.
func (c *Committee) Admitted() []ParticipantID {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]ParticipantID, 0, len(c.admitted))
	for id := range c.admitted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsReady reports whether enough members are admitted to proceed to the
// share exchange. Readiness never regresses: admission is append-only.
func (c *Committee) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.admitted) >= c.threshold
}

// ReadyOrErr returns nil when the committee is ready, or a QuorumError
// describing the shortfall.
func (c *Committee) ReadyOrErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.admitted) < c.threshold {
		return &QuorumError{Phase: "commitment", Need: c.threshold, Got: len(c.admitted)}
	}
	return nil
}

// GroupCommitment sums the commitment vectors of all admitted members.
// The constant term of the sum is the group verification key, and
// evaluating it at a participant id yields that participant's public
// verification share. It fails with a QuorumError until the committee
// is ready.
func (c *Committee) GroupCommitment() (*Commitment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.admitted) < c.threshold {
		return nil, &QuorumError{Phase: "commitment", Need: c.threshold, Got: len(c.admitted)}
	}

	var sum *Commitment
	for _, id := range c.sortedIDsLocked() {
		rec := c.admitted[id]
		if sum == nil {
			coeffs := make([]group.Element, len(rec.Commitment.Coefficients))
			for i, co := range rec.Commitment.Coefficients {
				coeffs[i] = co.Copy()
			}
			sum = &Commitment{Coefficients: coeffs}
			continue
		}
		next, err := sum.Add(rec.Commitment)
		if err != nil {
			return nil, err
		}
		sum = next
	}
	return sum, nil
}

// GroupPublicKey returns the group verification key, the sum of all
// admitted constant-term commitments.
func (c *Committee) GroupPublicKey() (group.Element, error) {
	com, err := c.GroupCommitment()
	if err != nil {
		return nil, err
	}
	return com.ConstantTerm(), nil
}

func (c *Committee) sortedIDsLocked() []ParticipantID {
	ids := make([]ParticipantID, 0, len(c.admitted))
	for id := range c.admitted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
