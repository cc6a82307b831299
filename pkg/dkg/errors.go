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
	"errors"
	"fmt"
)

// MaxParticipants is the maximum allowed number of participants.
// This prevents DoS attacks from excessive memory allocation.
const MaxParticipants = 65535

// Core errors for polynomial, commitment, and share operations.
var (
	// ErrInvalidPolynomial indicates that a polynomial has no coefficients
	// or invalid structure.
	ErrInvalidPolynomial = errors.New("dkg: invalid polynomial")

	// ErrInvalidCommitmentLength indicates that a serialized commitment has
	// an invalid length. The commitment must have exactly t * element_length
	// bytes.
	ErrInvalidCommitmentLength = errors.New("dkg: invalid commitment length")

	// ErrZeroScalar indicates that a scalar is zero in a context where it is
	// not allowed, such as inverting a Lagrange denominator.
	ErrZeroScalar = errors.New("dkg: zero scalar")

	// ErrMismatchedThreshold indicates that two commitments have different
	// thresholds. Commitment addition requires equal thresholds.
	ErrMismatchedThreshold = errors.New("dkg: mismatched threshold")

	// ErrShareVerification indicates that a received share failed the
	// Feldman consistency check against the sender's published commitment.
	// The sender is equivocating; the whole DKG run must be discarded.
	ErrShareVerification = errors.New("dkg: share failed commitment consistency check")

	// ErrDuplicateParticipant indicates that a participant id appears more
	// than once where uniqueness is required.
	ErrDuplicateParticipant = errors.New("dkg: duplicate participant id")

	// ErrUnknownParticipant indicates a message from a participant id that
	// is not part of the verified peer set.
	ErrUnknownParticipant = errors.New("dkg: unknown participant id")

	// ErrInvalidProofLength indicates a serialized proof of knowledge with
	// the wrong length.
	ErrInvalidProofLength = errors.New("dkg: invalid proof length")
)

// ConfigurationError reports an invalid protocol configuration such as an
// out-of-range (n, t) pair, a zero participant id, or a malformed commitment
// length. Configuration errors are fatal at construction and never retried.
type ConfigurationError struct {
	// Field names the offending parameter.
	Field string
	// Reason describes why the value was rejected.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("dkg: invalid configuration: %s: %s", e.Field, e.Reason)
}

// VerificationFailure reports a cryptographic check that failed and is
// attributable to one specific participant: a bad proof of knowledge, a
// malformed commitment, or a duplicate identity claim. The peer is rejected
// permanently; the run continues as long as the verified quorum still
// reaches the threshold.
type VerificationFailure struct {
	// ID is the participant the failure is attributed to.
	ID ParticipantID
	// Reason describes the failed check.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

func (e *VerificationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dkg: verification failure for participant %d: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("dkg: verification failure for participant %d: %s", e.ID, e.Reason)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *VerificationFailure) Unwrap() error {
	return e.Err
}

// QuorumError reports that fewer than the threshold number of participants
// are available for the current phase. The run or round is fatal but safe to
// retry with a different participant set.
type QuorumError struct {
	// Phase names the phase the quorum check guarded ("dkg", "signing").
	Phase string
	// Need is the required number of participants (the threshold).
	Need int
	// Got is the actual number present.
	Got int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("dkg: insufficient quorum in %s: need %d, got %d", e.Phase, e.Need, e.Got)
}

// ProtocolStateError reports an operation invoked out of sequence, such as
// share exchange before the committee is ready or a second finalize. This is
// a programming error by the caller, not a cryptographic failure.
type ProtocolStateError struct {
	// Op is the operation that was attempted.
	Op string
	// State is the state the operation was attempted in.
	State string
}

func (e *ProtocolStateError) Error() string {
	return fmt.Sprintf("dkg: %s not allowed in state %s", e.Op, e.State)
}
