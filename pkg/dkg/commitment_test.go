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
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ristretto255_sha512"
)

// TestCommitmentBytesRoundTrip verifies serialization across suites.
func TestCommitmentBytesRoundTrip(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		cs := ed25519_sha512.New()
		grp := cs.Group()

		poly, err := GeneratePolynomial(cs, rand.Reader, 3)
		if err != nil {
			t.Fatalf("GeneratePolynomial failed: %v", err)
		}
		com := poly.Commit()

		b, err := com.Bytes(grp)
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		back, err := CommitmentFromBytes(grp, b, 3)
		if err != nil {
			t.Fatalf("CommitmentFromBytes failed: %v", err)
		}
		if !com.Equal(grp, back) {
			t.Error("Round-tripped commitment does not equal the original")
		}
	})

	t.Run("ristretto255", func(t *testing.T) {
		cs := ristretto255_sha512.New()
		grp := cs.Group()

		poly, err := GeneratePolynomial(cs, rand.Reader, 2)
		if err != nil {
			t.Fatalf("GeneratePolynomial failed: %v", err)
		}
		com := poly.Commit()

		b, err := com.Bytes(grp)
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		back, err := CommitmentFromBytes(grp, b, 2)
		if err != nil {
			t.Fatalf("CommitmentFromBytes failed: %v", err)
		}
		if !com.Equal(grp, back) {
			t.Error("Round-tripped commitment does not equal the original")
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		cs := ed25519_sha512.New()
		grp := cs.Group()
		_, err := CommitmentFromBytes(grp, make([]byte, 5), 3)
		if !errors.Is(err, ErrInvalidCommitmentLength) {
			t.Errorf("Expected ErrInvalidCommitmentLength, got %v", err)
		}
	})
}

// TestCommitmentAdd verifies homomorphic addition: the sum of two
// commitments commits to the sum of the polynomials.
func TestCommitmentAdd(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	p1, err := GeneratePolynomial(cs, rand.Reader, 3)
	if err != nil {
		t.Fatalf("GeneratePolynomial failed: %v", err)
	}
	p2, err := GeneratePolynomial(cs, rand.Reader, 3)
	if err != nil {
		t.Fatalf("GeneratePolynomial failed: %v", err)
	}

	sum, err := p1.Commit().Add(p2.Commit())
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	id, _ := NewParticipantID(9)
	combined := p1.EvaluateAt(id).Add(p2.EvaluateAt(id))

	pubshare := sum.PublicShare(grp, id)
	if !VerifyShare(grp, combined, pubshare) {
		t.Error("Summed share failed verification against summed commitment")
	}

	t.Run("mismatched threshold", func(t *testing.T) {
		p3, err := GeneratePolynomial(cs, rand.Reader, 2)
		if err != nil {
			t.Fatalf("GeneratePolynomial failed: %v", err)
		}
		if _, err := p1.Commit().Add(p3.Commit()); !errors.Is(err, ErrMismatchedThreshold) {
			t.Errorf("Expected ErrMismatchedThreshold, got %v", err)
		}
	})
}

// TestCommitmentVerifyShareRejects verifies that a corrupted share fails.
func TestCommitmentVerifyShareRejects(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	poly, err := GeneratePolynomial(cs, rand.Reader, 3)
	if err != nil {
		t.Fatalf("GeneratePolynomial failed: %v", err)
	}
	com := poly.Commit()

	id, _ := NewParticipantID(4)
	share := poly.EvaluateAt(id)
	pubshare := com.PublicShare(grp, id)

	bad := share.Add(scalarFromUint64(grp, 1))
	if VerifyShare(grp, bad, pubshare) {
		t.Error("Corrupted share passed verification")
	}
}
