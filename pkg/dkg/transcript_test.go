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
	"testing"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
)

// TestTranscriptDeterministic verifies that identical append sequences
// produce identical challenges.
func TestTranscriptDeterministic(t *testing.T) {
	cs := ed25519_sha512.New()

	a := NewTranscript(cs, DomainProofOfKnowledge).
		Append("id", []byte{1, 2, 3}).
		Append("msg", []byte("hello")).
		Challenge()
	b := NewTranscript(cs, DomainProofOfKnowledge).
		Append("id", []byte{1, 2, 3}).
		Append("msg", []byte("hello")).
		Challenge()

	if !a.Equal(b) {
		t.Error("Expected identical transcripts to yield equal challenges")
	}
}

// TestTranscriptDomainSeparation verifies that the domain label changes
// the challenge.
func TestTranscriptDomainSeparation(t *testing.T) {
	cs := ed25519_sha512.New()

	a := NewTranscript(cs, DomainProofOfKnowledge).Append("x", []byte("data")).Challenge()
	b := NewTranscript(cs, DomainSigningChallenge).Append("x", []byte("data")).Challenge()

	if a.Equal(b) {
		t.Error("Expected different domains to yield different challenges")
	}
}

// TestTranscriptFraming verifies that moving a byte across an append
// boundary changes the challenge.
func TestTranscriptFraming(t *testing.T) {
	cs := ed25519_sha512.New()

	a := NewTranscript(cs, DomainSigningBinding).
		Append("a", []byte{1, 2}).
		Append("b", []byte{3}).
		Challenge()
	b := NewTranscript(cs, DomainSigningBinding).
		Append("a", []byte{1}).
		Append("b", []byte{2, 3}).
		Challenge()

	if a.Equal(b) {
		t.Error("Expected length framing to separate split inputs")
	}
}

// TestTranscriptAppendElement verifies that group elements are absorbed
// and that distinct elements produce distinct challenges.
func TestTranscriptAppendElement(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	g1 := grp.ScalarBaseMult(scalarFromUint64(grp, 1))
	g2 := grp.ScalarBaseMult(scalarFromUint64(grp, 2))

	ta, err := NewTranscript(cs, DomainSigningChallenge).AppendElement(grp, "pt", g1)
	if err != nil {
		t.Fatalf("AppendElement failed: %v", err)
	}
	tb, err := NewTranscript(cs, DomainSigningChallenge).AppendElement(grp, "pt", g2)
	if err != nil {
		t.Fatalf("AppendElement failed: %v", err)
	}

	if ta.Challenge().Equal(tb.Challenge()) {
		t.Error("Expected distinct elements to yield distinct challenges")
	}
}
