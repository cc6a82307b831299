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
	"crypto/rand"
	"errors"
	"testing"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ristretto255_sha512"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// runDKG produces key shares for n participants with the given threshold
// by executing a full in-process ceremony.
func runDKG(t *testing.T, cs ciphersuite.Ciphersuite, n, threshold int) map[dkg.ParticipantID]*dkg.KeyShare {
	t.Helper()

	ids := make([]dkg.ParticipantID, n)
	committees := make(map[dkg.ParticipantID]*dkg.Committee, n)
	participants := make(map[dkg.ParticipantID]*dkg.Participant, n)
	for i := 0; i < n; i++ {
		id, err := dkg.NewParticipantID(uint64(i + 1))
		if err != nil {
			t.Fatalf("NewParticipantID failed: %v", err)
		}
		ids[i] = id
		c, err := dkg.NewCommittee(cs, n, threshold)
		if err != nil {
			t.Fatalf("NewCommittee failed: %v", err)
		}
		committees[id] = c
		p, err := dkg.NewParticipant(cs, id, c, rand.Reader)
		if err != nil {
			t.Fatalf("NewParticipant failed: %v", err)
		}
		participants[id] = p
	}

	for _, id := range ids {
		rec, err := participants[id].PublishCommitment(rand.Reader)
		if err != nil {
			t.Fatalf("PublishCommitment failed: %v", err)
		}
		for _, peer := range ids {
			if peer != id {
				if err := committees[peer].Admit(rec); err != nil {
					t.Fatalf("Admit failed: %v", err)
				}
			}
		}
	}
	for _, id := range ids {
		shares, err := participants[id].BeginShareExchange()
		if err != nil {
			t.Fatalf("BeginShareExchange failed: %v", err)
		}
		for _, sh := range shares {
			if err := participants[sh.To].ReceiveShare(sh); err != nil {
				t.Fatalf("ReceiveShare failed: %v", err)
			}
		}
	}

	out := make(map[dkg.ParticipantID]*dkg.KeyShare, n)
	for _, id := range ids {
		ks, err := participants[id].Finalize()
		if err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		out[id] = ks
	}
	return out
}

// signOnce runs a complete signing round for the given signer subset.
func signOnce(t *testing.T, cs ciphersuite.Ciphersuite, shares map[dkg.ParticipantID]*dkg.KeyShare, signers []dkg.ParticipantID, message []byte) *Signature {
	t.Helper()

	nonces := make(map[dkg.ParticipantID]*SigningNonce, len(signers))
	commitments := make([]*NonceCommitment, 0, len(signers))
	for _, id := range signers {
		nonce, com, err := NewSigningNonce(cs, id, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce(%d) failed: %v", id, err)
		}
		nonces[id] = nonce
		commitments = append(commitments, com)
	}

	partials := make([]*PartialSignature, 0, len(signers))
	for _, id := range signers {
		p, err := Respond(cs, shares[id], nonces[id], message, commitments)
		if err != nil {
			t.Fatalf("Respond(%d) failed: %v", id, err)
		}
		partials = append(partials, p)
	}

	var groupCom *dkg.Commitment
	for _, ks := range shares {
		groupCom = ks.GroupCommitment
		break
	}
	sig, err := Aggregate(cs, groupCom, message, commitments, partials)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	return sig
}

// TestThresholdSigning verifies that every threshold subset of a 2-of-3
// group produces a valid signature, across suites.
func TestThresholdSigning(t *testing.T) {
	suites := []struct {
		name string
		cs   ciphersuite.Ciphersuite
	}{
		{"ed25519", ed25519_sha512.New()},
		{"ristretto255", ristretto255_sha512.New()},
	}
	message := []byte("threshold signing test message")

	for _, s := range suites {
		t.Run(s.name, func(t *testing.T) {
			shares := runDKG(t, s.cs, 3, 2)
			groupKey := shares[1].GroupPublicKey

			subsets := [][]dkg.ParticipantID{{1, 2}, {1, 3}, {2, 3}, {1, 2, 3}}
			for _, signers := range subsets {
				sig := signOnce(t, s.cs, shares, signers, message)
				if !Verify(s.cs, sig, groupKey, message) {
					t.Errorf("Signature from subset %v failed verification", signers)
				}
			}
		})
	}
}

// TestVerifyRejects tests verification failure modes.
func TestVerifyRejects(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()
	message := []byte("original message")

	shares := runDKG(t, cs, 3, 2)
	groupKey := shares[1].GroupPublicKey
	sig := signOnce(t, cs, shares, []dkg.ParticipantID{1, 2}, message)

	t.Run("wrong message", func(t *testing.T) {
		if Verify(cs, sig, groupKey, []byte("another message")) {
			t.Error("Signature verified for a different message")
		}
	})

	t.Run("wrong group key", func(t *testing.T) {
		other := grp.ScalarBaseMult(dkg.ParticipantID(42).Scalar(grp))
		if Verify(cs, sig, other, message) {
			t.Error("Signature verified under a different group key")
		}
	})

	t.Run("tampered response", func(t *testing.T) {
		bad := &Signature{R: sig.R, Z: sig.Z.Add(dkg.ParticipantID(1).Scalar(grp))}
		if Verify(cs, bad, groupKey, message) {
			t.Error("Tampered signature verified")
		}
	})

	t.Run("nil signature", func(t *testing.T) {
		if Verify(cs, nil, groupKey, message) {
			t.Error("Nil signature verified")
		}
	})
}

// TestAggregateIdentifiesMaliciousPartial verifies that a corrupted
// partial signature is attributed to its signer.
func TestAggregateIdentifiesMaliciousPartial(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()
	message := []byte("attribution test")

	shares := runDKG(t, cs, 3, 2)
	signers := []dkg.ParticipantID{1, 2}

	nonces := make(map[dkg.ParticipantID]*SigningNonce)
	var commitments []*NonceCommitment
	for _, id := range signers {
		nonce, com, err := NewSigningNonce(cs, id, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce failed: %v", err)
		}
		nonces[id] = nonce
		commitments = append(commitments, com)
	}

	var partials []*PartialSignature
	for _, id := range signers {
		p, err := Respond(cs, shares[id], nonces[id], message, commitments)
		if err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		partials = append(partials, p)
	}

	// Corrupt signer 2's response.
	partials[1].Z = partials[1].Z.Add(dkg.ParticipantID(1).Scalar(grp))

	_, err := Aggregate(cs, shares[1].GroupCommitment, message, commitments, partials)
	var vf *dkg.VerificationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("Expected VerificationFailure, got %v", err)
	}
	if vf.ID != 2 {
		t.Errorf("Expected failure attributed to signer 2, got %d", vf.ID)
	}
}

// TestAggregateQuorum tests dropout and under-quorum handling.
func TestAggregateQuorum(t *testing.T) {
	cs := ed25519_sha512.New()
	message := []byte("quorum test")

	shares := runDKG(t, cs, 3, 2)
	signers := []dkg.ParticipantID{1, 2, 3}

	nonces := make(map[dkg.ParticipantID]*SigningNonce)
	var commitments []*NonceCommitment
	for _, id := range signers {
		nonce, com, err := NewSigningNonce(cs, id, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce failed: %v", err)
		}
		nonces[id] = nonce
		commitments = append(commitments, com)
	}

	var partials []*PartialSignature
	for _, id := range signers {
		p, err := Respond(cs, shares[id], nonces[id], message, commitments)
		if err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		partials = append(partials, p)
	}

	t.Run("dropout after commit", func(t *testing.T) {
		// Signer 3 committed but never responded.
		var qe *dkg.QuorumError
		_, err := Aggregate(cs, shares[1].GroupCommitment, message, commitments, partials[:2])
		if !errors.As(err, &qe) {
			t.Fatalf("Expected QuorumError, got %v", err)
		}
	})

	t.Run("below threshold", func(t *testing.T) {
		var qe *dkg.QuorumError
		_, err := Aggregate(cs, shares[1].GroupCommitment, message, commitments[:1], partials[:1])
		if !errors.As(err, &qe) {
			t.Errorf("Expected QuorumError, got %v", err)
		}
	})

	t.Run("partial from uncommitted signer", func(t *testing.T) {
		_, err := Aggregate(cs, shares[1].GroupCommitment, message, commitments[:2], partials)
		if !errors.Is(err, ErrSignerNotCommitted) {
			t.Errorf("Expected ErrSignerNotCommitted, got %v", err)
		}
	})
}

// TestRespondValidation tests the commit-set checks in Respond.
func TestRespondValidation(t *testing.T) {
	cs := ed25519_sha512.New()
	message := []byte("respond validation")

	shares := runDKG(t, cs, 3, 2)

	t.Run("below threshold", func(t *testing.T) {
		nonce, com, err := NewSigningNonce(cs, 1, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce failed: %v", err)
		}
		var qe *dkg.QuorumError
		_, err = Respond(cs, shares[1], nonce, message, []*NonceCommitment{com})
		if !errors.As(err, &qe) {
			t.Errorf("Expected QuorumError, got %v", err)
		}
	})

	t.Run("own commitment missing", func(t *testing.T) {
		nonce, _, err := NewSigningNonce(cs, 1, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce failed: %v", err)
		}
		_, com2, _ := NewSigningNonce(cs, 2, rand.Reader)
		_, com3, _ := NewSigningNonce(cs, 3, rand.Reader)
		var pse *dkg.ProtocolStateError
		_, err = Respond(cs, shares[1], nonce, message, []*NonceCommitment{com2, com3})
		if !errors.As(err, &pse) {
			t.Errorf("Expected ProtocolStateError, got %v", err)
		}
	})

	t.Run("duplicate commitment ids", func(t *testing.T) {
		nonce, com, err := NewSigningNonce(cs, 1, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce failed: %v", err)
		}
		_, err = Respond(cs, shares[1], nonce, message, []*NonceCommitment{com, com})
		if !errors.Is(err, ErrDuplicateSigner) {
			t.Errorf("Expected ErrDuplicateSigner, got %v", err)
		}
	})

	t.Run("nonce for wrong signer", func(t *testing.T) {
		nonce, com, err := NewSigningNonce(cs, 2, rand.Reader)
		if err != nil {
			t.Fatalf("NewSigningNonce failed: %v", err)
		}
		_, com1, _ := NewSigningNonce(cs, 1, rand.Reader)
		var cfg *dkg.ConfigurationError
		_, err = Respond(cs, shares[1], nonce, message, []*NonceCommitment{com1, com})
		if !errors.As(err, &cfg) {
			t.Errorf("Expected ConfigurationError, got %v", err)
		}
	})
}

// TestNonceSingleUse verifies that a nonce cannot drive two responses.
func TestNonceSingleUse(t *testing.T) {
	cs := ed25519_sha512.New()
	shares := runDKG(t, cs, 3, 2)

	nonce, com1, err := NewSigningNonce(cs, 1, rand.Reader)
	if err != nil {
		t.Fatalf("NewSigningNonce failed: %v", err)
	}
	_, com2, err := NewSigningNonce(cs, 2, rand.Reader)
	if err != nil {
		t.Fatalf("NewSigningNonce failed: %v", err)
	}
	commitments := []*NonceCommitment{com1, com2}

	if _, err := Respond(cs, shares[1], nonce, []byte("first message"), commitments); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	var pse *dkg.ProtocolStateError
	_, err = Respond(cs, shares[1], nonce, []byte("second message"), commitments)
	if !errors.As(err, &pse) {
		t.Errorf("Expected ProtocolStateError on nonce reuse, got %v", err)
	}
}

// TestNonceZeroize verifies that a zeroized nonce is unusable.
func TestNonceZeroize(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()
	shares := runDKG(t, cs, 3, 2)

	nonce, com1, err := NewSigningNonce(cs, 1, rand.Reader)
	if err != nil {
		t.Fatalf("NewSigningNonce failed: %v", err)
	}
	_, com2, err := NewSigningNonce(cs, 2, rand.Reader)
	if err != nil {
		t.Fatalf("NewSigningNonce failed: %v", err)
	}

	nonce.Zeroize(grp)

	var pse *dkg.ProtocolStateError
	_, err = Respond(cs, shares[1], nonce, []byte("msg"), []*NonceCommitment{com1, com2})
	if !errors.As(err, &pse) {
		t.Errorf("Expected ProtocolStateError after Zeroize, got %v", err)
	}
}

// TestSignatureSerialization verifies the wire round trip.
func TestSignatureSerialization(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()
	message := []byte("serialization test")

	shares := runDKG(t, cs, 3, 2)
	sig := signOnce(t, cs, shares, []dkg.ParticipantID{1, 3}, message)

	b, err := sig.Bytes(grp)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	back, err := SignatureFromBytes(grp, b)
	if err != nil {
		t.Fatalf("SignatureFromBytes failed: %v", err)
	}
	if !Verify(cs, back, shares[1].GroupPublicKey, message) {
		t.Error("Round-tripped signature failed verification")
	}

	t.Run("truncated", func(t *testing.T) {
		if _, err := SignatureFromBytes(grp, b[:len(b)-1]); !errors.Is(err, ErrInvalidSignatureEncoding) {
			t.Errorf("Expected ErrInvalidSignatureEncoding, got %v", err)
		}
	})
}

// TestNonceCommitmentSerialization verifies the wire round trip.
func TestNonceCommitmentSerialization(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	_, com, err := NewSigningNonce(cs, 7, rand.Reader)
	if err != nil {
		t.Fatalf("NewSigningNonce failed: %v", err)
	}

	b, err := com.Bytes(grp)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	back, err := NonceCommitmentFromBytes(grp, b)
	if err != nil {
		t.Fatalf("NonceCommitmentFromBytes failed: %v", err)
	}
	if back.ID != 7 {
		t.Errorf("Expected id 7, got %d", back.ID)
	}
	if !dkg.ElementsEqual(grp, back.Hiding, com.Hiding) || !dkg.ElementsEqual(grp, back.Binding, com.Binding) {
		t.Error("Round-tripped commitment points differ")
	}

	t.Run("truncated", func(t *testing.T) {
		if _, err := NonceCommitmentFromBytes(grp, b[:len(b)-1]); !errors.Is(err, ErrInvalidCommitmentEncoding) {
			t.Errorf("Expected ErrInvalidCommitmentEncoding, got %v", err)
		}
	})
}
