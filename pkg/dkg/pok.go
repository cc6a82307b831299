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
	"io"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// ProofOfKnowledge is a Schnorr proof that a participant knows the constant
// term of its secret polynomial: a nonce commitment R = k*G and a response
// z = k + e*a_0, where the challenge e binds the participant id, the
// constant-term commitment, and R through the transcript.
//
// The proof is what prevents a malicious participant from claiming a
// constant term it cannot produce a discrete-log witness for (rogue-key
// defense). One proof per participant per DKG run.
type ProofOfKnowledge struct {
	// R is the prover's nonce commitment k*G.
	R group.Element
	// Z is the response k + e*a_0.
	Z group.Scalar
}

// pokChallenge derives the proof challenge e over (id, C_0, R) in the
// dkg-pok transcript domain. Prover and verifier must compute it
// identically.
func pokChallenge(cs ciphersuite.Ciphersuite, id ParticipantID, commitmentToSecret, R group.Element) (group.Scalar, error) {
	grp := cs.Group()

	tr := NewTranscript(cs, DomainProofOfKnowledge)
	tr.Append("id", id.Bytes())
	if _, err := tr.AppendElement(grp, "commitment", commitmentToSecret); err != nil {
		return nil, err
	}
	if _, err := tr.AppendElement(grp, "nonce", R); err != nil {
		return nil, err
	}
	return tr.Challenge(), nil
}

// ProveKnowledge creates the proof of knowledge for the polynomial's
// constant term.
//
// The ephemeral nonce k is derived by hashing fresh caller-supplied
// randomness together with the secret, hedging against weak randomness in
// the style of RFC 6979. The computation has no secret-dependent branches.
func ProveKnowledge(cs ciphersuite.Ciphersuite, id ParticipantID, poly *SecretPolynomial, com *Commitment, rng io.Reader) (*ProofOfKnowledge, error) {
	grp := cs.Group()

	secret := poly.ConstantTerm()
	defer func() { secret = nil }()

	random := make([]byte, randomScalarWidth)
	defer ZeroBytes(random)
	if _, err := io.ReadFull(rng, random); err != nil {
		return nil, err
	}

	// k = H3(prefix || random || secret || id)
	secretBytes := grp.SerializeScalar(secret)
	defer ZeroBytes(secretBytes)

	prefix := []byte(TranscriptPrefix + "pok nonce")
	nonceInput := make([]byte, 0, len(prefix)+len(random)+len(secretBytes)+8)
	nonceInput = append(nonceInput, prefix...)
	nonceInput = append(nonceInput, random...)
	nonceInput = append(nonceInput, secretBytes...)
	nonceInput = append(nonceInput, id.Bytes()...)
	k := cs.H3(nonceInput)
	ZeroBytes(nonceInput)

	R := grp.ScalarBaseMult(k)

	e, err := pokChallenge(cs, id, com.ConstantTerm(), R)
	if err != nil {
		return nil, err
	}

	// z = k + e*a_0
	z := e.Mul(secret)
	z = k.Add(z)

	return &ProofOfKnowledge{R: R, Z: z}, nil
}

// Verify checks the proof against the claimed constant-term commitment:
//
//	z*G == R + e*C_0
//
// where e is recomputed from (id, C_0, R). Verification is public; anyone
// holding the broadcast values can run it.
func (p *ProofOfKnowledge) Verify(cs ciphersuite.Ciphersuite, id ParticipantID, commitmentToSecret group.Element) bool {
	if p == nil || p.R == nil || p.Z == nil || commitmentToSecret == nil {
		return false
	}
	grp := cs.Group()

	e, err := pokChallenge(cs, id, commitmentToSecret, p.R)
	if err != nil {
		return false
	}

	zG := grp.ScalarBaseMult(p.Z)
	eC := grp.ScalarMult(commitmentToSecret, e)
	ReC := p.R.Add(eC)

	return ElementsEqual(grp, zG, ReC)
}

// Bytes serializes the proof as R || z.
func (p *ProofOfKnowledge) Bytes(grp group.Group) ([]byte, error) {
	RBytes, err := grp.SerializeElement(p.R)
	if err != nil {
		return nil, err
	}
	zBytes := grp.SerializeScalar(p.Z)

	out := make([]byte, 0, len(RBytes)+len(zBytes))
	out = append(out, RBytes...)
	out = append(out, zBytes...)
	return out, nil
}

// ProofFromBytes deserializes a proof produced by Bytes.
func ProofFromBytes(grp group.Group, b []byte) (*ProofOfKnowledge, error) {
	elemLen := grp.ElementLength()
	scalarLen := grp.ScalarLength()
	if len(b) != elemLen+scalarLen {
		return nil, ErrInvalidProofLength
	}

	R, err := grp.DeserializeElement(b[:elemLen])
	if err != nil {
		return nil, err
	}
	z, err := grp.DeserializeScalar(b[elemLen:])
	if err != nil {
		return nil, err
	}

	return &ProofOfKnowledge{R: R, Z: z}, nil
}
