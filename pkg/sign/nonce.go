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

// Package sign implements two-round threshold Schnorr signing over key
// shares produced by a finalized DKG ceremony. Each round of signing uses
// a fresh hiding/binding nonce pair; responses carry per-signer binding
// factors so a signer's nonce commitment cannot be replayed into a
// different signing context. The aggregated signature verifies under the
// plain single-party Schnorr equation.
package sign

import (
	"io"
	"sync"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// SigningNonce is one signer's secret nonce pair (d, e) for a single
// signing round. A nonce is consumed by exactly one Respond call; reusing
// it across two messages lets an observer recover the long-term share, so
// consumption is enforced rather than documented.
type SigningNonce struct {
	id dkg.ParticipantID

	mu    sync.Mutex
	d     group.Scalar
	e     group.Scalar
	spent bool
}

// NonceCommitment is the public half of a signing nonce, broadcast in the
// commit round: Hiding = d*G and Binding = e*G.
type NonceCommitment struct {
	ID      dkg.ParticipantID
	Hiding  group.Element
	Binding group.Element
}

// NewSigningNonce draws a fresh nonce pair from rng and returns it
// together with its public commitment.
func NewSigningNonce(cs ciphersuite.Ciphersuite, id dkg.ParticipantID, rng io.Reader) (*SigningNonce, *NonceCommitment, error) {
	if id == 0 {
		return nil, nil, &dkg.ConfigurationError{Field: "id", Reason: "participant id must be nonzero"}
	}
	grp := cs.Group()

	d, err := dkg.RandomScalar(cs, rng, "sign hiding nonce")
	if err != nil {
		return nil, nil, err
	}
	e, err := dkg.RandomScalar(cs, rng, "sign binding nonce")
	if err != nil {
		return nil, nil, err
	}

	nonce := &SigningNonce{id: id, d: d, e: e}
	com := &NonceCommitment{
		ID:      id,
		Hiding:  grp.ScalarBaseMult(d),
		Binding: grp.ScalarBaseMult(e),
	}
	return nonce, com, nil
}

// ID returns the signer the nonce belongs to.
func (n *SigningNonce) ID() dkg.ParticipantID { return n.id }

// consume hands out the nonce pair exactly once. The second caller gets a
// ProtocolStateError.
func (n *SigningNonce) consume() (d, e group.Scalar, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.spent {
		return nil, nil, &dkg.ProtocolStateError{Op: "Respond", State: "nonce already consumed"}
	}
	n.spent = true
	d, e = n.d, n.e
	n.d, n.e = nil, nil
	return d, e, nil
}

// Zeroize destroys the nonce pair. Idempotent; a consumed nonce has
// nothing left to destroy.
func (n *SigningNonce) Zeroize(grp group.Group) {
	n.mu.Lock()
	defer n.mu.Unlock()
	zero := grp.NewScalar()
	if n.d != nil {
		n.d = n.d.Mul(zero)
		n.d = nil
	}
	if n.e != nil {
		n.e = n.e.Mul(zero)
		n.e = nil
	}
	n.spent = true
}

// Bytes serializes the commitment as id || Hiding || Binding.
func (nc *NonceCommitment) Bytes(grp group.Group) ([]byte, error) {
	h, err := grp.SerializeElement(nc.Hiding)
	if err != nil {
		return nil, err
	}
	b, err := grp.SerializeElement(nc.Binding)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 8+len(h)+len(b))
	out = append(out, nc.ID.Bytes()...)
	out = append(out, h...)
	out = append(out, b...)
	return out, nil
}

// NonceCommitmentFromBytes deserializes a commitment produced by Bytes.
func NonceCommitmentFromBytes(grp group.Group, b []byte) (*NonceCommitment, error) {
	elemLen := grp.ElementLength()
	if len(b) != 8+2*elemLen {
		return nil, ErrInvalidCommitmentEncoding
	}

	id, err := dkg.ParticipantIDFromBytes(b[:8])
	if err != nil {
		return nil, err
	}
	hiding, err := grp.DeserializeElement(b[8 : 8+elemLen])
	if err != nil {
		return nil, err
	}
	binding, err := grp.DeserializeElement(b[8+elemLen:])
	if err != nil {
		return nil, err
	}
	return &NonceCommitment{ID: id, Hiding: hiding, Binding: binding}, nil
}
