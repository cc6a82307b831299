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

// Package dkg implements trustless distributed key generation for
// threshold Schnorr signing: every participant contributes a Feldman
// committed secret polynomial, proves knowledge of its constant term, and
// exchanges verified shares, so that no party ever holds the group secret.
package dkg

import (
	"fmt"
	"io"
	"sync"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// State is a participant's position in the ceremony. Transitions are
// strictly forward: Initialized -> CommitmentPublished -> SharesExchanged
// -> Finalized.
type State int

const (
	StateInitialized State = iota
	StateCommitmentPublished
	StateSharesExchanged
	StateFinalized
	StateAborted
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateCommitmentPublished:
		return "commitment-published"
	case StateSharesExchanged:
		return "shares-exchanged"
	case StateFinalized:
		return "finalized"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Share is a directed secret share f_From(To), sent privately from one
// participant to another during the exchange round.
type Share struct {
	From  ParticipantID
	To    ParticipantID
	Value group.Scalar
}

// Zeroize overwrites the share value.
func (s *Share) Zeroize(grp group.Group) {
	if s.Value != nil {
		zero := grp.NewScalar()
		s.Value = s.Value.Mul(zero)
		s.Value = nil
	}
}

// KeyShare is the durable output of a finalized ceremony: the
// participant's long-term signing share, its public verification share,
// the group verification key, and the summed group commitment from which
// any member's verification share can be derived.
type KeyShare struct {
	ID              ParticipantID
	SecretShare     group.Scalar
	PublicShare     group.Element
	GroupPublicKey  group.Element
	GroupCommitment *Commitment
	Signers         []ParticipantID
}

// VerificationShare derives the public verification share of any ceremony
// member from the group commitment.
func (ks *KeyShare) VerificationShare(grp group.Group, id ParticipantID) group.Element {
	return ks.GroupCommitment.PublicShare(grp, id)
}

// Zeroize overwrites the secret signing share. Public material is left
// intact.
func (ks *KeyShare) Zeroize(grp group.Group) {
	if ks.SecretShare != nil {
		zero := grp.NewScalar()
		ks.SecretShare = ks.SecretShare.Mul(zero)
		ks.SecretShare = nil
	}
}

// Participant drives one member's side of a DKG ceremony. It owns the
// member's secret polynomial from construction until Finalize, which
// zeroizes it. A Participant is single-use: after Finalize or an abort it
// accepts no further operations. Safe for concurrent use.
type Participant struct {
	cs        ciphersuite.Ciphersuite
	id        ParticipantID
	committee *Committee

	mu       sync.Mutex
	state    State
	poly     *SecretPolynomial
	com      *Commitment
	roster   []ParticipantID
	received map[ParticipantID]group.Scalar
}

// NewParticipant creates a participant for the given committee, sampling a
// fresh secret polynomial of degree threshold-1 from rng.
func NewParticipant(cs ciphersuite.Ciphersuite, id ParticipantID, committee *Committee, rng io.Reader) (*Participant, error) {
	if committee == nil {
		return nil, &ConfigurationError{Field: "committee", Reason: "must not be nil"}
	}
	if id == 0 {
		return nil, &ConfigurationError{Field: "id", Reason: "participant id must be nonzero"}
	}

	poly, err := GeneratePolynomial(cs, rng, committee.Threshold())
	if err != nil {
		return nil, err
	}

	return &Participant{
		cs:        cs,
		id:        id,
		committee: committee,
		state:     StateInitialized,
		poly:      poly,
		com:       poly.Commit(),
		received:  make(map[ParticipantID]group.Scalar),
	}, nil
}

// ID returns the participant's identifier.
func (p *Participant) ID() ParticipantID { return p.id }

// State returns the current ceremony state.
func (p *Participant) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PublishCommitment produces the participant's round-one broadcast: its
// Feldman commitment and a proof of knowledge of the constant term. The
// record is admitted into the local committee before being returned, so
// the caller only has to forward it to the peers.
func (p *Participant) PublishCommitment(rng io.Reader) (*PeerRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateInitialized {
		return nil, &ProtocolStateError{Op: "PublishCommitment", State: p.state.String()}
	}

	proof, err := ProveKnowledge(p.cs, p.id, p.poly, p.com, rng)
	if err != nil {
		return nil, err
	}

	rec := &PeerRecord{ID: p.id, Commitment: p.com, Proof: proof}
	if err := p.committee.Admit(rec); err != nil {
		return nil, err
	}

	p.state = StateCommitmentPublished
	return rec, nil
}

// BeginShareExchange freezes the set of ceremony members to the committee
// roster admitted so far and evaluates the secret polynomial at each
// peer's identifier. The returned shares are for private delivery, one per
// peer; the participant's own share is never emitted and is folded in
// during Finalize.
//
// The roster must hold at least the ceremony threshold, including this
// participant's own admitted record.
func (p *Participant) BeginShareExchange() ([]Share, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCommitmentPublished {
		return nil, &ProtocolStateError{Op: "BeginShareExchange", State: p.state.String()}
	}
	if err := p.committee.ReadyOrErr(); err != nil {
		return nil, err
	}

	roster := p.committee.Admitted()
	self := false
	for _, id := range roster {
		if id == p.id {
			self = true
			break
		}
	}
	if !self {
		return nil, &ProtocolStateError{Op: "BeginShareExchange", State: "own commitment not admitted"}
	}

	shares := make([]Share, 0, len(roster)-1)
	for _, id := range roster {
		if id == p.id {
			continue
		}
		shares = append(shares, Share{From: p.id, To: id, Value: p.poly.EvaluateAt(id)})
	}

	p.roster = roster
	p.state = StateSharesExchanged
	return shares, nil
}

// ReceiveShare verifies and stores a peer's share against the peer's
// broadcast commitment: f_From(id)*G must equal the commitment evaluated
// at this participant's identifier.
//
// A share that fails the check aborts the ceremony for this participant.
// The VerificationFailure names the sender so the operator can exclude it
// from the next run; the run itself cannot continue, because a missing
// summand would leave every surviving share inconsistent with the group
// commitment.
func (p *Participant) ReceiveShare(share Share) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateSharesExchanged {
		return &ProtocolStateError{Op: "ReceiveShare", State: p.state.String()}
	}
	if share.To != p.id {
		return &ConfigurationError{
			Field:  "share.To",
			Reason: fmt.Sprintf("addressed to participant %d, not %d", share.To, p.id),
		}
	}
	if share.From == p.id {
		return &ConfigurationError{Field: "share.From", Reason: "participant cannot receive its own share"}
	}
	if share.Value == nil {
		return &ConfigurationError{Field: "share.Value", Reason: "must not be nil"}
	}

	inRoster := false
	for _, id := range p.roster {
		if id == share.From {
			inRoster = true
			break
		}
	}
	if !inRoster {
		return &VerificationFailure{ID: share.From, Reason: "sender not in ceremony roster", Err: ErrUnknownParticipant}
	}
	if _, ok := p.received[share.From]; ok {
		return &VerificationFailure{ID: share.From, Reason: "duplicate share", Err: ErrDuplicateParticipant}
	}

	rec := p.committee.Record(share.From)
	if rec == nil {
		return &VerificationFailure{ID: share.From, Reason: "sender has no admitted commitment", Err: ErrUnknownParticipant}
	}

	grp := p.cs.Group()
	expected := rec.Commitment.PublicShare(grp, p.id)
	if !VerifyShare(grp, share.Value, expected) {
		p.abortLocked()
		return &VerificationFailure{ID: share.From, Reason: "share does not match commitment", Err: ErrShareVerification}
	}

	p.received[share.From] = share.Value.Copy()
	return nil
}

// Finalize completes the ceremony once a share from every roster peer has
// been verified. The long-term secret share is the sum of all received
// shares plus the participant's own polynomial evaluated at its
// identifier. The secret polynomial and the received shares are zeroized
// before returning; Finalize can succeed at most once.
func (p *Participant) Finalize() (*KeyShare, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateSharesExchanged {
		return nil, &ProtocolStateError{Op: "Finalize", State: p.state.String()}
	}
	if got := len(p.received); got != len(p.roster)-1 {
		return nil, &QuorumError{Phase: "share", Need: len(p.roster) - 1, Got: got}
	}

	grp := p.cs.Group()

	secret := p.poly.EvaluateAt(p.id)
	for _, id := range p.roster {
		if id == p.id {
			continue
		}
		secret = secret.Add(p.received[id])
	}

	var groupCom *Commitment
	for _, id := range p.roster {
		rec := p.committee.Record(id)
		if rec == nil {
			return nil, &VerificationFailure{ID: id, Reason: "roster member has no admitted commitment", Err: ErrUnknownParticipant}
		}
		if groupCom == nil {
			coeffs := make([]group.Element, len(rec.Commitment.Coefficients))
			for i, co := range rec.Commitment.Coefficients {
				coeffs[i] = co.Copy()
			}
			groupCom = &Commitment{Coefficients: coeffs}
			continue
		}
		sum, err := groupCom.Add(rec.Commitment)
		if err != nil {
			return nil, err
		}
		groupCom = sum
	}

	pubShare := groupCom.PublicShare(grp, p.id)
	if !VerifyShare(grp, secret, pubShare) {
		p.abortLocked()
		return nil, &VerificationFailure{ID: p.id, Reason: "final share inconsistent with group commitment", Err: ErrShareVerification}
	}

	p.poly.Zeroize()
	p.poly = nil
	zero := grp.NewScalar()
	for id, v := range p.received {
		p.received[id] = v.Mul(zero)
		delete(p.received, id)
	}

	p.state = StateFinalized
	return &KeyShare{
		ID:              p.id,
		SecretShare:     secret,
		PublicShare:     pubShare,
		GroupPublicKey:  groupCom.ConstantTerm(),
		GroupCommitment: groupCom,
		Signers:         append([]ParticipantID(nil), p.roster...),
	}, nil
}

// Abort discards the ceremony. The secret polynomial and any received
// shares are zeroized and no further operations are accepted.
func (p *Participant) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateFinalized || p.state == StateAborted {
		return
	}
	p.abortLocked()
}

func (p *Participant) abortLocked() {
	grp := p.cs.Group()
	if p.poly != nil {
		p.poly.Zeroize()
		p.poly = nil
	}
	zero := grp.NewScalar()
	for id, v := range p.received {
		p.received[id] = v.Mul(zero)
		delete(p.received, id)
	}
	p.state = StateAborted
}
