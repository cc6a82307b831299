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

package memory

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
	"github.com/peridot-crypto/go-threshsig/pkg/sign"
	"github.com/peridot-crypto/go-threshsig/pkg/transport"
)

// Runner drives one participant's side of a protocol run over a bus
// session. A Runner attaches on Run and detaches when the run ends; it
// is single-use.
type Runner struct {
	cs  ciphersuite.Ciphersuite
	bus transport.Bus
	ser *transport.Serializer
	log transport.Logger
	rng io.Reader
}

// NewRunner creates a runner for one protocol run over the given bus.
// A nil config selects defaults; a nil rng selects crypto/rand.
func NewRunner(cs ciphersuite.Ciphersuite, bus transport.Bus, cfg *transport.Config, rng io.Reader) (*Runner, error) {
	if cs == nil {
		return nil, &transport.ConfigError{Field: "ciphersuite", Reason: "must not be nil"}
	}
	if bus == nil {
		return nil, &transport.ConfigError{Field: "bus", Reason: "must not be nil"}
	}
	if cfg == nil {
		cfg = transport.NewMemoryConfig(bus.SessionID())
	}
	normalized, err := cfg.Normalized()
	if err != nil {
		return nil, err
	}
	ser, err := transport.NewSerializer(normalized.CodecType)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.Reader
	}

	return &Runner{
		cs:  cs,
		bus: bus,
		ser: ser,
		log: normalized.Logger,
		rng: rng,
	}, nil
}

// send serializes msg and delivers it to a single member.
func (r *Runner) send(ctx context.Context, conn transport.Conn, to dkg.ParticipantID, msgType transport.MessageType, msg any) error {
	payload, err := r.ser.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Send(ctx, to, &transport.Envelope{Type: msgType, Payload: payload})
}

// broadcast serializes msg and delivers it to every other member.
func (r *Runner) broadcast(ctx context.Context, conn transport.Conn, msgType transport.MessageType, msg any) error {
	payload, err := r.ser.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Broadcast(ctx, &transport.Envelope{Type: msgType, Payload: payload})
}

// RunCeremony executes a full key generation ceremony as the
// participant named in params. It returns only after the participant
// has finalized its key share; peers that fail verification abort the
// run.
func (r *Runner) RunCeremony(ctx context.Context, params transport.CeremonyParams) (*transport.CeremonyResult, error) {
	grp := r.cs.Group()

	committee, err := dkg.NewCommittee(r.cs, params.Participants, params.Threshold)
	if err != nil {
		return nil, err
	}
	participant, err := dkg.NewParticipant(r.cs, params.ID, committee, r.rng)
	if err != nil {
		return nil, err
	}

	conn, err := r.bus.Attach(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rec, err := participant.PublishCommitment(r.rng)
	if err != nil {
		return nil, err
	}
	comBytes, err := rec.Commitment.Bytes(grp)
	if err != nil {
		return nil, err
	}
	proofBytes, err := rec.Proof.Bytes(grp)
	if err != nil {
		return nil, err
	}
	if err := r.broadcast(ctx, conn, transport.MsgTypeCommitment, &transport.CommitmentMessage{
		Commitment: comBytes,
		Proof:      proofBytes,
	}); err != nil {
		return nil, err
	}
	r.log.Debug("participant %d published commitment", uint64(params.ID))

	// Round 1: admit every peer commitment. Shares from fast peers can
	// arrive interleaved; hold them until the exchange round.
	var early []dkg.Share
	for len(committee.Admitted()) < params.Participants {
		env, err := conn.Receive(ctx)
		if err != nil {
			return nil, err
		}
		switch env.Type {
		case transport.MsgTypeCommitment:
			if err := r.admitCommitment(committee, env, params.Threshold); err != nil {
				participant.Abort()
				return nil, err
			}
		case transport.MsgTypeShare:
			share, err := r.decodeShare(env, params.ID)
			if err != nil {
				participant.Abort()
				return nil, err
			}
			early = append(early, share)
		case transport.MsgTypeError:
			participant.Abort()
			return nil, r.decodeError(env)
		default:
			r.log.Debug("participant %d ignoring message type %d", uint64(params.ID), env.Type)
		}
	}

	// Round 2: private share exchange.
	outgoing, err := participant.BeginShareExchange()
	if err != nil {
		return nil, err
	}
	for i := range outgoing {
		value := grp.SerializeScalar(outgoing[i].Value)
		err := r.send(ctx, conn, outgoing[i].To, transport.MsgTypeShare, &transport.ShareMessage{
			Recipient: uint64(outgoing[i].To),
			Share:     value,
		})
		dkg.ZeroBytes(value)
		outgoing[i].Zeroize(grp)
		if err != nil {
			participant.Abort()
			return nil, err
		}
	}

	received := 0
	for _, share := range early {
		if err := participant.ReceiveShare(share); err != nil {
			return nil, err
		}
		received++
	}
	for received < params.Participants-1 {
		env, err := conn.Receive(ctx)
		if err != nil {
			return nil, err
		}
		switch env.Type {
		case transport.MsgTypeShare:
			share, err := r.decodeShare(env, params.ID)
			if err != nil {
				participant.Abort()
				return nil, err
			}
			if err := participant.ReceiveShare(share); err != nil {
				return nil, err
			}
			received++
		case transport.MsgTypeError:
			participant.Abort()
			return nil, r.decodeError(env)
		default:
			// Fast peers finalize and announce before slow peers have
			// delivered every share.
			r.log.Debug("participant %d ignoring message type %d", uint64(params.ID), env.Type)
		}
	}

	keyShare, err := participant.Finalize()
	if err != nil {
		return nil, err
	}

	groupKey, err := grp.SerializeElement(keyShare.GroupPublicKey)
	if err != nil {
		return nil, err
	}
	if err := r.broadcast(ctx, conn, transport.MsgTypeComplete, &transport.CompleteMessage{
		GroupPublicKey: groupKey,
	}); err != nil {
		return nil, err
	}
	r.log.Info("participant %d finalized key share for session %s", uint64(params.ID), r.bus.SessionID())

	return &transport.CeremonyResult{
		KeyShare:  keyShare,
		SessionID: r.bus.SessionID(),
	}, nil
}

func (r *Runner) admitCommitment(committee *dkg.Committee, env *transport.Envelope, threshold int) error {
	grp := r.cs.Group()

	var msg transport.CommitmentMessage
	if err := r.ser.UnmarshalPayload(env, &msg); err != nil {
		return err
	}
	from, err := dkg.NewParticipantID(env.Sender)
	if err != nil {
		return fmt.Errorf("commitment from invalid sender %d: %w", env.Sender, err)
	}
	com, err := dkg.CommitmentFromBytes(grp, msg.Commitment, threshold)
	if err != nil {
		return fmt.Errorf("commitment from participant %d: %w", env.Sender, err)
	}
	proof, err := dkg.ProofFromBytes(grp, msg.Proof)
	if err != nil {
		return fmt.Errorf("proof from participant %d: %w", env.Sender, err)
	}
	return committee.Admit(&dkg.PeerRecord{ID: from, Commitment: com, Proof: proof})
}

func (r *Runner) decodeShare(env *transport.Envelope, self dkg.ParticipantID) (dkg.Share, error) {
	grp := r.cs.Group()

	var msg transport.ShareMessage
	if err := r.ser.UnmarshalPayload(env, &msg); err != nil {
		return dkg.Share{}, err
	}
	from, err := dkg.NewParticipantID(env.Sender)
	if err != nil {
		return dkg.Share{}, fmt.Errorf("share from invalid sender %d: %w", env.Sender, err)
	}
	if msg.Recipient != uint64(self) {
		return dkg.Share{}, fmt.Errorf("share addressed to %d delivered to %d: %w",
			msg.Recipient, uint64(self), transport.ErrUnexpectedMessage)
	}
	value, err := grp.DeserializeScalar(msg.Share)
	if err != nil {
		return dkg.Share{}, fmt.Errorf("share from participant %d: %w", env.Sender, err)
	}
	return dkg.Share{From: from, To: self, Value: value}, nil
}

func (r *Runner) decodeError(env *transport.Envelope) error {
	var msg transport.ErrorMessage
	if err := r.ser.UnmarshalPayload(env, &msg); err != nil {
		return err
	}
	return fmt.Errorf("participant %d reported error %d: %s", env.Sender, msg.Code, msg.Message)
}

// RunSigning executes one two-round signing session as the signer
// holding params.KeyShare. Every signer aggregates; all return the same
// signature.
func (r *Runner) RunSigning(ctx context.Context, params transport.SigningParams) (*sign.Signature, error) {
	grp := r.cs.Group()

	if params.KeyShare == nil {
		return nil, &transport.ConfigError{Field: "key share", Reason: "must not be nil"}
	}
	self := params.KeyShare.ID
	roster := make(map[dkg.ParticipantID]bool, len(params.Signers))
	for _, id := range params.Signers {
		roster[id] = true
	}
	if !roster[self] {
		return nil, &transport.ConfigError{Field: "signers", Reason: "must include this signer"}
	}

	conn, err := r.bus.Attach(ctx, self)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	nonce, nonceCom, err := sign.NewSigningNonce(r.cs, self, r.rng)
	if err != nil {
		return nil, err
	}
	defer nonce.Zeroize(grp)

	ncBytes, err := nonceCom.Bytes(grp)
	if err != nil {
		return nil, err
	}
	if err := r.broadcast(ctx, conn, transport.MsgTypeNonceCommit, &transport.NonceCommitmentMessage{
		Commitment: ncBytes,
	}); err != nil {
		return nil, err
	}

	// Round 1: collect the full signer set's nonce commitments.
	commitments := map[dkg.ParticipantID]*sign.NonceCommitment{self: nonceCom}
	for len(commitments) < len(roster) {
		env, err := conn.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if env.Type != transport.MsgTypeNonceCommit {
			if env.Type == transport.MsgTypeError {
				return nil, r.decodeError(env)
			}
			r.log.Debug("signer %d ignoring message type %d", uint64(self), env.Type)
			continue
		}
		var msg transport.NonceCommitmentMessage
		if err := r.ser.UnmarshalPayload(env, &msg); err != nil {
			return nil, err
		}
		nc, err := sign.NonceCommitmentFromBytes(grp, msg.Commitment)
		if err != nil {
			return nil, fmt.Errorf("nonce commitment from participant %d: %w", env.Sender, err)
		}
		if nc.ID != dkg.ParticipantID(env.Sender) {
			return nil, fmt.Errorf("nonce commitment id %d from sender %d: %w",
				uint64(nc.ID), env.Sender, transport.ErrUnexpectedMessage)
		}
		if !roster[nc.ID] {
			r.log.Debug("signer %d ignoring commitment from non-signer %d", uint64(self), env.Sender)
			continue
		}
		commitments[nc.ID] = nc
	}

	set := make([]*sign.NonceCommitment, 0, len(commitments))
	for _, nc := range commitments {
		set = append(set, nc)
	}

	// Round 2: respond, then collect every signer's partial.
	partial, err := sign.Respond(r.cs, params.KeyShare, nonce, params.Message, set)
	if err != nil {
		return nil, err
	}
	if err := r.broadcast(ctx, conn, transport.MsgTypePartialSig, &transport.PartialSignatureMessage{
		Z: grp.SerializeScalar(partial.Z),
	}); err != nil {
		return nil, err
	}

	partials := map[dkg.ParticipantID]*sign.PartialSignature{self: partial}
	for len(partials) < len(roster) {
		env, err := conn.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if env.Type != transport.MsgTypePartialSig {
			if env.Type == transport.MsgTypeError {
				return nil, r.decodeError(env)
			}
			r.log.Debug("signer %d ignoring message type %d", uint64(self), env.Type)
			continue
		}
		from, err := dkg.NewParticipantID(env.Sender)
		if err != nil || !roster[from] {
			r.log.Debug("signer %d ignoring partial from non-signer %d", uint64(self), env.Sender)
			continue
		}
		var msg transport.PartialSignatureMessage
		if err := r.ser.UnmarshalPayload(env, &msg); err != nil {
			return nil, err
		}
		z, err := grp.DeserializeScalar(msg.Z)
		if err != nil {
			return nil, fmt.Errorf("partial signature from participant %d: %w", env.Sender, err)
		}
		partials[from] = &sign.PartialSignature{ID: from, Z: z}
	}

	responses := make([]*sign.PartialSignature, 0, len(partials))
	for _, p := range partials {
		responses = append(responses, p)
	}

	sig, err := sign.Aggregate(r.cs, params.KeyShare.GroupCommitment, params.Message, set, responses)
	if err != nil {
		return nil, err
	}
	r.log.Info("signer %d aggregated signature for session %s", uint64(self), r.bus.SessionID())
	return sig, nil
}

// RunLocalCeremony runs a complete ceremony in-process with participant
// ids 1..participants and returns every member's key share. Intended
// for tests and the CLI demo path.
func RunLocalCeremony(ctx context.Context, cs ciphersuite.Ciphersuite, cfg *transport.Config, participants, threshold int) (map[dkg.ParticipantID]*dkg.KeyShare, error) {
	roster := make([]dkg.ParticipantID, participants)
	for i := range roster {
		roster[i] = dkg.ParticipantID(i + 1)
	}
	hub, err := NewHub(cfg, roster)
	if err != nil {
		return nil, err
	}
	defer hub.Close()

	type outcome struct {
		id     dkg.ParticipantID
		result *transport.CeremonyResult
		err    error
	}
	results := make(chan outcome, participants)
	var wg sync.WaitGroup
	for _, id := range roster {
		wg.Add(1)
		go func(id dkg.ParticipantID) {
			defer wg.Done()
			runner, err := NewRunner(cs, hub, hub.Config(), nil)
			if err != nil {
				results <- outcome{id: id, err: err}
				return
			}
			res, err := runner.RunCeremony(ctx, transport.CeremonyParams{
				ID:           id,
				Participants: participants,
				Threshold:    threshold,
			})
			results <- outcome{id: id, result: res, err: err}
		}(id)
	}
	wg.Wait()
	close(results)

	shares := make(map[dkg.ParticipantID]*dkg.KeyShare, participants)
	for out := range results {
		if out.err != nil {
			return nil, fmt.Errorf("participant %d: %w", uint64(out.id), out.err)
		}
		shares[out.id] = out.result.KeyShare
	}
	return shares, nil
}

// RunLocalSigning runs one signing session in-process with the given
// signer subset and returns the aggregated signature.
func RunLocalSigning(ctx context.Context, cs ciphersuite.Ciphersuite, cfg *transport.Config, shares map[dkg.ParticipantID]*dkg.KeyShare, message []byte, signers []dkg.ParticipantID) (*sign.Signature, error) {
	hub, err := NewHub(cfg, signers)
	if err != nil {
		return nil, err
	}
	defer hub.Close()

	type outcome struct {
		id  dkg.ParticipantID
		sig *sign.Signature
		err error
	}
	results := make(chan outcome, len(signers))
	var wg sync.WaitGroup
	for _, id := range signers {
		ks, ok := shares[id]
		if !ok {
			return nil, &transport.ConfigError{
				Field:  "signers",
				Reason: fmt.Sprintf("no key share for participant %d", uint64(id)),
			}
		}
		wg.Add(1)
		go func(id dkg.ParticipantID, ks *dkg.KeyShare) {
			defer wg.Done()
			runner, err := NewRunner(cs, hub, hub.Config(), nil)
			if err != nil {
				results <- outcome{id: id, err: err}
				return
			}
			sig, err := runner.RunSigning(ctx, transport.SigningParams{
				KeyShare: ks,
				Message:  message,
				Signers:  signers,
			})
			results <- outcome{id: id, sig: sig, err: err}
		}(id, ks)
	}
	wg.Wait()
	close(results)

	var sig *sign.Signature
	for out := range results {
		if out.err != nil {
			return nil, fmt.Errorf("signer %d: %w", uint64(out.id), out.err)
		}
		if sig == nil {
			sig = out.sig
		}
	}
	return sig, nil
}
