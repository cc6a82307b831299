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

// Package memory provides an in-process message bus for threshold
// ceremonies and signing rounds.
//
// The hub routes envelopes between participants over channels within
// one process. It is the reference transport backend: integration tests
// and the CLI use it to run whole ceremonies without network I/O.
//
// Key properties:
//   - Fixed roster, declared at hub creation
//   - Per-member queues; messages sent before a member attaches are
//     held until it does
//   - Thread-safe, no network overhead, no TLS
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
	"github.com/peridot-crypto/go-threshsig/pkg/transport"
)

// member tracks one roster entry's delivery state.
type member struct {
	pending  []*transport.Envelope
	wake     chan struct{}
	done     chan struct{}
	attached bool
	closed   bool
}

// Hub is an in-process transport.Bus with a fixed roster.
type Hub struct {
	cfg     *transport.Config
	session string
	mu      sync.Mutex
	members map[dkg.ParticipantID]*member
	closed  bool
}

// NewHub creates a bus for the given roster. The roster is fixed for
// the life of the hub; only listed participants may attach. If the
// config carries no session id one is generated.
func NewHub(cfg *transport.Config, roster []dkg.ParticipantID) (*Hub, error) {
	if cfg == nil {
		cfg = transport.NewMemoryConfig("")
	}
	normalized, err := cfg.Normalized()
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, &transport.ConfigError{Field: "roster", Reason: "must not be empty"}
	}

	session := normalized.SessionID
	if session == "" {
		session, err = newSessionID()
		if err != nil {
			return nil, err
		}
		normalized.SessionID = session
	}

	members := make(map[dkg.ParticipantID]*member, len(roster))
	for _, id := range roster {
		if _, dup := members[id]; dup {
			return nil, &transport.ConfigError{Field: "roster", Reason: "duplicate participant id"}
		}
		members[id] = &member{
			wake: make(chan struct{}, 1),
			done: make(chan struct{}),
		}
	}

	return &Hub{
		cfg:     normalized,
		session: session,
		members: members,
	}, nil
}

func newSessionID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// SessionID returns the session identifier.
func (h *Hub) SessionID() string {
	return h.session
}

// Config returns the hub's normalized configuration.
func (h *Hub) Config() *transport.Config {
	return h.cfg
}

// Attach joins the session as the given participant. Each roster id may
// attach at most once; ids outside the roster are rejected.
func (h *Hub) Attach(ctx context.Context, id dkg.ParticipantID) (transport.Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, &transport.SessionError{SessionID: h.session, Err: transport.ErrSessionClosed}
	}
	m, ok := h.members[id]
	if !ok {
		return nil, &transport.SessionError{SessionID: h.session, Err: transport.ErrSessionFull}
	}
	if m.attached || m.closed {
		return nil, &transport.SessionError{SessionID: h.session, Err: transport.ErrAlreadyAttached}
	}
	m.attached = true
	h.cfg.Logger.Debug("participant %d attached to session %s", uint64(id), h.session)

	return &conn{hub: h, id: id}, nil
}

// Close tears down the session. Attached connections see pending
// receives fail.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for _, m := range h.members {
		if !m.closed {
			m.closed = true
			close(m.done)
		}
	}
	return nil
}

// deliver queues env for the given roster member. Callers hold no lock.
func (h *Hub) deliver(to dkg.ParticipantID, env *transport.Envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return &transport.SessionError{SessionID: h.session, Err: transport.ErrSessionClosed}
	}
	m, ok := h.members[to]
	if !ok {
		return transport.ErrNotAttached
	}
	if m.closed {
		return transport.ErrConnectionClosed
	}

	m.pending = append(m.pending, env)
	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}

// checkEnvelope validates an outgoing envelope against the session.
func (h *Hub) checkEnvelope(from dkg.ParticipantID, env *transport.Envelope) error {
	if env == nil {
		return transport.ErrInvalidMessage
	}
	if env.SessionID != "" && env.SessionID != h.session {
		return &transport.SessionError{SessionID: env.SessionID, Err: transport.ErrInvalidMessage}
	}
	if h.cfg.MaxMessageSize > 0 && len(env.Payload) > h.cfg.MaxMessageSize {
		return transport.ErrMessageTooLarge
	}
	env.SessionID = h.session
	env.Sender = uint64(from)
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().UnixNano()
	}
	return nil
}

// conn is one participant's attachment to a Hub.
type conn struct {
	hub *Hub
	id  dkg.ParticipantID
}

// ID returns the participant id this connection is bound to.
func (c *conn) ID() dkg.ParticipantID {
	return c.id
}

// Broadcast delivers the envelope to every other roster member still
// part of the session. Members that have already detached are skipped,
// so a participant finishing last can still announce its result.
func (c *conn) Broadcast(ctx context.Context, env *transport.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.hub.checkEnvelope(c.id, env); err != nil {
		return err
	}

	c.hub.mu.Lock()
	ids := make([]dkg.ParticipantID, 0, len(c.hub.members))
	for id, m := range c.hub.members {
		if id != c.id && !m.closed {
			ids = append(ids, id)
		}
	}
	c.hub.mu.Unlock()

	for _, id := range ids {
		err := c.hub.deliver(id, env)
		if errors.Is(err, transport.ErrConnectionClosed) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Send delivers the envelope to a single roster member.
func (c *conn) Send(ctx context.Context, to dkg.ParticipantID, env *transport.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.hub.checkEnvelope(c.id, env); err != nil {
		return err
	}
	return c.hub.deliver(to, env)
}

// Receive blocks for the next envelope addressed to this member. The
// hub's configured timeout bounds the wait when the context carries no
// deadline of its own.
func (c *conn) Receive(ctx context.Context) (*transport.Envelope, error) {
	if _, ok := ctx.Deadline(); !ok && c.hub.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.hub.cfg.Timeout)
		defer cancel()
	}

	for {
		c.hub.mu.Lock()
		m := c.hub.members[c.id]
		if m.closed || c.hub.closed {
			c.hub.mu.Unlock()
			return nil, transport.ErrConnectionClosed
		}
		if len(m.pending) > 0 {
			env := m.pending[0]
			m.pending = m.pending[1:]
			c.hub.mu.Unlock()
			return env, nil
		}
		wake := m.wake
		done := m.done
		c.hub.mu.Unlock()

		select {
		case <-wake:
		case <-done:
			return nil, transport.ErrConnectionClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close detaches from the session. Messages already queued are dropped.
func (c *conn) Close() error {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()

	m := c.hub.members[c.id]
	if m.closed {
		return nil
	}
	m.closed = true
	m.pending = nil
	close(m.done)
	return nil
}
