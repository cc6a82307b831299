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

// Package transport carries threshold-signing protocol messages between
// participants.
//
// The cryptographic core exposes plain serializable values: commitments,
// proofs of knowledge, shares, nonce commitments, and partial signatures.
// This package wraps them in typed envelopes, serializes them with a
// pluggable codec, and moves them over a message bus:
//   - Broadcast for round-one commitments and signing material
//   - Unicast for the private share exchange
//   - Pluggable codec support (JSON, CBOR, MessagePack, YAML, BSON, TOML)
//
// The bus has no cryptographic role. Verification happens entirely in the
// dkg and sign packages; the bus only delivers bytes and attributes them
// to a sender id. The in-memory implementation under memory/ drives whole
// ceremonies in-process; network backends plug in behind the same Conn
// interface.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// Logger interface for transport layer logging.
// Implementations can be provided by callers to capture transport events.
type Logger interface {
	// Info logs informational messages.
	Info(format string, args ...interface{})
	// Debug logs debug messages (verbose output).
	Debug(format string, args ...interface{})
	// Error logs error messages.
	Error(format string, args ...interface{})
}

// NopLogger is a no-op logger that discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(format string, args ...interface{})  {}
func (NopLogger) Debug(format string, args ...interface{}) {}
func (NopLogger) Error(format string, args ...interface{}) {}

// StdoutLogger logs to stdout with a prefix.
type StdoutLogger struct {
	Prefix  string
	Verbose bool
}

func (l *StdoutLogger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] %s\n", l.Prefix, msg)
}

func (l *StdoutLogger) Debug(format string, args ...interface{}) {
	if l.Verbose {
		msg := fmt.Sprintf(format, args...)
		fmt.Printf("[%s] DEBUG: %s\n", l.Prefix, msg)
	}
}

func (l *StdoutLogger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] ERROR: %s\n", l.Prefix, msg)
}

// Protocol represents supported transport backends.
type Protocol string

const (
	// ProtocolMemory uses in-process channels. The only backend shipped
	// with the library; network backends register their own value.
	ProtocolMemory Protocol = "memory"
)

// Config holds transport layer configuration.
type Config struct {
	// Protocol selects the transport backend.
	Protocol Protocol

	// SessionID correlates messages belonging to one ceremony or signing
	// round. If empty, the backend generates one.
	SessionID string

	// CodecType specifies message serialization format.
	// Supported: "json", "msgpack", "cbor", "yaml", "bson", "toml"
	// Default: "json"
	CodecType string

	// Ciphersuite is the FROST ciphersuite identifier, e.g.
	// "FROST-ED25519-SHA512-v1". All session members must agree on it.
	Ciphersuite string

	// Timeout bounds a single send or receive.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxMessageSize is the maximum message size in bytes.
	// Default: 1MB
	MaxMessageSize int

	// Logger for transport layer events.
	// If nil, a NopLogger is used.
	Logger Logger
}

// Conn is one participant's attachment to a session bus.
//
// Messages sent before a peer attaches are buffered by the backend; a
// Conn never loses a message that was addressed to it while the session
// is open. Receive returns messages in per-sender order; no global
// ordering is guaranteed, and none is needed since commitment admission
// is commutative.
type Conn interface {
	// ID returns the participant id this connection is bound to.
	ID() dkg.ParticipantID

	// Broadcast delivers the envelope to every other session member.
	Broadcast(ctx context.Context, env *Envelope) error

	// Send delivers the envelope to a single member. Used for the
	// private share exchange; backends must provide a confidential
	// channel for it.
	Send(ctx context.Context, to dkg.ParticipantID, env *Envelope) error

	// Receive blocks for the next envelope addressed to this member.
	Receive(ctx context.Context) (*Envelope, error)

	// Close detaches from the session. Pending receives fail with
	// ErrConnectionClosed.
	Close() error
}

// Bus manages session membership for one backend.
type Bus interface {
	// Attach joins the session as the given participant and returns its
	// connection. Each id may attach at most once per session.
	Attach(ctx context.Context, id dkg.ParticipantID) (Conn, error)

	// SessionID returns the session identifier.
	SessionID() string

	// Close tears down the session and every attached connection.
	Close() error
}

// CeremonyParams configures one participant's DKG run over a bus.
type CeremonyParams struct {
	// ID is this participant's identifier.
	ID dkg.ParticipantID

	// Participants is the committee size n.
	Participants int

	// Threshold is the reconstruction threshold t, 1 <= t <= n.
	Threshold int
}

// CeremonyResult is the durable output of a ceremony run.
type CeremonyResult struct {
	// KeyShare is the participant's finalized long-term share.
	KeyShare *dkg.KeyShare

	// SessionID identifies the run that produced the share.
	SessionID string
}

// SigningParams configures one signer's round over a bus.
type SigningParams struct {
	// KeyShare is the signer's finalized share from a ceremony.
	KeyShare *dkg.KeyShare

	// Message is the payload being signed.
	Message []byte

	// Signers is the chosen signer subset, size >= threshold.
	Signers []dkg.ParticipantID
}
