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

package transport

import (
	"errors"
	"fmt"
)

// Connection errors.
var (
	// ErrConnectionClosed indicates the connection was closed.
	ErrConnectionClosed = errors.New("transport: connection closed")

	// ErrAlreadyAttached indicates the participant id is already attached
	// to the session.
	ErrAlreadyAttached = errors.New("transport: participant already attached")

	// ErrNotAttached indicates the participant id is not a session member.
	ErrNotAttached = errors.New("transport: participant not attached")
)

// Session errors.
var (
	// ErrSessionClosed indicates the session has been closed.
	ErrSessionClosed = errors.New("transport: session closed")

	// ErrSessionFull indicates the session has reached its configured
	// participant count.
	ErrSessionFull = errors.New("transport: session full")
)

// Message errors.
var (
	// ErrInvalidMessage indicates the message format is invalid.
	ErrInvalidMessage = errors.New("transport: invalid message")

	// ErrMessageTooLarge indicates the message exceeds the configured
	// maximum size.
	ErrMessageTooLarge = errors.New("transport: message too large")

	// ErrUnexpectedMessage indicates a message was received out of
	// sequence for the current protocol round.
	ErrUnexpectedMessage = errors.New("transport: unexpected message")

	// ErrCiphersuiteMismatch indicates session members disagree on the
	// ciphersuite.
	ErrCiphersuiteMismatch = errors.New("transport: ciphersuite mismatch")
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("transport: invalid configuration")

	// ErrInvalidProtocol indicates an unsupported transport backend.
	ErrInvalidProtocol = errors.New("transport: invalid protocol")

	// ErrInvalidCodec indicates an unsupported codec type.
	ErrInvalidCodec = errors.New("transport: invalid codec type")
)

// ConfigError wraps a configuration validation failure with the offending
// field. Err, when set, carries the matching sentinel (ErrInvalidProtocol,
// ErrInvalidCodec).
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("transport: invalid config field %q: %s", e.Field, e.Reason)
}

// Is lets ConfigError match ErrInvalidConfig in errors.Is chains.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SessionError wraps a session-level failure with its session id.
type SessionError struct {
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("transport: session %s: %v", e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
