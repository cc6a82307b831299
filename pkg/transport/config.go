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
	"time"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

const (
	// DefaultTimeout is the default send/receive timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxMessageSize is the default maximum message size (1MB).
	DefaultMaxMessageSize = 1024 * 1024

	// DefaultCodec is the default message codec.
	DefaultCodec = "json"

	// DefaultCiphersuite is the default FROST ciphersuite identifier.
	DefaultCiphersuite = dkg.CiphersuiteEd25519
)

// NewConfig creates a Config with default values.
//
// The returned config has:
//   - Protocol: ProtocolMemory
//   - CodecType: "json"
//   - Ciphersuite: "FROST-ED25519-SHA512-v1"
//   - Timeout: 30 seconds
//   - MaxMessageSize: 1MB
func NewConfig() *Config {
	return &Config{
		Protocol:       ProtocolMemory,
		CodecType:      DefaultCodec,
		Ciphersuite:    DefaultCiphersuite,
		Timeout:        DefaultTimeout,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// NewMemoryConfig creates a Config for the in-process backend with the
// given session identifier.
func NewMemoryConfig(sessionID string) *Config {
	cfg := NewConfig()
	cfg.SessionID = sessionID
	return cfg
}

// Validate checks the configuration for internal consistency. A nil
// Logger is replaced by NopLogger rather than rejected.
func (c *Config) Validate() error {
	if c == nil {
		return &ConfigError{Field: "config", Reason: "must not be nil"}
	}
	switch c.Protocol {
	case ProtocolMemory:
	default:
		return &ConfigError{Field: "protocol", Reason: string(c.Protocol) + " is not a registered backend", Err: ErrInvalidProtocol}
	}
	switch c.CodecType {
	case "", "json", "msgpack", "cbor", "yaml", "bson", "toml":
	default:
		return &ConfigError{Field: "codec", Reason: "unsupported codec " + c.CodecType, Err: ErrInvalidCodec}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.MaxMessageSize < 0 {
		return &ConfigError{Field: "max message size", Reason: "must not be negative"}
	}
	return nil
}

// applyDefaults fills zero-valued fields in place.
func (c *Config) applyDefaults() {
	if c.CodecType == "" {
		c.CodecType = DefaultCodec
	}
	if c.Ciphersuite == "" {
		c.Ciphersuite = DefaultCiphersuite
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
}

// Normalized validates the config and returns a copy with defaults
// applied.
func (c *Config) Normalized() (*Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := *c
	out.applyDefaults()
	return &out, nil
}
