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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, ProtocolMemory, cfg.Protocol)
	assert.Equal(t, DefaultCodec, cfg.CodecType)
	assert.Equal(t, DefaultCiphersuite, cfg.Ciphersuite)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxMessageSize, cfg.MaxMessageSize)
	require.NoError(t, cfg.Validate())
}

func TestNewMemoryConfig(t *testing.T) {
	cfg := NewMemoryConfig("session-42")
	assert.Equal(t, "session-42", cfg.SessionID)
	assert.Equal(t, ProtocolMemory, cfg.Protocol)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErr  bool
		sentinel error
	}{
		{"defaults", func(c *Config) {}, false, nil},
		{"empty codec", func(c *Config) { c.CodecType = "" }, false, nil},
		{"every codec", func(c *Config) { c.CodecType = "toml" }, false, nil},
		{"unknown protocol", func(c *Config) { c.Protocol = "carrier-pigeon" }, true, ErrInvalidProtocol},
		{"unknown codec", func(c *Config) { c.CodecType = "xml" }, true, ErrInvalidCodec},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true, nil},
		{"negative message size", func(c *Config) { c.MaxMessageSize = -1 }, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				if tt.sentinel != nil {
					assert.ErrorIs(t, err, tt.sentinel)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("nil config", func(t *testing.T) {
		var cfg *Config
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestConfigNormalized(t *testing.T) {
	cfg := &Config{Protocol: ProtocolMemory}
	normalized, err := cfg.Normalized()
	require.NoError(t, err)

	assert.Equal(t, DefaultCodec, normalized.CodecType)
	assert.Equal(t, DefaultCiphersuite, normalized.Ciphersuite)
	assert.Equal(t, DefaultTimeout, normalized.Timeout)
	assert.Equal(t, DefaultMaxMessageSize, normalized.MaxMessageSize)
	assert.NotNil(t, normalized.Logger)

	// The original is left untouched.
	assert.Empty(t, cfg.CodecType)
	assert.Nil(t, cfg.Logger)
}
