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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "codec", Reason: "unsupported codec xml"}
	assert.Contains(t, err.Error(), "codec")
	assert.Contains(t, err.Error(), "unsupported codec xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var cfgErr *ConfigError
	wrapped := fmt.Errorf("validating: %w", err)
	require.ErrorAs(t, wrapped, &cfgErr)
	assert.Equal(t, "codec", cfgErr.Field)

	// A sentinel in Err is reachable alongside ErrInvalidConfig.
	err = &ConfigError{Field: "protocol", Reason: "unknown backend", Err: ErrInvalidProtocol}
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestSessionError(t *testing.T) {
	err := &SessionError{SessionID: "s-1", Err: ErrSessionClosed}
	assert.Contains(t, err.Error(), "s-1")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, ErrSessionClosed, errors.Unwrap(err))
}
