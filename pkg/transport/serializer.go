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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// SerializerError wraps codec failures with context about the
// operation and codec in use.
type SerializerError struct {
	Operation string
	CodecType string
	Err       error
}

func (e *SerializerError) Error() string {
	return fmt.Sprintf("transport: %s failed for codec %q: %v", e.Operation, e.CodecType, e.Err)
}

func (e *SerializerError) Unwrap() error {
	return e.Err
}

// Serializer encodes and decodes protocol envelopes using a
// configurable codec.
type Serializer struct {
	codecType string
}

// NewSerializer creates a Serializer for the given codec type.
// Supported codecs: json, msgpack, cbor, yaml, bson, toml.
func NewSerializer(codecType string) (*Serializer, error) {
	switch codecType {
	case "json", "msgpack", "cbor", "yaml", "bson", "toml":
		return &Serializer{codecType: codecType}, nil
	default:
		return nil, &SerializerError{
			Operation: "init",
			CodecType: codecType,
			Err:       ErrInvalidCodec,
		}
	}
}

// CodecType returns the codec this serializer was configured with.
func (s *Serializer) CodecType() string {
	return s.codecType
}

// Marshal encodes v using the configured codec.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch s.codecType {
	case "json":
		data, err = json.Marshal(v)
	case "msgpack":
		data, err = msgpack.Marshal(v)
	case "cbor":
		data, err = cbor.Marshal(v)
	case "yaml":
		data, err = yaml.Marshal(v)
	case "bson":
		data, err = bson.Marshal(v)
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(v)
		data = buf.Bytes()
	default:
		err = ErrInvalidCodec
	}
	if err != nil {
		return nil, &SerializerError{Operation: "marshal", CodecType: s.codecType, Err: err}
	}
	return data, nil
}

// Unmarshal decodes data into v using the configured codec.
func (s *Serializer) Unmarshal(data []byte, v any) error {
	var err error
	switch s.codecType {
	case "json":
		err = json.Unmarshal(data, v)
	case "msgpack":
		err = msgpack.Unmarshal(data, v)
	case "cbor":
		err = cbor.Unmarshal(data, v)
	case "yaml":
		err = yaml.Unmarshal(data, v)
	case "bson":
		err = bson.Unmarshal(data, v)
	case "toml":
		err = toml.Unmarshal(data, v)
	default:
		err = ErrInvalidCodec
	}
	if err != nil {
		return &SerializerError{Operation: "unmarshal", CodecType: s.codecType, Err: err}
	}
	return nil
}

// MarshalEnvelope encodes msg as the payload of a new Envelope and
// returns the serialized envelope.
func (s *Serializer) MarshalEnvelope(sessionID string, msgType MessageType, sender uint64, msg any, timestamp int64) ([]byte, error) {
	payload, err := s.Marshal(msg)
	if err != nil {
		return nil, err
	}
	env := &Envelope{
		SessionID: sessionID,
		Type:      msgType,
		Sender:    sender,
		Payload:   payload,
		Timestamp: timestamp,
	}
	return s.Marshal(env)
}

// UnmarshalEnvelope decodes a serialized Envelope.
func (s *Serializer) UnmarshalEnvelope(data []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := s.Unmarshal(data, env); err != nil {
		return nil, err
	}
	return env, nil
}

// UnmarshalPayload decodes an envelope's payload into msg.
func (s *Serializer) UnmarshalPayload(env *Envelope, msg any) error {
	if env == nil {
		return &SerializerError{
			Operation: "unmarshal payload",
			CodecType: s.codecType,
			Err:       ErrInvalidMessage,
		}
	}
	return s.Unmarshal(env.Payload, msg)
}
