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

// MessageType identifies protocol messages.
type MessageType uint8

const (
	MsgTypeCommitment  MessageType = 1 // DKG round 1: commitment + proof broadcast
	MsgTypeShare       MessageType = 2 // DKG round 2: private share unicast
	MsgTypeNonceCommit MessageType = 3 // signing round 1: nonce commitment broadcast
	MsgTypePartialSig  MessageType = 4 // signing round 2: partial signature
	MsgTypeError       MessageType = 5 // error report
	MsgTypeComplete    MessageType = 6 // run complete acknowledgment
)

// Envelope wraps all messages for transport.
type Envelope struct {
	SessionID string      `json:"session_id" msgpack:"session_id" cbor:"1,keyasint" yaml:"session_id" bson:"session_id" toml:"session_id"`
	Type      MessageType `json:"type" msgpack:"type" cbor:"2,keyasint" yaml:"type" bson:"type" toml:"type"`
	Sender    uint64      `json:"sender" msgpack:"sender" cbor:"3,keyasint" yaml:"sender" bson:"sender" toml:"sender"`
	Payload   []byte      `json:"payload" msgpack:"payload" cbor:"4,keyasint" yaml:"payload" bson:"payload" toml:"payload"`
	Timestamp int64       `json:"timestamp" msgpack:"timestamp" cbor:"5,keyasint" yaml:"timestamp" bson:"timestamp" toml:"timestamp"`
}

// CommitmentMessage carries a participant's round-one broadcast: the
// serialized Feldman commitment vector and the proof of knowledge over
// its constant term.
type CommitmentMessage struct {
	Commitment []byte `json:"commitment" msgpack:"commitment" cbor:"1,keyasint" yaml:"commitment" bson:"commitment" toml:"commitment"`
	Proof      []byte `json:"proof" msgpack:"proof" cbor:"2,keyasint" yaml:"proof" bson:"proof" toml:"proof"`
}

// ShareMessage carries one private share f_sender(recipient). Backends
// must deliver it over a confidential channel.
type ShareMessage struct {
	Recipient uint64 `json:"recipient" msgpack:"recipient" cbor:"1,keyasint" yaml:"recipient" bson:"recipient" toml:"recipient"`
	Share     []byte `json:"share" msgpack:"share" cbor:"2,keyasint" yaml:"share" bson:"share" toml:"share"`
}

// NonceCommitmentMessage carries a signer's hiding/binding nonce
// commitment for one signing round.
type NonceCommitmentMessage struct {
	Commitment []byte `json:"commitment" msgpack:"commitment" cbor:"1,keyasint" yaml:"commitment" bson:"commitment" toml:"commitment"`
}

// PartialSignatureMessage carries a signer's response scalar.
type PartialSignatureMessage struct {
	Z []byte `json:"z" msgpack:"z" cbor:"1,keyasint" yaml:"z" bson:"z" toml:"z"`
}

// ErrorMessage carries an error report. Never includes secret material.
type ErrorMessage struct {
	Code    int    `json:"code" msgpack:"code" cbor:"1,keyasint" yaml:"code" bson:"code" toml:"code"`
	Message string `json:"message" msgpack:"message" cbor:"2,keyasint" yaml:"message" bson:"message" toml:"message"`
}

// CompleteMessage acknowledges a finished run with its public outputs.
type CompleteMessage struct {
	GroupPublicKey []byte `json:"group_public_key" msgpack:"group_public_key" cbor:"1,keyasint" yaml:"group_public_key" bson:"group_public_key" toml:"group_public_key"`
	Signature      []byte `json:"signature,omitempty" msgpack:"signature,omitempty" cbor:"2,keyasint,omitempty" yaml:"signature,omitempty" bson:"signature,omitempty" toml:"signature,omitempty"`
}
