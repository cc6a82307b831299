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

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// KeyShareOutput represents the JSON output format for key shares
type KeyShareOutput struct {
	ParticipantID   uint64   `json:"participant_id"`
	Ciphersuite     string   `json:"ciphersuite"`
	Threshold       int      `json:"threshold"`
	SecretShare     string   `json:"secret_share"`     // hex-encoded
	PublicShare     string   `json:"public_share"`     // hex-encoded
	GroupPublicKey  string   `json:"group_public_key"` // hex-encoded
	GroupCommitment string   `json:"group_commitment"` // hex-encoded coefficient commitments
	Signers         []uint64 `json:"signers"`
	SessionID       string   `json:"session_id"`
	Timestamp       int64    `json:"timestamp"`
}

// SignatureOutput represents the JSON output format for signatures
type SignatureOutput struct {
	Ciphersuite    string   `json:"ciphersuite"`
	Message        string   `json:"message"`          // hex-encoded
	Signature      string   `json:"signature"`        // hex-encoded R || z
	GroupPublicKey string   `json:"group_public_key"` // hex-encoded
	Signers        []uint64 `json:"signers"`
	SessionID      string   `json:"session_id"`
	Timestamp      int64    `json:"timestamp"`
}

// encodeKeyShare converts a finalized key share into its file format.
func encodeKeyShare(cs ciphersuite.Ciphersuite, csName string, ks *dkg.KeyShare, sessionID string, timestamp int64) (*KeyShareOutput, error) {
	grp := cs.Group()

	pubShare, err := grp.SerializeElement(ks.PublicShare)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize public share: %w", err)
	}
	groupKey, err := grp.SerializeElement(ks.GroupPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize group public key: %w", err)
	}
	groupCom, err := ks.GroupCommitment.Bytes(grp)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize group commitment: %w", err)
	}
	signers := make([]uint64, len(ks.Signers))
	for i, id := range ks.Signers {
		signers[i] = uint64(id)
	}

	return &KeyShareOutput{
		ParticipantID:   uint64(ks.ID),
		Ciphersuite:     csName,
		Threshold:       ks.GroupCommitment.Threshold(),
		SecretShare:     hex.EncodeToString(grp.SerializeScalar(ks.SecretShare)),
		PublicShare:     hex.EncodeToString(pubShare),
		GroupPublicKey:  hex.EncodeToString(groupKey),
		GroupCommitment: hex.EncodeToString(groupCom),
		Signers:         signers,
		SessionID:       sessionID,
		Timestamp:       timestamp,
	}, nil
}

// decodeKeyShare reconstructs a usable key share from its file format.
func decodeKeyShare(cs ciphersuite.Ciphersuite, out *KeyShareOutput) (*dkg.KeyShare, error) {
	grp := cs.Group()

	id, err := dkg.NewParticipantID(out.ParticipantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant_id: %w", err)
	}

	secretBytes, err := hex.DecodeString(out.SecretShare)
	if err != nil {
		return nil, fmt.Errorf("invalid secret_share hex: %w", err)
	}
	secret, err := grp.DeserializeScalar(secretBytes)
	dkg.ZeroBytes(secretBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid secret_share: %w", err)
	}

	groupKeyBytes, err := hex.DecodeString(out.GroupPublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid group_public_key hex: %w", err)
	}
	groupKey, err := grp.DeserializeElement(groupKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid group_public_key: %w", err)
	}

	comBytes, err := hex.DecodeString(out.GroupCommitment)
	if err != nil {
		return nil, fmt.Errorf("invalid group_commitment hex: %w", err)
	}
	groupCom, err := dkg.CommitmentFromBytes(grp, comBytes, out.Threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid group_commitment: %w", err)
	}

	signers := make([]dkg.ParticipantID, len(out.Signers))
	for i, raw := range out.Signers {
		signers[i], err = dkg.NewParticipantID(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid signer id %d: %w", raw, err)
		}
	}

	return &dkg.KeyShare{
		ID:              id,
		SecretShare:     secret,
		PublicShare:     groupCom.PublicShare(grp, id),
		GroupPublicKey:  groupKey,
		GroupCommitment: groupCom,
		Signers:         signers,
	}, nil
}

// writeKeyShareFile writes a key share file with restricted permissions.
func writeKeyShareFile(path string, out *KeyShareOutput) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode key share: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Key shares contain secret material
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write key share file: %w", err)
	}
	return nil
}

// readKeyShareFile reads and parses a key share file.
func readKeyShareFile(path string) (*KeyShareOutput, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // G304: Path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("failed to read key share file: %w", err)
	}

	var out KeyShareOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse key share JSON: %w", err)
	}
	return &out, nil
}
