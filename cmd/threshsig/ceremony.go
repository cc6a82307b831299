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
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peridot-crypto/go-threshsig/pkg/transport"
	"github.com/peridot-crypto/go-threshsig/pkg/transport/memory"
)

var (
	ceremonyParticipants int
	ceremonyThreshold    int
	ceremonyOutputDir    string
	ceremonySessionID    string
	ceremonyTimeout      int
)

// ceremonyCmd represents the ceremony command
var ceremonyCmd = &cobra.Command{
	Use:   "ceremony",
	Short: "Run a distributed key generation ceremony",
	Long: `Run a complete trustless key generation ceremony in-process.

Every participant runs its own protocol instance over the in-memory
message bus: commitments and proofs of knowledge are broadcast, private
shares exchanged and verified, and each participant finalizes its own
key share. No party ever holds the group secret.

One key share file is written per participant. Key share files contain
secret material and must be distributed to their owners over a secure
channel and then deleted.

Examples:
  # Run a 2-of-3 ceremony
  threshsig ceremony --participants 3 --threshold 2 --output-dir ./shares

  # Run a 3-of-5 ceremony over secp256k1 with CBOR framing
  threshsig ceremony --participants 5 --threshold 3 \
    --ciphersuite FROST-secp256k1-SHA256-v1 --codec cbor --output-dir ./shares`,
	RunE: runCeremony,
}

func init() {
	ceremonyCmd.Flags().IntVarP(&ceremonyParticipants, "participants", "n", 3, "number of participants")
	ceremonyCmd.Flags().IntVarP(&ceremonyThreshold, "threshold", "t", 2, "signing threshold")
	ceremonyCmd.Flags().StringVarP(&ceremonyOutputDir, "output-dir", "o", ".", "directory for key share files")
	ceremonyCmd.Flags().StringVar(&ceremonySessionID, "session-id", "", "session identifier (auto-generated if empty)")
	ceremonyCmd.Flags().IntVar(&ceremonyTimeout, "timeout", 300, "operation timeout in seconds")

	if err := viper.BindPFlag("ceremony.participants", ceremonyCmd.Flags().Lookup("participants")); err != nil {
		panic(fmt.Sprintf("failed to bind participants flag: %v", err))
	}
	if err := viper.BindPFlag("ceremony.threshold", ceremonyCmd.Flags().Lookup("threshold")); err != nil {
		panic(fmt.Sprintf("failed to bind threshold flag: %v", err))
	}
	if err := viper.BindPFlag("ceremony.output_dir", ceremonyCmd.Flags().Lookup("output-dir")); err != nil {
		panic(fmt.Sprintf("failed to bind output_dir flag: %v", err))
	}
	if err := viper.BindPFlag("ceremony.session_id", ceremonyCmd.Flags().Lookup("session-id")); err != nil {
		panic(fmt.Sprintf("failed to bind session_id flag: %v", err))
	}
	if err := viper.BindPFlag("ceremony.timeout", ceremonyCmd.Flags().Lookup("timeout")); err != nil {
		panic(fmt.Sprintf("failed to bind timeout flag: %v", err))
	}
}

func runCeremony(cmd *cobra.Command, args []string) error {
	if ceremonyThreshold < 1 || ceremonyThreshold > ceremonyParticipants {
		return fmt.Errorf("threshold must be between 1 and %d, got %d", ceremonyParticipants, ceremonyThreshold)
	}

	suite, err := SuiteByName(ciphersuiteName)
	if err != nil {
		return err
	}

	cfg := transport.NewMemoryConfig(ceremonySessionID)
	cfg.CodecType = codec
	cfg.Ciphersuite = ciphersuiteName
	cfg.Timeout = time.Duration(ceremonyTimeout) * time.Second
	if verbose {
		cfg.Logger = &transport.StdoutLogger{Prefix: "ceremony", Verbose: true}
	}

	if verbose {
		fmt.Printf("Running %d-of-%d ceremony over %s\n", ceremonyThreshold, ceremonyParticipants, ciphersuiteName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(ceremonyTimeout)*time.Second)
	defer cancel()

	shares, err := memory.RunLocalCeremony(ctx, suite, cfg, ceremonyParticipants, ceremonyThreshold)
	if err != nil {
		return fmt.Errorf("ceremony failed: %w", err)
	}

	sessionID := cfg.SessionID
	timestamp := time.Now().Unix()
	var groupKeyHex string
	for id, ks := range shares {
		out, err := encodeKeyShare(suite, ciphersuiteName, ks, sessionID, timestamp)
		if err != nil {
			return err
		}
		groupKeyHex = out.GroupPublicKey

		path := filepath.Join(ceremonyOutputDir, fmt.Sprintf("participant%d.json", uint64(id)))
		if err := writeKeyShareFile(path, out); err != nil {
			return err
		}
		ks.Zeroize(suite.Group())
		if verbose {
			fmt.Printf("Wrote key share for participant %d: %s\n", uint64(id), path)
		}
	}

	fmt.Printf("Ceremony complete: %d key shares written to %s\n", len(shares), ceremonyOutputDir)
	fmt.Printf("Group public key: %s\n", groupKeyHex)
	return nil
}
