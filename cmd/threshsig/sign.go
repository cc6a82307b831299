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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
	"github.com/peridot-crypto/go-threshsig/pkg/transport"
	"github.com/peridot-crypto/go-threshsig/pkg/transport/memory"
)

var (
	signShareFiles  []string
	signMessage     string
	signMessageFile string
	signOutput      string
	signTimeout     int
)

// signCmd represents the sign command
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Produce a threshold signature",
	Long: `Produce a threshold Schnorr signature from a quorum of key shares.

Each share file contributes one signer. The signers run the two-round
signing protocol over the in-memory bus: nonce commitments are broadcast,
then partial signatures, and every signer aggregates and verifies the
result. At least threshold share files are required.

Examples:
  # Sign a message with shares 1 and 3 of a 2-of-3 group
  threshsig sign --share shares/participant1.json --share shares/participant3.json \
    --message "release v1.2.0" --output release.sig.json

  # Sign the contents of a file
  threshsig sign --share shares/participant1.json --share shares/participant2.json \
    --message-file ./artifact.tar.gz --output artifact.sig.json`,
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringArrayVarP(&signShareFiles, "share", "s", nil, "key share file (repeat for each signer)")
	signCmd.Flags().StringVarP(&signMessage, "message", "m", "", "message to sign")
	signCmd.Flags().StringVar(&signMessageFile, "message-file", "", "file whose contents are signed")
	signCmd.Flags().StringVarP(&signOutput, "output", "o", "", "output file path for the signature (stdout if empty)")
	signCmd.Flags().IntVar(&signTimeout, "timeout", 300, "operation timeout in seconds")

	if err := signCmd.MarkFlagRequired("share"); err != nil {
		panic(fmt.Sprintf("failed to mark share flag as required: %v", err))
	}

	if err := viper.BindPFlag("sign.output", signCmd.Flags().Lookup("output")); err != nil {
		panic(fmt.Sprintf("failed to bind output flag: %v", err))
	}
	if err := viper.BindPFlag("sign.timeout", signCmd.Flags().Lookup("timeout")); err != nil {
		panic(fmt.Sprintf("failed to bind timeout flag: %v", err))
	}
}

func signPayload() ([]byte, error) {
	if signMessage != "" && signMessageFile != "" {
		return nil, fmt.Errorf("--message and --message-file are mutually exclusive")
	}
	if signMessageFile != "" {
		cleanPath := filepath.Clean(signMessageFile)
		data, err := os.ReadFile(cleanPath) //nolint:gosec // G304: Path is cleaned above
		if err != nil {
			return nil, fmt.Errorf("failed to read message file: %w", err)
		}
		return data, nil
	}
	if signMessage == "" {
		return nil, fmt.Errorf("either --message or --message-file is required")
	}
	return []byte(signMessage), nil
}

func runSign(cmd *cobra.Command, args []string) error {
	message, err := signPayload()
	if err != nil {
		return err
	}

	shares := make(map[dkg.ParticipantID]*dkg.KeyShare, len(signShareFiles))
	signers := make([]dkg.ParticipantID, 0, len(signShareFiles))
	var csName, sessionID string

	for _, path := range signShareFiles {
		out, err := readKeyShareFile(path)
		if err != nil {
			return err
		}
		if csName == "" {
			csName = out.Ciphersuite
			sessionID = out.SessionID
		} else if out.Ciphersuite != csName {
			return fmt.Errorf("share %s uses ciphersuite %s, expected %s: %w",
				path, out.Ciphersuite, csName, transport.ErrCiphersuiteMismatch)
		} else if out.SessionID != sessionID {
			return fmt.Errorf("share %s belongs to session %s, expected %s", path, out.SessionID, sessionID)
		}

		suite, err := SuiteByName(csName)
		if err != nil {
			return err
		}
		ks, err := decodeKeyShare(suite, out)
		if err != nil {
			return fmt.Errorf("share %s: %w", path, err)
		}
		if _, dup := shares[ks.ID]; dup {
			return fmt.Errorf("duplicate share for participant %d", uint64(ks.ID))
		}
		shares[ks.ID] = ks
		signers = append(signers, ks.ID)
	}

	suite, err := SuiteByName(csName)
	if err != nil {
		return err
	}
	threshold := shares[signers[0]].GroupCommitment.Threshold()
	if len(signers) < threshold {
		return fmt.Errorf("need at least %d shares to sign, got %d", threshold, len(signers))
	}

	cfg := transport.NewMemoryConfig("")
	cfg.CodecType = codec
	cfg.Ciphersuite = csName
	cfg.Timeout = time.Duration(signTimeout) * time.Second
	if verbose {
		cfg.Logger = &transport.StdoutLogger{Prefix: "sign", Verbose: true}
		fmt.Printf("Signing with %d of %d signers over %s\n", len(signers), threshold, csName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(signTimeout)*time.Second)
	defer cancel()

	sig, err := memory.RunLocalSigning(ctx, suite, cfg, shares, message, signers)
	if err != nil {
		return fmt.Errorf("signing failed: %w", err)
	}

	grp := suite.Group()
	for _, ks := range shares {
		ks.Zeroize(grp)
	}

	sigBytes, err := sig.Bytes(grp)
	if err != nil {
		return fmt.Errorf("failed to serialize signature: %w", err)
	}
	groupKeyBytes, err := grp.SerializeElement(shares[signers[0]].GroupPublicKey)
	if err != nil {
		return fmt.Errorf("failed to serialize group public key: %w", err)
	}

	signerIDs := make([]uint64, len(signers))
	for i, id := range signers {
		signerIDs[i] = uint64(id)
	}
	output := &SignatureOutput{
		Ciphersuite:    csName,
		Message:        hex.EncodeToString(message),
		Signature:      hex.EncodeToString(sigBytes),
		GroupPublicKey: hex.EncodeToString(groupKeyBytes),
		Signers:        signerIDs,
		SessionID:      sessionID,
		Timestamp:      time.Now().Unix(),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode signature: %w", err)
	}
	if signOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(signOutput, data, 0644); err != nil { //nolint:gosec // signature is public
		return fmt.Errorf("failed to write signature file: %w", err)
	}
	fmt.Printf("Signature written to %s\n", signOutput)
	return nil
}
