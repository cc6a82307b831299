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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
	"github.com/peridot-crypto/go-threshsig/pkg/sign"
)

var (
	verifyShare     string
	verifyGroupKey  string
	verifySignature string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify key shares and signatures",
	Long: `Verify a key share file or a signature file.

Key share verification checks:
  - JSON format is correct and all required fields are present
  - Cryptographic data decodes on the share's ciphersuite
  - The secret share matches the public verification share derived
    from the group commitment
  - The group public key matches the commitment's constant term
  - The group public key matches an expected value (if --group-key given)

Signature verification checks the signature against the message and
group public key recorded in the signature file.

Examples:
  # Verify a key share file
  threshsig verify --share participant1.json

  # Verify and check against expected group key
  threshsig verify --share participant1.json --group-key 02abc123...

  # Verify a signature file
  threshsig verify --signature release.sig.json`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyShare, "share", "s", "", "path to key share file")
	verifyCmd.Flags().StringVar(&verifyGroupKey, "group-key", "", "expected group public key (hex) to verify against")
	verifyCmd.Flags().StringVar(&verifySignature, "signature", "", "path to signature file")

	if err := viper.BindPFlag("verify.share", verifyCmd.Flags().Lookup("share")); err != nil {
		panic(fmt.Sprintf("failed to bind share flag: %v", err))
	}
	if err := viper.BindPFlag("verify.group_key", verifyCmd.Flags().Lookup("group-key")); err != nil {
		panic(fmt.Sprintf("failed to bind group_key flag: %v", err))
	}
	if err := viper.BindPFlag("verify.signature", verifyCmd.Flags().Lookup("signature")); err != nil {
		panic(fmt.Sprintf("failed to bind signature flag: %v", err))
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	switch {
	case verifyShare != "" && verifySignature != "":
		return fmt.Errorf("--share and --signature are mutually exclusive")
	case verifyShare != "":
		return verifyShareFile(verifyShare)
	case verifySignature != "":
		return verifySignatureFile(verifySignature)
	default:
		return fmt.Errorf("either --share or --signature is required")
	}
}

func verifyShareFile(path string) error {
	if verbose {
		fmt.Printf("Verifying key share: %s\n", path)
	}

	out, err := readKeyShareFile(path)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Println("Key share file format: OK")
	}

	// Verify required fields
	if out.SecretShare == "" {
		return fmt.Errorf("missing secret_share field")
	}
	if out.GroupPublicKey == "" {
		return fmt.Errorf("missing group_public_key field")
	}
	if out.GroupCommitment == "" {
		return fmt.Errorf("missing group_commitment field")
	}
	if out.SessionID == "" {
		return fmt.Errorf("missing session_id field")
	}

	csName := out.Ciphersuite
	if csName == "" {
		csName = ciphersuiteName
	}
	suite, err := SuiteByName(csName)
	if err != nil {
		return err
	}
	grp := suite.Group()
	if verbose {
		fmt.Printf("Ciphersuite: %s (key size: %d bytes)\n", csName, grp.ElementLength())
	}

	ks, err := decodeKeyShare(suite, out)
	if err != nil {
		return err
	}
	defer ks.Zeroize(grp)
	if verbose {
		fmt.Println("Cryptographic data decoding: OK")
	}

	// The secret share must match the verification share derived from
	// the group commitment.
	if !dkg.VerifyShare(grp, ks.SecretShare, ks.PublicShare) {
		return fmt.Errorf("secret share does not match the group commitment")
	}
	if verbose {
		fmt.Println("Share consistency: OK")
	}

	// The group key must equal the commitment's constant term.
	if !dkg.ElementsEqual(grp, ks.GroupPublicKey, ks.GroupCommitment.ConstantTerm()) {
		return fmt.Errorf("group public key does not match the group commitment")
	}
	if verbose {
		fmt.Println("Group key consistency: OK")
	}

	// Verify against expected group key if provided
	if verifyGroupKey != "" {
		expectedBytes, err := hex.DecodeString(verifyGroupKey)
		if err != nil {
			return fmt.Errorf("invalid group-key hex: %w", err)
		}
		expected, err := grp.DeserializeElement(expectedBytes)
		if err != nil {
			return fmt.Errorf("invalid group-key: %w", err)
		}
		if !dkg.ElementsEqual(grp, ks.GroupPublicKey, expected) {
			return fmt.Errorf("group public key mismatch:\n  got:      %s\n  expected: %s",
				out.GroupPublicKey, verifyGroupKey)
		}
		fmt.Println("Group key verification: OK")
	}

	// Print summary
	fmt.Println("\nVerification Summary:")
	fmt.Printf("  Participant ID: %d\n", out.ParticipantID)
	fmt.Printf("  Ciphersuite: %s\n", csName)
	fmt.Printf("  Threshold: %d\n", out.Threshold)
	fmt.Printf("  Session ID: %s\n", out.SessionID)
	fmt.Printf("  Group Public Key: %s\n", out.GroupPublicKey)
	fmt.Printf("  Number of Signers: %d\n", len(out.Signers))
	if out.Timestamp > 0 {
		fmt.Printf("  Timestamp: %d\n", out.Timestamp)
	}

	fmt.Println("\nKey share is VALID")
	return nil
}

func verifySignatureFile(path string) error {
	if verbose {
		fmt.Printf("Verifying signature: %s\n", path)
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // G304: Path is cleaned above
	if err != nil {
		return fmt.Errorf("failed to read signature file: %w", err)
	}

	var out SignatureOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to parse signature JSON: %w", err)
	}

	csName := out.Ciphersuite
	if csName == "" {
		csName = ciphersuiteName
	}
	suite, err := SuiteByName(csName)
	if err != nil {
		return err
	}
	grp := suite.Group()

	sigBytes, err := hex.DecodeString(out.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	sig, err := sign.SignatureFromBytes(grp, sigBytes)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	groupKeyHex := out.GroupPublicKey
	if verifyGroupKey != "" {
		groupKeyHex = verifyGroupKey
	}
	groupKeyBytes, err := hex.DecodeString(groupKeyHex)
	if err != nil {
		return fmt.Errorf("invalid group key hex: %w", err)
	}
	groupKey, err := grp.DeserializeElement(groupKeyBytes)
	if err != nil {
		return fmt.Errorf("invalid group key: %w", err)
	}

	message, err := hex.DecodeString(out.Message)
	if err != nil {
		return fmt.Errorf("invalid message hex: %w", err)
	}

	if !sign.Verify(suite, sig, groupKey, message) {
		return fmt.Errorf("signature is INVALID")
	}

	fmt.Println("\nVerification Summary:")
	fmt.Printf("  Ciphersuite: %s\n", csName)
	fmt.Printf("  Group Public Key: %s\n", groupKeyHex)
	fmt.Printf("  Signers: %v\n", out.Signers)
	if out.SessionID != "" {
		fmt.Printf("  Session ID: %s\n", out.SessionID)
	}

	fmt.Println("\nSignature is VALID")
	return nil
}
