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
	"crypto/rand"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-frost/pkg/frost/group"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
	"github.com/peridot-crypto/go-threshsig/pkg/transport"
)

var (
	repairHelperFiles []string
	repairLostID      uint64
	repairOutput      string
)

// repairCmd represents the repair command
var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Reconstruct a lost key share",
	Long: `Reconstruct a lost participant's key share from helper shares.

At least two helpers blind their Lagrange contributions with random
deltas, exchange them, and sum them into sigma values whose total is the
lost share. No helper learns the lost share or any other helper's share;
only the summed result equals the lost participant's polynomial point.

This command simulates the exchange locally from helper share files. In a
real deployment each helper computes its deltas on its own machine and
only sigma values travel to the recovering participant.

Examples:
  # Recover participant 2's share using helpers 1 and 3
  threshsig repair --helper shares/participant1.json --helper shares/participant3.json \
    --lost 2 --output shares/participant2.json`,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringArrayVar(&repairHelperFiles, "helper", nil, "helper key share file (repeat for each helper)")
	repairCmd.Flags().Uint64Var(&repairLostID, "lost", 0, "participant id of the lost share")
	repairCmd.Flags().StringVarP(&repairOutput, "output", "o", "", "output file path for the recovered share")

	if err := repairCmd.MarkFlagRequired("helper"); err != nil {
		panic(fmt.Sprintf("failed to mark helper flag as required: %v", err))
	}
	if err := repairCmd.MarkFlagRequired("lost"); err != nil {
		panic(fmt.Sprintf("failed to mark lost flag as required: %v", err))
	}
	if err := repairCmd.MarkFlagRequired("output"); err != nil {
		panic(fmt.Sprintf("failed to mark output flag as required: %v", err))
	}

	if err := viper.BindPFlag("repair.lost", repairCmd.Flags().Lookup("lost")); err != nil {
		panic(fmt.Sprintf("failed to bind lost flag: %v", err))
	}
	if err := viper.BindPFlag("repair.output", repairCmd.Flags().Lookup("output")); err != nil {
		panic(fmt.Sprintf("failed to bind output flag: %v", err))
	}
}

func runRepair(cmd *cobra.Command, args []string) error {
	lost, err := dkg.NewParticipantID(repairLostID)
	if err != nil {
		return fmt.Errorf("invalid lost participant id: %w", err)
	}

	// Load helper shares; all must come from the same ceremony.
	var csName, sessionID string
	helperShares := make(map[dkg.ParticipantID]*dkg.KeyShare, len(repairHelperFiles))
	helpers := make([]dkg.ParticipantID, 0, len(repairHelperFiles))
	for _, path := range repairHelperFiles {
		out, err := readKeyShareFile(path)
		if err != nil {
			return err
		}
		if csName == "" {
			csName = out.Ciphersuite
			sessionID = out.SessionID
		} else if out.Ciphersuite != csName {
			return fmt.Errorf("helper %s uses ciphersuite %s, expected %s: %w",
				path, out.Ciphersuite, csName, transport.ErrCiphersuiteMismatch)
		} else if out.SessionID != sessionID {
			return fmt.Errorf("helper %s belongs to session %s, expected %s", path, out.SessionID, sessionID)
		}

		suite, err := SuiteByName(csName)
		if err != nil {
			return err
		}
		ks, err := decodeKeyShare(suite, out)
		if err != nil {
			return fmt.Errorf("helper %s: %w", path, err)
		}
		if _, dup := helperShares[ks.ID]; dup {
			return fmt.Errorf("duplicate helper share for participant %d", uint64(ks.ID))
		}
		helperShares[ks.ID] = ks
		helpers = append(helpers, ks.ID)
	}

	suite, err := SuiteByName(csName)
	if err != nil {
		return err
	}
	grp := suite.Group()
	defer func() {
		for _, ks := range helperShares {
			ks.Zeroize(grp)
		}
	}()

	if verbose {
		fmt.Printf("Repairing share of participant %d with %d helpers\n", uint64(lost), len(helpers))
	}

	// Each helper blinds its Lagrange contribution into per-helper
	// deltas, then each helper sums the deltas addressed to it.
	deltasFor := make(map[dkg.ParticipantID][]group.Scalar, len(helpers))
	for _, helper := range helpers {
		deltas, err := dkg.RepairDeltas(suite, helper, lost, helperShares[helper].SecretShare, helpers, rand.Reader)
		if err != nil {
			return fmt.Errorf("helper %d: %w", uint64(helper), err)
		}
		for to, delta := range deltas {
			deltasFor[to] = append(deltasFor[to], delta)
		}
	}

	sigmas := make([]group.Scalar, 0, len(helpers))
	for _, helper := range helpers {
		sigma, err := dkg.RepairSigma(deltasFor[helper])
		if err != nil {
			return fmt.Errorf("helper %d: %w", uint64(helper), err)
		}
		sigmas = append(sigmas, sigma)
	}

	reference := helperShares[helpers[0]]
	recovered, err := dkg.RepairShare(grp, lost, sigmas, reference.GroupCommitment)
	if err != nil {
		return fmt.Errorf("share reconstruction failed: %w", err)
	}

	recoveredShare := &dkg.KeyShare{
		ID:              lost,
		SecretShare:     recovered,
		PublicShare:     reference.GroupCommitment.PublicShare(grp, lost),
		GroupPublicKey:  reference.GroupPublicKey,
		GroupCommitment: reference.GroupCommitment,
		Signers:         reference.Signers,
	}
	defer recoveredShare.Zeroize(grp)

	out, err := encodeKeyShare(suite, csName, recoveredShare, sessionID, time.Now().Unix())
	if err != nil {
		return err
	}
	if err := writeKeyShareFile(repairOutput, out); err != nil {
		return err
	}

	fmt.Printf("Recovered key share for participant %d written to %s\n", uint64(lost), repairOutput)
	return nil
}
