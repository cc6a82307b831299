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

// Package integration provides end-to-end tests for the threshold
// signing stack. These tests validate:
//
// 1. Key generation ceremonies with all supported ciphersuites
// 2. Two-round threshold signing over the in-process message bus
// 3. Share repair followed by signing with the recovered share
package integration

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed448_shake256"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/p256_sha256"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ristretto255_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/secp256k1_sha256"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
	"github.com/peridot-crypto/go-threshsig/pkg/sign"
	"github.com/peridot-crypto/go-threshsig/pkg/transport/memory"
)

// CiphersuiteTestCase contains a ciphersuite and its metadata.
type CiphersuiteTestCase struct {
	Name        string
	Ciphersuite ciphersuite.Ciphersuite
	SkipReason  string // If non-empty, skip this ciphersuite with this reason
}

// getAllCiphersuites returns all supported ciphersuites for integration testing.
func getAllCiphersuites() []CiphersuiteTestCase {
	return []CiphersuiteTestCase{
		{
			Name:        dkg.CiphersuiteEd25519,
			Ciphersuite: ed25519_sha512.New(),
		},
		{
			Name:        dkg.CiphersuiteRistretto255,
			Ciphersuite: ristretto255_sha512.New(),
		},
		{
			Name:        dkg.CiphersuiteP256,
			Ciphersuite: p256_sha256.New(),
		},
		{
			Name:        dkg.CiphersuiteSecp256k1,
			Ciphersuite: secp256k1_sha256.New(),
		},
		{
			Name:        dkg.CiphersuiteEd448,
			Ciphersuite: ed448_shake256.New(),
		},
	}
}

// TestCeremonyIntegration runs full key generation ceremonies over the
// in-process bus with every ciphersuite and several group shapes.
func TestCeremonyIntegration(t *testing.T) {
	for _, tc := range getAllCiphersuites() {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.SkipReason != "" {
				t.Skip(tc.SkipReason)
			}

			shapes := []struct {
				participants int
				threshold    int
			}{
				{3, 2},
				{5, 3},
				{7, 4},
			}
			for _, shape := range shapes {
				shares := runCeremony(t, tc.Ciphersuite, shape.participants, shape.threshold)
				checkCeremonyOutputs(t, tc.Ciphersuite, shares, shape.participants)
			}
		})
	}
}

func runCeremony(t *testing.T, cs ciphersuite.Ciphersuite, participants, threshold int) map[dkg.ParticipantID]*dkg.KeyShare {
	t.Helper()

	shares, err := memory.RunLocalCeremony(context.Background(), cs, nil, participants, threshold)
	if err != nil {
		t.Fatalf("ceremony failed: %v", err)
	}
	if len(shares) != participants {
		t.Fatalf("expected %d key shares, got %d", participants, len(shares))
	}
	return shares
}

func checkCeremonyOutputs(t *testing.T, cs ciphersuite.Ciphersuite, shares map[dkg.ParticipantID]*dkg.KeyShare, participants int) {
	t.Helper()

	grp := cs.Group()
	reference := shares[1]
	for id, ks := range shares {
		if !dkg.ElementsEqual(grp, reference.GroupPublicKey, ks.GroupPublicKey) {
			t.Errorf("participant %d disagrees on group public key", uint64(id))
		}
		if !dkg.VerifyShare(grp, ks.SecretShare, ks.PublicShare) {
			t.Errorf("participant %d secret share does not match verification share", uint64(id))
		}
		if len(ks.Signers) != participants {
			t.Errorf("participant %d has %d signers, expected %d", uint64(id), len(ks.Signers), participants)
		}
	}
}

// TestSigningIntegration signs with every threshold subset over every
// ciphersuite and checks the signatures under the group key.
func TestSigningIntegration(t *testing.T) {
	message := []byte("integration signing payload")

	for _, tc := range getAllCiphersuites() {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.SkipReason != "" {
				t.Skip(tc.SkipReason)
			}

			shares := runCeremony(t, tc.Ciphersuite, 3, 2)
			groupKey := shares[1].GroupPublicKey

			subsets := [][]dkg.ParticipantID{
				{1, 2},
				{1, 3},
				{2, 3},
				{1, 2, 3},
			}
			for _, signers := range subsets {
				sig, err := memory.RunLocalSigning(context.Background(), tc.Ciphersuite, nil, shares, message, signers)
				if err != nil {
					t.Fatalf("signing with %v failed: %v", signers, err)
				}
				if !sign.Verify(tc.Ciphersuite, sig, groupKey, message) {
					t.Errorf("signature from %v does not verify", signers)
				}
				if sign.Verify(tc.Ciphersuite, sig, groupKey, []byte("different payload")) {
					t.Errorf("signature from %v verifies a different message", signers)
				}
			}
		})
	}
}

// TestRepairIntegration loses a share, repairs it from helpers, and
// signs with the recovered share.
func TestRepairIntegration(t *testing.T) {
	cs := ed25519_sha512.New()
	grp := cs.Group()

	shares := runCeremony(t, cs, 5, 3)
	lost := dkg.ParticipantID(2)
	helpers := []dkg.ParticipantID{1, 3, 4}

	// Each helper blinds its Lagrange contribution; each helper then
	// sums the deltas addressed to it into a sigma.
	deltasFor := make(map[dkg.ParticipantID][]group.Scalar)
	for _, helper := range helpers {
		deltas, err := dkg.RepairDeltas(cs, helper, lost, shares[helper].SecretShare, helpers, rand.Reader)
		if err != nil {
			t.Fatalf("helper %d deltas: %v", uint64(helper), err)
		}
		for to, delta := range deltas {
			deltasFor[to] = append(deltasFor[to], delta)
		}
	}
	sigmas := make([]group.Scalar, 0, len(helpers))
	for _, helper := range helpers {
		sigma, err := dkg.RepairSigma(deltasFor[helper])
		if err != nil {
			t.Fatalf("helper %d sigma: %v", uint64(helper), err)
		}
		sigmas = append(sigmas, sigma)
	}

	recovered, err := dkg.RepairShare(grp, lost, sigmas, shares[1].GroupCommitment)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if !recovered.Equal(shares[lost].SecretShare) {
		t.Fatal("recovered share differs from the original")
	}

	// The recovered share signs as part of a quorum.
	repaired := &dkg.KeyShare{
		ID:              lost,
		SecretShare:     recovered,
		PublicShare:     shares[1].GroupCommitment.PublicShare(grp, lost),
		GroupPublicKey:  shares[1].GroupPublicKey,
		GroupCommitment: shares[1].GroupCommitment,
		Signers:         shares[1].Signers,
	}
	quorum := map[dkg.ParticipantID]*dkg.KeyShare{
		1:    shares[1],
		4:    shares[4],
		lost: repaired,
	}
	message := []byte("signed with a repaired share")
	sig, err := memory.RunLocalSigning(context.Background(), cs, nil, quorum, message, []dkg.ParticipantID{1, lost, 4})
	if err != nil {
		t.Fatalf("signing with repaired share failed: %v", err)
	}
	if !sign.Verify(cs, sig, shares[1].GroupPublicKey, message) {
		t.Fatal("signature with repaired share does not verify")
	}
}
