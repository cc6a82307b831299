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
	"fmt"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed25519_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ed448_shake256"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/p256_sha256"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/ristretto255_sha512"
	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite/secp256k1_sha256"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// ValidCiphersuites returns the list of supported ciphersuites
func ValidCiphersuites() []string {
	return []string{
		dkg.CiphersuiteEd25519,
		dkg.CiphersuiteRistretto255,
		dkg.CiphersuiteP256,
		dkg.CiphersuiteSecp256k1,
		dkg.CiphersuiteEd448,
	}
}

// SuiteByName returns the ciphersuite implementation for a name.
func SuiteByName(name string) (ciphersuite.Ciphersuite, error) {
	switch name {
	case dkg.CiphersuiteEd25519:
		return ed25519_sha512.New(), nil
	case dkg.CiphersuiteRistretto255:
		return ristretto255_sha512.New(), nil
	case dkg.CiphersuiteP256:
		return p256_sha256.New(), nil
	case dkg.CiphersuiteSecp256k1:
		return secp256k1_sha256.New(), nil
	case dkg.CiphersuiteEd448:
		return ed448_shake256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported ciphersuite: %s (supported: %v)", name, ValidCiphersuites())
	}
}

// CiphersuiteKeySize returns the public key size for a given ciphersuite
func CiphersuiteKeySize(cs string) int {
	switch cs {
	case dkg.CiphersuiteEd25519, dkg.CiphersuiteRistretto255:
		return 32
	case dkg.CiphersuiteP256, dkg.CiphersuiteSecp256k1:
		return 33
	case dkg.CiphersuiteEd448:
		return 57
	default:
		return 32 // Default to Ed25519
	}
}
