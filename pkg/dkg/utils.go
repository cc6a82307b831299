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

package dkg

import (
	"crypto/subtle"
	"io"

	"github.com/jeremyhahn/go-frost/pkg/frost/ciphersuite"
	"github.com/jeremyhahn/go-frost/pkg/frost/group"
)

// Ciphersuite ID constants for the supported FROST ciphersuites per RFC 9591.
const (
	// CiphersuiteP256 is the FROST-P256-SHA256-v1 ciphersuite ID.
	CiphersuiteP256 = "FROST-P256-SHA256-v1"

	// CiphersuiteEd25519 is the FROST-ED25519-SHA512-v1 ciphersuite ID.
	CiphersuiteEd25519 = "FROST-ED25519-SHA512-v1"

	// CiphersuiteRistretto255 is the FROST-RISTRETTO255-SHA512-v1 ciphersuite ID.
	CiphersuiteRistretto255 = "FROST-RISTRETTO255-SHA512-v1"

	// CiphersuiteEd448 is the FROST-ED448-SHAKE256-v1 ciphersuite ID.
	CiphersuiteEd448 = "FROST-ED448-SHAKE256-v1"

	// CiphersuiteSecp256k1 is the FROST-secp256k1-SHA256-v1 ciphersuite ID.
	CiphersuiteSecp256k1 = "FROST-secp256k1-SHA256-v1"
)

// scalarFromUint64 creates a scalar from an unsigned integer value,
// respecting the group's byte order.
//
// Panics if deserialization fails, which cannot happen for values below the
// group order; all supported groups have orders far above 2^64.
func scalarFromUint64(grp group.Group, n uint64) group.Scalar {
	bytes := make([]byte, grp.ScalarLength())

	if grp.ByteOrder() == group.LittleEndian {
		// Little-endian: least significant byte first
		for i := 0; i < len(bytes) && n > 0; i++ {
			bytes[i] = byte(n & 0xff)
			n >>= 8
		}
	} else {
		// Big-endian: most significant byte first
		for i := grp.ScalarLength() - 1; i >= 0 && n > 0; i-- {
			bytes[i] = byte(n & 0xff)
			n >>= 8
		}
	}

	scalar, err := grp.DeserializeScalar(bytes)
	if err != nil {
		panic("scalarFromUint64: unexpected deserialization failure: " + err.Error())
	}
	return scalar
}

// RandomScalar draws a fresh scalar by hashing randomness from rng under a
// labeled domain. Hashing through H3 keeps the scalar encoding uniform
// across all supported groups.
func RandomScalar(cs ciphersuite.Ciphersuite, rng io.Reader, label string) (group.Scalar, error) {
	seed := make([]byte, randomScalarWidth)
	defer ZeroBytes(seed)
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, err
	}

	prefix := []byte(TranscriptPrefix + label)
	input := make([]byte, 0, len(prefix)+len(seed))
	input = append(input, prefix...)
	input = append(input, seed...)
	s := cs.H3(input)
	ZeroBytes(input)
	return s, nil
}

// ElementsEqual compares two group elements in constant time.
// This prevents timing side-channel attacks during verification.
func ElementsEqual(grp group.Group, a, b group.Element) bool {
	aBytes, err := grp.SerializeElement(a)
	if err != nil {
		return false
	}
	bBytes, err := grp.SerializeElement(b)
	if err != nil {
		return false
	}
	if len(aBytes) != len(bBytes) {
		return false
	}
	return subtle.ConstantTimeCompare(aBytes, bBytes) == 1
}
