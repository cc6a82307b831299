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

package sign

import "errors"

var (
	// ErrInvalidCommitmentEncoding indicates a nonce commitment with a bad
	// wire length.
	ErrInvalidCommitmentEncoding = errors.New("sign: invalid nonce commitment encoding")

	// ErrInvalidSignatureEncoding indicates a signature with a bad wire
	// length.
	ErrInvalidSignatureEncoding = errors.New("sign: invalid signature encoding")

	// ErrDuplicateSigner indicates the same participant id appears twice in
	// a commitment or partial-signature set.
	ErrDuplicateSigner = errors.New("sign: duplicate signer id")

	// ErrSignerNotCommitted indicates a partial signature from a signer
	// with no nonce commitment in the round's set.
	ErrSignerNotCommitted = errors.New("sign: signer has no nonce commitment in this round")

	// ErrSignatureInvalid indicates an aggregated signature that failed the
	// final verification.
	ErrSignatureInvalid = errors.New("sign: aggregated signature failed verification")
)
