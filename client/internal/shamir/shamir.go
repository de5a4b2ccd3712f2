// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package shamir implements Shamir secret sharing over GF(2^8).
//
// Each share is the sequence of polynomial evaluations, one per secret byte,
// followed by the x coordinate as its final byte. This is the layout used by
// Hashicorp Vault, so shares interoperate with Vault-compatible tools.
package shamir

import (
	"errors"
	"fmt"

	"github.com/google/tink/go/subtle/random"
)

// MaxShares is the largest number of shares: x coordinates are the non-zero
// field elements.
const MaxShares = 255

var (
	// ErrInvalidParameters is returned by Split for unusable share counts.
	ErrInvalidParameters = errors.New("shamir: invalid split parameters")
	// ErrInsufficientShares is returned when fewer shares than the threshold are
	// combined.
	ErrInsufficientShares = errors.New("shamir: insufficient shares")
	// ErrInvalidShare is returned for malformed, mismatched or duplicate shares.
	ErrInvalidShare = errors.New("shamir: invalid share")
)

// Split divides `secret` into `numShares` shares, any `threshold` of which
// reconstruct it. A threshold of 1 yields shares that each reveal the secret.
func Split(secret []byte, numShares, threshold int) ([][]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret must not be empty", ErrInvalidParameters)
	}
	if numShares < 1 || numShares > MaxShares {
		return nil, fmt.Errorf("%w: numShares %d outside [1, %d]", ErrInvalidParameters, numShares, MaxShares)
	}
	if threshold < 1 || threshold > numShares {
		return nil, fmt.Errorf("%w: threshold %d outside [1, %d]", ErrInvalidParameters, threshold, numShares)
	}

	shares := make([][]byte, numShares)
	for i := range shares {
		shares[i] = make([]byte, len(secret)+1)
		shares[i][len(secret)] = byte(i + 1)
	}

	// Every secret byte is the constant term of its own polynomial of degree
	// threshold-1 with uniformly random higher coefficients, zero included:
	// shares[i] = [ F1(i+1), F2(i+1), ..., FN(i+1), i+1 ]
	coefficients := make([]element, threshold)
	for b, s := range secret {
		coefficients[0] = element(s)
		for i, r := range random.GetRandomBytes(uint32(threshold - 1)) {
			coefficients[i+1] = element(r)
		}

		for i := range shares {
			shares[i][b] = byte(evaluate(coefficients, element(i+1)))
		}
	}
	clear(coefficients)

	return shares, nil
}

// Combine reconstructs the secret from `shares`. At least `threshold` shares
// are required. All supplied shares take part in the interpolation, so a
// corrupted share changes the result even when enough valid ones are present.
// A wrong result is not detected here; callers authenticate the secret.
func Combine(shares [][]byte, threshold int) ([]byte, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold %d must be at least 1", ErrInvalidParameters, threshold)
	}
	if len(shares) < threshold {
		return nil, fmt.Errorf("%w: need at least %d, got %d", ErrInsufficientShares, threshold, len(shares))
	}

	shareLen := len(shares[0])
	if shareLen < 2 {
		return nil, fmt.Errorf("%w: share is %d bytes, need at least 2", ErrInvalidShare, shareLen)
	}

	xs := make([]element, len(shares))
	seen := make(map[byte]bool, len(shares))
	for i, s := range shares {
		if len(s) != shareLen {
			return nil, fmt.Errorf("%w: share %d is %d bytes, want %d", ErrInvalidShare, i, len(s), shareLen)
		}
		x := s[shareLen-1]
		if x == 0 {
			return nil, fmt.Errorf("%w: share %d has x coordinate 0", ErrInvalidShare, i)
		}
		if seen[x] {
			return nil, fmt.Errorf("%w: duplicate x coordinate %d", ErrInvalidShare, x)
		}
		seen[x] = true
		xs[i] = element(x)
	}

	basis := lagrangeAtZero(xs)

	secret := make([]byte, shareLen-1)
	for b := range secret {
		var sum element
		for i, s := range shares {
			sum = sum.add(element(s[b]).mul(basis[i]))
		}
		secret[b] = byte(sum)
	}

	return secret, nil
}
