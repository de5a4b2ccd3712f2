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

// Utility functions for generating and splitting data encryption keys.

package client

import (
	"errors"
	"fmt"

	"github.com/google/tink/go/subtle/random"
	"github.com/paviro/Secret-Shards-sub000/client/internal/shamir"
	"github.com/paviro/Secret-Shards-sub000/constants"
)

// DEKBytes is the size of the DEK in bytes.
const DEKBytes uint32 = 32

// DEK represents a byte array that serves as a Data Encryption Key.
type DEK [DEKBytes]byte

// NewDEK randomly generates and returns a DEK.
func NewDEK() DEK {
	var dek DEK
	copy(dek[:], random.GetRandomBytes(DEKBytes))

	return dek
}

func validateShareConfig(totalShares, threshold int) error {
	if totalShares < 1 || totalShares > constants.MaxByteCount {
		return fmt.Errorf("%w: total shares %d outside [1, %d]", ErrInvalidShareConfig, totalShares, constants.MaxByteCount)
	}
	if threshold < 1 || threshold > totalShares {
		return fmt.Errorf("%w: threshold %d outside [1, %d]", ErrInvalidShareConfig, threshold, totalShares)
	}
	return nil
}

// splitDEK divides `dek` into `totalShares` shares, any `threshold` of which
// reconstruct it.
func splitDEK(dek DEK, totalShares, threshold int) ([][]byte, error) {
	shares, err := shamir.Split(dek[:], totalShares, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareConfig, err)
	}
	return shares, nil
}

// combineDEK reconstitutes a DEK from `shares`. Faulty shares still produce a
// key, so integrity is established by the AEAD afterwards.
func combineDEK(shares [][]byte, threshold int) (DEK, error) {
	var dek DEK

	secret, err := shamir.Combine(shares, threshold)
	switch {
	case errors.Is(err, shamir.ErrInsufficientShares):
		return dek, fmt.Errorf("%w: %v", ErrInsufficientShares, err)
	case err != nil:
		return dek, fmt.Errorf("%w: %v", ErrInconsistentShares, err)
	}

	if len(secret) != int(DEKBytes) {
		return dek, fmt.Errorf("%w: combined key has length %d, expected %d", ErrInconsistentShares, len(secret), DEKBytes)
	}

	copy(dek[:], secret)
	clear(secret)

	return dek, nil
}
