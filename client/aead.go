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

// Utility functions for AEAD encryption and decryption.

package client

import (
	"fmt"

	"github.com/google/tink/go/aead/subtle"
)

// IVBytes is the size of the AES-GCM IV in bytes.
const IVBytes = subtle.AESGCMIVSize

// aeadEncrypt encrypts `plaintext` under `key` with a fresh random IV, and
// returns the IV separately from the ciphertext and tag.
func aeadEncrypt(key DEK, plaintext []byte) (iv [IVBytes]byte, ciphertext []byte, err error) {
	cipher, err := subtle.NewAESGCM(key[:])
	if err != nil {
		return iv, nil, fmt.Errorf("unable to create new cipher: %v", err)
	}

	// Tink prefixes the output with the IV it generated.
	out, err := cipher.Encrypt(plaintext, nil)
	if err != nil {
		return iv, nil, fmt.Errorf("unable to encrypt: %v", err)
	}
	if len(out) < IVBytes+subtle.AESGCMTagSize {
		return iv, nil, fmt.Errorf("ciphertext has length %d, expected at least %d", len(out), IVBytes+subtle.AESGCMTagSize)
	}

	copy(iv[:], out[:IVBytes])
	return iv, out[IVBytes:], nil
}

// aeadDecrypt authenticates and decrypts `ciphertext` under `key` and `iv`.
func aeadDecrypt(key DEK, iv []byte, ciphertext []byte) ([]byte, error) {
	if len(iv) != IVBytes {
		return nil, fmt.Errorf("%w: IV has length %d, expected %d", ErrAuthentication, len(iv), IVBytes)
	}

	cipher, err := subtle.NewAESGCM(key[:])
	if err != nil {
		return nil, fmt.Errorf("unable to create new cipher: %v", err)
	}

	input := make([]byte, 0, len(iv)+len(ciphertext))
	input = append(input, iv...)
	input = append(input, ciphertext...)

	plaintext, err := cipher.Decrypt(input, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	return plaintext, nil
}
