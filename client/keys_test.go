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

package client

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewDEKIsRandom(t *testing.T) {
	if a, b := NewDEK(), NewDEK(); a == b {
		t.Fatalf("NewDEK() returned the same key twice: %x", a)
	}
}

func TestSplitCombineDEK(t *testing.T) {
	dek := NewDEK()

	shares, err := splitDEK(dek, 5, 3)
	if err != nil {
		t.Fatalf("splitDEK() returned error: %v", err)
	}

	got, err := combineDEK([][]byte{shares[4], shares[0], shares[2]}, 3)
	if err != nil {
		t.Fatalf("combineDEK() returned error: %v", err)
	}
	if got != dek {
		t.Errorf("combineDEK() = %x, want %x", got, dek)
	}
}

func TestCombineDEKErrors(t *testing.T) {
	shares, err := splitDEK(NewDEK(), 3, 2)
	if err != nil {
		t.Fatalf("splitDEK() returned error: %v", err)
	}

	testCases := []struct {
		name    string
		shares  [][]byte
		wantErr error
	}{
		{"too few", shares[:1], ErrInsufficientShares},
		{"none", nil, ErrInsufficientShares},
		{"duplicate", [][]byte{shares[0], shares[0]}, ErrInconsistentShares},
		{"short key", [][]byte{shares[0][16:], shares[1][16:]}, ErrInconsistentShares},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := combineDEK(tc.shares, 2); !errors.Is(err, tc.wantErr) {
				t.Errorf("combineDEK() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateShareConfig(t *testing.T) {
	testCases := []struct {
		total, threshold int
		wantErr          bool
	}{
		{1, 1, false},
		{3, 2, false},
		{255, 255, false},
		{0, 0, true},
		{3, 0, true},
		{3, 4, true},
		{256, 2, true},
		{-1, 1, true},
	}

	for _, tc := range testCases {
		err := validateShareConfig(tc.total, tc.threshold)
		if gotErr := err != nil; gotErr != tc.wantErr {
			t.Errorf("validateShareConfig(%d, %d) = %v, want error %v", tc.total, tc.threshold, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidShareConfig) {
			t.Errorf("validateShareConfig(%d, %d) = %v, want %v", tc.total, tc.threshold, err, ErrInvalidShareConfig)
		}
	}
}

func TestAeadEncryptAndAeadDecrypt(t *testing.T) {
	testDEK := NewDEK()
	testPT := []byte("Plaintext for testing only.")

	iv, ciphertext, err := aeadEncrypt(testDEK, testPT)
	if err != nil {
		t.Fatalf("aeadEncrypt failed with error %v", err)
	}
	if len(ciphertext) != len(testPT)+16 {
		t.Errorf("aeadEncrypt returned %d bytes of ciphertext, want %d", len(ciphertext), len(testPT)+16)
	}

	plaintext, err := aeadDecrypt(testDEK, iv[:], ciphertext)
	if err != nil {
		t.Fatalf("aeadDecrypt failed with error %v", err)
	}
	if !bytes.Equal(plaintext, testPT) {
		t.Errorf("aeadEncrypt and aeadDecrypt workflow does not restore original plaintext. Got %v, want %v", plaintext, testPT)
	}
}

func TestAeadEncryptUsesFreshIVs(t *testing.T) {
	dek := NewDEK()

	iv1, _, err := aeadEncrypt(dek, []byte("same"))
	if err != nil {
		t.Fatalf("aeadEncrypt failed with error %v", err)
	}
	iv2, _, err := aeadEncrypt(dek, []byte("same"))
	if err != nil {
		t.Fatalf("aeadEncrypt failed with error %v", err)
	}
	if iv1 == iv2 {
		t.Errorf("aeadEncrypt reused IV %x", iv1)
	}
}

func TestAeadDecryptFails(t *testing.T) {
	dek := NewDEK()
	iv, ciphertext, err := aeadEncrypt(dek, []byte("Plaintext for testing only."))
	if err != nil {
		t.Fatalf("aeadEncrypt failed with error %v", err)
	}

	flipped := bytes.Clone(ciphertext)
	flipped[0] ^= 0x01

	wrongIV := iv
	wrongIV[0] ^= 0x01

	testCases := []struct {
		name       string
		key        DEK
		iv         []byte
		ciphertext []byte
	}{
		{"wrong key", NewDEK(), iv[:], ciphertext},
		{"wrong IV", dek, wrongIV[:], ciphertext},
		{"short IV", dek, iv[:8], ciphertext},
		{"tampered ciphertext", dek, iv[:], flipped},
		{"truncated ciphertext", dek, iv[:], ciphertext[:len(ciphertext)-1]},
		{"random ciphertext", dek, iv[:], []byte("This is some random invalid ciphertext.")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := aeadDecrypt(tc.key, tc.iv, tc.ciphertext); !errors.Is(err, ErrAuthentication) {
				t.Errorf("aeadDecrypt() = %v, want %v", err, ErrAuthentication)
			}
		})
	}
}
