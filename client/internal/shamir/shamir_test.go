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

package shamir_test

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/paviro/Secret-Shards-sub000/client/internal/shamir"
	"pgregory.net/rapid"
)

const smallSecret = "abcdefghijklmnopqrstuvwxyz123456"

func getRandomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("Failed to read random bytes: %v", err)
	}
	return b
}

func TestSplitCombineWorks(t *testing.T) {
	for _, tc := range []struct {
		name      string
		secret    []byte
		numShares int
		threshold int
	}{
		{"small secret n-6 t-4", []byte(smallSecret), 6, 4},
		{"large secret n-80 t-50", getRandomBytes(t, 300), 80, 50},
		{"threshold 1", []byte(smallSecret), 3, 1},
		{"single share", []byte(smallSecret), 1, 1},
		{"all required", getRandomBytes(t, 32), 5, 5},
		{"max shares", getRandomBytes(t, 32), shamir.MaxShares, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			shares, err := shamir.Split(tc.secret, tc.numShares, tc.threshold)
			if err != nil {
				t.Fatalf("shamir.Split() err = %v, want nil", err)
			}
			if len(shares) != tc.numShares {
				t.Fatalf("shamir.Split() returned %d shares, want %d", len(shares), tc.numShares)
			}
			for i, s := range shares {
				if len(s) != len(tc.secret)+1 {
					t.Fatalf("share %d has length %d, want %d", i, len(s), len(tc.secret)+1)
				}
			}

			recon, err := shamir.Combine(shares[:tc.threshold], tc.threshold)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := recon, tc.secret; !bytes.Equal(got, want) {
				t.Errorf("got %v, want %v", hex.EncodeToString(got), hex.EncodeToString(want))
			}
		})
	}
}

func TestSplitFails(t *testing.T) {
	for _, tc := range []struct {
		name      string
		secret    []byte
		numShares int
		threshold int
	}{
		{"empty secret", nil, 3, 2},
		{"zero shares", []byte(smallSecret), 0, 1},
		{"too many shares", []byte(smallSecret), shamir.MaxShares + 1, 2},
		{"zero threshold", []byte(smallSecret), 3, 0},
		{"threshold above shares", []byte(smallSecret), 3, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := shamir.Split(tc.secret, tc.numShares, tc.threshold); !errors.Is(err, shamir.ErrInvalidParameters) {
				t.Errorf("shamir.Split() err = %v, want %v", err, shamir.ErrInvalidParameters)
			}
		})
	}
}

func TestCombineAnySubset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numShares := rapid.IntRange(1, 12).Draw(t, "numShares")
		threshold := rapid.IntRange(1, numShares).Draw(t, "threshold")
		secret := rapid.SliceOfN(rapid.Byte(), 1, 48).Draw(t, "secret")

		shares, err := shamir.Split(secret, numShares, threshold)
		if err != nil {
			t.Fatalf("shamir.Split() err = %v", err)
		}

		subset := rapid.Permutation(shares).Draw(t, "order")
		subset = subset[:rapid.IntRange(threshold, numShares).Draw(t, "count")]

		recon, err := shamir.Combine(subset, threshold)
		if err != nil {
			t.Fatalf("shamir.Combine() err = %v", err)
		}
		if !bytes.Equal(recon, secret) {
			t.Fatalf("shamir.Combine() = %x, want %x", recon, secret)
		}
	})
}

func TestCombineWithFewerSharesThanThresholdFails(t *testing.T) {
	shares, err := shamir.Split(getRandomBytes(t, 32), 6, 4)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := shamir.Combine(shares[:3], 4); !errors.Is(err, shamir.ErrInsufficientShares) {
		t.Fatalf("shamir.Combine() err = %v, want %v", err, shamir.ErrInsufficientShares)
	}
}

func TestCombineWithAlteredShareChangesResult(t *testing.T) {
	secret := getRandomBytes(t, 32)
	shares, err := shamir.Split(secret, 3, 2)
	if err != nil {
		t.Fatal(err)
	}

	// The altered share is beyond the threshold but still interpolated.
	shares[2][0] ^= 0x01

	recon, err := shamir.Combine(shares, 2)
	if err != nil {
		t.Fatalf("shamir.Combine() err = %v, want nil", err)
	}
	if bytes.Equal(recon, secret) {
		t.Errorf("shamir.Combine() with an altered share returned the original secret")
	}
}

func TestCombineInvalidShares(t *testing.T) {
	shares, err := shamir.Split([]byte(smallSecret), 3, 2)
	if err != nil {
		t.Fatal(err)
	}

	zeroX := bytes.Clone(shares[1])
	zeroX[len(zeroX)-1] = 0

	for _, tc := range []struct {
		name   string
		shares [][]byte
	}{
		{"too short", [][]byte{{0x01}, shares[1]}},
		{"length mismatch", [][]byte{shares[0], shares[1][1:]}},
		{"duplicate", [][]byte{shares[0], shares[0]}},
		{"zero x", [][]byte{shares[0], zeroX}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := shamir.Combine(tc.shares, 2); !errors.Is(err, shamir.ErrInvalidShare) {
				t.Errorf("shamir.Combine() err = %v, want %v", err, shamir.ErrInvalidShare)
			}
		})
	}
}

// Shares produced by an independent Vault-compatible implementation, with
// random x coordinates.
var staticShares = [][]byte{
	{0xca, 0x6a, 0x5e, 0xe5, 0x13, 0x14, 0x08, 0x88, 0xf0, 0xab, 0x3a, 0x3b, 0xee, 0x7b, 0xd0, 0xdc, 0xd3},
	{0xf9, 0xa1, 0xf9, 0xb9, 0x00, 0xe4, 0x9c, 0x39, 0xcc, 0xce, 0x1f, 0xd9, 0xab, 0x3c, 0xe5, 0x72, 0x97},
	{0xb8, 0x03, 0x95, 0x32, 0x0f, 0x82, 0xa9, 0xf8, 0x1b, 0x42, 0x71, 0x20, 0xdb, 0x04, 0xa2, 0x51, 0x53},
	{0x7b, 0xc9, 0x47, 0x5e, 0xf8, 0x67, 0xff, 0x7c, 0xbc, 0x91, 0xdd, 0xa9, 0x8b, 0xa2, 0x7e, 0x84, 0xff},
	{0x0b, 0x98, 0x6c, 0x4a, 0x32, 0x23, 0x11, 0xfe, 0x62, 0x5e, 0xcc, 0x5a, 0x47, 0x2a, 0x4e, 0x15, 0x5d},
}

func TestCombineFromStaticShares(t *testing.T) {
	want := []byte("YELLOW_SUBMARINE")

	for _, tc := range []struct {
		name   string
		shares [][]byte
	}{
		{"all shares", staticShares},
		{"threshold shares", [][]byte{staticShares[0], staticShares[1], staticShares[3]}},
		{"reordered", [][]byte{staticShares[4], staticShares[2], staticShares[0]}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			recon, err := shamir.Combine(tc.shares, 3)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(recon, want) {
				t.Errorf("got %v, want %v", hex.EncodeToString(recon), hex.EncodeToString(want))
			}
		})
	}
}

// A single share of a 2-of-n split must not rule out any secret value, so a
// share byte equals the secret byte about once in 256 draws.
func TestSplitSingleShareIsUniform(t *testing.T) {
	const (
		splits = 20000
		secret = 0x42
	)

	equal := 0
	for i := 0; i < splits; i++ {
		shares, err := shamir.Split([]byte{secret}, 3, 2)
		if err != nil {
			t.Fatalf("Split() returned error: %v", err)
		}
		for _, s := range shares {
			if s[0] == secret {
				equal++
			}
		}
	}

	// Expected 60000/256 ~ 234 with a standard deviation of ~15.
	if equal < 130 || equal > 340 {
		t.Errorf("share value equal to secret byte in %d of %d shares, want about %d", equal, 3*splits, 3*splits/256)
	}
}
