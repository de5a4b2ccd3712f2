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

package protocol

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/constants"
	"pgregory.net/rapid"
)

func TestSplitCiphertextChunkCounts(t *testing.T) {
	testCases := []struct {
		name      string
		length    int
		chunkSize int
		wantSizes []int
	}{
		{"empty", 0, 10, []int{0}},
		{"exact", 20, 10, []int{10, 10}},
		{"remainder", 25, 10, []int{10, 10, 5}},
		{"one chunk", 3, 10, []int{3}},
		{"at ceiling", 9, 1, []int{1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"largest chunk size", 10, math.MaxInt, []int{10}},
		{"empty with largest chunk size", 0, math.MaxInt, []int{0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext := bytes.Repeat([]byte{0x42}, tc.length)

			chunks, err := SplitCiphertext(testID, ciphertext, tc.chunkSize)
			if err != nil {
				t.Fatalf("SplitCiphertext() returned error: %v", err)
			}

			var gotSizes []int
			for i, c := range chunks {
				gotSizes = append(gotSizes, len(c.Ciphertext))
				if int(c.ChunkIndex) != i || int(c.TotalChunks) != len(tc.wantSizes) || c.ID != testID {
					t.Errorf("chunk %d has index %d, total %d, id %v", i, c.ChunkIndex, c.TotalChunks, c.ID)
				}
			}
			if diff := cmp.Diff(tc.wantSizes, gotSizes); diff != "" {
				t.Errorf("SplitCiphertext() returned unexpected chunk sizes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitCiphertextTooManyChunks(t *testing.T) {
	chunks, err := SplitCiphertext(testID, make([]byte, constants.MaxChunks+1), 1)
	if !errors.Is(err, ErrTooManyChunks) {
		t.Fatalf("SplitCiphertext() = %v, want %v", err, ErrTooManyChunks)
	}
	if len(chunks) != 0 {
		t.Errorf("SplitCiphertext() produced %d chunks on failure, want 0", len(chunks))
	}
}

func TestSplitCiphertextRejectsNonPositiveChunkSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := SplitCiphertext(testID, []byte("ct"), size); !errors.Is(err, ErrFormat) {
			t.Errorf("SplitCiphertext(chunk size %d) = %v, want %v", size, err, ErrFormat)
		}
	}
}

func TestFrameCiphertext(t *testing.T) {
	ciphertext := []byte("abcdefghij")

	framed, err := FrameCiphertext(testID, ciphertext, 4)
	if err != nil {
		t.Fatalf("FrameCiphertext() returned error: %v", err)
	}
	if len(framed) != 3 {
		t.Fatalf("FrameCiphertext() returned %d blocks, want 3", len(framed))
	}

	var chunks []*EncryptedPayloadBlock
	for _, f := range framed {
		c, err := UnpackPayload(f)
		if err != nil {
			t.Fatalf("UnpackPayload() returned error: %v", err)
		}
		chunks = append(chunks, c)
	}

	got, err := JoinChunks(chunks)
	if err != nil {
		t.Fatalf("JoinChunks() returned error: %v", err)
	}
	if !bytes.Equal(got, ciphertext) {
		t.Errorf("JoinChunks() = %q, want %q", got, ciphertext)
	}
}

func TestJoinChunksFails(t *testing.T) {
	chunks, err := SplitCiphertext(testID, []byte("abcdefghij"), 4)
	if err != nil {
		t.Fatalf("SplitCiphertext() returned error: %v", err)
	}

	otherID := *chunks[1]
	otherID.ID = uuid.New()

	otherTotal := *chunks[1]
	otherTotal.TotalChunks = 4

	testCases := []struct {
		name    string
		chunks  []*EncryptedPayloadBlock
		wantErr error
	}{
		{"none", nil, ErrIncompleteChunks},
		{"missing", chunks[:2], ErrIncompleteChunks},
		{"duplicate", []*EncryptedPayloadBlock{chunks[0], chunks[0], chunks[2]}, ErrIncompleteChunks},
		{"mixed ids", []*EncryptedPayloadBlock{chunks[0], &otherID, chunks[2]}, ErrIDMismatch},
		{"mixed totals", []*EncryptedPayloadBlock{chunks[0], &otherTotal, chunks[2]}, ErrFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := JoinChunks(tc.chunks); !errors.Is(err, tc.wantErr) {
				t.Errorf("JoinChunks() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestJoinChunksIgnoresReceiptOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ciphertext := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(t, "ciphertext")
		minSize := (len(ciphertext) + constants.MaxChunks - 1) / constants.MaxChunks
		chunkSize := rapid.IntRange(max(minSize, 1), 600).Draw(t, "chunkSize")

		chunks, err := SplitCiphertext(testID, ciphertext, chunkSize)
		if err != nil {
			t.Fatalf("SplitCiphertext() returned error: %v", err)
		}

		shuffled := rapid.Permutation(chunks).Draw(t, "order")
		got, err := JoinChunks(shuffled)
		if err != nil {
			t.Fatalf("JoinChunks() returned error: %v", err)
		}
		if !bytes.Equal(got, ciphertext) {
			t.Fatalf("JoinChunks() = %x, want %x", got, ciphertext)
		}
	})
}

func TestSortChunksDoesNotModifyInput(t *testing.T) {
	chunks, err := SplitCiphertext(testID, []byte("abcdef"), 2)
	if err != nil {
		t.Fatalf("SplitCiphertext() returned error: %v", err)
	}
	reversed := []*EncryptedPayloadBlock{chunks[2], chunks[1], chunks[0]}

	sorted := SortChunks(reversed)
	for i, c := range sorted {
		if int(c.ChunkIndex) != i {
			t.Errorf("SortChunks()[%d] has index %d", i, c.ChunkIndex)
		}
	}
	if reversed[0].ChunkIndex != 2 {
		t.Errorf("SortChunks() reordered its input")
	}
}
