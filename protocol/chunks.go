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
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/constants"
)

// ChunkCount returns how many chunks of at most `maxChunkPayloadBytes` are needed
// for `ciphertextLen` bytes. Empty ciphertexts still take one chunk.
func ChunkCount(ciphertextLen, maxChunkPayloadBytes int) int {
	if ciphertextLen == 0 {
		return 1
	}
	return 1 + (ciphertextLen-1)/maxChunkPayloadBytes
}

// SplitCiphertext divides `ciphertext` into ordered chunks of at most
// `maxChunkPayloadBytes` bytes each. It fails with ErrTooManyChunks, producing
// no chunks, when more than constants.MaxChunks would be needed.
func SplitCiphertext(id uuid.UUID, ciphertext []byte, maxChunkPayloadBytes int) ([]*EncryptedPayloadBlock, error) {
	if maxChunkPayloadBytes < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrFormat, maxChunkPayloadBytes)
	}

	total := ChunkCount(len(ciphertext), maxChunkPayloadBytes)
	if total > constants.MaxChunks {
		return nil, fmt.Errorf("%w: %d bytes need %d chunks of %d bytes, limit is %d", ErrTooManyChunks, len(ciphertext), total, maxChunkPayloadBytes, constants.MaxChunks)
	}

	chunks := make([]*EncryptedPayloadBlock, 0, total)
	for i := 0; i < total; i++ {
		start := i * maxChunkPayloadBytes
		end := start + min(maxChunkPayloadBytes, len(ciphertext)-start)

		chunks = append(chunks, &EncryptedPayloadBlock{
			Version:     constants.PayloadVersion,
			ID:          id,
			TotalChunks: uint8(total),
			ChunkIndex:  uint8(i),
			Ciphertext:  bytes.Clone(ciphertext[start:end]),
		})
	}

	return chunks, nil
}

// FrameCiphertext splits `ciphertext` like SplitCiphertext and packs every chunk.
func FrameCiphertext(id uuid.UUID, ciphertext []byte, maxChunkPayloadBytes int) ([][]byte, error) {
	chunks, err := SplitCiphertext(id, ciphertext, maxChunkPayloadBytes)
	if err != nil {
		return nil, err
	}

	framed := make([][]byte, 0, len(chunks))
	for _, c := range chunks {
		b, err := PackPayload(c)
		if err != nil {
			return nil, fmt.Errorf("failed to pack chunk %d: %w", c.ChunkIndex, err)
		}
		framed = append(framed, b)
	}

	return framed, nil
}

// SortChunks returns a copy of `chunks` ordered by ChunkIndex.
func SortChunks(chunks []*EncryptedPayloadBlock) []*EncryptedPayloadBlock {
	sorted := make([]*EncryptedPayloadBlock, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ChunkIndex < sorted[j].ChunkIndex })

	return sorted
}

// JoinChunks reassembles a ciphertext from chunks received in any order. All
// chunks must share one id and one chunk count, and every index must be present
// exactly once.
func JoinChunks(chunks []*EncryptedPayloadBlock) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks provided", ErrIncompleteChunks)
	}

	first := chunks[0]
	for _, c := range chunks[1:] {
		if c.ID != first.ID {
			return nil, fmt.Errorf("%w: chunk ids %v and %v", ErrIDMismatch, first.ID, c.ID)
		}
		if c.TotalChunks != first.TotalChunks {
			return nil, fmt.Errorf("%w: chunks disagree on total chunks (%d and %d)", ErrFormat, first.TotalChunks, c.TotalChunks)
		}
	}

	if len(chunks) != int(first.TotalChunks) {
		return nil, fmt.Errorf("%w: have %d of %d chunks", ErrIncompleteChunks, len(chunks), first.TotalChunks)
	}

	var ciphertext bytes.Buffer
	for i, c := range SortChunks(chunks) {
		if int(c.ChunkIndex) != i {
			return nil, fmt.Errorf("%w: chunk %d missing or duplicated", ErrIncompleteChunks, i)
		}
		ciphertext.Write(c.Ciphertext)
	}

	return ciphertext.Bytes(), nil
}
