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
	"fmt"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/archive"
	"github.com/paviro/Secret-Shards-sub000/constants"
	"github.com/paviro/Secret-Shards-sub000/protocol"
)

// ShardRequest describes a secret to split into framed blocks.
type ShardRequest struct {
	Archive     *archive.Archive
	TotalShares int
	Threshold   int
	// MaxChunkBytes bounds the ciphertext carried by one payload block. Zero
	// means constants.DefaultChunkSize.
	MaxChunkBytes int
	// Compression lists the codecs tried on the archive body. Nil means gzip.
	Compression []archive.Compression
}

// ShardSet holds the packed blocks of one secret.
type ShardSet struct {
	ID        uuid.UUID
	KeyShares [][]byte
	Chunks    [][]byte
}

// Shard splits the secret of `req` and frames the result as key share and
// payload blocks. Nothing is returned when the ciphertext needs more than
// constants.MaxChunks chunks.
func Shard(req ShardRequest) (*ShardSet, error) {
	maxChunkBytes := req.MaxChunkBytes
	if maxChunkBytes == 0 {
		maxChunkBytes = constants.DefaultChunkSize
	}

	data, err := CreateSecretShares(ShareRequest{
		Archive:     req.Archive,
		TotalShares: req.TotalShares,
		Threshold:   req.Threshold,
		Compression: req.Compression,
	})
	if err != nil {
		return nil, err
	}

	chunks, err := protocol.FrameCiphertext(data.ID, data.Ciphertext, maxChunkBytes)
	if err != nil {
		return nil, err
	}

	keyShares := make([][]byte, 0, len(data.KeyShares))
	for i, share := range data.KeyShares {
		b, err := protocol.PackKeyShare(&protocol.KeyShareBlock{
			ID:          data.ID,
			Threshold:   uint8(data.Threshold),
			TotalShares: uint8(data.TotalShares),
			ShareIndex:  uint8(i),
			Algorithm:   protocol.AlgorithmAESGCM256,
			IV:          data.IV[:],
			KeyShare:    share,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to pack key share %d: %w", i, err)
		}
		keyShares = append(keyShares, b)
	}

	return &ShardSet{
		ID:        data.ID,
		KeyShares: keyShares,
		Chunks:    chunks,
	}, nil
}

// Restore reconstructs a secret from packed blocks given in any order, mixing
// key shares and payload chunks. Blocks of different secrets are rejected with
// protocol.ErrIDMismatch.
func Restore(blocks [][]byte) (*archive.Archive, *RestoreMetadata, error) {
	c := NewCollection(nil)
	for i, b := range blocks {
		if _, err := c.Add(b); err != nil {
			return nil, nil, fmt.Errorf("block %d: %w", i, err)
		}
	}

	return c.Restore()
}
