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
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/archive"
	"github.com/paviro/Secret-Shards-sub000/protocol"
)

// CollectionStatus reports the progress of a Collection.
type CollectionStatus struct {
	// ID is the correlation id of the collected blocks. Zero until the first
	// block is added.
	ID uuid.UUID
	// SharesHave is the number of distinct key shares collected.
	SharesHave int
	// SharesNeeded is the threshold, or 0 before any key share is seen.
	SharesNeeded int
	// TotalShares is the number of shares created, or 0 before any key share is seen.
	TotalShares int
	// ChunksHave is the number of distinct payload chunks collected.
	ChunksHave int
	// ChunksTotal is the number of chunks, or 0 before any chunk is seen.
	ChunksTotal int
}

// Ready reports whether enough blocks are present to restore the secret.
func (s CollectionStatus) Ready() bool {
	return s.SharesNeeded > 0 && s.SharesHave >= s.SharesNeeded &&
		s.ChunksTotal > 0 && s.ChunksHave == s.ChunksTotal
}

// RestoreMetadata describes a restored secret.
type RestoreMetadata struct {
	ID          uuid.UUID
	Threshold   int
	TotalShares int
	SharesUsed  int
	TotalChunks int
}

// Collection accumulates the blocks of one secret as they arrive, in any
// order. It is safe for concurrent use.
type Collection struct {
	registry *protocol.Registry

	mu        sync.Mutex
	id        uuid.UUID
	hasID     bool
	params    *protocol.KeyShareBlock
	keyShares map[uint8]*protocol.KeyShareBlock
	chunks    map[uint8]*protocol.EncryptedPayloadBlock
}

// NewCollection returns an empty collection decoding blocks with `registry`,
// or with protocol.DefaultRegistry when `registry` is nil.
func NewCollection(registry *protocol.Registry) *Collection {
	if registry == nil {
		registry = protocol.DefaultRegistry()
	}

	return &Collection{
		registry:  registry,
		keyShares: make(map[uint8]*protocol.KeyShareBlock),
		chunks:    make(map[uint8]*protocol.EncryptedPayloadBlock),
	}
}

// Add decodes `block` and records it. Blocks of another secret, conflicting
// parameters and conflicting duplicates are rejected without changing the
// collection. Exact duplicates are accepted and ignored.
func (c *Collection) Add(block []byte) (protocol.BlockType, error) {
	blockType, err := c.registry.IdentifyBlockType(block)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch blockType {
	case protocol.BlockTypeKeyShare:
		share, err := c.registry.UnpackKeyShare(block)
		if err != nil {
			return blockType, err
		}
		return blockType, c.addKeyShare(share)
	case protocol.BlockTypePayload:
		chunk, err := c.registry.UnpackPayload(block)
		if err != nil {
			return blockType, err
		}
		return blockType, c.addChunk(chunk)
	default:
		return blockType, fmt.Errorf("%w: %v", protocol.ErrUnknownBlockType, blockType)
	}
}

func (c *Collection) checkID(id uuid.UUID) error {
	if c.hasID && id != c.id {
		return fmt.Errorf("%w: collecting %v, got block of %v", protocol.ErrIDMismatch, c.id, id)
	}
	return nil
}

func (c *Collection) setID(id uuid.UUID) {
	c.id = id
	c.hasID = true
}

func (c *Collection) addKeyShare(share *protocol.KeyShareBlock) error {
	if err := c.checkID(share.ID); err != nil {
		return err
	}

	if p := c.params; p != nil {
		if share.Threshold != p.Threshold || share.TotalShares != p.TotalShares || share.Algorithm != p.Algorithm || !bytes.Equal(share.IV, p.IV) {
			return fmt.Errorf("%w: share %d parameters differ from share %d", ErrInconsistentShares, share.ShareIndex, p.ShareIndex)
		}
	}

	if existing, ok := c.keyShares[share.ShareIndex]; ok {
		if !bytes.Equal(existing.KeyShare, share.KeyShare) {
			return fmt.Errorf("%w: two different shares with index %d", ErrInconsistentShares, share.ShareIndex)
		}
		return nil
	}

	c.setID(share.ID)
	if c.params == nil {
		c.params = share
	}
	c.keyShares[share.ShareIndex] = share

	return nil
}

func (c *Collection) addChunk(chunk *protocol.EncryptedPayloadBlock) error {
	if err := c.checkID(chunk.ID); err != nil {
		return err
	}

	for _, other := range c.chunks {
		if other.TotalChunks != chunk.TotalChunks {
			return fmt.Errorf("%w: chunk %d claims %d chunks, others claim %d", ErrInconsistentChunks, chunk.ChunkIndex, chunk.TotalChunks, other.TotalChunks)
		}
		break
	}

	if existing, ok := c.chunks[chunk.ChunkIndex]; ok {
		if !bytes.Equal(existing.Ciphertext, chunk.Ciphertext) {
			return fmt.Errorf("%w: two different chunks with index %d", ErrInconsistentChunks, chunk.ChunkIndex)
		}
		return nil
	}

	c.setID(chunk.ID)
	c.chunks[chunk.ChunkIndex] = chunk

	return nil
}

// Status returns the current progress.
func (c *Collection) Status() CollectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.statusLocked()
}

func (c *Collection) statusLocked() CollectionStatus {
	s := CollectionStatus{
		ID:         c.id,
		SharesHave: len(c.keyShares),
		ChunksHave: len(c.chunks),
	}
	if c.params != nil {
		s.SharesNeeded = int(c.params.Threshold)
		s.TotalShares = int(c.params.TotalShares)
	}
	for _, chunk := range c.chunks {
		s.ChunksTotal = int(chunk.TotalChunks)
		break
	}

	return s
}

// Ready reports whether Restore can be attempted.
func (c *Collection) Ready() bool {
	return c.Status().Ready()
}

// Restore reconstructs the secret from the collected blocks. It fails with
// ErrInsufficientShares or protocol.ErrIncompleteChunks when blocks are
// missing, and with ErrAuthentication when the blocks do not decrypt.
func (c *Collection) Restore() (*archive.Archive, *RestoreMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.statusLocked()
	if status.SharesNeeded == 0 || status.SharesHave < status.SharesNeeded {
		return nil, nil, fmt.Errorf("%w: have %d of %d", ErrInsufficientShares, status.SharesHave, status.SharesNeeded)
	}

	chunks := make([]*protocol.EncryptedPayloadBlock, 0, len(c.chunks))
	for _, chunk := range c.chunks {
		chunks = append(chunks, chunk)
	}
	ciphertext, err := protocol.JoinChunks(chunks)
	if err != nil {
		return nil, nil, err
	}

	indexes := make([]int, 0, len(c.keyShares))
	for i := range c.keyShares {
		indexes = append(indexes, int(i))
	}
	sort.Ints(indexes)

	keyShares := make([][]byte, 0, len(indexes))
	for _, i := range indexes {
		keyShares = append(keyShares, c.keyShares[uint8(i)].KeyShare)
	}

	a, err := ReconstructSecret(ReconstructRequest{
		Algorithm: c.params.Algorithm,
		KeyShares: keyShares,
		Chunks:    [][]byte{ciphertext},
		IV:        c.params.IV,
		Threshold: status.SharesNeeded,
	})
	if err != nil {
		return nil, nil, err
	}

	return a, &RestoreMetadata{
		ID:          c.id,
		Threshold:   status.SharesNeeded,
		TotalShares: status.TotalShares,
		SharesUsed:  len(keyShares),
		TotalChunks: status.ChunksTotal,
	}, nil
}
