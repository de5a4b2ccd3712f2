// Copyright 2021 Google LLC
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

// Package protocol implements the Secret Shards block wire format.
//
// Every block starts with a 21 byte header:
// - "SSS" magic string (3 bytes)
// - block version (1 byte), validated per block type
// - correlation id shared by all blocks of one secret (16 bytes, raw UUID)
// - block type (1 byte): 1 = key share, 2 = encrypted payload
//
// Key share blocks continue with:
// - threshold, total shares, share index, algorithm (1 byte each)
// - IV (12 bytes for AES-GCM-256)
// - key share bytes, extending to the end of the block
//
// Encrypted payload blocks continue with:
// - total chunks, chunk index (1 byte each)
// - ciphertext bytes, extending to the end of the block
//
// A buffer holds exactly one block; trailing bytes belong to the block payload.
// All multi-byte integers are little-endian.
package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/constants"
)

// HeaderSize is the size of the header shared by all block types.
const HeaderSize = 3 + 1 + 16 + 1

// BlockType identifies the kind of a block.
type BlockType byte

const (
	// BlockTypeKeyShare marks a block carrying one share of the encryption key.
	BlockTypeKeyShare BlockType = 1
	// BlockTypePayload marks a block carrying one ciphertext chunk.
	BlockTypePayload BlockType = 2
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeKeyShare:
		return "key-share"
	case BlockTypePayload:
		return "encrypted-payload"
	default:
		return fmt.Sprintf("unknown block type: %d", byte(t))
	}
}

func (t BlockType) defined() bool {
	return t == BlockTypeKeyShare || t == BlockTypePayload
}

// blockHeader is the header prefix of every block.
type blockHeader struct {
	Magic     [3]byte   // constants.Magic
	Version   uint8     // 1 byte
	ID        uuid.UUID // 16 bytes
	BlockType uint8     // 1 byte
}

// Header holds the fields every block carries.
type Header struct {
	Version   byte
	ID        uuid.UUID
	BlockType BlockType
}

// Reads and validates the header at the start of `data` against the versions
// known to `r`.
func (r *Registry) readHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, header needs %d", ErrTruncated, len(data), HeaderSize)
	}

	var h blockHeader
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: failed to read block header: %v", ErrTruncated, err)
	}

	if !bytes.Equal(h.Magic[:], constants.Magic[:]) {
		return nil, fmt.Errorf("%w: got magic %q", ErrMagicMismatch, h.Magic[:])
	}

	blockType := BlockType(h.BlockType)
	if !blockType.defined() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlockType, h.BlockType)
	}

	if !r.Supports(blockType, h.Version) {
		return nil, fmt.Errorf("%w: %v block version %d", ErrUnsupportedVersion, blockType, h.Version)
	}

	return &Header{
		Version:   h.Version,
		ID:        h.ID,
		BlockType: blockType,
	}, nil
}

// Writes a block header with the given properties to `buf`.
func writeHeader(buf *bytes.Buffer, version byte, id uuid.UUID, blockType BlockType) error {
	h := blockHeader{
		Magic:     constants.Magic,
		Version:   version,
		ID:        id,
		BlockType: uint8(blockType),
	}

	return binary.Write(buf, binary.LittleEndian, h)
}

// ReadHeader validates the header of `data` against the default registry and
// returns it without decoding the block body.
func ReadHeader(data []byte) (*Header, error) {
	return DefaultRegistry().readHeader(data)
}

// IdentifyBlockType returns the type of the block in `data` after validating its
// magic, type and version against the default registry.
func IdentifyBlockType(data []byte) (BlockType, error) {
	return DefaultRegistry().IdentifyBlockType(data)
}

// IdentifyBlockType returns the type of the block in `data` after validating its
// magic, type and version against `r`.
func (r *Registry) IdentifyBlockType(data []byte) (BlockType, error) {
	h, err := r.readHeader(data)
	if err != nil {
		return 0, err
	}

	return h.BlockType, nil
}
