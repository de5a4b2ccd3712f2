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

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/constants"
)

const payloadFieldsSize = 2

// EncryptedPayloadBlock carries one contiguous chunk of a ciphertext.
type EncryptedPayloadBlock struct {
	// Version is the wire version. Zero packs the current version.
	Version     byte
	ID          uuid.UUID
	TotalChunks uint8
	// ChunkIndex is 0-based.
	ChunkIndex uint8
	Ciphertext []byte
}

func registerPayload(r *Registry) {
	r.Register(BlockTypePayload, constants.PayloadVersion)
}

func (b *EncryptedPayloadBlock) validate() error {
	if b.TotalChunks == 0 {
		return fmt.Errorf("%w: total chunks must be at least 1", ErrFormat)
	}
	if b.ChunkIndex >= b.TotalChunks {
		return fmt.Errorf("%w: chunk index %d not below total chunks %d", ErrFormat, b.ChunkIndex, b.TotalChunks)
	}
	return nil
}

// PackPayload serializes `b` into an encrypted payload block.
func PackPayload(b *EncryptedPayloadBlock) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	version := b.Version
	if version == 0 {
		version = constants.PayloadVersion
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+payloadFieldsSize+len(b.Ciphertext)))
	if err := writeHeader(buf, version, b.ID, BlockTypePayload); err != nil {
		return nil, fmt.Errorf("failed to write payload header: %v", err)
	}

	buf.WriteByte(b.TotalChunks)
	buf.WriteByte(b.ChunkIndex)
	buf.Write(b.Ciphertext)

	return buf.Bytes(), nil
}

// UnpackPayload decodes an encrypted payload block using the default registry.
func UnpackPayload(data []byte) (*EncryptedPayloadBlock, error) {
	return DefaultRegistry().UnpackPayload(data)
}

// UnpackPayload decodes an encrypted payload block, accepting the versions known
// to `r`. The returned block does not alias `data`.
func (r *Registry) UnpackPayload(data []byte) (*EncryptedPayloadBlock, error) {
	h, err := r.readHeader(data)
	if err != nil {
		return nil, err
	}
	if h.BlockType != BlockTypePayload {
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrWrongBlockType, BlockTypePayload, h.BlockType)
	}

	rest := data[HeaderSize:]
	if len(rest) < payloadFieldsSize {
		return nil, fmt.Errorf("%w: payload fields need %d bytes, got %d", ErrTruncated, payloadFieldsSize, len(rest))
	}

	b := &EncryptedPayloadBlock{
		Version:     h.Version,
		ID:          h.ID,
		TotalChunks: rest[0],
		ChunkIndex:  rest[1],
		Ciphertext:  bytes.Clone(rest[payloadFieldsSize:]),
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	return b, nil
}
