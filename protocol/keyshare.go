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
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/constants"
)

// Algorithm identifies the AEAD used to encrypt the payload.
type Algorithm byte

const (
	// AlgorithmAESGCM256 is AES-256 in Galois/Counter Mode with a 12 byte IV.
	AlgorithmAESGCM256 Algorithm = 1
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmAESGCM256:
		return "AES-GCM-256"
	default:
		return fmt.Sprintf("unknown algorithm: %d", byte(a))
	}
}

// IVSize returns the IV length of the algorithm, or ErrUnsupportedAlgorithm.
func (a Algorithm) IVSize() (int, error) {
	switch a {
	case AlgorithmAESGCM256:
		return 12, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, byte(a))
	}
}

// keyShareFieldsSize is the size of the fixed fields following the header.
const keyShareFieldsSize = 4

type keyShareFields struct {
	Threshold   uint8
	TotalShares uint8
	ShareIndex  uint8
	Algorithm   uint8
}

// KeyShareBlock carries one share of the key that encrypted a secret.
type KeyShareBlock struct {
	// Version is the wire version. Zero packs the current version.
	Version     byte
	ID          uuid.UUID
	Threshold   uint8
	TotalShares uint8
	// ShareIndex is 0-based.
	ShareIndex uint8
	Algorithm  Algorithm
	IV         []byte
	KeyShare   []byte
}

func registerKeyShare(r *Registry) {
	r.Register(BlockTypeKeyShare, constants.KeyShareVersion)
}

func (b *KeyShareBlock) validate() error {
	if b.TotalShares == 0 {
		return fmt.Errorf("%w: total shares must be at least 1", ErrFormat)
	}
	if b.Threshold == 0 || b.Threshold > b.TotalShares {
		return fmt.Errorf("%w: threshold %d outside [1, %d]", ErrFormat, b.Threshold, b.TotalShares)
	}
	if b.ShareIndex >= b.TotalShares {
		return fmt.Errorf("%w: share index %d not below total shares %d", ErrFormat, b.ShareIndex, b.TotalShares)
	}
	return nil
}

// PackKeyShare serializes `b` into a key share block.
func PackKeyShare(b *KeyShareBlock) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	ivSize, err := b.Algorithm.IVSize()
	if err != nil {
		return nil, err
	}
	if len(b.IV) != ivSize {
		return nil, fmt.Errorf("%w: IV has length %d, %v needs %d", ErrFormat, len(b.IV), b.Algorithm, ivSize)
	}

	if len(b.KeyShare) == 0 {
		return nil, fmt.Errorf("%w: empty key share", ErrFormat)
	}

	size := HeaderSize + keyShareFieldsSize + ivSize + len(b.KeyShare)
	if size > constants.MaxKeyShareBlockSize {
		return nil, fmt.Errorf("%w: key share block would be %d bytes, limit is %d", ErrBlockTooLarge, size, constants.MaxKeyShareBlockSize)
	}

	version := b.Version
	if version == 0 {
		version = constants.KeyShareVersion
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := writeHeader(buf, version, b.ID, BlockTypeKeyShare); err != nil {
		return nil, fmt.Errorf("failed to write key share header: %v", err)
	}

	fields := keyShareFields{
		Threshold:   b.Threshold,
		TotalShares: b.TotalShares,
		ShareIndex:  b.ShareIndex,
		Algorithm:   uint8(b.Algorithm),
	}
	if err := binary.Write(buf, binary.LittleEndian, fields); err != nil {
		return nil, fmt.Errorf("failed to write key share fields: %v", err)
	}

	buf.Write(b.IV)
	buf.Write(b.KeyShare)

	return buf.Bytes(), nil
}

// UnpackKeyShare decodes a key share block using the default registry.
func UnpackKeyShare(data []byte) (*KeyShareBlock, error) {
	return DefaultRegistry().UnpackKeyShare(data)
}

// UnpackKeyShare decodes a key share block, accepting the versions known to `r`.
// The returned block does not alias `data`.
func (r *Registry) UnpackKeyShare(data []byte) (*KeyShareBlock, error) {
	h, err := r.readHeader(data)
	if err != nil {
		return nil, err
	}
	if h.BlockType != BlockTypeKeyShare {
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrWrongBlockType, BlockTypeKeyShare, h.BlockType)
	}

	if len(data) > constants.MaxKeyShareBlockSize {
		return nil, fmt.Errorf("%w: key share block is %d bytes, limit is %d", ErrBlockTooLarge, len(data), constants.MaxKeyShareBlockSize)
	}

	rest := data[HeaderSize:]
	if len(rest) < keyShareFieldsSize {
		return nil, fmt.Errorf("%w: key share fields need %d bytes, got %d", ErrTruncated, keyShareFieldsSize, len(rest))
	}

	var fields keyShareFields
	if err := binary.Read(bytes.NewReader(rest[:keyShareFieldsSize]), binary.LittleEndian, &fields); err != nil {
		return nil, fmt.Errorf("%w: failed to read key share fields: %v", ErrTruncated, err)
	}
	rest = rest[keyShareFieldsSize:]

	algorithm := Algorithm(fields.Algorithm)
	ivSize, err := algorithm.IVSize()
	if err != nil {
		return nil, err
	}
	if len(rest) < ivSize {
		return nil, fmt.Errorf("%w: IV needs %d bytes, got %d", ErrTruncated, ivSize, len(rest))
	}
	iv := rest[:ivSize]
	share := rest[ivSize:]
	if len(share) == 0 {
		return nil, fmt.Errorf("%w: no key share bytes", ErrTruncated)
	}

	b := &KeyShareBlock{
		Version:     h.Version,
		ID:          h.ID,
		Threshold:   fields.Threshold,
		TotalShares: fields.TotalShares,
		ShareIndex:  fields.ShareIndex,
		Algorithm:   algorithm,
		IV:          bytes.Clone(iv),
		KeyShare:    bytes.Clone(share),
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	return b, nil
}
