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

package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/constants"
)

var testID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

func TestWriteHeaderExplicitByteOrder(t *testing.T) {
	var buf bytes.Buffer

	if err := writeHeader(&buf, 0x07, testID, BlockTypePayload); err != nil {
		t.Fatalf("writeHeader(buf, 7, %v, payload) returned error: %v", testID, err)
	}

	var want []byte
	want = append(want, 'S', 'S', 'S') // magic
	want = append(want, 0x07)          // version
	want = append(want, testID[:]...)  // id, raw bytes
	want = append(want, 0x02)          // block type

	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("writeHeader() produced unexpected header (-want +got):\n%s", diff)
	}
	if buf.Len() != HeaderSize {
		t.Errorf("writeHeader() wrote %d bytes, want %d", buf.Len(), HeaderSize)
	}
}

func validHeader(t *testing.T, blockType BlockType) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := writeHeader(&buf, 1, testID, blockType); err != nil {
		t.Fatalf("writeHeader() returned error: %v", err)
	}
	return buf.Bytes()
}

func TestIdentifyBlockType(t *testing.T) {
	for _, blockType := range []BlockType{BlockTypeKeyShare, BlockTypePayload} {
		t.Run(blockType.String(), func(t *testing.T) {
			got, err := IdentifyBlockType(validHeader(t, blockType))
			if err != nil {
				t.Fatalf("IdentifyBlockType() returned error: %v", err)
			}
			if got != blockType {
				t.Errorf("IdentifyBlockType() = %v, want %v", got, blockType)
			}
		})
	}
}

func TestIdentifyBlockTypeFails(t *testing.T) {
	testCases := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "empty",
			data:    func(t *testing.T) []byte { return nil },
			wantErr: ErrTruncated,
		},
		{
			name:    "short header",
			data:    func(t *testing.T) []byte { return validHeader(t, BlockTypeKeyShare)[:HeaderSize-1] },
			wantErr: ErrTruncated,
		},
		{
			name: "bad magic",
			data: func(t *testing.T) []byte {
				h := validHeader(t, BlockTypeKeyShare)
				h[0] = 'X'
				return h
			},
			wantErr: ErrMagicMismatch,
		},
		{
			name: "unknown block type",
			data: func(t *testing.T) []byte {
				h := validHeader(t, BlockTypeKeyShare)
				h[HeaderSize-1] = 0x09
				return h
			},
			wantErr: ErrUnknownBlockType,
		},
		{
			name: "unknown version",
			data: func(t *testing.T) []byte {
				h := validHeader(t, BlockTypePayload)
				h[3] = 0xEE
				return h
			},
			wantErr: ErrUnsupportedVersion,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := IdentifyBlockType(tc.data(t)); !errors.Is(err, tc.wantErr) {
				t.Errorf("IdentifyBlockType() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReadHeader(t *testing.T) {
	got, err := ReadHeader(validHeader(t, BlockTypeKeyShare))
	if err != nil {
		t.Fatalf("ReadHeader() returned error: %v", err)
	}

	want := &Header{Version: constants.KeyShareVersion, ID: testID, BlockType: BlockTypeKeyShare}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadHeader() returned unexpected header (-want +got):\n%s", diff)
	}
}

func TestRegistryVersionsAreIndependentPerType(t *testing.T) {
	r := NewRegistry()
	r.Register(BlockTypeKeyShare, 1, 2)

	if !r.Supports(BlockTypeKeyShare, 2) {
		t.Errorf("Supports(key-share, 2) = false, want true")
	}
	if r.Supports(BlockTypePayload, 2) {
		t.Errorf("Supports(payload, 2) = true, want false")
	}

	if diff := cmp.Diff([]byte{1, 2}, r.Versions(BlockTypeKeyShare)); diff != "" {
		t.Errorf("Versions(key-share) returned unexpected versions (-want +got):\n%s", diff)
	}

	if _, err := r.IdentifyBlockType(validHeader(t, BlockTypePayload)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("IdentifyBlockType(payload) on isolated registry = %v, want %v", err, ErrUnsupportedVersion)
	}
}

func TestDefaultRegistryIsStable(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Fatalf("DefaultRegistry() returned different registries on repeated calls")
	}

	for _, blockType := range []BlockType{BlockTypeKeyShare, BlockTypePayload} {
		if !DefaultRegistry().Supports(blockType, 1) {
			t.Errorf("DefaultRegistry().Supports(%v, 1) = false, want true", blockType)
		}
	}
}
