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

import "errors"

// Errors returned by the block framing layer. They are wrapped with context, so
// callers should match them with errors.Is.
var (
	// ErrTruncated is returned when a buffer ends before a required field.
	ErrTruncated = errors.New("protocol: block truncated")

	// ErrMagicMismatch is returned when a buffer does not start with the block magic.
	ErrMagicMismatch = errors.New("protocol: data is not a Secret Shards block")

	// ErrUnknownBlockType is returned for block type tags that are not defined.
	ErrUnknownBlockType = errors.New("protocol: unknown block type")

	// ErrWrongBlockType is returned when a block of one kind is decoded as another.
	ErrWrongBlockType = errors.New("protocol: wrong block type")

	// ErrUnsupportedVersion is returned when a block version was never registered
	// for its block type.
	ErrUnsupportedVersion = errors.New("protocol: unsupported block version")

	// ErrUnsupportedAlgorithm is returned for encryption algorithm identifiers that
	// are not implemented.
	ErrUnsupportedAlgorithm = errors.New("protocol: unsupported encryption algorithm")

	// ErrFormat is returned for structurally invalid field values.
	ErrFormat = errors.New("protocol: malformed block")

	// ErrBlockTooLarge is returned for key share blocks above MaxKeyShareBlockSize.
	ErrBlockTooLarge = errors.New("protocol: block too large")

	// ErrTooManyChunks is returned when a ciphertext needs more chunks than allowed
	// at the requested chunk size.
	ErrTooManyChunks = errors.New("protocol: too many chunks")

	// ErrIncompleteChunks is returned when chunks are missing or duplicated during
	// reassembly.
	ErrIncompleteChunks = errors.New("protocol: incomplete chunk set")

	// ErrIDMismatch is returned when blocks from different operations are mixed.
	ErrIDMismatch = errors.New("protocol: blocks belong to different secrets")
)
