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

// Package constants contains constants shared between the library packages
// and the command line tools.
package constants

// Magic is the 3 byte prefix of every Secret Shards block ("SSS").
var Magic = [3]byte{'S', 'S', 'S'}

const (
	// KeyShareVersion is the current wire version of key share blocks.
	KeyShareVersion byte = 1

	// PayloadVersion is the current wire version of encrypted payload blocks.
	PayloadVersion byte = 1

	// ArchiveVersion is the current archive format version.
	ArchiveVersion byte = 1
)

const (
	// MaxChunks is the largest number of payload chunks a ciphertext may be split into.
	MaxChunks = 9

	// MaxKeyShareBlockSize is the largest serialized key share block accepted on decode.
	MaxKeyShareBlockSize = 16384

	// MaxByteCount is the ceiling of every single-byte count on the wire
	// (shares, threshold, chunks, files).
	MaxByteCount = 255
)

const (
	// DefaultShares is the number of key shares created when not configured.
	DefaultShares = 3

	// DefaultThreshold is the number of key shares needed when not configured.
	DefaultThreshold = 2

	// DefaultChunkSize is the default per-chunk ciphertext budget in bytes.
	DefaultChunkSize = 1024

	// DefaultConfigName is the name of the configuration file looked up in the
	// user configuration directory.
	DefaultConfigName = "secretshards.yaml"

	// BlockFileExtension is the extension used for block files written by the CLI.
	BlockFileExtension = ".ssb"
)
