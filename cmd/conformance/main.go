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

// Binary to validate wire format conformance of the Secret Shards codecs.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"flag"
	"github.com/alecthomas/colour"
	glog "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/archive"
	"github.com/paviro/Secret-Shards-sub000/client"
	"github.com/paviro/Secret-Shards-sub000/constants"
	"github.com/paviro/Secret-Shards-sub000/protocol"
)

var (
	verbose = flag.Bool("verbose", false, "Print the error of every failing case.")
)

var vectorID = uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

type conformanceTest struct {
	testName string
	run      func() error
}

// Returns a key share block with a 32 byte share and a fixed IV.
func vectorKeyShare() ([]byte, error) {
	return protocol.PackKeyShare(&protocol.KeyShareBlock{
		ID:          vectorID,
		Threshold:   2,
		TotalShares: 3,
		ShareIndex:  1,
		Algorithm:   protocol.AlgorithmAESGCM256,
		IV:          bytes.Repeat([]byte{0xA5}, 12),
		KeyShare:    bytes.Repeat([]byte{0x5A}, 32),
	})
}

func expectErr(err, want error) error {
	if !errors.Is(err, want) {
		return fmt.Errorf("got error %v, want %v", err, want)
	}
	return nil
}

func emptyTextArchive() error {
	got, err := archive.Pack(archive.NewText(""))
	if err != nil {
		return err
	}
	want := []byte{constants.ArchiveVersion, byte(archive.CompressionNone), byte(archive.KindText)}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("packed %x, want %x", got, want)
	}
	return nil
}

func keyShareLayout() error {
	block, err := vectorKeyShare()
	if err != nil {
		return err
	}

	want := []byte{'S', 'S', 'S', constants.KeyShareVersion}
	want = append(want, vectorID[:]...)
	want = append(want, byte(protocol.BlockTypeKeyShare), 2, 3, 1, byte(protocol.AlgorithmAESGCM256))
	want = append(want, bytes.Repeat([]byte{0xA5}, 12)...)
	want = append(want, bytes.Repeat([]byte{0x5A}, 32)...)

	if len(block) != 69 {
		return fmt.Errorf("block is %d bytes, want 69", len(block))
	}
	if !bytes.Equal(block, want) {
		return fmt.Errorf("block is %x, want %x", block, want)
	}
	return nil
}

func payloadLayout() error {
	block, err := protocol.PackPayload(&protocol.EncryptedPayloadBlock{
		ID:          vectorID,
		TotalChunks: 2,
		ChunkIndex:  1,
		Ciphertext:  []byte{0xDE, 0xAD},
	})
	if err != nil {
		return err
	}

	want := []byte{'S', 'S', 'S', constants.PayloadVersion}
	want = append(want, vectorID[:]...)
	want = append(want, byte(protocol.BlockTypePayload), 2, 1, 0xDE, 0xAD)
	if !bytes.Equal(block, want) {
		return fmt.Errorf("block is %x, want %x", block, want)
	}
	return nil
}

func mutatedKeyShare(offset int, value byte, want error) func() error {
	return func() error {
		block, err := vectorKeyShare()
		if err != nil {
			return err
		}
		block[offset] = value
		_, err = protocol.UnpackKeyShare(block)
		return expectErr(err, want)
	}
}

func truncatedKeyShare() error {
	block, err := vectorKeyShare()
	if err != nil {
		return err
	}
	_, err = protocol.UnpackKeyShare(block[:protocol.HeaderSize-1])
	return expectErr(err, protocol.ErrTruncated)
}

func chunkCeiling() error {
	const chunkSize = 16

	if _, err := protocol.SplitCiphertext(vectorID, make([]byte, constants.MaxChunks*chunkSize), chunkSize); err != nil {
		return fmt.Errorf("%d chunks rejected: %v", constants.MaxChunks, err)
	}
	_, err := protocol.SplitCiphertext(vectorID, make([]byte, constants.MaxChunks*chunkSize+1), chunkSize)
	return expectErr(err, protocol.ErrTooManyChunks)
}

func archiveVersionGate() error {
	_, err := archive.Unpack([]byte{constants.ArchiveVersion + 1, byte(archive.CompressionNone), byte(archive.KindText)})
	return expectErr(err, archive.ErrUnsupportedVersion)
}

func shardAndRestore() error {
	want := archive.NewMixed("conformance", archive.FileEntry{Name: "a.bin", MimeType: "application/octet-stream", Content: []byte{0, 1, 2}})

	set, err := client.Shard(client.ShardRequest{Archive: want, TotalShares: 5, Threshold: 3, MaxChunkBytes: 32})
	if err != nil {
		return err
	}

	blocks := append([][]byte{set.KeyShares[4], set.KeyShares[1], set.KeyShares[3]}, set.Chunks...)
	got, _, err := client.Restore(blocks)
	if err != nil {
		return err
	}
	if got.Text != want.Text || len(got.Files) != 1 || !bytes.Equal(got.Files[0].Content, want.Files[0].Content) {
		return fmt.Errorf("restored %+v, want %+v", got, want)
	}
	return nil
}

func tamperedChunk() error {
	set, err := client.Shard(client.ShardRequest{Archive: archive.NewText("conformance"), TotalShares: 2, Threshold: 2})
	if err != nil {
		return err
	}

	chunk := bytes.Clone(set.Chunks[0])
	chunk[len(chunk)-1] ^= 0x01

	_, _, err = client.Restore(append(set.KeyShares, chunk))
	return expectErr(err, client.ErrAuthentication)
}

func main() {
	flag.Parse()

	fmt.Println("Running wire format conformance tests...")

	testCases := []conformanceTest{
		{"Empty text archive packs to 01 00 01", emptyTextArchive},
		{"Key share block with 32 byte share is 69 bytes", keyShareLayout},
		{"Payload block layout", payloadLayout},
		{"Key share block with unknown version is rejected", mutatedKeyShare(3, constants.KeyShareVersion+1, protocol.ErrUnsupportedVersion)},
		{"Block with wrong magic is rejected", mutatedKeyShare(0, 'X', protocol.ErrMagicMismatch)},
		{"Block with unknown type is rejected", mutatedKeyShare(protocol.HeaderSize-1, 0x7F, protocol.ErrUnknownBlockType)},
		{"Truncated header is rejected", truncatedKeyShare},
		{"Ciphertext is limited to 9 chunks", chunkCeiling},
		{"Archive with unknown version is rejected", archiveVersionGate},
		{"Secret restores from a threshold subset", shardAndRestore},
		{"Tampered chunk fails authentication", tamperedChunk},
	}

	failures := 0
	for _, testCase := range testCases {
		err := testCase.run()
		if err == nil {
			colour.Printf("^2 - %v^R\n", testCase.testName)
			continue
		}

		failures++
		colour.Printf("^1 - %v^R\n", testCase.testName)
		if *verbose {
			glog.Errorf("%v: %v", testCase.testName, err)
		}
	}

	if failures > 0 {
		colour.Printf("^1%d of %d tests failed^R\n", failures, len(testCases))
		os.Exit(1)
	}
}
