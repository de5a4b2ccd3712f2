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

package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/alecthomas/colour"
	"github.com/paviro/Secret-Shards-sub000/protocol"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// describeBlock decodes `data` and returns its fields. Indexes are reported
// 1-based, the way block files are named.
func describeBlock(data []byte) (*structpb.Struct, error) {
	header, err := protocol.ReadHeader(data)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"id":      header.ID.String(),
		"version": int(header.Version),
		"type":    header.BlockType.String(),
		"size":    len(data),
	}

	switch header.BlockType {
	case protocol.BlockTypeKeyShare:
		b, err := protocol.UnpackKeyShare(data)
		if err != nil {
			return nil, err
		}
		fields["threshold"] = int(b.Threshold)
		fields["totalShares"] = int(b.TotalShares)
		fields["shareIndex"] = int(b.ShareIndex) + 1
		fields["algorithm"] = b.Algorithm.String()
		fields["iv"] = hex.EncodeToString(b.IV)
		fields["shareBytes"] = len(b.KeyShare)
	case protocol.BlockTypePayload:
		b, err := protocol.UnpackPayload(data)
		if err != nil {
			return nil, err
		}
		fields["totalChunks"] = int(b.TotalChunks)
		fields["chunkIndex"] = int(b.ChunkIndex) + 1
		fields["ciphertextBytes"] = len(b.Ciphertext)
	}

	return structpb.NewStruct(fields)
}

// blockReport pairs a block file with its decoded fields or decoding error.
type blockReport struct {
	path   string
	fields *structpb.Struct
	err    error
}

func inspectBlocks(paths []string, blocks [][]byte) []blockReport {
	reports := make([]blockReport, len(blocks))
	for i, data := range blocks {
		fields, err := describeBlock(data)
		reports[i] = blockReport{path: paths[i], fields: fields, err: err}
	}
	return reports
}

// writeReportsJSON writes `reports` as a JSON array. Undecodable blocks carry
// an "error" field.
func writeReportsJSON(w io.Writer, reports []blockReport) error {
	list := &structpb.ListValue{}
	for _, r := range reports {
		s := r.fields
		if r.err != nil {
			s = &structpb.Struct{Fields: map[string]*structpb.Value{
				"error": structpb.NewStringValue(r.err.Error()),
			}}
		}
		s.Fields["path"] = structpb.NewStringValue(r.path)
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}

	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal block report: %v", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeReportsText writes one coloured line per report. Colour is stripped
// when `w` is not a terminal.
func writeReportsText(w io.Writer, reports []blockReport) {
	p := colour.TTY(w)
	for _, r := range reports {
		if r.err != nil {
			p.Printf("^1%s^R: %s\n", r.path, r.err)
			continue
		}

		f := r.fields.GetFields()
		switch f["type"].GetStringValue() {
		case protocol.BlockTypeKeyShare.String():
			p.Printf("^2%s^R: key share %d of %d, threshold %d, id %s\n",
				r.path,
				int(f["shareIndex"].GetNumberValue()),
				int(f["totalShares"].GetNumberValue()),
				int(f["threshold"].GetNumberValue()),
				f["id"].GetStringValue())
		default:
			p.Printf("^4%s^R: chunk %d of %d, %d bytes, id %s\n",
				r.path,
				int(f["chunkIndex"].GetNumberValue()),
				int(f["totalChunks"].GetNumberValue()),
				int(f["ciphertextBytes"].GetNumberValue()),
				f["id"].GetStringValue())
		}
	}
}

func countFailures(reports []blockReport) int {
	n := 0
	for _, r := range reports {
		if r.err != nil {
			n++
		}
	}
	return n
}
