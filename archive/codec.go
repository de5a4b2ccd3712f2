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

package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paviro/Secret-Shards-sub000/constants"
)

// HeaderSize is the size of the version and compression prefix.
const HeaderSize = 2

// Pack serializes `a`, gzip compressing the body when that makes it smaller.
func Pack(a *Archive) ([]byte, error) {
	return PackWith(a, CompressionGzip)
}

// PackWith serializes `a` and compresses the body with whichever of
// `candidates` produces the smallest output. The body is stored uncompressed
// unless some candidate makes it strictly smaller.
func PackWith(a *Archive, candidates ...Compression) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	body := encodeBody(a)

	best, bestID := body, CompressionNone
	for _, c := range candidates {
		if c == CompressionNone {
			continue
		}
		compressed, err := compress(c, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %w", ErrCompression, c, err)
		}
		if len(compressed) < len(best) {
			best, bestID = compressed, c
		}
	}

	out := make([]byte, 0, HeaderSize+len(best))
	out = append(out, constants.ArchiveVersion, byte(bestID))
	out = append(out, best...)

	return out, nil
}

func encodeBody(a *Archive) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(a.Kind))

	switch a.Kind {
	case KindText:
		buf.WriteString(a.Text)
	case KindFiles:
		writeFiles(&buf, a.Files)
	case KindMixed:
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(a.Text))))
		buf.WriteString(a.Text)
		writeFiles(&buf, a.Files)
	}

	return buf.Bytes()
}

func writeFiles(buf *bytes.Buffer, files []FileEntry) {
	buf.WriteByte(byte(len(files)))

	for _, f := range files {
		buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(len(f.Name))))
		buf.WriteString(f.Name)
		buf.WriteByte(byte(len(f.MimeType)))
		buf.WriteString(f.MimeType)
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(f.Content))))
		buf.Write(f.Content)
	}
}

// Unpack decodes an archive produced by Pack or PackWith.
func Unpack(data []byte) (*Archive, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, header needs %d", ErrFormat, len(data), HeaderSize)
	}

	if data[0] != constants.ArchiveVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[0])
	}

	body, err := decompress(Compression(data[1]), data[HeaderSize:])
	if err != nil {
		return nil, err
	}

	return decodeBody(body)
}

func decodeBody(body []byte) (*Archive, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrFormat)
	}

	r := bytes.NewReader(body[1:])
	a := &Archive{Kind: Kind(body[0])}

	switch a.Kind {
	case KindText:
		a.Text = string(body[1:])
		return a, nil
	case KindFiles:
	case KindMixed:
		var textLen uint32
		if err := binary.Read(r, binary.LittleEndian, &textLen); err != nil {
			return nil, fmt.Errorf("%w: reading text length: %v", ErrFormat, err)
		}
		text, err := readBytes(r, int64(textLen))
		if err != nil {
			return nil, fmt.Errorf("%w: reading text: %v", ErrFormat, err)
		}
		a.Text = string(text)
	default:
		return nil, fmt.Errorf("%w: unknown kind tag %d", ErrFormat, body[0])
	}

	files, err := readFiles(r)
	if err != nil {
		return nil, err
	}
	a.Files = files

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, r.Len())
	}

	return a, nil
}

func readFiles(r *bytes.Reader) ([]FileEntry, error) {
	count, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading file count: %v", ErrFormat, err)
	}

	files := make([]FileEntry, 0, count)
	for i := 0; i < int(count); i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("%w: file %d: reading name length: %v", ErrFormat, i, err)
		}
		name, err := readBytes(r, int64(nameLen))
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: reading name: %v", ErrFormat, i, err)
		}

		mimeLen, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: reading mime type length: %v", ErrFormat, i, err)
		}
		mime, err := readBytes(r, int64(mimeLen))
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: reading mime type: %v", ErrFormat, i, err)
		}

		var contentLen uint32
		if err := binary.Read(r, binary.LittleEndian, &contentLen); err != nil {
			return nil, fmt.Errorf("%w: file %d: reading content length: %v", ErrFormat, i, err)
		}
		content, err := readBytes(r, int64(contentLen))
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: reading content: %v", ErrFormat, i, err)
		}

		files = append(files, FileEntry{
			Name:     string(name),
			MimeType: string(mime),
			Content:  content,
		})
	}

	return files, nil
}

// Reads exactly `n` bytes, failing before allocating when fewer remain.
func readBytes(r *bytes.Reader, n int64) ([]byte, error) {
	if n > int64(r.Len()) {
		return nil, fmt.Errorf("length %d exceeds remaining %d bytes", n, r.Len())
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
