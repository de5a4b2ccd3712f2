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
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies the codec applied to an archive body.
type Compression byte

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionGzip is the default codec.
	CompressionGzip Compression = 1
	// CompressionXZ is an opt-in codec for larger, text heavy archives.
	CompressionXZ Compression = 2
	// CompressionZstd is an opt-in codec.
	CompressionZstd Compression = 3
)

var compressionNames = map[Compression]string{
	CompressionNone: "none",
	CompressionGzip: "gzip",
	CompressionXZ:   "xz",
	CompressionZstd: "zstd",
}

func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown compression: %d", byte(c))
}

// ParseCompression returns the codec named `name` ("none", "gzip", "xz" or
// "zstd", case insensitive).
func ParseCompression(name string) (Compression, error) {
	for c, n := range compressionNames {
		if strings.EqualFold(n, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
}

func compress(c Compression, body []byte) ([]byte, error) {
	var buf bytes.Buffer

	switch c {
	case CompressionNone:
		return body, nil
	case CompressionGzip:
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionXZ:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		compressed := encoder.EncodeAll(body, nil)
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to close zstd encoder: %v", err)
		}
		return compressed, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, byte(c))
	}

	return buf.Bytes(), nil
}

func decompress(c Compression, data []byte) ([]byte, error) {
	var r io.Reader

	switch c {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		defer zr.Close()
		r = zr
	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		r = xr
	case CompressionZstd:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		defer decoder.Close()

		body, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		return body, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, byte(c))
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return body, nil
}
