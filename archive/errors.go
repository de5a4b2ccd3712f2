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

import "errors"

// Decoding errors.
var (
	ErrFormat                 = errors.New("archive: malformed archive")
	ErrUnsupportedVersion     = errors.New("archive: unsupported archive version")
	ErrUnsupportedCompression = errors.New("archive: unsupported compression")
	ErrDecompression          = errors.New("archive: decompression failed")
)

// Encoding errors, raised before any bytes are produced.
var (
	ErrUnknownKind     = errors.New("archive: unknown archive kind")
	ErrInvalidArchive  = errors.New("archive: fields do not match archive kind")
	ErrTooManyFiles    = errors.New("archive: too many files")
	ErrNameTooLong     = errors.New("archive: file name too long")
	ErrMimeTypeTooLong = errors.New("archive: mime type too long")
	ErrContentTooLarge = errors.New("archive: file content too large")
	ErrTextTooLarge    = errors.New("archive: text too large")
	ErrCompression     = errors.New("archive: compression failed")
)
