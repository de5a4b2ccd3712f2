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

// Package archive bundles a secret (text, files, or both) into a flat byte
// buffer before encryption, and reverses the process.
//
// A packed archive is laid out as:
// - format version (1 byte)
// - compression id (1 byte): 0 = none, 1 = gzip, 2 = xz, 3 = zstd
// - body, compressed as indicated
//
// The uncompressed body starts with a kind tag:
// - 1 (text): the UTF-8 text, extending to the end of the body
// - 2 (files): file count (1 byte) followed by that many file entries
// - 3 (mixed): text length (4 bytes), text, file count (1 byte), file entries
//
// Each file entry is name length (2 bytes), name, mime type length (1 byte),
// mime type, content length (4 bytes), content. Integers are little-endian.
package archive

import (
	"fmt"
	"math"

	"github.com/paviro/Secret-Shards-sub000/constants"
)

// Kind is the body tag of an archive.
type Kind byte

const (
	// KindText is an archive holding only text.
	KindText Kind = 1
	// KindFiles is an archive holding only files.
	KindFiles Kind = 2
	// KindMixed is an archive holding text and files.
	KindMixed Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFiles:
		return "files"
	case KindMixed:
		return "mixed"
	default:
		return fmt.Sprintf("unknown kind: %d", byte(k))
	}
}

// Encoding limits imposed by the width of the length fields.
const (
	MaxFiles          = constants.MaxByteCount
	MaxNameLength     = math.MaxUint16
	MaxMimeTypeLength = math.MaxUint8
	MaxContentLength  = math.MaxUint32
	MaxMixedTextLen   = math.MaxUint32
)

// FileEntry is a named file carried by an archive.
type FileEntry struct {
	Name     string
	MimeType string
	Content  []byte
}

// Archive is the logical secret before encryption. Text is only meaningful for
// KindText and KindMixed, Files only for KindFiles and KindMixed.
type Archive struct {
	Kind  Kind
	Text  string
	Files []FileEntry
}

// NewText returns a text archive.
func NewText(text string) *Archive {
	return &Archive{Kind: KindText, Text: text}
}

// NewFiles returns a files archive.
func NewFiles(files ...FileEntry) *Archive {
	return &Archive{Kind: KindFiles, Files: files}
}

// NewMixed returns an archive holding both text and files.
func NewMixed(text string, files ...FileEntry) *Archive {
	return &Archive{Kind: KindMixed, Text: text, Files: files}
}

// Validate checks that `a` fits the encoding limits. Pack calls it before
// serializing anything.
func (a *Archive) Validate() error {
	switch a.Kind {
	case KindText:
		if len(a.Files) != 0 {
			return fmt.Errorf("%w: text archive carries %d files", ErrInvalidArchive, len(a.Files))
		}
		return nil
	case KindFiles:
		if a.Text != "" {
			return fmt.Errorf("%w: files archive carries text", ErrInvalidArchive)
		}
	case KindMixed:
		if uint64(len(a.Text)) > MaxMixedTextLen {
			return fmt.Errorf("%w: %d bytes, limit is %d", ErrTextTooLarge, len(a.Text), uint64(MaxMixedTextLen))
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, byte(a.Kind))
	}

	if len(a.Files) > MaxFiles {
		return fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(a.Files), MaxFiles)
	}
	for i, f := range a.Files {
		if len(f.Name) > MaxNameLength {
			return fmt.Errorf("%w: file %d name is %d bytes, limit is %d", ErrNameTooLong, i, len(f.Name), MaxNameLength)
		}
		if len(f.MimeType) > MaxMimeTypeLength {
			return fmt.Errorf("%w: file %d mime type is %d bytes, limit is %d", ErrMimeTypeTooLong, i, len(f.MimeType), MaxMimeTypeLength)
		}
		if uint64(len(f.Content)) > MaxContentLength {
			return fmt.Errorf("%w: file %d is %d bytes, limit is %d", ErrContentTooLarge, i, len(f.Content), uint64(MaxContentLength))
		}
	}

	return nil
}
