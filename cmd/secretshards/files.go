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
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/archive"
	"github.com/paviro/Secret-Shards-sub000/client"
	"github.com/paviro/Secret-Shards-sub000/constants"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Upper bound on files read or written at the same time.
const maxParallelFiles = 8

// Name used for archive entries whose name sanitizes to nothing.
const unnamedFile = "unnamed"

var errNoInput = errors.New("nothing to split: provide text or at least one file")

// Returns the file name of the block at 0-based `index` out of `total`.
func blockFileName(id uuid.UUID, kind string, index, total int) string {
	return fmt.Sprintf("%s-%s-%d-of-%d%s", id, kind, index+1, total, constants.BlockFileExtension)
}

// writeShardSet writes every block of `set` into `dir` and returns the written
// paths, key shares first.
func writeShardSet(ctx context.Context, fsys afero.Fs, dir string, set *client.ShardSet) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %v", err)
	}

	var paths []string
	var blocks [][]byte
	for i, share := range set.KeyShares {
		paths = append(paths, filepath.Join(dir, blockFileName(set.ID, "share", i, len(set.KeyShares))))
		blocks = append(blocks, share)
	}
	for i, chunk := range set.Chunks {
		paths = append(paths, filepath.Join(dir, blockFileName(set.ID, "chunk", i, len(set.Chunks))))
		blocks = append(blocks, chunk)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i := range paths {
		path, block := paths[i], blocks[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := afero.WriteFile(fsys, path, block, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %v", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paths, nil
}

// readBlocks reads the files at `paths` concurrently, preserving their order.
func readBlocks(ctx context.Context, fsys afero.Fs, paths []string) ([][]byte, error) {
	blocks := make([][]byte, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i := range paths {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(fsys, paths[i])
			if err != nil {
				return fmt.Errorf("failed to read %s: %v", paths[i], err)
			}
			blocks[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return blocks, nil
}

// archiveInput describes what the split command should protect.
type archiveInput struct {
	text     string
	textFile string
	files    []string
}

// buildArchive assembles the archive for `in`. A text file of "-" is read from
// `stdin`.
func buildArchive(fsys afero.Fs, stdin io.Reader, in archiveInput) (*archive.Archive, error) {
	text := in.text
	hasText := text != ""

	switch in.textFile {
	case "":
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read text from stdin: %v", err)
		}
		text, hasText = string(b), true
	default:
		b, err := afero.ReadFile(fsys, in.textFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %v", err)
		}
		text, hasText = string(b), true
	}

	var entries []archive.FileEntry
	for _, path := range in.files {
		content, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", path, err)
		}
		entries = append(entries, archive.FileEntry{
			Name:     filepath.Base(path),
			MimeType: detectMimeType(path, content),
			Content:  content,
		})
	}

	switch {
	case hasText && len(entries) > 0:
		return archive.NewMixed(text, entries...), nil
	case hasText:
		return archive.NewText(text), nil
	case len(entries) > 0:
		return archive.NewFiles(entries...), nil
	default:
		return nil, errNoInput
	}
}

func detectMimeType(path string, content []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(content)
}

// sanitizeFileName reduces an archive entry name to a single safe path
// element.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == ':' {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(strings.TrimSpace(name), ".")
	if name == "" {
		return unnamedFile
	}
	return name
}

// writeArchiveFiles writes `files` into `dir` under sanitized,
// de-duplicated names and returns the written paths.
func writeArchiveFiles(fsys afero.Fs, dir string, files []archive.FileEntry) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %v", err)
	}

	used := make(map[string]bool)
	var paths []string
	for _, f := range files {
		name := uniqueName(sanitizeFileName(f.Name), used)
		path := filepath.Join(dir, name)

		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("refusing to overwrite existing file %s", path)
		}
		if err := afero.WriteFile(fsys, path, f.Content, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Returns `name`, or `name` with a numeric suffix before its extension if it is
// already in `used`, and marks the result as used.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}
