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

import (
	"sort"
	"sync"
)

// Registry records which versions of each block type can be decoded. Block
// kinds evolve independently: registering a new key share version does not
// make the same version valid for payload blocks.
type Registry struct {
	mu       sync.RWMutex
	versions map[BlockType]map[byte]struct{}
}

// NewRegistry returns an empty registry. Blocks decoded through it fail with
// ErrUnsupportedVersion until their versions are registered.
func NewRegistry() *Registry {
	return &Registry{versions: make(map[BlockType]map[byte]struct{})}
}

// Register marks the given versions of `blockType` as decodable.
func (r *Registry) Register(blockType BlockType, versions ...byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	known, ok := r.versions[blockType]
	if !ok {
		known = make(map[byte]struct{})
		r.versions[blockType] = known
	}
	for _, v := range versions {
		known[v] = struct{}{}
	}
}

// Supports reports whether `version` was registered for `blockType`.
func (r *Registry) Supports(blockType BlockType, version byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.versions[blockType][version]
	return ok
}

// Versions returns the registered versions of `blockType` in ascending order.
func (r *Registry) Versions(blockType BlockType) []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []byte
	for v := range r.versions[blockType] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the process-wide registry holding the current version
// of every block kind. It is populated on first use and not modified afterwards.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		registerKeyShare(r)
		registerPayload(r)
		defaultRegistry = r
	})

	return defaultRegistry
}
