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

// Package config loads the YAML configuration of the secretshards tool.
//
// An example configuration:
//
//	shares: 5
//	threshold: 3
//	chunkSize: 800
//	compression: [gzip, xz]
//	outputDir: /tmp/shards
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/paviro/Secret-Shards-sub000/archive"
	"github.com/paviro/Secret-Shards-sub000/constants"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// ErrInvalidConfig is returned for configurations that cannot be used.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the defaults applied to split operations.
type Config struct {
	// Shares is the number of key shares to create.
	Shares int `json:"shares"`
	// Threshold is the number of key shares needed to restore.
	Threshold int `json:"threshold"`
	// ChunkSize bounds the ciphertext bytes carried per payload block.
	ChunkSize int `json:"chunkSize"`
	// Compression lists the codecs tried on the archive body, by name.
	Compression []string `json:"compression"`
	// OutputDir is where block files are written. Empty means the working
	// directory.
	OutputDir string `json:"outputDir,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Shares:      constants.DefaultShares,
		Threshold:   constants.DefaultThreshold,
		ChunkSize:   constants.DefaultChunkSize,
		Compression: []string{archive.CompressionGzip.String()},
	}
}

// DefaultPath returns the location of the configuration file in the user
// configuration directory.
func DefaultPath() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory location: %v", err)
	}
	return filepath.Join(cfgDir, constants.DefaultConfigName), nil
}

// Load reads the configuration at `path` from `fsys`. Fields absent from the
// file keep their defaults, and a missing file yields Default().
func Load(fsys afero.Fs, path string) (*Config, error) {
	cfg := Default()

	yamlBytes, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := yaml.UnmarshalStrict(yamlBytes, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes `cfg` as YAML to `path` on `fsys`.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}
	return afero.WriteFile(fsys, path, yamlBytes, 0o600)
}

// Validate checks that the share parameters fit the wire format and that every
// compression name is known.
func (c *Config) Validate() error {
	if c.Shares < 1 || c.Shares > constants.MaxByteCount {
		return fmt.Errorf("%w: shares %d outside [1, %d]", ErrInvalidConfig, c.Shares, constants.MaxByteCount)
	}
	if c.Threshold < 1 || c.Threshold > c.Shares {
		return fmt.Errorf("%w: threshold %d outside [1, %d]", ErrInvalidConfig, c.Threshold, c.Shares)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if _, err := c.Compressions(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Compressions returns the configured codecs. An empty list disables
// compression.
func (c *Config) Compressions() ([]archive.Compression, error) {
	out := make([]archive.Compression, 0, len(c.Compression))
	for _, name := range c.Compression {
		comp, err := archive.ParseCompression(name)
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	return out, nil
}
