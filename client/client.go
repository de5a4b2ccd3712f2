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

// Package client splits secrets into encrypted payloads and threshold key
// shares, and restores them.
//
// A secret is packed into an archive and encrypted once with a fresh AES-256-GCM
// key. The key, not the secret, is divided with Shamir secret sharing over
// GF(2^8), so any `threshold` of the key shares decrypt the payload.
package client

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paviro/Secret-Shards-sub000/archive"
	"github.com/paviro/Secret-Shards-sub000/protocol"
)

// ShareRequest describes a secret to split.
type ShareRequest struct {
	Archive     *archive.Archive
	TotalShares int
	Threshold   int
	// Compression lists the codecs tried on the archive body. Nil means gzip.
	Compression []archive.Compression
}

// SecretSharesData is the unframed result of CreateSecretShares. It lives in
// memory only.
type SecretSharesData struct {
	ID          uuid.UUID
	KeyShares   [][]byte
	Ciphertext  []byte
	IV          [IVBytes]byte
	Threshold   int
	TotalShares int
}

// CreateSecretShares packs and encrypts the archive of `req` under a fresh key,
// and splits that key into `req.TotalShares` shares.
func CreateSecretShares(req ShareRequest) (*SecretSharesData, error) {
	if req.Archive == nil {
		return nil, fmt.Errorf("%w: no archive provided", archive.ErrInvalidArchive)
	}
	if err := validateShareConfig(req.TotalShares, req.Threshold); err != nil {
		return nil, err
	}

	var body []byte
	var err error
	if req.Compression == nil {
		body, err = archive.Pack(req.Archive)
	} else {
		body, err = archive.PackWith(req.Archive, req.Compression...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pack archive: %w", err)
	}

	dek := NewDEK()
	defer clear(dek[:])

	iv, ciphertext, err := aeadEncrypt(dek, body)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt archive: %w", err)
	}

	keyShares, err := splitDEK(dek, req.TotalShares, req.Threshold)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %v", err)
	}

	return &SecretSharesData{
		ID:          id,
		KeyShares:   keyShares,
		Ciphertext:  ciphertext,
		IV:          iv,
		Threshold:   req.Threshold,
		TotalShares: req.TotalShares,
	}, nil
}

// ReconstructRequest carries the material needed to restore a secret.
type ReconstructRequest struct {
	Algorithm protocol.Algorithm
	KeyShares [][]byte
	// Chunks are concatenated in the order given. Callers sort them by chunk
	// index beforehand.
	Chunks [][]byte
	IV     []byte
	// Threshold is the number of key shares required. Zero accepts any
	// non-empty set, so too few shares then surface as ErrAuthentication rather
	// than ErrInsufficientShares.
	Threshold int
}

// ReconstructSecret combines the key shares of `req`, decrypts the joined
// chunks and unpacks the resulting archive.
//
// Archive errors such as archive.ErrUnsupportedVersion are returned unchanged
// so callers can tell a newer archive format apart from bad key material.
//
// Only a non-zero req.Threshold lets ReconstructSecret report
// ErrInsufficientShares. With a zero threshold any number of shares is
// interpolated, and a set below the real threshold yields a wrong key that
// fails as ErrAuthentication. Collection and Restore take the threshold from
// the key share blocks.
func ReconstructSecret(req ReconstructRequest) (*archive.Archive, error) {
	if req.Algorithm != protocol.AlgorithmAESGCM256 {
		return nil, fmt.Errorf("%w: %v", protocol.ErrUnsupportedAlgorithm, req.Algorithm)
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = 1
	}

	dek, err := combineDEK(req.KeyShares, threshold)
	if err != nil {
		return nil, err
	}
	defer clear(dek[:])

	var size int
	for _, c := range req.Chunks {
		size += len(c)
	}
	ciphertext := make([]byte, 0, size)
	for _, c := range req.Chunks {
		ciphertext = append(ciphertext, c...)
	}

	body, err := aeadDecrypt(dek, req.IV, ciphertext)
	if err != nil {
		return nil, err
	}

	return archive.Unpack(body)
}
