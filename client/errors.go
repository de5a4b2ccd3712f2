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

package client

import "errors"

var (
	// ErrInvalidShareConfig is returned when the share count or threshold is
	// outside [1, 255] or the threshold exceeds the share count.
	ErrInvalidShareConfig = errors.New("client: invalid share configuration")

	// ErrInsufficientShares is returned when fewer key shares than the threshold
	// are available. Collecting more shares resolves it.
	ErrInsufficientShares = errors.New("client: insufficient key shares")

	// ErrAuthentication is returned when the ciphertext fails authentication.
	// A wrong key, a tampered chunk and a wrong IV are indistinguishable.
	ErrAuthentication = errors.New("client: authentication failed")

	// ErrInconsistentShares is returned when key shares of one secret disagree
	// on their parameters or cannot be combined.
	ErrInconsistentShares = errors.New("client: inconsistent key shares")

	// ErrInconsistentChunks is returned when two payload chunks claim the same
	// index with different contents.
	ErrInconsistentChunks = errors.New("client: inconsistent payload chunks")
)
