// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "errors"

// Sync engine error taxonomy. Every layer wraps one of these so callers can
// decide on recovery with errors.Is.
var (
	// ErrStoreCorruption means persisted state could not be decoded. The
	// document stays unusable until it is re-bootstrapped from a snapshot.
	ErrStoreCorruption = errors.New("store corruption")

	// ErrAuthenticationFailure means a payload failed to decrypt or the relay
	// rejected the credential. Never retried with the same key or credential.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrCausalGap means a remote change depends on changes not present
	// locally. Recoverable by requesting a snapshot.
	ErrCausalGap = errors.New("causal gap")

	// ErrTransientNetwork means the relay connection dropped. Always retried
	// with backoff; queued changes are kept.
	ErrTransientNetwork = errors.New("transient network error")

	// ErrConversion means a file cannot be parsed into its document structure.
	// The file is left untouched and nothing is merged.
	ErrConversion = errors.New("conversion error")
)
