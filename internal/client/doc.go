// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync daemon runtime.
//
// It opens the local database, resolves the device id and the document key,
// and runs the content watcher, the relay session and the periodic refresh
// as one process lifecycle.
package client
