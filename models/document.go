// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// DocType is the kind of a synchronized document.
type DocType string

const (
	// DocTypeList is a checklist document stored under lists/.
	DocTypeList DocType = "list"
	// DocTypeNote is a free-text document.
	DocTypeNote DocType = "note"
)

// ParseDocType maps a stored value to a [DocType]. Unknown values are notes.
func ParseDocType(s string) DocType {
	if s == string(DocTypeList) {
		return DocTypeList
	}
	return DocTypeNote
}

// Document is one record of the local document store.
//
// State is the opaque replicated state owned by the store; it is only ever
// replaced through the converter or a merge, never edited in place.
type Document struct {
	DocID         string
	CanonicalPath string
	DocType       DocType
	ContentHash   string
	State         []byte
	ACL           ACL

	// SyncedSeq is the highest relay arrival sequence this device has applied.
	SyncedSeq int64
	// PendingChanges and PendingBytes count local changes pushed since the
	// last snapshot; they drive client-side compaction.
	PendingChanges int
	PendingBytes   int

	UpdatedAt time.Time
}

// ACL lists the identities that may see a document.
type ACL struct {
	Owner   string   `json:"owner"`
	Writers []string `json:"writers,omitempty"`
	Readers []string `json:"readers,omitempty"`
}

// OutboundChange is a queued local change that has not been acknowledged by
// the relay yet.
type OutboundChange struct {
	ID      int64
	DocID   string
	Payload []byte
}
