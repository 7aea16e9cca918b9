// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// MessageType discriminates relay protocol frames.
type MessageType string

// Client to relay.
const (
	MsgAuthenticate        MessageType = "authenticate"
	MsgRequestDocumentList MessageType = "request_document_list"
	MsgRequestSnapshot     MessageType = "request_snapshot"
	MsgRequestChanges      MessageType = "request_changes"
	MsgPushChanges         MessageType = "push_changes"
	MsgPushSnapshot        MessageType = "push_snapshot"
)

// Relay to client.
const (
	MsgAuthenticated     MessageType = "authenticated"
	MsgAuthFailed        MessageType = "auth_failed"
	MsgDocumentList      MessageType = "document_list"
	MsgSnapshot          MessageType = "snapshot"
	MsgNewChanges        MessageType = "new_changes"
	MsgRequestCompaction MessageType = "request_compaction"
	MsgAck               MessageType = "ack"
	MsgError             MessageType = "error"
)

// Message is a single JSON text frame exchanged with the relay. Only the
// fields relevant to Type are set. Changes and Snapshot hold encrypted bytes;
// identifiers and sequence numbers stay in clear text for routing.
type Message struct {
	Type MessageType `json:"type"`

	Token    string `json:"token,omitempty"`
	DocID    string `json:"doc_id,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	PushID   string `json:"push_id,omitempty"`

	Changes  [][]byte `json:"changes,omitempty"`
	Snapshot []byte   `json:"snapshot,omitempty"`

	// Seq is the arrival sequence of the last change a frame refers to.
	Seq int64 `json:"seq,omitempty"`
	// After is the last arrival sequence the client already holds. On
	// NewChanges and Ack frames it is the sequence the carried changes
	// directly follow.
	After int64 `json:"after,omitempty"`
	// CoversSeq is the arrival sequence a pushed snapshot includes.
	CoversSeq int64 `json:"covers_seq,omitempty"`

	Documents []DocumentInfo `json:"documents,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// DocumentInfo describes a relay document in a DocumentList frame.
type DocumentInfo struct {
	DocID       string `json:"doc_id"`
	LatestSeq   int64  `json:"latest_seq"`
	SnapshotSeq int64  `json:"snapshot_seq"`
}
