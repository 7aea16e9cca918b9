// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	documentColumns = `
			doc_id,
			canonical_path,
			doc_type,
			content_hash,
			crdt_state,
			owner,
			writers,
			readers,
			synced_seq,
			pending_changes,
			pending_bytes,
			updated_at`

	getDocumentByID = `
		SELECT` + documentColumns + `
		FROM documents
		WHERE doc_id = ?;`

	getDocumentByPath = `
		SELECT` + documentColumns + `
		FROM documents
		WHERE canonical_path = ?;`

	getAllDocuments = `
		SELECT` + documentColumns + `
		FROM documents
		ORDER BY canonical_path;`

	insertDocument = `
		INSERT INTO documents (` + documentColumns + `
		) VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	updateDocumentState = `
		UPDATE documents
		SET canonical_path = NULLIF(?, ''), content_hash = ?, crdt_state = ?, updated_at = ?
		WHERE doc_id = ?;`

	updateDocumentLocalChange = `
		UPDATE documents
		SET canonical_path = NULLIF(?, ''),
			content_hash = ?,
			crdt_state = ?,
			pending_changes = pending_changes + ?,
			pending_bytes = pending_bytes + ?,
			updated_at = ?
		WHERE doc_id = ?;`

	updateDocumentMerged = `
		UPDATE documents
		SET canonical_path = NULLIF(?, ''),
			content_hash = ?,
			crdt_state = ?,
			pending_changes = MAX(pending_changes, ?),
			pending_bytes = MAX(pending_bytes, ?),
			updated_at = ?
		WHERE doc_id = ?;`

	updateDocumentSyncedSeq = `
		UPDATE documents
		SET synced_seq = MAX(synced_seq, ?)
		WHERE doc_id = ?;`

	updateDocumentPath = `
		UPDATE documents
		SET canonical_path = NULLIF(?, ''), updated_at = ?
		WHERE doc_id = ?;`

	updateDocumentACL = `
		UPDATE documents
		SET owner = ?, writers = ?, readers = ?
		WHERE doc_id = ?;`

	resetDocumentPending = `
		UPDATE documents
		SET pending_changes = 0, pending_bytes = 0
		WHERE doc_id = ?;`

	deleteDocument = `
		DELETE FROM documents
		WHERE doc_id = ?;`

	insertMergedDocument = `
		INSERT INTO merged_documents (doc_id, survivor_id, merged_at)
		VALUES (?, ?, ?)
		ON CONFLICT (doc_id) DO UPDATE SET survivor_id = excluded.survivor_id;`

	getMergedDocument = `
		SELECT survivor_id
		FROM merged_documents
		WHERE doc_id = ?;`

	insertOutboundChange = `
		INSERT INTO outbound_changes (doc_id, payload, created_at)
		VALUES (?, ?, ?);`

	getPendingChanges = `
		SELECT id, doc_id, payload
		FROM outbound_changes
		WHERE doc_id = ?
		ORDER BY id;`

	getPendingDocuments = `
		SELECT DISTINCT doc_id
		FROM outbound_changes
		ORDER BY doc_id;`

	deleteOutboundChange = `
		DELETE FROM outbound_changes
		WHERE id = ?;`

	deleteOutboundChanges = `
		DELETE FROM outbound_changes
		WHERE doc_id = ?;`

	getDeviceSetting = `
		SELECT value
		FROM device_settings
		WHERE key = ?;`

	upsertDeviceSetting = `
		INSERT INTO device_settings (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)
