package store

import (
	"context"

	"github.com/MKhiriev/go-lst-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalDocumentRepository is the daemon's document store. It owns the
// persisted replica state of every document and the queue of local changes
// the relay has not acknowledged yet.
type LocalDocumentRepository interface {
	Get(ctx context.Context, docID string) (models.Document, error)
	// GetByPath looks a document up by canonical path. During the transition
	// from absolute paths it also matches a legacy record stored under
	// root joined with the canonical path.
	GetByPath(ctx context.Context, root, canonicalPath string) (models.Document, error)
	List(ctx context.Context) ([]models.Document, error)

	// Create inserts a document together with the local changes that
	// produced its state.
	Create(ctx context.Context, doc models.Document, changes ...[]byte) error
	// SaveLocalChange stores the new state and hash of a document together
	// with the changes that produced it, so a crash never loses a change
	// that is already reflected in the state.
	SaveLocalChange(ctx context.Context, doc models.Document, changes ...[]byte) error
	// SaveState stores state, hash and path after a remote change or merge.
	SaveState(ctx context.Context, doc models.Document) error
	SetSyncedSeq(ctx context.Context, docID string, seq int64) error
	UpdatePath(ctx context.Context, docID, canonicalPath string) error
	UpdateACL(ctx context.Context, docID string, acl models.ACL) error
	ResetPending(ctx context.Context, docID string) error
	// ReplaceDuplicate stores the merged survivor and removes the duplicate
	// record with its queued changes in one transaction. The survivor's
	// pending counters never decrease and the duplicate's id keeps pointing
	// at the survivor.
	ReplaceDuplicate(ctx context.Context, survivor models.Document, duplicateID string) error
	// MergedInto returns the survivor a duplicate was merged into, or
	// ErrDocumentNotFound for ids that were never merged away.
	MergedInto(ctx context.Context, docID string) (string, error)

	PendingChanges(ctx context.Context, docID string) ([]models.OutboundChange, error)
	PendingDocuments(ctx context.Context) ([]string, error)
	AckChanges(ctx context.Context, ids ...int64) error
}

// SettingsRepository keeps small per-device values such as the device id.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
