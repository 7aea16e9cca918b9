package service

import (
	"context"
	"time"
)

// RemoteResult reports what happened to a batch of remote changes.
type RemoteResult struct {
	// Applied is the number of changes merged into the replica, buffered
	// changes that became ready included.
	Applied int
	// Buffered is the number of changes still waiting for missing
	// dependencies.
	Buffered int
	// NeedSnapshot is set when the buffer overflowed or expired and was
	// dropped, or when the stored state is unusable.
	NeedSnapshot bool
}

// DocumentService is the daemon's local document store front: it turns file
// events into queued changes and remote changes and snapshots into files.
// All operations on one document are serialized.
type DocumentService interface {
	// ApplyLocalFile ingests the current content of a file under the content
	// root. Unchanged, ignored and oversized files are skipped.
	ApplyLocalFile(ctx context.Context, absPath string) error
	// ApplyLocalRemove records the removal of a document file.
	ApplyLocalRemove(ctx context.Context, absPath string) error

	// ApplyRemoteChanges merges decrypted remote changes that arrived with
	// relay sequence seq.
	ApplyRemoteChanges(ctx context.Context, docID string, changes [][]byte, seq int64) (RemoteResult, error)
	// ApplySnapshot merges a decrypted remote snapshot covering seq.
	ApplySnapshot(ctx context.Context, docID string, snapshot []byte, seq int64) error
	// Snapshot returns the full state of a document and the relay sequence
	// it covers.
	Snapshot(ctx context.Context, docID string) ([]byte, int64, error)

	// MigrateLegacyPaths rewrites absolute stored paths to canonical form,
	// merging documents that turn out to share a path. It returns the number
	// of migrated records.
	MigrateLegacyPaths(ctx context.Context) (int, error)
	// Reconcile ingests every file under the content root and records
	// removals of files deleted while the daemon was not running.
	Reconcile(ctx context.Context) error

	// LocalChanges signals that new local changes were queued.
	LocalChanges() <-chan struct{}
}

// SyncService keeps the relay connection and moves changes both ways.
type SyncService interface {
	// Run connects and reconnects until ctx is done. A rejected credential
	// stops reconnecting; Run then waits for ctx.
	Run(ctx context.Context) error
	// State returns the current connection state.
	State() SyncState
	// Refresh asks for the document list and flushes the outbox on the
	// current connection.
	Refresh()
}

// WatchService feeds file system changes into the DocumentService.
type WatchService interface {
	// Run reconciles the content root, then processes file events until ctx
	// is done.
	Run(ctx context.Context) error
}

// ACLService mirrors relay permissions into the local store.
type ACLService interface {
	RefreshACLs(ctx context.Context) error
}

// ClientSyncJob runs the periodic sync.
type ClientSyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}
