package service

import (
	"context"

	"github.com/MKhiriev/go-lst-sync/models"
)

// RelayService is the relay's document log. It stores and returns encrypted
// payloads without looking inside them and enforces document permissions.
type RelayService interface {
	// PushChanges appends changes to a document log. The first push of an
	// unknown document makes identity its owner.
	PushChanges(ctx context.Context, identity, deviceID, docID string, changes [][]byte) (models.AppendResult, error)
	// PushSnapshot replaces the stored snapshot of a document and drops the
	// changes it covers.
	PushSnapshot(ctx context.Context, identity, docID string, snapshot []byte, coversSeq int64) error
	// Snapshot returns the stored snapshot and every change that arrived
	// after it.
	Snapshot(ctx context.Context, identity, docID string) (models.StoredSnapshot, []models.StoredChange, error)
	// ChangesAfter returns the changes that arrived after the given sequence.
	ChangesAfter(ctx context.Context, identity, docID string, after int64) ([]models.StoredChange, error)
	// ListDocuments returns every document identity can read.
	ListDocuments(ctx context.Context, identity string) ([]models.DocumentInfo, error)
	// CanRead reports whether identity may receive a document's payloads.
	CanRead(ctx context.Context, identity, docID string) (bool, error)
	// NeedsCompaction reports whether the log after an append is long enough
	// to ask the pushing device for a snapshot.
	NeedsCompaction(result models.AppendResult) bool

	// ListACL returns the permissions of a document. Any reader may list.
	ListACL(ctx context.Context, identity, docID string) ([]models.DocumentPermission, error)
	// Grant gives target a permission on the document. Owner only.
	Grant(ctx context.Context, identity, docID, target string, permission models.Permission) error
	// Revoke removes target's permission. Owner only.
	Revoke(ctx context.Context, identity, docID, target string) error
}

// AuthService issues and validates the bearer tokens devices present to the
// relay.
type AuthService interface {
	CreateToken(ctx context.Context, identity string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService exposes build information.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// RelayServiceWrapper decorates a RelayService with additional behavior such
// as input validation.
type RelayServiceWrapper interface {
	Wrap(RelayService) RelayService
}
