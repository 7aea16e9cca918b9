package store

import (
	"context"

	"github.com/MKhiriev/go-lst-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/relay_store_mock.go -package=mock

// RelayDocumentRepository persists encrypted changes and snapshots. It never
// looks inside a payload.
type RelayDocumentRepository interface {
	// AppendChanges adds changes to the document log in arrival order. The
	// first push of an unknown document creates it with identity as owner;
	// later pushes need writer access.
	AppendChanges(ctx context.Context, identity, deviceID, docID string, changes [][]byte) (models.AppendResult, error)
	ChangesAfter(ctx context.Context, docID string, after int64) ([]models.StoredChange, error)
	GetSnapshot(ctx context.Context, docID string) (models.StoredSnapshot, error)
	// SaveSnapshot replaces the stored snapshot when coversSeq is not older
	// than it and drops the changes the new snapshot covers.
	SaveSnapshot(ctx context.Context, identity, docID string, snapshot []byte, coversSeq int64) error
	ListDocuments(ctx context.Context, identity string) ([]models.DocumentInfo, error)
}

// PermissionRepository manages document ACLs on the relay.
type PermissionRepository interface {
	Permission(ctx context.Context, docID, identity string) (models.Permission, error)
	ListPermissions(ctx context.Context, docID string) ([]models.DocumentPermission, error)
	Grant(ctx context.Context, docID, identity string, permission models.Permission) error
	Revoke(ctx context.Context, docID, identity string) error
}
