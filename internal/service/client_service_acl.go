package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/adapter"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/models"
)

type aclService struct {
	documents store.LocalDocumentRepository
	client    adapter.ACLClient
	logger    *logger.Logger
}

// NewACLService creates an [ACLService] that copies relay permissions into
// the local store.
func NewACLService(documents store.LocalDocumentRepository, client adapter.ACLClient, logger *logger.Logger) ACLService {
	return &aclService{documents: documents, client: client, logger: logger}
}

// RefreshACLs updates the ACL of every local document. Documents the relay
// does not know yet or no longer shares are skipped.
func (a *aclService) RefreshACLs(ctx context.Context) error {
	docs, err := a.documents.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing documents: %w", err)
	}

	updated := 0
	for _, doc := range docs {
		rows, err := a.client.GetACL(ctx, doc.DocID)
		if errors.Is(err, adapter.ErrNotFound) || errors.Is(err, adapter.ErrForbidden) {
			continue
		}
		if err != nil {
			return fmt.Errorf("error fetching ACL of %s: %w", doc.DocID, err)
		}

		acl := aclFromPermissions(rows)
		if err = a.documents.UpdateACL(ctx, doc.DocID, acl); err != nil {
			return fmt.Errorf("error saving ACL of %s: %w", doc.DocID, err)
		}
		updated++
	}

	a.logger.Debug().Str("func", "aclService.RefreshACLs").Int("updated", updated).Msg("permissions refreshed")
	return nil
}

func aclFromPermissions(rows []models.DocumentPermission) models.ACL {
	var acl models.ACL
	for _, row := range rows {
		switch row.Permission {
		case models.PermissionOwner:
			acl.Owner = row.Identity
		case models.PermissionWriter:
			acl.Writers = append(acl.Writers, row.Identity)
		case models.PermissionReader:
			acl.Readers = append(acl.Readers, row.Identity)
		}
	}
	return acl
}
