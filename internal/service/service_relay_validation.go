package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-lst-sync/models"
)

// maxPayloadSize bounds one encrypted change or snapshot accepted by the
// relay.
const maxPayloadSize = 16 << 20

// RelayValidationService rejects malformed requests before they reach the
// wrapped RelayService.
type RelayValidationService struct {
	inner RelayService
}

func NewRelayValidationService() RelayServiceWrapper {
	return &RelayValidationService{}
}

func (v *RelayValidationService) Wrap(inner RelayService) RelayService {
	v.inner = inner
	return v
}

func (v *RelayValidationService) PushChanges(ctx context.Context, identity, deviceID, docID string, changes [][]byte) (models.AppendResult, error) {
	if err := validateTarget(identity, docID); err != nil {
		return models.AppendResult{}, err
	}
	if len(changes) == 0 {
		return models.AppendResult{}, ErrValidationNoChanges
	}
	for i, ch := range changes {
		if len(ch) == 0 {
			return models.AppendResult{}, fmt.Errorf("%w: change %d is empty", ErrValidationNoChanges, i)
		}
		if len(ch) > maxPayloadSize {
			return models.AppendResult{}, fmt.Errorf("%w: change %d", ErrValidationPayloadTooLarge, i)
		}
	}

	return v.inner.PushChanges(ctx, identity, deviceID, docID, changes)
}

func (v *RelayValidationService) PushSnapshot(ctx context.Context, identity, docID string, snapshot []byte, coversSeq int64) error {
	if err := validateTarget(identity, docID); err != nil {
		return err
	}
	if len(snapshot) == 0 {
		return ErrValidationNoSnapshot
	}
	if len(snapshot) > maxPayloadSize {
		return ErrValidationPayloadTooLarge
	}
	if coversSeq < 0 {
		return ErrValidationNegativeSeq
	}

	return v.inner.PushSnapshot(ctx, identity, docID, snapshot, coversSeq)
}

func (v *RelayValidationService) Snapshot(ctx context.Context, identity, docID string) (models.StoredSnapshot, []models.StoredChange, error) {
	if err := validateTarget(identity, docID); err != nil {
		return models.StoredSnapshot{}, nil, err
	}

	return v.inner.Snapshot(ctx, identity, docID)
}

func (v *RelayValidationService) ChangesAfter(ctx context.Context, identity, docID string, after int64) ([]models.StoredChange, error) {
	if err := validateTarget(identity, docID); err != nil {
		return nil, err
	}
	if after < 0 {
		return nil, ErrValidationNegativeSeq
	}

	return v.inner.ChangesAfter(ctx, identity, docID, after)
}

func (v *RelayValidationService) ListDocuments(ctx context.Context, identity string) ([]models.DocumentInfo, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, ErrValidationNoIdentity
	}

	return v.inner.ListDocuments(ctx, identity)
}

func (v *RelayValidationService) CanRead(ctx context.Context, identity, docID string) (bool, error) {
	if err := validateTarget(identity, docID); err != nil {
		return false, err
	}

	return v.inner.CanRead(ctx, identity, docID)
}

func (v *RelayValidationService) NeedsCompaction(result models.AppendResult) bool {
	return v.inner.NeedsCompaction(result)
}

func (v *RelayValidationService) ListACL(ctx context.Context, identity, docID string) ([]models.DocumentPermission, error) {
	if err := validateTarget(identity, docID); err != nil {
		return nil, err
	}

	return v.inner.ListACL(ctx, identity, docID)
}

func (v *RelayValidationService) Grant(ctx context.Context, identity, docID, target string, permission models.Permission) error {
	if err := validateTarget(identity, docID); err != nil {
		return err
	}
	if strings.TrimSpace(target) == "" {
		return ErrValidationNoIdentity
	}
	if !permission.Valid() {
		return fmt.Errorf("%w: %q", ErrValidationBadPermission, permission)
	}
	// ownership never moves
	if permission == models.PermissionOwner {
		return ErrValidationGrantOwner
	}

	return v.inner.Grant(ctx, identity, docID, target, permission)
}

func (v *RelayValidationService) Revoke(ctx context.Context, identity, docID, target string) error {
	if err := validateTarget(identity, docID); err != nil {
		return err
	}
	if strings.TrimSpace(target) == "" {
		return ErrValidationNoIdentity
	}

	return v.inner.Revoke(ctx, identity, docID, target)
}

func validateTarget(identity, docID string) error {
	if strings.TrimSpace(identity) == "" {
		return ErrValidationNoIdentity
	}
	if strings.TrimSpace(docID) == "" {
		return ErrValidationNoDocID
	}
	return nil
}
