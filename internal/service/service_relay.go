// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/models"
)

type relayService struct {
	documents   store.RelayDocumentRepository
	permissions store.PermissionRepository

	compactionThreshold int64

	logger *logger.Logger
}

// NewRelayService constructs the relay's [RelayService] over the document
// and permission repositories.
func NewRelayService(documents store.RelayDocumentRepository, permissions store.PermissionRepository, cfg config.Server, logger *logger.Logger) RelayService {
	return &relayService{
		documents:           documents,
		permissions:         permissions,
		compactionThreshold: cfg.CompactionThreshold,
		logger:              logger,
	}
}

func (s *relayService) PushChanges(ctx context.Context, identity, deviceID, docID string, changes [][]byte) (models.AppendResult, error) {
	result, err := s.documents.AppendChanges(ctx, identity, deviceID, docID, changes)
	if err != nil {
		return models.AppendResult{}, fmt.Errorf("error appending changes: %w", err)
	}

	if result.Created {
		logger.FromContext(ctx).Info().
			Str("func", "relayService.PushChanges").
			Str("doc_id", docID).
			Str("owner", identity).
			Msg("document created")
	}

	return result, nil
}

func (s *relayService) PushSnapshot(ctx context.Context, identity, docID string, snapshot []byte, coversSeq int64) error {
	if err := s.documents.SaveSnapshot(ctx, identity, docID, snapshot, coversSeq); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "relayService.PushSnapshot").
		Str("doc_id", docID).
		Int64("covers_seq", coversSeq).
		Msg("snapshot stored")
	return nil
}

func (s *relayService) Snapshot(ctx context.Context, identity, docID string) (models.StoredSnapshot, []models.StoredChange, error) {
	if err := s.require(ctx, identity, docID, models.PermissionReader); err != nil {
		return models.StoredSnapshot{}, nil, err
	}

	snap, err := s.documents.GetSnapshot(ctx, docID)
	if err != nil {
		return models.StoredSnapshot{}, nil, fmt.Errorf("error getting snapshot: %w", err)
	}

	changes, err := s.documents.ChangesAfter(ctx, docID, snap.Seq)
	if err != nil {
		return models.StoredSnapshot{}, nil, fmt.Errorf("error getting changes after snapshot: %w", err)
	}

	return snap, changes, nil
}

func (s *relayService) ChangesAfter(ctx context.Context, identity, docID string, after int64) ([]models.StoredChange, error) {
	if err := s.require(ctx, identity, docID, models.PermissionReader); err != nil {
		return nil, err
	}

	snap, err := s.documents.GetSnapshot(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("error getting snapshot: %w", err)
	}
	if after < snap.Seq {
		return nil, fmt.Errorf("%w: %s after %d, snapshot covers %d", ErrChangesTruncated, docID, after, snap.Seq)
	}

	changes, err := s.documents.ChangesAfter(ctx, docID, after)
	if err != nil {
		return nil, fmt.Errorf("error getting changes: %w", err)
	}

	return changes, nil
}

func (s *relayService) ListDocuments(ctx context.Context, identity string) ([]models.DocumentInfo, error) {
	docs, err := s.documents.ListDocuments(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}

	return docs, nil
}

func (s *relayService) CanRead(ctx context.Context, identity, docID string) (bool, error) {
	err := s.require(ctx, identity, docID, models.PermissionReader)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrPermissionDenied), errors.Is(err, store.ErrDocumentNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *relayService) NeedsCompaction(result models.AppendResult) bool {
	return s.compactionThreshold > 0 && result.LogLength > s.compactionThreshold
}

func (s *relayService) ListACL(ctx context.Context, identity, docID string) ([]models.DocumentPermission, error) {
	if err := s.require(ctx, identity, docID, models.PermissionReader); err != nil {
		return nil, err
	}

	return s.permissions.ListPermissions(ctx, docID)
}

func (s *relayService) Grant(ctx context.Context, identity, docID, target string, permission models.Permission) error {
	if err := s.require(ctx, identity, docID, models.PermissionOwner); err != nil {
		return err
	}

	if err := s.permissions.Grant(ctx, docID, target, permission); err != nil {
		return fmt.Errorf("error granting permission: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("func", "relayService.Grant").
		Str("doc_id", docID).
		Str("identity", target).
		Str("permission", string(permission)).
		Msg("permission granted")
	return nil
}

func (s *relayService) Revoke(ctx context.Context, identity, docID, target string) error {
	if err := s.require(ctx, identity, docID, models.PermissionOwner); err != nil {
		return err
	}

	if err := s.permissions.Revoke(ctx, docID, target); err != nil {
		return fmt.Errorf("error revoking permission: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("func", "relayService.Revoke").
		Str("doc_id", docID).
		Str("identity", target).
		Msg("permission revoked")
	return nil
}

// require fails with store.ErrPermissionDenied unless identity holds at
// least the required permission on the document.
func (s *relayService) require(ctx context.Context, identity, docID string, required models.Permission) error {
	perm, err := s.permissions.Permission(ctx, docID, identity)
	if err != nil {
		return err
	}
	if !perm.Allows(required) {
		return fmt.Errorf("%w: %s holds %q, needs %q", store.ErrPermissionDenied, identity, perm, required)
	}
	return nil
}
