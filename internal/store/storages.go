package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/migrations"
)

// Storages groups the relay repositories over one Postgres database.
type Storages struct {
	Documents   RelayDocumentRepository
	Permissions PermissionRepository

	db *DB
}

// NewStorages connects to Postgres and applies pending schema migrations.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = migrations.MigrateRelay(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	repo := NewRelayDocumentRepository(db, logger)
	return &Storages{
		Documents:   repo,
		Permissions: repo,
		db:          db,
	}, nil
}

// Close releases the database handle.
func (s *Storages) Close() error {
	return s.db.Close()
}
