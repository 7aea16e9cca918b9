package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/migrations"
)

// ClientStorages groups the daemon's repositories over one SQLite database.
type ClientStorages struct {
	Documents LocalDocumentRepository
	Settings  SettingsRepository

	db *DB
}

// NewClientStorages opens the local database, creating the file when it does
// not exist, and applies pending schema migrations.
func NewClientStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = migrations.MigrateClient(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Documents: NewLocalDocumentRepository(db, logger),
		Settings:  NewSettingsRepository(db, logger),
		db:        db,
	}, nil
}

// Close releases the database handle.
func (s *ClientStorages) Close() error {
	return s.db.Close()
}
