package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
)

type settingsRepository struct {
	*DB
	logger *logger.Logger
}

func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	return &settingsRepository{
		DB:     db,
		logger: logger,
	}
}

func (s *settingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, getDeviceSetting, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "settingsRepository.GetSetting").Str("key", key).Msg("failed to read device setting")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return value, nil
}

func (s *settingsRepository) SetSetting(ctx context.Context, key, value string) error {
	if _, err := s.DB.ExecContext(ctx, upsertDeviceSetting, key, value); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "settingsRepository.SetSetting").Str("key", key).Msg("failed to write device setting")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
