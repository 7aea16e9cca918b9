package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/crypto"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
)

func migrateOnlyConfig(t *testing.T) *config.ClientConfig {
	t.Helper()
	content := t.TempDir()
	return &config.ClientConfig{
		Storage: config.Storage{DB: config.DB{DSN: filepath.Join(content, ".lst-sync", "syncd.db")}},
		Sync: config.Sync{
			ContentDir:  content,
			KeyFile:     filepath.Join(t.TempDir(), "sync.key"),
			MigrateOnly: true,
		},
	}
}

// ── device id ────────────────────────────────────────────────────────────────

func TestResolveDeviceID(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewClientStorages(ctx, config.DB{DSN: filepath.Join(t.TempDir(), "syncd.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	id, err := resolveDeviceID(ctx, "laptop", s.Settings)
	require.NoError(t, err)
	assert.Equal(t, "laptop", id)

	_, err = s.Settings.GetSetting(ctx, deviceIDSetting)
	assert.ErrorIs(t, err, store.ErrSettingNotFound, "a configured id is not persisted")

	generated, err := resolveDeviceID(ctx, "", s.Settings)
	require.NoError(t, err)
	assert.NotEmpty(t, generated)

	again, err := resolveDeviceID(ctx, "", s.Settings)
	require.NoError(t, err)
	assert.Equal(t, generated, again)
}

// ── key ──────────────────────────────────────────────────────────────────────

func TestLoadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.key")

	created, err := loadKey(config.Sync{KeyFile: path})
	require.NoError(t, err)
	assert.Len(t, created, crypto.KeySize)

	loaded, err := loadKey(config.Sync{KeyFile: path})
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	derived, err := loadKey(config.Sync{Passphrase: "correct horse", KeySalt: "salt-salt-salt-1"})
	require.NoError(t, err)
	assert.Len(t, derived, crypto.KeySize)

	_, err = loadKey(config.Sync{Passphrase: "correct horse", KeySalt: "short"})
	assert.ErrorIs(t, err, crypto.ErrInvalidKey)
}

func TestLoadKey_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := loadKey(config.Sync{KeyFile: path})
	assert.Error(t, err)
}

// ── lifecycle ────────────────────────────────────────────────────────────────

func TestApp_MigrateOnly(t *testing.T) {
	cfg := migrateOnlyConfig(t)

	app, err := NewApp(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Sync.DeviceID)

	require.NoError(t, app.Run(context.Background()))
	assert.FileExists(t, cfg.Storage.DB.DSN)
}

func TestApp_DeviceIDSurvivesRestart(t *testing.T) {
	cfg := migrateOnlyConfig(t)

	first, err := NewApp(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Run(context.Background()))
	id := cfg.Sync.DeviceID

	cfg.Sync.DeviceID = ""
	second, err := NewApp(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, second.Run(context.Background()))
	assert.Equal(t, id, cfg.Sync.DeviceID)
}

func TestNewApp_RejectsMalformedToken(t *testing.T) {
	cfg := migrateOnlyConfig(t)
	cfg.Sync.MigrateOnly = false
	cfg.Adapter.AuthToken = "not-a-jwt"
	cfg.Adapter.RelayURL = "ws://127.0.0.1:5673/api/ws"

	_, err := NewApp(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}
