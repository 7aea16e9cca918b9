package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/adapter"
	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/crypto"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/service"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/internal/workers"
)

// deviceIDSetting is the settings key of the persisted device id.
const deviceIDSetting = "device_id"

// App is the sync daemon: it owns the local database and runs the watcher,
// the relay session and the periodic refresh until its context ends.
type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	services *service.ClientServices
	logger   *logger.Logger
}

// NewApp opens the local database, resolves the device identity and the
// document key, and wires the client services.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating local storage: %w", err)
	}

	app, err := newApp(ctx, cfg, storages, logger)
	if err != nil {
		_ = storages.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.ClientConfig, storages *store.ClientStorages, logger *logger.Logger) (*App, error) {
	deviceID, err := resolveDeviceID(ctx, cfg.Sync.DeviceID, storages.Settings)
	if err != nil {
		return nil, err
	}
	cfg.Sync.DeviceID = deviceID

	key, err := loadKey(cfg.Sync)
	if err != nil {
		return nil, err
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("error creating cipher: %w", err)
	}

	var (
		owner     string
		dialer    adapter.RelayDialer
		aclClient adapter.ACLClient
	)
	if !cfg.Sync.MigrateOnly {
		owner, err = utils.ParseIdentityFromJWT(cfg.Adapter.AuthToken)
		if err != nil {
			return nil, fmt.Errorf("error reading identity from auth token: %w", err)
		}
		dialer, err = adapter.NewRelayDialer(cfg.Adapter.RelayURL, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating relay dialer: %w", err)
		}
		aclClient, err = adapter.NewACLClient(cfg.Adapter.HTTPAddress, cfg.Adapter.AuthToken, cfg.Adapter.RequestTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating permission client: %w", err)
		}
	}

	logger.Info().
		Str("func", "client.NewApp").
		Str("device_id", deviceID).
		Str("owner", owner).
		Str("content_dir", cfg.Sync.ContentDir).
		Msg("sync daemon configured")

	identity := service.ClientIdentity{DeviceID: deviceID, Owner: owner}
	return &App{
		cfg:      cfg,
		storages: storages,
		services: service.NewClientServices(storages, dialer, aclClient, cipher, cfg, identity, logger),
		logger:   logger,
	}, nil
}

// Run migrates legacy paths, then runs the daemon until ctx is cancelled or
// a worker fails. The local database is closed on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.storages.Close(); err != nil {
			a.logger.Err(err).Str("func", "App.Run").Msg("error closing local storage")
		}
	}()

	ctx = a.logger.WithContext(ctx)

	migrated, err := a.services.Documents.MigrateLegacyPaths(ctx)
	if err != nil {
		return fmt.Errorf("error migrating legacy paths: %w", err)
	}
	if a.cfg.Sync.MigrateOnly {
		a.logger.Info().Str("func", "App.Run").Int("migrated", migrated).Msg("migration finished, exiting")
		return nil
	}

	return workers.New(
		workers.Named{Name: "watch", Worker: workers.Func(a.services.Watch.Run)},
		workers.Named{Name: "sync", Worker: workers.Func(a.services.Sync.Run)},
		workers.Named{Name: "refresh", Worker: workers.Func(a.runSyncJob)},
	).Run(ctx)
}

func (a *App) runSyncJob(ctx context.Context) error {
	a.services.SyncJob.Start(ctx, a.cfg.Workers.SyncInterval)
	<-ctx.Done()
	a.services.SyncJob.Stop()
	return nil
}

// resolveDeviceID prefers the configured id, then the persisted one, and
// generates and persists a new id on first start.
func resolveDeviceID(ctx context.Context, configured string, settings store.SettingsRepository) (string, error) {
	if configured != "" {
		return configured, nil
	}

	id, err := settings.GetSetting(ctx, deviceIDSetting)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, store.ErrSettingNotFound) {
		return "", fmt.Errorf("error reading device id: %w", err)
	}

	id = utils.NewUUIDGenerator().Generate()
	if err = settings.SetSetting(ctx, deviceIDSetting, id); err != nil {
		return "", fmt.Errorf("error persisting device id: %w", err)
	}
	return id, nil
}

func loadKey(cfg config.Sync) ([]byte, error) {
	if cfg.KeyFile != "" {
		key, err := crypto.LoadOrCreateKey(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("error loading key file: %w", err)
		}
		return key, nil
	}
	if len(cfg.KeySalt) < crypto.SaltSize {
		return nil, fmt.Errorf("%w: key salt must be at least %d bytes", crypto.ErrInvalidKey, crypto.SaltSize)
	}
	return crypto.DeriveKey(cfg.Passphrase, []byte(cfg.KeySalt)), nil
}
