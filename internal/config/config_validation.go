// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

func (cfg *ClientConfig) validate() error {
	if cfg.Sync.ContentDir == "" {
		return fmt.Errorf("%w: content directory is required", ErrInvalidSyncConfigs)
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.KeyFile == "" && (cfg.Sync.Passphrase == "" || cfg.Sync.KeySalt == "") {
		return fmt.Errorf("%w: key file or passphrase with salt is required", ErrInvalidSyncConfigs)
	}

	// migration runs offline
	if cfg.Sync.MigrateOnly {
		return nil
	}

	if cfg.Adapter.RelayURL == "" || cfg.Adapter.HTTPAddress == "" || cfg.Adapter.AuthToken == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *RelayConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required", ErrInvalidAppConfigs)
	}

	if cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: token duration must be positive", ErrInvalidAppConfigs)
	}

	if cfg.Server.SendBuffer < 1 || cfg.Server.CompactionThreshold < 1 {
		return ErrInvalidServerConfigs
	}

	return nil
}
