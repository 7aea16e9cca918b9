package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Daemon defaults applied to zero-valued settings.
const (
	DefaultRelayPort          = 5673
	DefaultDebounce           = 200 * time.Millisecond
	DefaultSyncInterval       = 30 * time.Second
	DefaultCompactionChanges  = 100
	DefaultCompactionBytes    = 256 << 10
	DefaultCausalBufferLimit  = 64
	DefaultCausalBufferMaxAge = 2 * time.Minute
	DefaultAuthTimeout        = 10 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
	DefaultMaxFileSize        = 10 << 20
	DefaultKeyFile            = "~/.config/lst-sync/sync.key"

	// stateDir holds the daemon database inside the content directory. Hidden
	// directories are ignored by the watcher.
	stateDir = ".lst-sync"
)

// ClientConfig is the sync daemon configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains the application version.
	App App
	// Adapter contains relay endpoints, timeouts and the bearer token.
	Adapter Adapter
	// Storage contains the local SQLite settings.
	Storage Storage
	// Sync contains content, key and replication settings.
	Sync Sync
	// Workers contains background job settings.
	Workers Workers
}

// GetClientConfig builds and validates the daemon config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		App:     App{Version: cfg.App.Version},
		Adapter: cfg.Adapter,
		Storage: cfg.Storage,
		Sync:    cfg.Sync,
		Workers: cfg.Workers,
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Sync.ContentDir != "" {
		cfg.Sync.ContentDir = ExpandHome(cfg.Sync.ContentDir)
		// paths are canonicalized against the root, so it must not depend on
		// the working directory
		if abs, err := filepath.Abs(cfg.Sync.ContentDir); err == nil {
			cfg.Sync.ContentDir = abs
		}
		if cfg.Storage.DB.DSN == "" {
			cfg.Storage.DB.DSN = filepath.Join(cfg.Sync.ContentDir, stateDir, "syncd.db")
		}
	}
	if cfg.Sync.KeyFile == "" && cfg.Sync.Passphrase == "" {
		cfg.Sync.KeyFile = DefaultKeyFile
	}
	if cfg.Sync.KeyFile != "" {
		cfg.Sync.KeyFile = ExpandHome(cfg.Sync.KeyFile)
	}
	if cfg.Adapter.HTTPAddress == "" {
		cfg.Adapter.HTTPAddress = httpBaseFromRelayURL(cfg.Adapter.RelayURL)
	}

	setDefault(&cfg.Adapter.RequestTimeout, DefaultRequestTimeout)
	setDefault(&cfg.Adapter.AuthTimeout, DefaultAuthTimeout)
	setDefault(&cfg.Sync.CompactionChanges, DefaultCompactionChanges)
	setDefault(&cfg.Sync.CompactionBytes, DefaultCompactionBytes)
	setDefault(&cfg.Sync.CausalBufferLimit, DefaultCausalBufferLimit)
	setDefault(&cfg.Sync.CausalBufferMaxAge, DefaultCausalBufferMaxAge)
	setDefault(&cfg.Sync.Debounce, DefaultDebounce)
	setDefault(&cfg.Sync.MaxFileSize, DefaultMaxFileSize)
	setDefault(&cfg.Workers.SyncInterval, DefaultSyncInterval)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// httpBaseFromRelayURL turns ws://host:port/api/ws into http://host:port.
func httpBaseFromRelayURL(relayURL string) string {
	u, err := url.Parse(relayURL)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "wss", "https":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	return u.Scheme + "://" + u.Host
}

func setDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}
