// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// relay and the sync daemon. It is populated by merging values from
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token parameters and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the database connection settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the relay listener, timeouts and fan-out limits.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the daemon's relay endpoints and credential.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds the daemon's content, key and replication settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for the storage backend.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is a PostgreSQL connection string on the relay and a SQLite file
	// path on the daemon.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// App holds token lifecycle and versioning settings.
type App struct {
	// TokenSignKey is the secret key used to sign and verify bearer tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long an issued token remains valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is exposed via GET /api/version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// IssueTokenFor makes the relay print a token for this identity and exit.
	// Flag: -issue-token
	IssueTokenFor string `env:"ISSUE_TOKEN_FOR"`
}

// Server holds relay listener and limit settings.
type Server struct {
	// HTTPAddress is the TCP address the relay listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the optional gRPC sync transport.
	// Empty disables it.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds a single REST request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthTimeout bounds the wait for the Authenticate frame of a new
	// connection.
	// Env: SERVER_AUTH_TIMEOUT
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT"`

	// CompactionThreshold is the change log length above which the relay
	// asks the pushing device for a snapshot.
	// Env: SERVER_COMPACTION_THRESHOLD
	CompactionThreshold int64 `env:"COMPACTION_THRESHOLD"`

	// SendBuffer is the number of outgoing frames queued per connection
	// before a slow connection is dropped.
	// Env: SERVER_SEND_BUFFER
	SendBuffer int `env:"SEND_BUFFER"`
}

// Adapter holds the daemon's relay connection settings.
type Adapter struct {
	// RelayURL is the websocket endpoint, e.g. ws://relay:5673/api/ws.
	// Env: ADAPTER_RELAY_URL
	RelayURL string `env:"RELAY_URL"`

	// HTTPAddress is the REST base URL of the relay. Derived from RelayURL
	// when empty.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds REST calls and snapshot requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthToken is the bearer credential presented to the relay.
	// Env: ADAPTER_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`

	// AuthTimeout bounds the wait for Authenticated after connecting.
	// Env: ADAPTER_AUTH_TIMEOUT
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT"`
}

// Sync holds the daemon's replication settings.
type Sync struct {
	// ContentDir is the watched directory holding lists/ and notes/.
	ContentDir string `env:"CONTENT_DIR"`
	// DeviceID overrides the generated, persisted device id.
	DeviceID string `env:"DEVICE_ID"`
	// KeyFile holds the 32-byte document key, created when missing.
	KeyFile string `env:"KEY_FILE"`
	// Passphrase and KeySalt derive the key instead of KeyFile.
	Passphrase string `env:"PASSPHRASE"`
	KeySalt    string `env:"KEY_SALT"`

	// CompactionChanges and CompactionBytes trigger a snapshot push once the
	// local changes pushed since the last snapshot cross either bound.
	CompactionChanges int `env:"COMPACTION_CHANGES"`
	CompactionBytes   int `env:"COMPACTION_BYTES"`

	// CausalBufferLimit and CausalBufferMaxAge bound how many out-of-order
	// remote changes are held, and for how long, before a snapshot is
	// requested instead.
	CausalBufferLimit  int           `env:"CAUSAL_BUFFER_LIMIT"`
	CausalBufferMaxAge time.Duration `env:"CAUSAL_BUFFER_MAX_AGE"`

	// Debounce coalesces bursts of file events per path.
	Debounce time.Duration `env:"DEBOUNCE"`
	// MaxFileSize skips larger files.
	MaxFileSize int64 `env:"MAX_FILE_SIZE"`
	// MigrateOnly runs the legacy path migration and exits.
	MigrateOnly bool `env:"MIGRATE_ONLY"`
	// LogFile enables rotated file logging.
	LogFile string `env:"LOG_FILE"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the document list, outbox and ACL
	// refresh.
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources in the following priority order (last source wins for
// non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}
