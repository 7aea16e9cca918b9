package config

import (
	"fmt"
	"strconv"
	"time"
)

// Relay defaults applied to zero-valued settings.
const (
	DefaultTokenIssuer         = "lst-relay"
	DefaultTokenDuration       = 30 * 24 * time.Hour
	DefaultCompactionThreshold = 500
	DefaultSendBuffer          = 256
)

// RelayConfig is the relay server configuration assembled from
// [StructuredConfig].
type RelayConfig struct {
	App     App
	Server  Server
	Storage Storage
}

// GetRelayConfig builds and validates the relay config view from the merged
// structured configuration.
func GetRelayConfig() (*RelayConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newRelayConfig(cfg)
}

func newRelayConfig(cfg *StructuredConfig) (*RelayConfig, error) {
	relayCfg := &RelayConfig{
		App:     cfg.App,
		Server:  cfg.Server,
		Storage: cfg.Storage,
	}

	setDefault(&relayCfg.Server.HTTPAddress, ":"+strconv.Itoa(DefaultRelayPort))
	setDefault(&relayCfg.Server.RequestTimeout, DefaultRequestTimeout)
	setDefault(&relayCfg.Server.AuthTimeout, DefaultAuthTimeout)
	setDefault(&relayCfg.Server.CompactionThreshold, int64(DefaultCompactionThreshold))
	setDefault(&relayCfg.Server.SendBuffer, DefaultSendBuffer)
	setDefault(&relayCfg.App.TokenIssuer, DefaultTokenIssuer)
	setDefault(&relayCfg.App.TokenDuration, DefaultTokenDuration)

	return relayCfg, relayCfg.validate()
}
