package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON decoding.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		Version       string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress         string   `json:"http_address"`
		GRPCAddress         string   `json:"grpc_address"`
		RequestTimeout      Duration `json:"request_timeout"`
		AuthTimeout         Duration `json:"auth_timeout"`
		CompactionThreshold int64    `json:"compaction_threshold"`
		SendBuffer          int      `json:"send_buffer"`
	} `json:"server,omitempty"`

	Adapter struct {
		RelayURL       string   `json:"relay_url"`
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		AuthToken      string   `json:"auth_token"`
		AuthTimeout    Duration `json:"auth_timeout"`
	} `json:"adapter,omitempty"`

	Sync struct {
		ContentDir         string   `json:"content_dir"`
		DeviceID           string   `json:"device_id"`
		KeyFile            string   `json:"key_file"`
		Passphrase         string   `json:"passphrase"`
		KeySalt            string   `json:"key_salt"`
		CompactionChanges  int      `json:"compaction_changes"`
		CompactionBytes    int      `json:"compaction_bytes"`
		CausalBufferLimit  int      `json:"causal_buffer_limit"`
		CausalBufferMaxAge Duration `json:"causal_buffer_max_age"`
		Debounce           Duration `json:"debounce"`
		MaxFileSize        int64    `json:"max_file_size"`
		LogFile            string   `json:"log_file"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			Version:       jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:         jsonCfg.Server.HTTPAddress,
			GRPCAddress:         jsonCfg.Server.GRPCAddress,
			RequestTimeout:      time.Duration(jsonCfg.Server.RequestTimeout),
			AuthTimeout:         time.Duration(jsonCfg.Server.AuthTimeout),
			CompactionThreshold: jsonCfg.Server.CompactionThreshold,
			SendBuffer:          jsonCfg.Server.SendBuffer,
		},
		Adapter: Adapter{
			RelayURL:       jsonCfg.Adapter.RelayURL,
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			AuthToken:      jsonCfg.Adapter.AuthToken,
			AuthTimeout:    time.Duration(jsonCfg.Adapter.AuthTimeout),
		},
		Sync: Sync{
			ContentDir:         jsonCfg.Sync.ContentDir,
			DeviceID:           jsonCfg.Sync.DeviceID,
			KeyFile:            jsonCfg.Sync.KeyFile,
			Passphrase:         jsonCfg.Sync.Passphrase,
			KeySalt:            jsonCfg.Sync.KeySalt,
			CompactionChanges:  jsonCfg.Sync.CompactionChanges,
			CompactionBytes:    jsonCfg.Sync.CompactionBytes,
			CausalBufferLimit:  jsonCfg.Sync.CausalBufferLimit,
			CausalBufferMaxAge: time.Duration(jsonCfg.Sync.CausalBufferMaxAge),
			Debounce:           time.Duration(jsonCfg.Sync.Debounce),
			MaxFileSize:        jsonCfg.Sync.MaxFileSize,
			LogFile:            jsonCfg.Sync.LogFile,
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
