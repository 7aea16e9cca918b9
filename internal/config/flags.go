package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the command-line flags of both binaries.
//
// Flags:
//
//	-a relay listen address in format [host]:[port]
//	-grpc-address gRPC sync transport address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-token-sign-key, -token-issuer, -token-duration token parameters
//	-issue-token print a token for the identity and exit
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-relay relay websocket URL
//	-token bearer credential presented to the relay
//	-dir watched content directory
//	-device-id device id override
//	-key-file document key file
//	-passphrase, -key-salt derive the key instead of reading a key file
//	-debounce file event debounce
//	-sync-interval periodic sync interval
//	-migrate-only migrate legacy paths and exit
//	-log-file rotated log file
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("lst-sync", flag.ContinueOnError)

	var (
		serverAddress  NetAddress
		grpcAddress    NetAddress
		databaseDSN    string
		jsonConfigPath string
		tokenSignKey   string
		tokenIssuer    string
		tokenDuration  time.Duration
		issueTokenFor  string
		requestTimeout time.Duration
		relayURL       string
		authToken      string
		contentDir     string
		deviceID       string
		keyFile        string
		passphrase     string
		keySalt        string
		debounce       time.Duration
		syncInterval   time.Duration
		migrateOnly    bool
		logFile        string
	)

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcAddress, "grpc-address", "Net gRPC address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 720h)")
	fs.StringVar(&issueTokenFor, "issue-token", "", "Print a bearer token for the identity and exit")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&relayURL, "relay", "", "Relay websocket URL")
	fs.StringVar(&authToken, "token", "", "Relay bearer token")
	fs.StringVar(&contentDir, "dir", "", "Watched content directory")
	fs.StringVar(&deviceID, "device-id", "", "Device id override")
	fs.StringVar(&keyFile, "key-file", "", "Document key file")
	fs.StringVar(&passphrase, "passphrase", "", "Passphrase to derive the document key from")
	fs.StringVar(&keySalt, "key-salt", "", "Salt for the passphrase key derivation")
	fs.DurationVar(&debounce, "debounce", 0, "File event debounce (e.g., 200ms)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 30s)")
	fs.BoolVar(&migrateOnly, "migrate-only", false, "Migrate legacy document paths and exit")
	fs.StringVar(&logFile, "log-file", "", "Rotated log file path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
			IssueTokenFor: issueTokenFor,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			RelayURL:       relayURL,
			RequestTimeout: requestTimeout,
			AuthToken:      authToken,
		},
		Sync: Sync{
			ContentDir:  contentDir,
			DeviceID:    deviceID,
			KeyFile:     keyFile,
			Passphrase:  passphrase,
			KeySalt:     keySalt,
			Debounce:    debounce,
			MigrateOnly: migrateOnly,
			LogFile:     logFile,
		},
		Workers:      Workers{SyncInterval: syncInterval},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are
// invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be within 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
