// Package config provides configuration loading, merging, and validation
// facilities for the relay and the sync daemon.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetRelayConfig] for the relay and
// [GetClientConfig] for the daemon.
package config
