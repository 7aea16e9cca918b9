package server

import "context"

// Server defines the lifecycle contract of the relay's transport server.
type Server interface {
	// RunServer serves until SIGINT, SIGTERM or SIGQUIT, then shuts down.
	RunServer()

	// Run serves until ctx is done, then shuts down. It returns early with
	// the listener error when serving fails.
	Run(ctx context.Context) error

	// Shutdown gracefully stops the server and disconnects sync sessions.
	Shutdown()
}
