// Package server runs the relay's HTTP server.
//
// It starts the listener, waits for a stop signal and shuts down gracefully,
// closing the websocket sync sessions that http.Server does not track.
package server
