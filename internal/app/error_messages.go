// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the human-readable reasons the relay writes into
// REST error bodies and websocket Error/AuthFailed frames.
//
// Keeping them in one place keeps the wording identical across transports.
package app

const (
	// MsgInvalidJSON is returned when a REST body cannot be decoded.
	MsgInvalidJSON = "invalid JSON"

	// MsgInvalidGzip is returned when a request declares gzip encoding but
	// its body is not a valid gzip stream.
	MsgInvalidGzip = "invalid gzip data"

	// MsgInternalServerError replaces the text of any 5xx REST failure so
	// that storage details do not leak to clients.
	MsgInternalServerError = "Internal Server Error"

	// MsgInternalError is the websocket counterpart of
	// MsgInternalServerError.
	MsgInternalError = "internal error"

	// MsgExpectedAuthenticate is sent when the first frame of a connection
	// is not Authenticate.
	MsgExpectedAuthenticate = "expected authenticate frame"

	// MsgInvalidToken is sent when the Authenticate token does not verify.
	MsgInvalidToken = "invalid token"

	// MsgWriteFailed closes a connection whose outgoing frame could not be
	// written.
	MsgWriteFailed = "write failed"
)
