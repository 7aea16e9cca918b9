// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the daemon's transports to the relay.
//
// [RelayDialer] opens the persistent websocket connection that carries the
// sync protocol frames. [ACLClient] talks to the relay's REST API to read and
// change document permissions.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrForbidden] for 403, [ErrUnauthorized] for 401). Websocket
// failures wrap [models.ErrTransientNetwork].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-lst-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// RelayConn is one open protocol connection to the relay. Send and Receive
// may be called from different goroutines; each must have a single caller.
type RelayConn interface {
	// Send writes one frame.
	Send(ctx context.Context, msg models.Message) error

	// Receive blocks until the next frame arrives, ctx is done, or the
	// connection fails.
	Receive(ctx context.Context) (models.Message, error)

	// Close closes the connection. Pending Receive calls return an error.
	Close() error
}

// RelayDialer opens relay connections.
type RelayDialer interface {
	Dial(ctx context.Context) (RelayConn, error)
}

// ACLClient reads and changes document permissions on the relay.
type ACLClient interface {
	// GetACL returns every permission row of a document. The caller must
	// hold at least reader access.
	GetACL(ctx context.Context, docID string) ([]models.DocumentPermission, error)

	// Grant gives identity the permission on a document. Owner only.
	Grant(ctx context.Context, docID, identity string, permission models.Permission) error

	// Revoke removes the identity's permission. The owner cannot be revoked.
	Revoke(ctx context.Context, docID, identity string) error
}
