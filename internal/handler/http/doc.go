// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the relay's HTTP surface.
//
// It serves the build version, upgrades /api/ws to the sync protocol
// websocket, and exposes the document ACL REST API. Request tracing, access
// logging, bearer authentication and response compression are handled here
// before requests reach the service layer.
package http
