// Package grpc serves the sync protocol over a bidirectional gRPC stream.
//
// There is no protobuf schema: every message on the stream is one JSON
// [models.Message] frame encoded by [Codec], the same frames the websocket
// endpoint exchanges. Sessions are run by [ws.Hub], so devices on either
// transport see each other's changes.
package grpc

import (
	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"

	"github.com/MKhiriev/go-lst-sync/internal/handler/ws"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
)

// SyncMethod is the full method name of the sync stream.
const SyncMethod = "/lstsync.Relay/Sync"

// RelayServer is implemented by [Handler].
type RelayServer interface {
	Sync(stream grpc.ServerStream) error
}

// ServiceDesc describes the relay service. Clients open the stream with
// ServiceDesc.Streams[0] and [SyncMethod].
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "lstsync.Relay",
	HandlerType: (*RelayServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName: "Sync",
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(RelayServer).Sync(stream)
			},
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "lstsync/relay",
}

// Handler is the root gRPC transport handler.
//
// It hands every stream to the hub shared with the websocket endpoint.
type Handler struct {
	hub    *ws.Hub
	logger *logger.Logger
}

// NewHandler constructs a [Handler] serving sessions through hub.
func NewHandler(hub *ws.Hub, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		hub:    hub,
		logger: logger,
	}
}

// Register adds the relay service to srv.
func (h *Handler) Register(srv *grpc.Server) {
	srv.RegisterService(&ServiceDesc, h)
}

// Sync runs one device session until either side ends the stream. The
// status returned to the device mirrors the websocket close code.
func (h *Handler) Sync(stream grpc.ServerStream) error {
	log := h.logger.GetChildLogger()
	log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		c = c.Str("transport", "grpc")
		if p, ok := peer.FromContext(stream.Context()); ok && p.Addr != nil {
			c = c.Str("remote_addr", p.Addr.String())
		}
		return c
	})

	conn := newStreamConn(stream)
	h.hub.Serve(log.WithContext(stream.Context()), conn)

	_ = conn.Close(websocket.StatusNormalClosure, "")
	return conn.Err()
}

// Close disconnects every session of the hub.
func (h *Handler) Close() {
	h.hub.Close()
}
