package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-lst-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-lst-sync/internal/handler/ws"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
)

type grpcServer struct {
	handler *myGRPC.Handler

	server  *grpc.Server
	address string

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(myGRPC.Codec{}),
		grpc.MaxRecvMsgSize(ws.MaxFrameSize),
		grpc.MaxSendMsgSize(ws.MaxFrameSize),
	)
	handler.Register(srv)

	return &grpcServer{
		handler: handler,
		server:  srv,
		address: cfg.GRPCAddress,
		logger:  logger,
	}
}

// RunServer blocks until the listener fails or the server is stopped.
// A stop is not an error.
func (g *grpcServer) RunServer() error {
	listener, err := net.Listen("tcp", g.address)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", g.address, err)
	}

	if err = g.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown ends the sync sessions, which are streams GracefulStop would
// otherwise wait for, then stops the server.
func (g *grpcServer) Shutdown() {
	g.logger.Info().Msg("gRPC server shutdown")
	g.handler.Close()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		g.logger.Warn().Msg("gRPC graceful stop timed out")
		g.server.Stop()
	}
}
