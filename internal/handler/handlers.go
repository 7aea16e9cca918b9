package handler

import (
	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-lst-sync/internal/handler/http"
	"github.com/MKhiriev/go-lst-sync/internal/handler/ws"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
	Sync *ws.Hub
}

func NewHandlers(services *service.Services, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	// one hub, so devices on both transports exchange changes
	hub := ws.NewHub(services.RelayService, services.AuthService, cfg, logger)

	handlers := &Handlers{
		HTTP: http.NewHandler(services, hub, logger),
		Sync: hub,
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(hub, logger)
	}

	return handlers, nil
}
