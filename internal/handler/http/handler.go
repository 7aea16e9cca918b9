package http

import (
	"net/http"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/service"
)

type Handler struct {
	services *service.Services
	// sync serves the websocket protocol on /api/ws.
	sync http.Handler

	logger *logger.Logger
}

func NewHandler(services *service.Services, sync http.Handler, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		sync:     sync,
		logger:   logger,
	}
}
