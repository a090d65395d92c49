package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/gorilla/websocket"
)

type Handler struct {
	services *service.Services

	// hashKey enables the HashSHA256 body check when not empty.
	hashKey string

	upgrader     websocket.Upgrader
	pingInterval time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.ServerApp, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		hashKey:  cfg.HashKey,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// clients are not browsers; they authenticate with a bearer token
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingInterval: defaultPingInterval,
		logger:       logger,
	}
}
