package client

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/utils"
)

type App struct {
	services Services
	ui       UI
	logger   *logger.Logger
}

func NewApp(services Services, ui UI, log *logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	return &App{services: services, ui: ui, logger: log}
}

// Run blocks until the UI exits or SIGINT/SIGTERM arrives.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	if err := a.services.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	defer a.services.Stop()

	a.logger.Info().Msg("client started")
	if err := a.ui.Run(ctx); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	a.logger.Info().Msg("client stopped")

	return nil
}

// ResolveUserID fills cfg.App.UserID from the bearer token subject when it
// is not configured explicitly. The token is not verified here; the server
// does that on every request.
func ResolveUserID(cfg *config.ClientConfig) error {
	if cfg.App.UserID != 0 {
		return nil
	}

	userID, err := utils.ParseUserIDFromJWT(cfg.App.Token)
	if err != nil {
		return fmt.Errorf("user id is not configured and cannot be read from the token: %w", err)
	}
	cfg.App.UserID = userID

	return nil
}
