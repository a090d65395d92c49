package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/adapter"
	"github.com/MKhiriev/go-study-sync/internal/client"
	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/internal/store"
	"github.com/MKhiriev/go-study-sync/internal/tui"
	"github.com/MKhiriev/go-study-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("study-sync-client").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("study-sync-client", cfg.App.LogFile)

	if err = client.ResolveUserID(cfg); err != nil {
		log.Fatal().Err(err).Msg("error resolving user id")
	}

	ctx := context.Background()

	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening local database")
	}
	defer db.Close()

	if err = db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("error applying local migrations")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server adapter")
	}

	services := service.NewClientServices(
		service.NewHTTPRemotes(serverAdapter, log),
		store.NewClientStorages(db, log),
		serverAdapter,
		cfg,
		log,
	)

	ui := tui.New(services, info, log)

	if err = client.NewApp(services, ui, log).Run(); err != nil {
		log.Error().Err(err).Msg("client run error")
	}
}

func printBuildInfo() models.AppBuildInfo {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(info)
	return info
}
