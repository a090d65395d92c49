// Command tokengen mints a bearer token for a user id with the server's
// signing settings. It reads the same flags, env and config file as the
// server, e.g.
//
//	tokengen -token-sign-key secret -user-id 7
package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/service"
)

func main() {
	log := logger.NewLogger("study-sync-tokengen")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.TokenSignKey == "" {
		log.Fatal().Msg("token sign key is required")
	}
	if cfg.App.UserID <= 0 {
		log.Fatal().Msg("a positive user id is required")
	}

	auth := service.NewAuthService(config.ServerApp{
		TokenSignKey:  cfg.App.TokenSignKey,
		TokenIssuer:   cfg.App.TokenIssuer,
		TokenDuration: cfg.App.TokenDuration,
	}, log)

	token, err := auth.CreateToken(context.Background(), cfg.App.UserID)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating token")
	}

	fmt.Println(token.SignedString)
}
