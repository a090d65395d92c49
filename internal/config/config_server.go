package config

import (
	"fmt"
	"time"
)

// ServerApp holds token and integrity settings of the server.
type ServerApp struct {
	TokenSignKey  string
	TokenIssuer   string
	TokenDuration time.Duration
	HashKey       string
	Version       string
}

// ServerHTTP holds the listen settings of the server.
type ServerHTTP struct {
	HTTPAddress    string
	RequestTimeout time.Duration
}

// ServerConfig is the server view of [StructuredConfig].
type ServerConfig struct {
	App     ServerApp
	Server  ServerHTTP
	Storage DB
}

// GetServerConfig loads the merged configuration and returns the validated
// server view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := newServerConfig(cfg)
	return serverCfg, serverCfg.validate()
}

func newServerConfig(cfg *StructuredConfig) *ServerConfig {
	return &ServerConfig{
		App: ServerApp{
			TokenSignKey:  cfg.App.TokenSignKey,
			TokenIssuer:   cfg.App.TokenIssuer,
			TokenDuration: cfg.App.TokenDuration,
			HashKey:       cfg.App.HashKey,
			Version:       cfg.App.Version,
		},
		Server: ServerHTTP{
			HTTPAddress:    cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		Storage: cfg.Storage.DB,
	}
}
