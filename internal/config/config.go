// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// study-sync server and client. It is populated by merging command-line
// flags, environment variables and an optional JSON or YAML file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token, integrity and identity settings.
	App App `envPrefix:"APP_"`

	// Storage holds the server database and the client's local database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address and request timeout of the server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote address the client talks to.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds the client synchronization engine options.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds background job intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// FilePath is the optional path to a JSON or YAML configuration file,
	// picked by extension. Populated via CONFIG or the -c / -config flag.
	FilePath string `env:"CONFIG"`
}

// Storage groups the configuration for all storage backends.
type Storage struct {
	// DB is the server's PostgreSQL database.
	DB DB `envPrefix:"DB_"`

	// Local is the client's SQLite database holding the operation queue
	// and cache snapshots.
	Local Local `envPrefix:"LOCAL_"`
}

// App holds application-level values.
type App struct {
	// TokenSignKey signs and verifies JWT bearer tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim of issued tokens.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long an issued token stays valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// HashKey is the HMAC key of the HashSHA256 request integrity header.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Token is the pre-issued bearer token the client sends.
	// Env: APP_TOKEN
	Token string `env:"TOKEN"`

	// UserID is the id stamped on records created by the client.
	// Env: APP_USER_ID
	UserID int64 `env:"USER_ID"`

	// LogFile is where the client writes its log.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// Version is exposed by the health endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timeout settings for the inbound transport.
type Server struct {
	// HTTPAddress is the "host:port" the server listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds connection settings for the server database.
type DB struct {
	// DSN is the PostgreSQL connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Local holds the client database location.
type Local struct {
	// Path is the SQLite file path.
	// Env: STORAGE_LOCAL_PATH
	Path string `env:"PATH"`
}

// Adapter holds the client's outbound transport settings.
type Adapter struct {
	// HTTPAddress is the server base address, with or without scheme.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the options of the client synchronization engine.
type Sync struct {
	// CacheTimeout is how long a fetched snapshot counts as fresh.
	// Env: SYNC_CACHE_TIMEOUT
	CacheTimeout time.Duration `env:"CACHE_TIMEOUT"`

	// DisableOfflineQueue turns off deferred mutations; failed writes are
	// rolled back instead.
	// Env: SYNC_DISABLE_OFFLINE_QUEUE
	DisableOfflineQueue bool `env:"DISABLE_OFFLINE_QUEUE"`

	// MaxRetries is how many failed attempts a queued operation survives.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BackoffBase is the delay after the first failure; it doubles per
	// retry up to BackoffCap.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap caps the retry delay.
	// Env: SYNC_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`

	// DropPermanentFailures drops queued operations that failed with a
	// non-retryable client error without waiting for the retry ceiling.
	// Env: SYNC_DROP_PERMANENT_FAILURES
	DropPermanentFailures bool `env:"DROP_PERMANENT_FAILURES"`
}

// Workers holds background job settings.
type Workers struct {
	// SyncInterval is how often the client runs a full sync.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// PingInterval is how often the network monitor pings the server.
	// Env: WORKERS_PING_INTERVAL
	PingInterval time.Duration `env:"PING_INTERVAL"`
}

// Defaults applied to zero fields after merging.
const (
	DefaultCacheTimeout   = 5 * time.Minute
	DefaultMaxRetries     = 3
	DefaultBackoffBase    = 2 * time.Second
	DefaultBackoffCap     = time.Minute
	DefaultSyncInterval   = 5 * time.Minute
	DefaultPingInterval   = 15 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultTokenDuration  = 24 * time.Hour
	DefaultTokenIssuer    = "study-sync"
)

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Sync.CacheTimeout == 0 {
		cfg.Sync.CacheTimeout = DefaultCacheTimeout
	}
	if cfg.Sync.MaxRetries == 0 {
		cfg.Sync.MaxRetries = DefaultMaxRetries
	}
	if cfg.Sync.BackoffBase == 0 {
		cfg.Sync.BackoffBase = DefaultBackoffBase
	}
	if cfg.Sync.BackoffCap == 0 {
		cfg.Sync.BackoffCap = DefaultBackoffCap
	}
	if cfg.Workers.SyncInterval == 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if cfg.Workers.PingInterval == 0 {
		cfg.Workers.PingInterval = DefaultPingInterval
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = DefaultTokenDuration
	}
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = DefaultTokenIssuer
	}
}

// GetStructuredConfig loads and merges the configuration from all sources.
// Earlier sources take precedence and zero values never override:
//  1. Command-line flags
//  2. Environment variables
//  3. JSON or YAML file (path resolved from sources 1 and 2)
//
// Defaults are applied to whatever is still unset.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withArgs(os.Args[1:]).
		withFlags().
		withEnv().
		withFile().
		build()
}
