package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses args into a fresh config.
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-server address of the server the client talks to
//	-d server database DSN
//	-db client SQLite path
//	-c/-config JSON or YAML config file path
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-token client bearer token
//	-user-id client user id
//	-request-timeout request timeout for both server and client
//	-hash-key request integrity hash key
//	-log-file client log file
//	-cache-timeout snapshot freshness window
//	-max-retries retry ceiling of queued operations
//	-sync-interval period of the background sync job
//	-ping-interval period of the network ping
//	-no-offline-queue roll back failed writes instead of queueing them
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("study-sync", flag.ContinueOnError)

	var serverAddress NetAddress
	var cfg StructuredConfig
	var requestTimeout time.Duration

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&cfg.Adapter.HTTPAddress, "server", "", "Server address the client connects to")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "Database DSN")
	fs.StringVar(&cfg.Storage.Local.Path, "db", "", "Local SQLite path")
	fs.StringVar(&cfg.FilePath, "c", "", "Config file path")
	fs.StringVar(&cfg.FilePath, "config", "", "Config file path (alias)")
	fs.StringVar(&cfg.App.TokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&cfg.App.TokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&cfg.App.TokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	fs.StringVar(&cfg.App.Token, "token", "", "Bearer token")
	fs.Int64Var(&cfg.App.UserID, "user-id", 0, "User id")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&cfg.App.HashKey, "hash-key", "", "Request integrity hash key")
	fs.StringVar(&cfg.App.LogFile, "log-file", "", "Client log file")
	fs.DurationVar(&cfg.Sync.CacheTimeout, "cache-timeout", 0, "Cache freshness window")
	fs.IntVar(&cfg.Sync.MaxRetries, "max-retries", 0, "Retry ceiling of queued operations")
	fs.DurationVar(&cfg.Workers.SyncInterval, "sync-interval", 0, "Background sync interval")
	fs.DurationVar(&cfg.Workers.PingInterval, "ping-interval", 0, "Network ping interval")
	fs.BoolVar(&cfg.Sync.DisableOfflineQueue, "no-offline-queue", false, "Disable the offline queue")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg.Server.HTTPAddress = serverAddress.String()
	cfg.Server.RequestTimeout = requestTimeout
	cfg.Adapter.RequestTimeout = requestTimeout

	return &cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// An empty host listens on all interfaces.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return errors.New("incorrect IP-address provided")
	}

	a.Host = host
	a.Port = port
	return nil
}
