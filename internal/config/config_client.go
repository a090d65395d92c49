package config

import (
	"fmt"
	"time"
)

// ClientApp holds client identity and integrity settings.
type ClientApp struct {
	HashKey string
	Token   string
	UserID  int64
	LogFile string
}

// ClientAdapter holds network settings of the client transport layer.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
}

// ClientDB contains local database settings for the client.
type ClientDB struct {
	// Path is the SQLite file holding the queue and cache snapshots.
	Path string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientSync holds the synchronization engine options.
type ClientSync struct {
	CacheTimeout          time.Duration
	OfflineQueue          bool
	MaxRetries            int
	BackoffBase           time.Duration
	BackoffCap            time.Duration
	DropPermanentFailures bool
}

// ClientWorkers contains client background job settings.
type ClientWorkers struct {
	SyncInterval time.Duration
	PingInterval time.Duration
}

// ClientConfig is the client view of [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Sync    ClientSync
	Workers ClientWorkers
}

// GetClientConfig loads the merged configuration and returns the validated
// client view.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			Token:   cfg.App.Token,
			UserID:  cfg.App.UserID,
			LogFile: cfg.App.LogFile,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{Path: cfg.Storage.Local.Path},
		},
		Sync: ClientSync{
			CacheTimeout:          cfg.Sync.CacheTimeout,
			OfflineQueue:          !cfg.Sync.DisableOfflineQueue,
			MaxRetries:            cfg.Sync.MaxRetries,
			BackoffBase:           cfg.Sync.BackoffBase,
			BackoffCap:            cfg.Sync.BackoffCap,
			DropPermanentFailures: cfg.Sync.DropPermanentFailures,
		},
		Workers: ClientWorkers{
			SyncInterval: cfg.Workers.SyncInterval,
			PingInterval: cfg.Workers.PingInterval,
		},
	}
}
