package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors [StructuredConfig] for JSON and YAML files, with
// durations written as strings ("30s", "5m").
type fileConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer" yaml:"token_issuer"`
		TokenDuration Duration `json:"token_duration" yaml:"token_duration"`
		HashKey       string   `json:"hash_key" yaml:"hash_key"`
		Token         string   `json:"token" yaml:"token"`
		UserID        int64    `json:"user_id" yaml:"user_id"`
		LogFile       string   `json:"log_file" yaml:"log_file"`
		Version       string   `json:"version" yaml:"version"`
	} `json:"app" yaml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db" yaml:"db"`
		Local struct {
			Path string `json:"path" yaml:"path"`
		} `json:"local" yaml:"local"`
	} `json:"storage" yaml:"storage"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"server" yaml:"server"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"adapter" yaml:"adapter"`

	Sync struct {
		CacheTimeout          Duration `json:"cache_timeout" yaml:"cache_timeout"`
		DisableOfflineQueue   bool     `json:"disable_offline_queue" yaml:"disable_offline_queue"`
		MaxRetries            int      `json:"max_retries" yaml:"max_retries"`
		BackoffBase           Duration `json:"backoff_base" yaml:"backoff_base"`
		BackoffCap            Duration `json:"backoff_cap" yaml:"backoff_cap"`
		DropPermanentFailures bool     `json:"drop_permanent_failures" yaml:"drop_permanent_failures"`
	} `json:"sync" yaml:"sync"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval" yaml:"sync_interval"`
		PingInterval Duration `json:"ping_interval" yaml:"ping_interval"`
	} `json:"workers" yaml:"workers"`
}

// parseFile reads a JSON or YAML config file. Files ending in .yaml or .yml
// are decoded as YAML, anything else as JSON.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err = json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:  fc.App.TokenSignKey,
			TokenIssuer:   fc.App.TokenIssuer,
			TokenDuration: time.Duration(fc.App.TokenDuration),
			HashKey:       fc.App.HashKey,
			Token:         fc.App.Token,
			UserID:        fc.App.UserID,
			LogFile:       fc.App.LogFile,
			Version:       fc.App.Version,
		},
		Storage: Storage{
			DB:    DB{DSN: fc.Storage.DB.DSN},
			Local: Local{Path: fc.Storage.Local.Path},
		},
		Server: Server{
			HTTPAddress:    fc.Server.HTTPAddress,
			RequestTimeout: time.Duration(fc.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    fc.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
		},
		Sync: Sync{
			CacheTimeout:          time.Duration(fc.Sync.CacheTimeout),
			DisableOfflineQueue:   fc.Sync.DisableOfflineQueue,
			MaxRetries:            fc.Sync.MaxRetries,
			BackoffBase:           time.Duration(fc.Sync.BackoffBase),
			BackoffCap:            time.Duration(fc.Sync.BackoffCap),
			DropPermanentFailures: fc.Sync.DropPermanentFailures,
		},
		Workers: Workers{
			SyncInterval: time.Duration(fc.Workers.SyncInterval),
			PingInterval: time.Duration(fc.Workers.PingInterval),
		},
	}
}

// Duration is a time.Duration that decodes from strings like "1h" or "30s"
// in both JSON and YAML. Bare JSON numbers are taken as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(tmp)

	return nil
}
