package service

import (
	"context"
	"strings"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
)

type appInfoService struct {
	version   string
	startedAt time.Time
	now       func() time.Time
}

func NewAppInfoService(cfg config.ServerApp, logger *logger.Logger) (AppInfoService, error) {
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	logger.Info().Str("func", "NewAppInfoService").Str("version", version).Msg("server build")

	return &appInfoService{
		version:   version,
		startedAt: time.Now(),
		now:       time.Now,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.version
}

// Uptime is the time since the service was built, to the second.
func (s *appInfoService) Uptime() time.Duration {
	return s.now().Sub(s.startedAt).Truncate(time.Second)
}
