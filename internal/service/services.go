package service

import (
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/store"
	"github.com/MKhiriev/go-study-sync/internal/utils"
)

type Services struct {
	AuthService    AuthService
	AppInfoService AppInfoService
	RecordService  RecordService
	ChangeHub      *ChangeHub
}

func NewServices(storages *store.Storages, cfg config.ServerApp, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	hub := NewChangeHub(defaultChangeBuffer, logger)
	records := NewRecordValidationService().
		Wrap(NewRecordService(storages.RecordRepository, hub, utils.NewUUIDGenerator(), logger))

	return &Services{
		AuthService:    NewAuthService(cfg, logger),
		AppInfoService: appInfo,
		RecordService:  records,
		ChangeHub:      hub,
	}, nil
}
