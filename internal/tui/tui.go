package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/models"
	tea "github.com/charmbracelet/bubbletea"
)

type TUI struct {
	services  *service.ClientServices
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(services *service.ClientServices, buildInfo models.AppBuildInfo, log *logger.Logger) *TUI {
	if log == nil {
		log = logger.Nop()
	}
	return &TUI{services: services, buildInfo: buildInfo, logger: log}
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	m := newModel(ctx, dependencies{
		tabs:          newTabs(t.services),
		network:       t.services.Network,
		syncer:        t.services.SyncService,
		reviews:       t.services.ReviewService,
		notifications: t.services.Notifications.Notifications(),
		buildInfo:     t.buildInfo,
	})

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		t.logger.Err(err).Str("func", "*TUI.Run").Msg("terminal ui stopped with error")
	}
	return err
}
