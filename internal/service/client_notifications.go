package service

import (
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

const notificationBuffer = 32

// NotificationFeed logs engine notifications and buffers them for the UI.
// When the buffer is full the newest notification is dropped.
type NotificationFeed struct {
	ch     chan models.Notification
	logger *logger.Logger
}

func NewNotificationFeed(log *logger.Logger) *NotificationFeed {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationFeed{
		ch:     make(chan models.Notification, notificationBuffer),
		logger: log,
	}
}

// Notify implements syncengine.Notifier.
func (f *NotificationFeed) Notify(n models.Notification) {
	event := f.logger.Info()
	switch n.Level {
	case models.NotifyWarning:
		event = f.logger.Warn()
	case models.NotifyError:
		event = f.logger.Error()
	}
	event.Str("collection", n.Collection).Str("level", string(n.Level)).Msg(n.Message)

	select {
	case f.ch <- n:
	default:
	}
}

func (f *NotificationFeed) Notifications() <-chan models.Notification {
	return f.ch
}
