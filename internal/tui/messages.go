package tui

import "github.com/MKhiriev/go-study-sync/models"

// changedMsg is sent when the controller behind tab signalled a cache write.
type changedMsg struct {
	tab int
}

type notificationMsg struct {
	n models.Notification
}

type syncDoneMsg struct {
	err error
}

type createDoneMsg struct {
	err error
}

type deleteDoneMsg struct {
	err error
}

type gradeDoneMsg struct {
	card *models.Flashcard
	err  error
}

// tickMsg refreshes the status bar while nothing else happens.
type tickMsg struct{}
