package syncengine

import "github.com/MKhiriev/go-study-sync/models"

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(n models.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n models.Notification) {
	f(n)
}
