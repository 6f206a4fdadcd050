package domain

import "context"

// SettingsStore persists the DRM settings row.
type SettingsStore interface {
	EncryptionEnabled(ctx context.Context) (bool, error)
	SetEncryptionEnabled(ctx context.Context, enabled bool, updatedBy string) error
}

// Event is a JSON message pushed to connected players.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Event types pushed over the events socket.
const (
	EventSettingsChanged = "settings.changed"
	EventStreamOnline    = "stream.online"
	EventStreamOffline   = "stream.offline"
)

// EventPublisher fans an event out to all connected event subscribers.
type EventPublisher interface {
	Publish(event Event)
}
