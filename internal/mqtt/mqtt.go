// Package mqtt implements the phone link over an MQTT broker session, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"time"
)

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "watchface"

// ErrNotConnected is returned when a message must reach the phone now but
// the link is down.
var ErrNotConnected = errors.New("link not connected")

// Topics holds the topic names derived from a prefix.
type Topics struct {
	Screen          string // retained mirror of the screen
	System          string // lifecycle events and LWT
	WeatherRequest  string
	WeatherResponse string
}

// NewTopics builds the topic set under prefix. An empty prefix uses
// DefaultPrefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{
		Screen:          prefix + "/screen",
		System:          prefix + "/system",
		WeatherRequest:  prefix + "/weather/request",
		WeatherResponse: prefix + "/weather/response",
	}
}

// Link is the watch's connection to the phone.
type Link interface {
	ConnectionStatus

	// Connectivity delivers true on every (re)connect and false on every
	// loss. Repeated values are possible.
	Connectivity() <-chan bool

	// PublishScreen mirrors the screen state. Buffered while disconnected.
	PublishScreen(payload []byte) error

	// PublishSystem sends a lifecycle event. Buffered while disconnected.
	PublishSystem(event SystemEvent) error

	// RequestWeather asks the phone for a weather report. Returns
	// ErrNotConnected if the link is down; requests are never buffered.
	RequestWeather(payload []byte) error

	// OnWeatherResponse registers the handler for phone responses. It is
	// called from the MQTT client's goroutine.
	OnWeatherResponse(handler func(payload []byte))

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the link is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, SHUTDOWN) that don't carry a screen snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for screen snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillEvent is the last-will message the broker publishes if the watch
// drops off without a clean shutdown.
func WillEvent(at time.Time) SystemEvent {
	return SystemEvent{
		Timestamp: at,
		Event:     "OFFLINE",
		Reason:    "LINK_LOST",
		Retained:  true,
	}
}
