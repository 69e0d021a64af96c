// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// TopicClip is the MQTT topic the recording backend listens on for clip requests.
const TopicClip = "gaming/recorder/clip"

// TopicLockout is the MQTT topic for host reserved-button lockout commands.
const TopicLockout = "gaming/recorder/lockout"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "gaming/recorder/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishClip asks the recording backend to save a clip.
	// Returns error if publishing fails (should not crash the process).
	PublishClip(req ClipRequest) error

	// PublishLockout sends a reserved-button lockout command to the host.
	PublishLockout(cmd LockoutCommand) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ClipRequest is a recognized gesture with a unique request id.
type ClipRequest struct {
	ID      string
	Trigger gesture.Trigger
}

// LockoutAction is the requested state of the host's reserved buttons.
type LockoutAction string

const (
	LockoutDisable LockoutAction = "DISABLE"
	LockoutEnable  LockoutAction = "ENABLE"
)

// LockoutCommand asks the host to disable or re-enable reserved buttons.
type LockoutCommand struct {
	Timestamp time.Time
	Action    LockoutAction
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// ClipPayload represents the clip request payload structure.
type ClipPayload struct {
	Clip ClipPayloadInner `json:"clip"`
}

// ClipPayloadInner contains the clip request details.
// DurationSeconds is omitted for replay buffer saves, leaving the length
// to the backend.
type ClipPayloadInner struct {
	ID              string `json:"id"`
	Timestamp       string `json:"timestamp"`
	Gesture         string `json:"gesture"`
	Controller      int    `json:"controller"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// FormatClipPayload creates the JSON payload for a clip request.
func FormatClipPayload(req ClipRequest) ([]byte, error) {
	payload := ClipPayload{
		Clip: ClipPayloadInner{
			ID:              req.ID,
			Timestamp:       req.Trigger.Time.UTC().Format(time.RFC3339),
			Gesture:         string(req.Trigger.Gesture),
			Controller:      req.Trigger.Controller,
			DurationSeconds: int(req.Trigger.Duration / time.Second),
		},
	}
	return json.Marshal(payload)
}

// LockoutPayload represents the lockout command payload structure.
type LockoutPayload struct {
	Lockout LockoutPayloadInner `json:"lockout"`
}

// LockoutPayloadInner contains the lockout command details.
type LockoutPayloadInner struct {
	Timestamp       string `json:"timestamp"`
	ReservedButtons string `json:"reserved_buttons"`
}

// FormatLockoutPayload creates the JSON payload for a lockout command.
func FormatLockoutPayload(cmd LockoutCommand) ([]byte, error) {
	payload := LockoutPayload{
		Lockout: LockoutPayloadInner{
			Timestamp:       cmd.Timestamp.UTC().Format(time.RFC3339),
			ReservedButtons: string(cmd.Action),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}
