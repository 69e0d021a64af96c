package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string       `json:"event,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Source          string       `json:"source"`
	Controllers     int          `json:"controllers"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
	StartTime       string       `json:"start_time"`
	Timestamp       string       `json:"timestamp"`
	MQTT            MQTTStatus   `json:"mqtt"`
	Counts          CountsJSON   `json:"gesture_counts"`
	LastTrigger     *TriggerJSON `json:"last_trigger,omitempty"`
	RecorderDropped int          `json:"recorder_dropped"`
	Network         *NetworkJSON `json:"network,omitempty"`
	Config          ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of trigger counts.
type CountsJSON struct {
	Chord int `json:"chord"`
	Hold  int `json:"hold"`
}

// TriggerJSON is the JSON representation of the last trigger.
type TriggerJSON struct {
	Timestamp       string `json:"timestamp"`
	Gesture         string `json:"gesture"`
	Controller      int    `json:"controller"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	Chord       string `json:"chord"`
	Hold        string `json:"hold"`
}

func buildInner(snap Snapshot) StatusInner {
	source := snap.Config.Source
	if source == "" {
		source = "UNKNOWN"
	}

	inner := StatusInner{
		Source:          source,
		Controllers:     snap.Controllers,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts:          CountsJSON{Chord: snap.Counts.Chord, Hold: snap.Counts.Hold},
		RecorderDropped: snap.RecorderDropped,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			Chord:       snap.Config.Chord,
			Hold:        snap.Config.Hold,
		},
	}
	if t := snap.LastTrigger; t != nil {
		inner.LastTrigger = &TriggerJSON{
			Timestamp:       t.Time.UTC().Format(time.RFC3339),
			Gesture:         string(t.Gesture),
			Controller:      t.Controller,
			DurationSeconds: int(t.Duration / time.Second),
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
