package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Source: "evdev", PollMs: 100, Broker: "tcp://localhost:1883", HTTPPort: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 100 {
		t.Errorf("Config.PollMs: got %d, want 100", snap.Config.PollMs)
	}
	if snap.Config.HTTPPort != ":80" {
		t.Errorf("Config.HTTPPort: got %q, want %q", snap.Config.HTTPPort, ":80")
	}
	if snap.LastTrigger != nil {
		t.Error("expected no LastTrigger initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(2, gesture.Counts{Chord: 3, Hold: 1}, 4)

	snap := tr.Snapshot()
	if snap.Controllers != 2 {
		t.Errorf("Controllers: got %d, want 2", snap.Controllers)
	}
	if snap.Counts.Chord != 3 {
		t.Errorf("Counts.Chord: got %d, want 3", snap.Counts.Chord)
	}
	if snap.Counts.Hold != 1 {
		t.Errorf("Counts.Hold: got %d, want 1", snap.Counts.Hold)
	}
	if snap.RecorderDropped != 4 {
		t.Errorf("RecorderDropped: got %d, want 4", snap.RecorderDropped)
	}
}

func TestRecordTrigger(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tr.RecordTrigger(gesture.Trigger{Time: at, Gesture: gesture.KindHold, Controller: 1})

	snap := tr.Snapshot()
	if snap.LastTrigger == nil {
		t.Fatal("expected LastTrigger")
	}
	if snap.LastTrigger.Gesture != gesture.KindHold || snap.LastTrigger.Controller != 1 {
		t.Errorf("LastTrigger: got %+v", *snap.LastTrigger)
	}

	// Mutating the returned trigger must not reach the tracker.
	snap.LastTrigger.Controller = 9
	if tr.Snapshot().LastTrigger.Controller != 1 {
		t.Error("snapshot LastTrigger should be a copy")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(1, gesture.Counts{Chord: 1}, 0)

	snap1 := tr.Snapshot()

	tr.Update(2, gesture.Counts{Chord: 1, Hold: 1}, 0)

	if snap1.Controllers != 1 {
		t.Error("snapshot should be a copy; Controllers was modified")
	}
	if snap1.Counts.Hold != 0 {
		t.Error("snapshot should be a copy; Counts was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Controllers:     2,
		Counts:          gesture.Counts{Chord: 5, Hold: 2},
		LastTrigger:     &gesture.Trigger{Time: start.Add(time.Minute), Gesture: gesture.KindChord, Controller: 1, Duration: 30 * time.Second},
		RecorderDropped: 1,
		StartTime:       start,
		Now:             start.Add(15 * time.Minute),
		MQTTConnected:   true,
		Config: Config{
			Source: "evdev", PollMs: 100, HeartbeatMs: 900000,
			Broker: "tcp://localhost:1883", HTTPPort: ":80",
			Chord: "steam+start", Hold: "share",
		},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Source != "evdev" {
		t.Errorf("Source: got %q, want evdev", parsed.Status.Source)
	}
	if parsed.Status.Controllers != 2 {
		t.Errorf("Controllers: got %d, want 2", parsed.Status.Controllers)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Counts.Chord != 5 || parsed.Status.Counts.Hold != 2 {
		t.Errorf("Counts: got %+v", parsed.Status.Counts)
	}
	if parsed.Status.RecorderDropped != 1 {
		t.Errorf("RecorderDropped: got %d, want 1", parsed.Status.RecorderDropped)
	}
	if parsed.Status.LastTrigger == nil {
		t.Fatal("expected last_trigger")
	}
	if parsed.Status.LastTrigger.Gesture != "CHORD" || parsed.Status.LastTrigger.DurationSeconds != 30 {
		t.Errorf("LastTrigger: got %+v", parsed.Status.LastTrigger)
	}
	if parsed.Status.LastTrigger.Timestamp != "2026-01-01T00:01:00Z" {
		t.Errorf("LastTrigger.Timestamp: got %q", parsed.Status.LastTrigger.Timestamp)
	}
	if parsed.Status.Config.Chord != "steam+start" {
		t.Errorf("Config.Chord: got %q", parsed.Status.Config.Chord)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", parsed.Status.Reason)
	}
}

func TestFormatJSONDefaults(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})

	if status["source"] != "UNKNOWN" {
		t.Errorf("source: got %v, want UNKNOWN", status["source"])
	}
	if _, exists := status["last_trigger"]; exists {
		t.Error("last_trigger should be omitted before the first trigger")
	}
	if _, exists := status["network"]; exists {
		t.Error("network should be omitted when unknown")
	}
}

func TestFormatJSONHoldOmitsDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		LastTrigger: &gesture.Trigger{Time: start, Gesture: gesture.KindHold},
		StartTime:   start,
		Now:         start,
	}

	var raw map[string]interface{}
	json.Unmarshal(FormatJSON(snap), &raw)
	last := raw["status"].(map[string]interface{})["last_trigger"].(map[string]interface{})
	if _, exists := last["duration_seconds"]; exists {
		t.Error("duration_seconds should be omitted for replay saves")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Counts:        gesture.Counts{Chord: 3},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Source: "gpio", PollMs: 100, Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.Counts.Chord != 3 {
		t.Errorf("Counts.Chord: got %d, want 3", parsed.Status.Counts.Chord)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(1, gesture.Counts{Chord: i}, i)
			tr.RecordTrigger(gesture.Trigger{Controller: i})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
		}
	}()

	wg.Wait()
}
