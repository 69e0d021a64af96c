// Package status provides a thread-safe status tracker for the gesture-sensor daemon.
// It is read by HTTP handlers and by the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Source      string
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	Chord       string // e.g. "steam+start"
	Hold        string // e.g. "share"
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Controllers     int
	Counts          gesture.Counts
	LastTrigger     *gesture.Trigger
	RecorderDropped int
	StartTime       time.Time
	Now             time.Time
	MQTTConnected   bool
	Network         *NetworkInfo
	Config          Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller count, trigger counts and recorder drops.
// Called from runLoop on every tick.
func (t *Tracker) Update(controllers int, counts gesture.Counts, dropped int) {
	t.mu.Lock()
	t.snap.Controllers = controllers
	t.snap.Counts = counts
	t.snap.RecorderDropped = dropped
	t.mu.Unlock()
}

// RecordTrigger remembers the most recent trigger.
func (t *Tracker) RecordTrigger(tr gesture.Trigger) {
	t.mu.Lock()
	t.snap.LastTrigger = &tr
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.LastTrigger != nil {
		last := *s.LastTrigger
		s.LastTrigger = &last
	}
	s.Now = time.Now()
	return s
}
