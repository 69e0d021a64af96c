// Package gesture recognizes controller gestures from per-tick button snapshots.
// This package has NO external dependencies (no devices, MQTT, OS, or timers
// for gating). Time is always injectable via Batch.Time.
package gesture

import "time"

// Snapshot is one controller's button state at a single tick.
// Buttons has one bit per logical button; a zero value means nothing pressed.
type Snapshot struct {
	Buttons uint64
}

// Batch is the set of snapshots delivered for one tick, in controller index order.
type Batch struct {
	Time      time.Time
	Snapshots []Snapshot
}

// Kind identifies which gesture produced a trigger.
type Kind string

const (
	KindChord Kind = "CHORD"
	KindHold  Kind = "HOLD"
)

// Trigger is a recognized gesture to be turned into a clip request.
type Trigger struct {
	Time       time.Time
	Gesture    Kind
	Controller int
	// Duration of the requested clip. Zero asks the backend to save from its
	// replay buffer with its own default length.
	Duration time.Duration
}

// Action receives recognized gestures. Implementations must not block:
// the detector does not wait for the backend.
type Action interface {
	TriggerClip(t Trigger)
}

// ActionFunc adapts a function to Action.
type ActionFunc func(t Trigger)

// TriggerClip calls f(t).
func (f ActionFunc) TriggerClip(t Trigger) { f(t) }

// Lockout stops the host from also acting on reserved buttons (home and
// quick access) while a chord is being pressed.
type Lockout interface {
	DisableReserved()
	EnableReserved()
}

// Scheduler runs f once after d. It must not block.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Detector consumes batches and reports the triggers it fired.
type Detector interface {
	Process(b Batch) []Trigger
}

// Counts tracks the number of triggers per gesture since startup.
type Counts struct {
	Chord int
	Hold  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
