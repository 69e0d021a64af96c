package gesture

import (
	"errors"
	"time"
)

// ErrAttached is returned by Attach when the dispatcher is already subscribed.
var ErrAttached = errors.New("gesture: dispatcher already attached")

// Feed delivers one Batch per tick to subscribers.
type Feed interface {
	Subscribe(cb func(Batch)) Subscription
}

// Subscription stops delivery when released.
type Subscription interface {
	Unsubscribe()
}

// Dispatcher forwards every batch to its detectors in registration order.
type Dispatcher struct {
	detectors     []Detector
	observers     []func(Trigger)
	sub           Subscription
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewDispatcher creates a dispatcher over the given detectors.
// The startTime is used for calculating uptime in heartbeat events.
func NewDispatcher(startTime time.Time, detectors ...Detector) *Dispatcher {
	return &Dispatcher{
		detectors:     detectors,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Observe registers f to be called for every trigger, after the detector's
// own action.
func (d *Dispatcher) Observe(f func(Trigger)) {
	d.observers = append(d.observers, f)
}

// Dispatch hands b, unchanged, to each detector and returns the triggers
// fired in detector order.
func (d *Dispatcher) Dispatch(b Batch) []Trigger {
	var fired []Trigger
	for _, det := range d.detectors {
		fired = append(fired, det.Process(b)...)
	}

	for _, t := range fired {
		switch t.Gesture {
		case KindChord:
			d.counts.Chord++
		case KindHold:
			d.counts.Hold++
		}
		for _, f := range d.observers {
			f(t)
		}
	}
	return fired
}

// Attach subscribes the dispatcher to f.
func (d *Dispatcher) Attach(f Feed) error {
	if d.sub != nil {
		return ErrAttached
	}
	d.sub = f.Subscribe(func(b Batch) { d.Dispatch(b) })
	return nil
}

// Detach releases the feed subscription. Once it returns no further batch
// is dispatched. Safe to call more than once.
func (d *Dispatcher) Detach() {
	if d.sub == nil {
		return
	}
	d.sub.Unsubscribe()
	d.sub = nil
}

// Attached reports whether the dispatcher holds a subscription.
func (d *Dispatcher) Attached() bool {
	return d.sub != nil
}

// CountsSnapshot returns the trigger counts so far.
func (d *Dispatcher) CountsSnapshot() Counts {
	return d.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Dispatcher) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
