package gesture

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// recorder collects triggers passed to an Action.
type recorder struct {
	triggers []Trigger
}

func (r *recorder) TriggerClip(t Trigger) {
	r.triggers = append(r.triggers, t)
}

// fakeLockout counts side channel calls.
type fakeLockout struct {
	disabled int
	enabled  int
}

func (l *fakeLockout) DisableReserved() { l.disabled++ }
func (l *fakeLockout) EnableReserved()  { l.enabled++ }

// fakeScheduler records delays and runs callbacks only when asked.
type fakeScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) {
	s.delays = append(s.delays, d)
	s.pending = append(s.pending, f)
}

func (s *fakeScheduler) runAll() {
	for _, f := range s.pending {
		f()
	}
	s.pending = nil
}

func batchAt(offset time.Duration, masks ...uint64) Batch {
	snaps := make([]Snapshot, len(masks))
	for i, m := range masks {
		snaps[i] = Snapshot{Buttons: m}
	}
	return Batch{Time: t0.Add(offset), Snapshots: snaps}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func assertFires(t *testing.T, got []Trigger, want int, label string) {
	t.Helper()
	if len(got) != want {
		t.Fatalf("%s: expected %d triggers, got %d", label, want, len(got))
	}
}
