package gesture

import "time"

// Chord defaults.
const (
	DefaultChordCooldown     = 2000 * time.Millisecond
	DefaultChordClipDuration = 30 * time.Second
	DefaultChordLockout      = 1000 * time.Millisecond
)

// ChordConfig configures a Chord. Zero durations take the defaults.
type ChordConfig struct {
	// Buttons that must all be down at once. Must not be empty.
	Buttons         []Button
	Cooldown        time.Duration
	ClipDuration    time.Duration
	LockoutDuration time.Duration
	// Gate, if set, is shared with other detectors.
	Gate *Gate
}

// Chord fires when every configured button is down on one controller.
type Chord struct {
	mask         Mask
	cooldown     time.Duration
	clipDuration time.Duration
	lockoutFor   time.Duration
	gate         *Gate
	action       Action
	lockout      Lockout
	after        Scheduler
}

// NewChord creates a chord detector. lockout may be nil.
func NewChord(cfg ChordConfig, action Action, lockout Lockout) *Chord {
	c := &Chord{
		mask:         MaskOf(cfg.Buttons...),
		cooldown:     orDefault(cfg.Cooldown, DefaultChordCooldown),
		clipDuration: orDefault(cfg.ClipDuration, DefaultChordClipDuration),
		lockoutFor:   orDefault(cfg.LockoutDuration, DefaultChordLockout),
		gate:         cfg.Gate,
		action:       action,
		lockout:      lockout,
		after:        afterFunc,
	}
	if c.gate == nil {
		c.gate = &Gate{}
	}
	return c
}

// SetScheduler replaces the timer used to re-enable reserved buttons.
func (c *Chord) SetScheduler(s Scheduler) {
	c.after = s
}

// Mask returns the chord's button mask.
func (c *Chord) Mask() Mask {
	return c.mask
}

// Gate returns the chord's cooldown gate.
func (c *Chord) Gate() *Gate {
	return c.gate
}

// Process fires at most once per batch, for the first controller in order
// that holds the whole chord while the gate is open.
func (c *Chord) Process(b Batch) []Trigger {
	for i, snap := range b.Snapshots {
		if !c.gate.IsOpen(b.Time) {
			return nil
		}
		if !c.mask.HeldIn(snap.Buttons) {
			continue
		}

		c.gate.Close(b.Time, c.cooldown)
		if c.lockout != nil {
			c.lockout.DisableReserved()
			c.after(c.lockoutFor, c.lockout.EnableReserved)
		}

		t := Trigger{
			Time:       b.Time,
			Gesture:    KindChord,
			Controller: i,
			Duration:   c.clipDuration,
		}
		c.action.TriggerClip(t)
		return []Trigger{t}
	}
	return nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
