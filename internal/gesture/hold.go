package gesture

import "time"

// Hold defaults.
const (
	DefaultHoldDebounce = 500 * time.Millisecond
	DefaultHoldCooldown = 5000 * time.Millisecond
)

// MaxControllers is the number of controller indices a Hold tracks.
// Snapshots beyond it are ignored.
const MaxControllers = 64

// HoldConfig configures a Hold. Zero durations take the defaults.
type HoldConfig struct {
	Button   Button
	Debounce time.Duration
	Cooldown time.Duration
	// PerControllerTrigger keeps the "already fired" flag per controller
	// instead of one flag shared by all controllers.
	PerControllerTrigger bool
	// Gate, if set, is shared with other detectors.
	Gate *Gate
}

// Hold fires when one button stays down across two ticks separated by at
// least the debounce window.
type Hold struct {
	target        uint64
	debounce      time.Duration
	cooldown      time.Duration
	perController bool
	gate          *Gate
	action        Action

	held          uint64 // bit per controller that is known to be holding
	triggered     bool
	triggeredMask uint64
}

// NewHold creates a hold detector.
func NewHold(cfg HoldConfig, action Action) *Hold {
	h := &Hold{
		target:        cfg.Button.Bit(),
		debounce:      orDefault(cfg.Debounce, DefaultHoldDebounce),
		cooldown:      orDefault(cfg.Cooldown, DefaultHoldCooldown),
		perController: cfg.PerControllerTrigger,
		gate:          cfg.Gate,
		action:        action,
	}
	if h.gate == nil {
		h.gate = &Gate{}
	}
	return h
}

// Gate returns the hold's cooldown gate.
func (h *Hold) Gate() *Gate {
	return h.gate
}

// Held returns the bitmask of controllers currently tracked as holding.
func (h *Hold) Held() uint64 {
	return h.held
}

// Process evaluates each controller in order.
func (h *Hold) Process(b Batch) []Trigger {
	var fired []Trigger
	for i, snap := range b.Snapshots {
		if i >= MaxControllers {
			break
		}
		bit := uint64(1) << uint(i)

		if snap.Buttons&h.target == 0 {
			// Released: re-arm this controller, even during cooldown.
			h.held &^= bit
			continue
		}

		if !h.gate.IsOpen(b.Time) {
			continue
		}

		if h.held&bit == 0 {
			// New press: wait out the debounce window before confirming.
			h.held |= bit
			h.setTriggered(bit, false)
			h.gate.Close(b.Time, h.debounce)
			continue
		}

		if h.isTriggered(bit) {
			continue
		}
		h.setTriggered(bit, true)
		h.gate.Close(b.Time, h.cooldown)

		t := Trigger{
			Time:       b.Time,
			Gesture:    KindHold,
			Controller: i,
		}
		h.action.TriggerClip(t)
		fired = append(fired, t)
	}
	return fired
}

func (h *Hold) isTriggered(bit uint64) bool {
	if h.perController {
		return h.triggeredMask&bit != 0
	}
	return h.triggered
}

func (h *Hold) setTriggered(bit uint64, v bool) {
	if !h.perController {
		h.triggered = v
		return
	}
	if v {
		h.triggeredMask |= bit
	} else {
		h.triggeredMask &^= bit
	}
}
