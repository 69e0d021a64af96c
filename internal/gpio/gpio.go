// Package gpio reads buttons wired to GPIO lines as a single controller.
// The real implementation uses Linux GPIO character device.
// Buttons are active low: a pressed button pulls its line to ground.
package gpio

import (
	"sort"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// DefaultChip is the GPIO chip used when none is configured.
const DefaultChip = "gpiochip0"

// Default line offsets (BCM numbering).
const (
	DefaultPinSteam = 26
	DefaultPinStart = 16
	DefaultPinShare = 20
)

// DefaultPins maps the default chord and hold buttons to lines.
func DefaultPins() map[gesture.Button]int {
	return map[gesture.Button]int{
		gesture.ButtonSteam: DefaultPinSteam,
		gesture.ButtonStart: DefaultPinStart,
		gesture.ButtonShare: DefaultPinShare,
	}
}

// binding is one button line, in a stable order.
type binding struct {
	button gesture.Button
	offset int
}

func sortedBindings(pins map[gesture.Button]int) []binding {
	out := make([]binding, 0, len(pins))
	for b, offset := range pins {
		out = append(out, binding{button: b, offset: offset})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].button < out[j].button })
	return out
}

// snapshotFromValues builds a snapshot from raw line values, in binding
// order. Raw 0 (pulled low) means pressed.
func snapshotFromValues(bindings []binding, raw []int) gesture.Snapshot {
	var s gesture.Snapshot
	for i, b := range bindings {
		if i < len(raw) && raw[i] == 0 {
			s.Buttons |= b.button.Bit()
		}
	}
	return s
}
