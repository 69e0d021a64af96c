package gesture

import (
	"errors"
	"fmt"
	"strings"
)

// Button is a logical button, numbered by its bit index in Snapshot.Buttons.
type Button uint

// Host button layout.
const (
	ButtonR2        Button = 0
	ButtonL2        Button = 1
	ButtonR1        Button = 2
	ButtonL1        Button = 3
	ButtonY         Button = 4
	ButtonB         Button = 5
	ButtonX         Button = 6
	ButtonA         Button = 7
	ButtonDPadUp    Button = 8
	ButtonDPadRight Button = 9
	ButtonDPadLeft  Button = 10
	ButtonDPadDown  Button = 11
	ButtonSelect    Button = 12
	ButtonSteam     Button = 13
	ButtonStart     Button = 14
	ButtonL5        Button = 15
	ButtonR5        Button = 16
	ButtonShare     Button = 29
)

// MaxButton is the highest bit index a Button may use.
const MaxButton Button = 63

// ErrUnknownButton is returned by ParseButton for names not in the layout.
var ErrUnknownButton = errors.New("unknown button")

var buttonNames = map[Button]string{
	ButtonR2:        "r2",
	ButtonL2:        "l2",
	ButtonR1:        "r1",
	ButtonL1:        "l1",
	ButtonY:         "y",
	ButtonB:         "b",
	ButtonX:         "x",
	ButtonA:         "a",
	ButtonDPadUp:    "up",
	ButtonDPadRight: "right",
	ButtonDPadLeft:  "left",
	ButtonDPadDown:  "down",
	ButtonSelect:    "select",
	ButtonSteam:     "steam",
	ButtonStart:     "start",
	ButtonL5:        "l5",
	ButtonR5:        "r5",
	ButtonShare:     "share",
}

var buttonsByName = func() map[string]Button {
	m := make(map[string]Button, len(buttonNames))
	for b, name := range buttonNames {
		m[name] = b
	}
	return m
}()

// String returns the layout name, or "button<N>" for unnamed indices.
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button%d", uint(b))
}

// Bit returns the single-bit mask for b.
func (b Button) Bit() uint64 {
	return 1 << b
}

// ParseButton maps a layout name (case-insensitive) to its Button.
func ParseButton(name string) (Button, error) {
	b, ok := buttonsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownButton, name)
	}
	return b, nil
}

// Mask is a fixed set of buttons.
type Mask uint64

// MaskOf ORs the bits of the given buttons.
func MaskOf(buttons ...Button) Mask {
	var m Mask
	for _, b := range buttons {
		m |= Mask(b.Bit())
	}
	return m
}

// HeldIn reports whether every button of m is pressed in buttons.
// An empty mask is never held.
func (m Mask) HeldIn(buttons uint64) bool {
	return m != 0 && buttons&uint64(m) == uint64(m)
}

// Buttons lists the buttons in m in index order.
func (m Mask) Buttons() []Button {
	var out []Button
	for b := Button(0); b <= MaxButton; b++ {
		if uint64(m)&b.Bit() != 0 {
			out = append(out, b)
		}
	}
	return out
}

// String joins the button names with "+".
func (m Mask) String() string {
	buttons := m.Buttons()
	if len(buttons) == 0 {
		return "none"
	}
	names := make([]string, len(buttons))
	for i, b := range buttons {
		names[i] = b.String()
	}
	return strings.Join(names, "+")
}
