//go:build linux

package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// ErrUnknownCode is returned for key code names not in the code table.
var ErrUnknownCode = errors.New("unknown key code")

// Keymap maps input key codes to logical buttons.
type Keymap map[evdev.EvCode]gesture.Button

var codesByName = map[string]evdev.EvCode{
	"BTN_SOUTH":          evdev.BTN_SOUTH,
	"BTN_EAST":           evdev.BTN_EAST,
	"BTN_NORTH":          evdev.BTN_NORTH,
	"BTN_WEST":           evdev.BTN_WEST,
	"BTN_TL":             evdev.BTN_TL,
	"BTN_TR":             evdev.BTN_TR,
	"BTN_TL2":            evdev.BTN_TL2,
	"BTN_TR2":            evdev.BTN_TR2,
	"BTN_SELECT":         evdev.BTN_SELECT,
	"BTN_START":          evdev.BTN_START,
	"BTN_MODE":           evdev.BTN_MODE,
	"BTN_THUMBL":         evdev.BTN_THUMBL,
	"BTN_THUMBR":         evdev.BTN_THUMBR,
	"BTN_DPAD_UP":        evdev.BTN_DPAD_UP,
	"BTN_DPAD_DOWN":      evdev.BTN_DPAD_DOWN,
	"BTN_DPAD_LEFT":      evdev.BTN_DPAD_LEFT,
	"BTN_DPAD_RIGHT":     evdev.BTN_DPAD_RIGHT,
	"BTN_BASE":           evdev.BTN_BASE,
	"BTN_TRIGGER_HAPPY1": evdev.BTN_TRIGGER_HAPPY1,
	"BTN_TRIGGER_HAPPY2": evdev.BTN_TRIGGER_HAPPY2,
	"BTN_TRIGGER_HAPPY3": evdev.BTN_TRIGGER_HAPPY3,
	"BTN_TRIGGER_HAPPY4": evdev.BTN_TRIGGER_HAPPY4,
	"KEY_RECORD":         evdev.KEY_RECORD,
}

// DefaultKeymap matches the gamepad layout reported by hid-steam and xpad.
func DefaultKeymap() Keymap {
	return Keymap{
		evdev.BTN_TR2:            gesture.ButtonR2,
		evdev.BTN_TL2:            gesture.ButtonL2,
		evdev.BTN_TR:             gesture.ButtonR1,
		evdev.BTN_TL:             gesture.ButtonL1,
		evdev.BTN_NORTH:          gesture.ButtonY,
		evdev.BTN_EAST:           gesture.ButtonB,
		evdev.BTN_WEST:           gesture.ButtonX,
		evdev.BTN_SOUTH:          gesture.ButtonA,
		evdev.BTN_DPAD_UP:        gesture.ButtonDPadUp,
		evdev.BTN_DPAD_RIGHT:     gesture.ButtonDPadRight,
		evdev.BTN_DPAD_LEFT:      gesture.ButtonDPadLeft,
		evdev.BTN_DPAD_DOWN:      gesture.ButtonDPadDown,
		evdev.BTN_SELECT:         gesture.ButtonSelect,
		evdev.BTN_MODE:           gesture.ButtonSteam,
		evdev.BTN_START:          gesture.ButtonStart,
		evdev.BTN_TRIGGER_HAPPY1: gesture.ButtonL5,
		evdev.BTN_TRIGGER_HAPPY2: gesture.ButtonR5,
		evdev.KEY_RECORD:         gesture.ButtonShare,
	}
}

// ParseCode accepts a code name from the table ("BTN_MODE") or a number.
func ParseCode(s string) (evdev.EvCode, error) {
	s = strings.TrimSpace(s)
	if code, ok := codesByName[strings.ToUpper(s)]; ok {
		return code, nil
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCode, s)
	}
	return evdev.EvCode(n), nil
}

// ParseKeymap builds a keymap from {code: button name} entries, on top of
// the default keymap.
func ParseKeymap(entries map[string]string) (Keymap, error) {
	km := DefaultKeymap()
	for codeName, buttonName := range entries {
		code, err := ParseCode(codeName)
		if err != nil {
			return nil, err
		}
		b, err := gesture.ParseButton(buttonName)
		if err != nil {
			return nil, fmt.Errorf("keymap %s: %w", codeName, err)
		}
		km[code] = b
	}
	return km, nil
}

// Snapshot converts the pressed-key state of one device.
// Keys without a mapping are ignored.
func (k Keymap) Snapshot(state map[evdev.EvCode]bool) gesture.Snapshot {
	var s gesture.Snapshot
	for code, pressed := range state {
		if !pressed {
			continue
		}
		if b, ok := k[code]; ok {
			s.Buttons |= b.Bit()
		}
	}
	return s
}
