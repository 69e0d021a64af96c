//go:build linux

package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// Source polls the key state of a fixed list of input devices.
type Source struct {
	devices []*device
	keymap  Keymap
}

type device struct {
	path string
	name string
	dev  *evdev.InputDevice
}

// Discover returns the paths of input devices whose name contains any of
// the given substrings (case-insensitive).
func Discover(match []string) ([]string, error) {
	inputs, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var paths []string
	for _, in := range inputs {
		name := strings.ToLower(in.Name)
		for _, m := range match {
			if m != "" && strings.Contains(name, strings.ToLower(m)) {
				paths = append(paths, in.Path)
				break
			}
		}
	}
	return paths, nil
}

// Open opens every path as a controller, in order.
func Open(paths []string, keymap Keymap) (*Source, error) {
	if len(paths) == 0 {
		return nil, errors.New("controller: no input devices")
	}
	if keymap == nil {
		keymap = DefaultKeymap()
	}

	s := &Source{keymap: keymap}
	for _, p := range paths {
		dev, err := evdev.Open(p)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		name, err := dev.Name()
		if err != nil {
			name = p
		}
		s.devices = append(s.devices, &device{path: p, name: name, dev: dev})
	}
	return s, nil
}

// Names returns the device names in controller order.
func (s *Source) Names() []string {
	names := make([]string, len(s.devices))
	for i, d := range s.devices {
		names[i] = d.name
	}
	return names
}

// Read returns one snapshot per device. A device whose state cannot be
// read reports no buttons pressed.
func (s *Source) Read() ([]gesture.Snapshot, error) {
	snaps := make([]gesture.Snapshot, len(s.devices))
	var errs []error
	for i, d := range s.devices {
		state, err := d.dev.State(evdev.EV_KEY)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", d.path, err))
			continue
		}
		snaps[i] = s.keymap.Snapshot(state)
	}
	return snaps, errors.Join(errs...)
}

// Close closes every device.
func (s *Source) Close() error {
	var errs []error
	for _, d := range s.devices {
		if err := d.dev.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", d.path, err))
		}
	}
	s.devices = nil
	return errors.Join(errs...)
}
