//go:build !linux

package controller

import (
	"errors"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// Keymap is not available on non-Linux platforms.
type Keymap map[uint16]gesture.Button

// Source is not available on non-Linux platforms.
type Source struct{}

// ParseKeymap returns an error on non-Linux platforms.
func ParseKeymap(entries map[string]string) (Keymap, error) {
	return nil, errors.New("controller: not supported on this platform (requires Linux)")
}

// Discover returns an error on non-Linux platforms.
func Discover(match []string) ([]string, error) {
	return nil, errors.New("controller: not supported on this platform (requires Linux)")
}

// Open returns an error on non-Linux platforms.
func Open(paths []string, keymap Keymap) (*Source, error) {
	return nil, errors.New("controller: not supported on this platform (requires Linux)")
}

// Names is not implemented on non-Linux platforms.
func (s *Source) Names() []string { return nil }

// Read is not implemented on non-Linux platforms.
func (s *Source) Read() ([]gesture.Snapshot, error) {
	return nil, errors.New("controller: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *Source) Close() error {
	return nil
}
