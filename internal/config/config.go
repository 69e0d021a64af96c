// Package config loads the gesture bindings and device settings from a TOML
// file. Every key is optional; missing keys take the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// ErrEmptyChord is returned when the chord has no buttons.
var ErrEmptyChord = errors.New("config: chord needs at least one button")

// Config is the file layout.
type Config struct {
	Chord ChordConfig `toml:"chord"`
	Hold  HoldConfig  `toml:"hold"`
	Evdev EvdevConfig `toml:"evdev"`
	GPIO  GPIOConfig  `toml:"gpio"`
	MQTT  MQTTConfig  `toml:"mqtt"`
}

// ChordConfig binds the bounded-clip chord.
type ChordConfig struct {
	Buttons     []string `toml:"buttons"`
	CooldownMs  int      `toml:"cooldown_ms"`
	ClipSeconds int      `toml:"clip_seconds"`
	LockoutMs   int      `toml:"lockout_ms"`
}

// HoldConfig binds the replay-save hold.
type HoldConfig struct {
	Button        string `toml:"button"`
	DebounceMs    int    `toml:"debounce_ms"`
	CooldownMs    int    `toml:"cooldown_ms"`
	PerController bool   `toml:"per_controller"`
}

// EvdevConfig selects input devices. Devices wins over Match.
type EvdevConfig struct {
	Devices []string          `toml:"devices"`
	Match   []string          `toml:"match"`
	Keymap  map[string]string `toml:"keymap"`
}

// GPIOConfig maps button names to line offsets.
type GPIOConfig struct {
	Chip string         `toml:"chip"`
	Pins map[string]int `toml:"pins"`
}

// MQTTConfig tunes the backend link.
type MQTTConfig struct {
	ClientID  string `toml:"client_id"`
	QueueSize int    `toml:"queue_size"`
}

// Default returns the built-in configuration: Steam+Start saves 30 seconds,
// holding Share saves from the replay buffer.
func Default() Config {
	return normalize(Config{})
}

// Load reads path. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes TOML and validates button names.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg = normalize(cfg)
	if _, err := cfg.Chord.Gesture(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Hold.Gesture(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.GPIO.Buttons(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func normalize(cfg Config) Config {
	if cfg.Chord.Buttons == nil {
		cfg.Chord.Buttons = []string{"steam", "start"}
	}
	if cfg.Chord.CooldownMs <= 0 {
		cfg.Chord.CooldownMs = int(gesture.DefaultChordCooldown / time.Millisecond)
	}
	if cfg.Chord.ClipSeconds <= 0 {
		cfg.Chord.ClipSeconds = int(gesture.DefaultChordClipDuration / time.Second)
	}
	if cfg.Chord.LockoutMs <= 0 {
		cfg.Chord.LockoutMs = int(gesture.DefaultChordLockout / time.Millisecond)
	}

	cfg.Hold.Button = strings.TrimSpace(cfg.Hold.Button)
	if cfg.Hold.Button == "" {
		cfg.Hold.Button = "share"
	}
	if cfg.Hold.DebounceMs <= 0 {
		cfg.Hold.DebounceMs = int(gesture.DefaultHoldDebounce / time.Millisecond)
	}
	if cfg.Hold.CooldownMs <= 0 {
		cfg.Hold.CooldownMs = int(gesture.DefaultHoldCooldown / time.Millisecond)
	}

	if len(cfg.Evdev.Devices) == 0 && len(cfg.Evdev.Match) == 0 {
		cfg.Evdev.Match = []string{"Steam Deck", "Controller", "Gamepad"}
	}
	return cfg
}

// Gesture converts the chord section. Unknown names and an empty list are errors.
func (c ChordConfig) Gesture() (gesture.ChordConfig, error) {
	if len(c.Buttons) == 0 {
		return gesture.ChordConfig{}, ErrEmptyChord
	}
	buttons := make([]gesture.Button, 0, len(c.Buttons))
	for _, name := range c.Buttons {
		b, err := gesture.ParseButton(name)
		if err != nil {
			return gesture.ChordConfig{}, fmt.Errorf("chord: %w", err)
		}
		buttons = append(buttons, b)
	}
	return gesture.ChordConfig{
		Buttons:         buttons,
		Cooldown:        time.Duration(c.CooldownMs) * time.Millisecond,
		ClipDuration:    time.Duration(c.ClipSeconds) * time.Second,
		LockoutDuration: time.Duration(c.LockoutMs) * time.Millisecond,
	}, nil
}

// Gesture converts the hold section.
func (h HoldConfig) Gesture() (gesture.HoldConfig, error) {
	b, err := gesture.ParseButton(h.Button)
	if err != nil {
		return gesture.HoldConfig{}, fmt.Errorf("hold: %w", err)
	}
	return gesture.HoldConfig{
		Button:               b,
		Debounce:             time.Duration(h.DebounceMs) * time.Millisecond,
		Cooldown:             time.Duration(h.CooldownMs) * time.Millisecond,
		PerControllerTrigger: h.PerController,
	}, nil
}

// Buttons converts the pin table. A nil table returns nil.
func (g GPIOConfig) Buttons() (map[gesture.Button]int, error) {
	if g.Pins == nil {
		return nil, nil
	}
	out := make(map[gesture.Button]int, len(g.Pins))
	for name, offset := range g.Pins {
		b, err := gesture.ParseButton(name)
		if err != nil {
			return nil, fmt.Errorf("gpio: %w", err)
		}
		if offset < 0 {
			return nil, fmt.Errorf("gpio: %s: negative line offset %d", name, offset)
		}
		out[b] = offset
	}
	return out, nil
}
