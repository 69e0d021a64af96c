package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	chord, err := cfg.Chord.Gesture()
	if err != nil {
		t.Fatalf("chord: %v", err)
	}
	if gesture.MaskOf(chord.Buttons...) != gesture.MaskOf(gesture.ButtonSteam, gesture.ButtonStart) {
		t.Errorf("chord buttons: got %v", chord.Buttons)
	}
	if chord.Cooldown != 2*time.Second || chord.ClipDuration != 30*time.Second || chord.LockoutDuration != time.Second {
		t.Errorf("chord durations: %+v", chord)
	}

	hold, err := cfg.Hold.Gesture()
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if hold.Button != gesture.ButtonShare {
		t.Errorf("hold button: got %v, want share", hold.Button)
	}
	if hold.Debounce != 500*time.Millisecond || hold.Cooldown != 5*time.Second {
		t.Errorf("hold durations: %+v", hold)
	}
	if hold.PerControllerTrigger {
		t.Error("hold should share the triggered flag by default")
	}
	if len(cfg.Evdev.Match) == 0 {
		t.Error("expected default device match list")
	}
}

func TestParseFull(t *testing.T) {
	data := []byte(`
[chord]
buttons = ["l5", "r5"]
cooldown_ms = 3000
clip_seconds = 60

[hold]
button = "select"
per_controller = true

[evdev]
devices = ["/dev/input/event7"]

[evdev.keymap]
BTN_BASE = "share"

[gpio]
chip = "gpiochip1"

[gpio.pins]
steam = 5
start = 6

[mqtt]
client_id = "deck"
queue_size = 32
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chord, _ := cfg.Chord.Gesture()
	if gesture.MaskOf(chord.Buttons...) != gesture.MaskOf(gesture.ButtonL5, gesture.ButtonR5) {
		t.Errorf("chord: got %v", chord.Buttons)
	}
	if chord.Cooldown != 3*time.Second || chord.ClipDuration != time.Minute {
		t.Errorf("chord durations: %+v", chord)
	}
	if chord.LockoutDuration != time.Second {
		t.Errorf("lockout should default, got %v", chord.LockoutDuration)
	}

	hold, _ := cfg.Hold.Gesture()
	if hold.Button != gesture.ButtonSelect || !hold.PerControllerTrigger {
		t.Errorf("hold: %+v", hold)
	}

	if len(cfg.Evdev.Devices) != 1 || cfg.Evdev.Devices[0] != "/dev/input/event7" {
		t.Errorf("devices: %v", cfg.Evdev.Devices)
	}
	if len(cfg.Evdev.Match) != 0 {
		t.Errorf("explicit devices should not get a default match list, got %v", cfg.Evdev.Match)
	}
	if cfg.Evdev.Keymap["BTN_BASE"] != "share" {
		t.Errorf("keymap: %v", cfg.Evdev.Keymap)
	}

	pins, err := cfg.GPIO.Buttons()
	if err != nil {
		t.Fatalf("pins: %v", err)
	}
	if cfg.GPIO.Chip != "gpiochip1" || pins[gesture.ButtonSteam] != 5 || pins[gesture.ButtonStart] != 6 {
		t.Errorf("gpio: chip=%s pins=%v", cfg.GPIO.Chip, pins)
	}

	if cfg.MQTT.ClientID != "deck" || cfg.MQTT.QueueSize != 32 {
		t.Errorf("mqtt: %+v", cfg.MQTT)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty chord", "[chord]\nbuttons = []\n", ErrEmptyChord},
		{"unknown chord button", "[chord]\nbuttons = [\"steam\", \"turbo\"]\n", gesture.ErrUnknownButton},
		{"unknown hold button", "[hold]\nbutton = \"turbo\"\n", gesture.ErrUnknownButton},
		{"unknown pin button", "[gpio.pins]\nturbo = 3\n", gesture.ErrUnknownButton},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseNegativePin(t *testing.T) {
	if _, err := Parse([]byte("[gpio.pins]\nsteam = -1\n")); err == nil {
		t.Error("expected error for negative line offset")
	}
}

func TestParseInvalidTOML(t *testing.T) {
	if _, err := Parse([]byte("[chord\nbuttons = 1")); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeClampsDurations(t *testing.T) {
	cfg, err := Parse([]byte("[chord]\ncooldown_ms = -5\n[hold]\ndebounce_ms = 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chord.CooldownMs != 2000 {
		t.Errorf("chord cooldown: got %d, want 2000", cfg.Chord.CooldownMs)
	}
	if cfg.Hold.DebounceMs != 500 {
		t.Errorf("hold debounce: got %d, want 500", cfg.Hold.DebounceMs)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if cfg.Hold.Button != "share" {
		t.Errorf("empty path should return defaults, got %+v", cfg.Hold)
	}

	path := filepath.Join(t.TempDir(), "gesture-sensor.toml")
	if err := os.WriteFile(path, []byte("[hold]\nbutton = \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hold.Button != "a" {
		t.Errorf("hold button: got %q, want a", cfg.Hold.Button)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
