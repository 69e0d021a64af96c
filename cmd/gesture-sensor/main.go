// Command gesture-sensor watches controllers for clip gestures and asks the
// recording backend to save clips over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/gesture-sensor/internal/config"
	"github.com/sweeney/gesture-sensor/internal/controller"
	"github.com/sweeney/gesture-sensor/internal/feed"
	"github.com/sweeney/gesture-sensor/internal/gesture"
	"github.com/sweeney/gesture-sensor/internal/gpio"
	"github.com/sweeney/gesture-sensor/internal/mqtt"
	"github.com/sweeney/gesture-sensor/internal/recorder"
	"github.com/sweeney/gesture-sensor/internal/status"
	"github.com/sweeney/gesture-sensor/internal/web"
)

// Source names accepted by -source.
const (
	sourceEvdev = "evdev"
	sourceGPIO  = "gpio"
)

type options struct {
	source     string
	poll       time.Duration
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func main() {
	configPath := flag.String("config", "", "TOML gesture config file (empty for built-in defaults)")
	source := flag.String("source", sourceEvdev, "Input source: evdev or gpio")
	poll := flag.Duration("poll", 100*time.Millisecond, "Controller polling interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	printState := flag.Bool("print-state", false, "Print held buttons per controller and exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	opts := options{
		source:     *source,
		poll:       *poll,
		broker:     *broker,
		heartbeat:  *heartbeat,
		httpAddr:   *httpAddr,
		printState: *printState,
	}
	if err := run(cfg, opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, opts options) error {
	if opts.poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", opts.poll)
	}
	chordCfg, err := cfg.Chord.Gesture()
	if err != nil {
		return err
	}
	holdCfg, err := cfg.Hold.Gesture()
	if err != nil {
		return err
	}

	// Initialize input source
	src, err := openSource(opts.source, cfg)
	if err != nil {
		return fmt.Errorf("init %s: %w", opts.source, err)
	}
	fd := feed.New(src)
	defer fd.Close()

	// Print state mode
	if opts.printState {
		snaps, err := src.Read()
		if err != nil && snaps == nil {
			return fmt.Errorf("read %s: %w", opts.source, err)
		}
		for i, s := range snaps {
			fmt.Printf("controller %d: %s\n", i, gesture.Mask(s.Buttons))
		}
		return err
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(opts.broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	rec := recorder.New(publisher, cfg.MQTT.QueueSize)
	go rec.Run(context.Background())
	defer rec.Close()

	chord := gesture.NewChord(chordCfg, rec, rec)
	hold := gesture.NewHold(holdCfg, rec)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Source:      opts.source,
		PollMs:      opts.poll.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Broker:      opts.broker,
		HTTPPort:    opts.httpAddr,
		Chord:       chord.Mask().String(),
		Hold:        holdCfg.Button.String(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	log.Printf("started: source=%s poll=%v broker=%s heartbeat=%v chord=%s hold=%s",
		opts.source, opts.poll, opts.broker, opts.heartbeat, chord.Mask(), holdCfg.Button)

	dispatcher := gesture.NewDispatcher(time.Now(), chord, hold)

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(fd, dispatcher, rec, publisher, publisher, tracker, opts.heartbeat, time.Now, ticker.C, sigCh)
}

// openSource opens the configured controller source.
func openSource(name string, cfg config.Config) (feed.Source, error) {
	switch name {
	case sourceEvdev:
		keymap, err := controller.ParseKeymap(cfg.Evdev.Keymap)
		if err != nil {
			return nil, err
		}
		paths := cfg.Evdev.Devices
		if len(paths) == 0 {
			paths, err = controller.Discover(cfg.Evdev.Match)
			if err != nil {
				return nil, err
			}
		}
		src, err := controller.Open(paths, keymap)
		if err != nil {
			return nil, err
		}
		for i, n := range src.Names() {
			log.Printf("controller %d: %s", i, n)
		}
		return src, nil

	case sourceGPIO:
		pins, err := cfg.GPIO.Buttons()
		if err != nil {
			return nil, err
		}
		if pins == nil {
			pins = gpio.DefaultPins()
		}
		chip := cfg.GPIO.Chip
		if chip == "" {
			chip = gpio.DefaultChip
		}
		return gpio.NewRealReader(chip, pins)

	default:
		return nil, fmt.Errorf("unknown source %q (want %s or %s)", name, sourceEvdev, sourceGPIO)
	}
}

// dropCounter reports requests the recorder discarded.
type dropCounter interface {
	Dropped() int
}

func runLoop(fd *feed.Feed, dispatcher *gesture.Dispatcher, drops dropCounter, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	dispatcher.Observe(func(t gesture.Trigger) {
		log.Printf("gesture: %s controller=%d", t.Gesture, t.Controller)
		if tracker != nil {
			tracker.RecordTrigger(t)
		}
	})
	if err := dispatcher.Attach(fd); err != nil {
		return err
	}
	defer dispatcher.Detach()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			// No batch is dispatched after this point.
			dispatcher.Detach()

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker(tracker, fd, dispatcher, drops, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			if err := fd.Poll(t); err != nil {
				// Partial reads were still delivered.
				log.Printf("controller read error: %v", err)
			}

			// Check for heartbeat
			if hbData := dispatcher.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v chord=%d hold=%d controllers=%d",
					hbData.Uptime, hbData.Counts.Chord, hbData.Counts.Hold, fd.Controllers())

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, fd, dispatcher, drops, mqttStatus)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				updateTracker(tracker, fd, dispatcher, drops, mqttStatus)
			}
		}
	}
}

func updateTracker(tracker *status.Tracker, fd *feed.Feed, dispatcher *gesture.Dispatcher, drops dropCounter, mqttStatus mqtt.ConnectionStatus) {
	dropped := 0
	if drops != nil {
		dropped = drops.Dropped()
	}
	tracker.Update(fd.Controllers(), dispatcher.CountsSnapshot(), dropped)
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
