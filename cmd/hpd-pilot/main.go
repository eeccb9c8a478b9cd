// Command hpd-pilot drives an HDMI Hot Plug Detect line from a push-button
// and external commands, publishing line state changes to MQTT.
//
// A short press toggles the line, a long press pulses it low for an EDID
// re-read. Commands can also arrive on the MQTT command topic or an
// optional serial console.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/hpd-pilot/internal/config"
	"github.com/sweeney/hpd-pilot/internal/dispatch"
	"github.com/sweeney/hpd-pilot/internal/gpio"
	"github.com/sweeney/hpd-pilot/internal/hpd"
	"github.com/sweeney/hpd-pilot/internal/logic"
	"github.com/sweeney/hpd-pilot/internal/mqtt"
	"github.com/sweeney/hpd-pilot/internal/serialcmd"
	"github.com/sweeney/hpd-pilot/internal/status"
	"github.com/sweeney/hpd-pilot/internal/web"
)

// settleDelay is the power-stabilization wait before the initial assert,
// so a source probing at boot never sees a half-powered sink.
const settleDelay = 500 * time.Millisecond

func main() {
	cfgPath := flag.String("config", "", "YAML config file (explicit flags override file values)")
	poll := flag.Duration("poll", 5*time.Millisecond, "Button polling interval")
	debounce := flag.Duration("debounce", logic.DefaultDebounce, "Debounce window")
	longPress := flag.Duration("long-press", logic.DefaultLongPress, "Long-press threshold")
	pulseDwell := flag.Duration("pulse-dwell", hpd.DefaultPulseDwell, "Pulse low dwell")
	reconnectDwell := flag.Duration("reconnect-dwell", hpd.DefaultReconnectDwell, "Reconnect cycle low dwell")
	maxBusy := flag.Duration("max-busy", hpd.DefaultMaxBusy, "Watchdog bound on a timed sequence")
	pinButton := flag.Int("pin-button", gpio.DefaultPinButton, "BCM pin number for the button")
	pinHPD := flag.Int("pin-hpd", gpio.DefaultPinHPD, "BCM pin number for the HPD output")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	serialPort := flag.String("serial", "", "Serial console port (empty to disable)")
	serialBaud := flag.Int("serial-baud", 115200, "Serial console baud rate")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	printState := flag.Bool("print-state", false, "Print current button state and exit")
	noInitialAssert := flag.Bool("no-initial-assert", false, "Do not assert HPD after startup settle")

	flag.Parse()

	cfg := config.Default()
	cfg.Timing.PollMs = int(poll.Milliseconds())
	cfg.Timing.DebounceMs = int(debounce.Milliseconds())
	cfg.Timing.LongPressMs = int(longPress.Milliseconds())
	cfg.Timing.PulseDwellMs = int(pulseDwell.Milliseconds())
	cfg.Timing.ReconnectDwellMs = int(reconnectDwell.Milliseconds())
	cfg.Timing.MaxBusyMs = int(maxBusy.Milliseconds())
	cfg.Timing.HeartbeatMs = int(heartbeat.Milliseconds())
	cfg.Pins.Button = *pinButton
	cfg.Pins.HPD = *pinHPD
	cfg.MQTT.Broker = *broker
	cfg.HTTP.Addr = *httpAddr
	cfg.Serial.Port = *serialPort
	cfg.Serial.Baud = *serialBaud

	if *cfgPath != "" {
		fileCfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		// Flags given explicitly on the command line win over the file.
		overrideFromFlags(fileCfg, cfg)
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState, !*noInitialAssert); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// overrideFromFlags copies into dst every value whose flag was set
// explicitly on the command line. src holds the already-parsed flag values.
func overrideFromFlags(dst, src *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			dst.Timing.PollMs = src.Timing.PollMs
		case "debounce":
			dst.Timing.DebounceMs = src.Timing.DebounceMs
		case "long-press":
			dst.Timing.LongPressMs = src.Timing.LongPressMs
		case "pulse-dwell":
			dst.Timing.PulseDwellMs = src.Timing.PulseDwellMs
		case "reconnect-dwell":
			dst.Timing.ReconnectDwellMs = src.Timing.ReconnectDwellMs
		case "max-busy":
			dst.Timing.MaxBusyMs = src.Timing.MaxBusyMs
		case "heartbeat":
			dst.Timing.HeartbeatMs = src.Timing.HeartbeatMs
		case "pin-button":
			dst.Pins.Button = src.Pins.Button
		case "pin-hpd":
			dst.Pins.HPD = src.Pins.HPD
		case "broker":
			dst.MQTT.Broker = src.MQTT.Broker
		case "http":
			dst.HTTP.Addr = src.HTTP.Addr
		case "serial":
			dst.Serial.Port = src.Serial.Port
		case "serial-baud":
			dst.Serial.Baud = src.Serial.Baud
		}
	})
}

func run(cfg *config.Config, printState, initialAssert bool) error {
	// Initialize GPIO
	hw, err := gpio.NewRealIO(cfg.Pins.Button, cfg.Pins.HPD)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer hw.Close()

	// Print state mode
	if printState {
		pressed, err := hw.Read()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		if pressed {
			fmt.Println("button: pressed")
		} else {
			fmt.Println("button: released")
		}
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:           int64(cfg.Timing.PollMs),
		DebounceMs:       int64(cfg.Timing.DebounceMs),
		LongPressMs:      int64(cfg.Timing.LongPressMs),
		PulseDwellMs:     int64(cfg.Timing.PulseDwellMs),
		ReconnectDwellMs: int64(cfg.Timing.ReconnectDwellMs),
		MaxBusyMs:        int64(cfg.Timing.MaxBusyMs),
		HeartbeatMs:      int64(cfg.Timing.HeartbeatMs),
		Broker:           cfg.MQTT.Broker,
		HTTPAddr:         cfg.HTTP.Addr,
		SerialPort:       cfg.Serial.Port,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

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
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// External command sources: MQTT command topic, optional serial console.
	commands := make(chan string, 8)
	go func() {
		for w := range publisher.Commands() {
			select {
			case commands <- w:
			default:
				log.Printf("command channel full, dropping %q", w)
			}
		}
	}()
	if cfg.Serial.Port != "" {
		port, err := serialcmd.Open(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("open serial console: %w", err)
		}
		defer port.Close()
		go func() {
			if err := serialcmd.Run(port, commands); err != nil {
				log.Printf("serial console error: %v", err)
			}
		}()
		log.Printf("serial console on %s at %d baud", cfg.Serial.Port, cfg.Serial.Baud)
	}

	log.Printf("started: poll=%v debounce=%v long-press=%v pulse=%v reconnect=%v broker=%s",
		cfg.Timing.Poll(), cfg.Timing.Debounce(), cfg.Timing.LongPress(),
		cfg.Timing.PulseDwell(), cfg.Timing.ReconnectDwell(), cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Timing.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lc := loopConfig{
		debounce:       cfg.Timing.Debounce(),
		longPress:      cfg.Timing.LongPress(),
		pulseDwell:     cfg.Timing.PulseDwell(),
		reconnectDwell: cfg.Timing.ReconnectDwell(),
		maxBusy:        cfg.Timing.MaxBusy(),
		heartbeat:      cfg.Timing.Heartbeat(),
		initialAssert:  initialAssert,
	}
	return runLoop(hw, hw, publisher, publisher, tracker, lc, time.Now, ticker.C, commands, sigCh)
}

// loopConfig carries the timing knobs runLoop needs, decoupled from the
// flag/file plumbing so tests can construct it directly.
type loopConfig struct {
	debounce       time.Duration
	longPress      time.Duration
	pulseDwell     time.Duration
	reconnectDwell time.Duration
	maxBusy        time.Duration
	heartbeat      time.Duration
	initialAssert  bool
}

func runLoop(button gpio.Button, line gpio.Line, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, lc loopConfig, now func() time.Time, tick <-chan time.Time, commands <-chan string, sig <-chan os.Signal) error {
	startTime := now()
	deb := logic.NewDebouncer(lc.debounce)
	cls := logic.NewClassifier(lc.longPress)
	seq := hpd.NewSequencer(line, lc.pulseDwell, lc.reconnectDwell, lc.maxBusy)
	disp := dispatch.New(seq)

	settleUntil := startTime.Add(settleDelay)
	initialAsserted := !lc.initialAssert
	lastHeartbeat := startTime

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			// Leave the line de-asserted: a source staring at a dead
			// daemon must not believe a sink is attached.
			if err := line.Set(false); err != nil {
				log.Printf("lower hpd line: %v", err)
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
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

			// Advance any in-progress pulse/reconnect first so its
			// completion is never delayed by input handling.
			events := seq.Tick(t)

			pressed, err := button.Read()
			if err != nil {
				log.Printf("button read error: %v", err)
			} else if tr := deb.Sample(pressed, t); tr != nil {
				if kind := cls.OnTransition(*tr, t); kind != nil {
					log.Printf("press: %s", *kind)
					events = append(events, disp.OnPress(*kind, t)...)
				}
			}

			if !initialAsserted && deb.Baselined() && !t.Before(settleUntil) {
				initialAsserted = true
				log.Printf("asserting hpd after startup settle")
				events = append(events, disp.Inject(hpd.CommandAssert, t)...)
			}

			publishEvents(publisher, tracker, events)

			if lc.heartbeat > 0 && deb.Baselined() && t.Sub(lastHeartbeat) >= lc.heartbeat {
				lastHeartbeat = t
				counts := seq.CountsSnapshot()
				log.Printf("heartbeat: uptime=%v asserts=%d deasserts=%d pulses=%d reconnects=%d dropped=%d faults=%d",
					t.Sub(startTime), counts.Asserts, counts.Deasserts, counts.Pulses,
					counts.Reconnects, counts.DroppedBusy, counts.Faults)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, mqttStatus, seq, deb, cls)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP/LED consumers
			updateTracker(tracker, mqttStatus, seq, deb, cls)

		case w := <-commands:
			t := now()
			events, err := disp.InjectText(w, t)
			if err != nil {
				log.Printf("external command: %v", err)
				continue
			}
			log.Printf("external command: %s", w)
			publishEvents(publisher, tracker, events)
			updateTracker(tracker, mqttStatus, seq, deb, cls)
		}
	}
}

// publishEvents sends line events to the broker. A watchdog fault
// additionally goes out as a retained system event so it survives for
// late-joining observers.
func publishEvents(publisher mqtt.Publisher, tracker *status.Tracker, events []hpd.Event) {
	for _, e := range events {
		log.Printf("event: %s (state=%s busy=%v)", e.Type, e.State, e.Busy)
		if err := publisher.Publish(e); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}

		if e.Type == hpd.EventWatchdogFault {
			sys := mqtt.SystemEvent{
				Timestamp: e.Timestamp,
				Event:     "WATCHDOG_FAULT",
				Reason:    "stuck busy",
				Retained:  true,
			}
			if tracker != nil {
				snap := tracker.Snapshot()
				sys.RawPayload = status.FormatStatusEvent(snap, "WATCHDOG_FAULT", "stuck busy")
			}
			if err := publisher.PublishSystem(sys); err != nil {
				log.Printf("fault publish error: %v", err)
			}
		}
	}
}

func updateTracker(tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus, seq *hpd.Sequencer, deb *logic.Debouncer, cls *logic.Classifier) {
	if tracker == nil {
		return
	}
	tracker.Update(seq.State(), seq.Phase(), seq.Busy(), deb.Baselined(), cls.Pressed(), seq.CountsSnapshot())
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
