// Command poolmon supervises the pool equipment: a circulation pump driven
// by temperature hysteresis, a pool pump cycled when flow is low, a 20x4
// character LCD with rotary-encoder navigation, and MQTT telemetry.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kowhai/poolmon/internal/control"
	"github.com/kowhai/poolmon/internal/display"
	"github.com/kowhai/poolmon/internal/input"
	"github.com/kowhai/poolmon/internal/lcd"
	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
	"github.com/kowhai/poolmon/internal/telemetry"
	"github.com/kowhai/poolmon/internal/web"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Settings file path (default ~/.config/poolmon/config.yml)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable telemetry)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	chip := flag.String("chip", "gpiochip0", "GPIO character device")
	pinCP := flag.Int("pin-cp", pump.DefaultPinCP, "BCM pin number for the circulation pump relay")
	pinPP := flag.Int("pin-pp", pump.DefaultPinPP, "BCM pin number for the pool pump relay")
	pinButton := flag.Int("pin-button", input.DefaultPinButton, "BCM pin number for the encoder push button")
	pinEncA := flag.Int("pin-enc-a", input.DefaultPinEncoderA, "BCM pin number for encoder channel A")
	pinEncB := flag.Int("pin-enc-b", input.DefaultPinEncoderB, "BCM pin number for encoder channel B")
	i2cBus := flag.String("i2c", "", "I2C bus for the LCD backpack (empty for the first available)")
	lcdAddr := flag.Uint("lcd-addr", lcd.DefaultAddr, "I2C address of the LCD backpack")
	dump := flag.Bool("dump", false, "Print the seeded store and exit")

	flag.Parse()

	if err := run(*configPath, *broker, *httpAddr, *chip,
		*pinCP, *pinPP, *pinButton, *pinEncA, *pinEncB,
		*i2cBus, uint16(*lcdAddr), *dump); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, broker, httpAddr, chip string,
	pinCP, pinPP, pinButton, pinEncA, pinEncB int,
	i2cBus string, lcdAddr uint16, dump bool) error {

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ds := store.New()
	seedStore(ds, cfg)
	ds.SetBool(store.SystemTimeSet, 0, time.Now().Year() > 2000)

	if dump {
		ds.Dump(os.Stdout)
		return nil
	}

	// Relay and display hardware is required. Failing to open either is
	// fatal; everything downstream degrades instead of exiting.
	actuator, err := pump.NewRealActuator(chip, pinCP, pinPP)
	if err != nil {
		return fmt.Errorf("init pump relays: %w", err)
	}
	defer actuator.Close()

	device, err := lcd.NewRealDevice(i2cBus, lcdAddr)
	if err != nil {
		return fmt.Errorf("init lcd: %w", err)
	}
	defer device.Close()

	source, err := input.NewRealSource(chip, pinEncA, pinEncB, pinButton)
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer source.Close()

	var publisher telemetry.Publisher = telemetry.NopPublisher{}
	if broker != "" {
		publisher = telemetry.NewRealPublisher(broker, ds)
	}
	defer publisher.Close()

	pumps := telemetry.InstrumentActuator(actuator, publisher)

	registry, err := display.NewRegistry()
	if err != nil {
		return fmt.Errorf("build page registry: %w", err)
	}

	var busMu sync.Mutex
	engine := display.NewEngine(display.NewGuard(device), registry, ds, source.Events(), &busMu)
	engine.Dump = func(s *store.Store) {
		var buf bytes.Buffer
		s.Dump(&buf)
		log.Printf("store dump:\n%s", buf.String())
		if err := publisher.PublishDump(buf.Bytes()); err != nil {
			log.Printf("dump publish error: %v", err)
		}
	}

	if err := publisher.PublishSystem(telemetry.SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Retained:  true,
	}); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, ds)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go control.NewCP(ds, pumps).Run(ctx)
	go control.NewPP(ds, pumps).Run(ctx)
	go func() {
		if err := engine.Run(ctx); err != nil {
			log.Printf("display engine stopped: %v", err)
		}
	}()

	if cfg.ConfigPath != "" {
		log.Printf("started: version=%s config=%s broker=%s", version, cfg.ConfigPath, broker)
	} else {
		log.Printf("started: version=%s broker=%s", version, broker)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	s := <-sigCh
	log.Printf("received %v, shutting down", s)
	cancel()

	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := telemetry.SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
	return nil
}
