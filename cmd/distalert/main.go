// cmd/distalert/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/bernardothives/projeto-final-dsme/internal/actuator"
	"github.com/bernardothives/projeto-final-dsme/internal/config"
	"github.com/bernardothives/projeto-final-dsme/internal/controller"
	"github.com/bernardothives/projeto-final-dsme/internal/link"
	"github.com/bernardothives/projeto-final-dsme/internal/logger"
	"github.com/bernardothives/projeto-final-dsme/internal/metrics"
	"github.com/bernardothives/projeto-final-dsme/internal/mirror"
	"github.com/bernardothives/projeto-final-dsme/internal/remote"
	"github.com/bernardothives/projeto-final-dsme/internal/sensor"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: distalert <config.yaml>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "distalert: %v\n", err)
		os.Exit(1)
	}
}

// run owns every opened device; setup errors are returned so the deferred
// closes still release them.
func run(path string) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	root := logger.New(cfg.Logging.Level, cfg.Logging.Format).
		With(zap.String("device", cfg.Device.Name), zap.String("boot_id", uuid.NewString()))
	defer func() { _ = root.Sync() }()
	log := logger.For(root, "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Metrics
	// --------------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg); err != nil {
				log.Errorw("metrics listener failed", "addr", cfg.Metrics.Addr, "err", err)
			}
		}()
	}

	// --------------------
	// Actuator first: without it there is nothing to alert with.
	// --------------------

	act, err := actuator.Build(cfg.Actuator, logger.For(root, "actuator"))
	if err != nil {
		log.Errorw("actuator setup failed", "driver", cfg.Actuator.Driver, "err", err)
		return fmt.Errorf("actuator setup: %w", err)
	}
	defer func() {
		if err := act.Close(); err != nil {
			log.Warnw("actuator close", "err", err)
		}
	}()

	sens, err := sensor.Build(cfg.Sensor, logger.For(root, "sensor"))
	if err != nil {
		log.Errorw("sensor setup failed", "driver", cfg.Sensor.Driver, "err", err)
		return fmt.Errorf("sensor setup: %w", err)
	}
	defer sens.Close()

	// --------------------
	// Network link
	// --------------------

	st, err := buildStation(cfg.WiFi, logger.For(root, "station"))
	if err != nil {
		log.Errorw("station setup failed", "driver", cfg.WiFi.Driver, "err", err)
		return fmt.Errorf("station setup: %w", err)
	}
	defer st.Close()

	mgr := link.NewManager(st, logger.For(root, "link"), m)
	go mgr.Run(ctx)

	creds := link.Credentials{SSID: cfg.WiFi.SSID, Passphrase: cfg.WiFi.Passphrase}
	if err := mgr.Connect(ctx, creds, ms(cfg.WiFi.ConnectTimeoutMs)); err != nil {
		log.Errorw("initial network setup failed", "ssid", cfg.WiFi.SSID, "err", err)
		return fmt.Errorf("network setup: %w", err)
	}

	// --------------------
	// Remote + optional mirror
	// --------------------

	rc := remote.New(remote.Endpoint{
		BaseURL:    cfg.Remote.BaseURL,
		ConfigPath: cfg.Remote.ConfigPath,
		LogsPath:   cfg.Remote.LogsPath,
	}, ms(cfg.Remote.TimeoutMs))

	deps := controller.Deps{
		Remote:   rc,
		Sensor:   sens,
		Actuator: act,
		Metrics:  m,
		Log:      logger.For(root, "controller"),
	}

	if cfg.Mirror.Broker != "" {
		pub, err := mirror.Connect(mirror.Config{
			Broker:   cfg.Mirror.Broker,
			Topic:    cfg.Mirror.Topic,
			ClientID: cfg.Mirror.ClientID,
			Timeout:  ms(cfg.Mirror.TimeoutMs),
		}, logger.For(root, "mirror"))
		if err != nil {
			// optional side channel; the loop runs without it
			log.Warnw("mirror disabled", "broker", cfg.Mirror.Broker, "err", err)
		} else {
			defer pub.Close()
			deps.Mirror = pub
		}
	}

	// --------------------
	// Control loop (blocks until signal)
	// --------------------

	ctl, err := controller.New(controller.Config{
		Device:             cfg.Device.Name,
		Interval:           ms(cfg.Loop.IntervalMs),
		Pulse:              ms(cfg.Loop.PulseMs),
		SensorTimeout:      ms(cfg.Sensor.TimeoutMs),
		DefaultThresholdCm: *cfg.Loop.DefaultThresholdCm,
	}, deps)
	if err != nil {
		log.Errorw("controller setup failed", "err", err)
		return fmt.Errorf("controller setup: %w", err)
	}

	ctl.Run(ctx)
	log.Infow("shutting down")
	return nil
}

func buildStation(c config.WiFiConfig, log *zap.SugaredLogger) (link.Station, error) {
	switch c.Driver {
	case config.WiFiDriverSim:
		return link.NewSimStation(ms(c.SimAssociateDelayMs)), nil
	case config.WiFiDriverNL80211:
		return link.NewNL80211Station(c.Interface, log)
	default:
		return nil, fmt.Errorf("unknown wifi driver %q", c.Driver)
	}
}
