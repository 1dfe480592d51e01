package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ericogr/mcp9808-reader/pkg/config"
	"github.com/ericogr/mcp9808-reader/pkg/output"
	"github.com/ericogr/mcp9808-reader/pkg/output/console"
	"github.com/ericogr/mcp9808-reader/pkg/output/structured"
	"github.com/ericogr/mcp9808-reader/pkg/sampler"
	"github.com/ericogr/mcp9808-reader/pkg/sensor"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		log.Fatalf("config: %v", err)
	}

	s, err := initSensor(cfg)
	if err != nil {
		log.Fatalf("sensor: %v", err)
	}
	defer s.Close()

	outs, err := initOutputs(cfg)
	if err != nil {
		log.Fatalf("outputs: %v", err)
	}
	defer func() {
		for _, o := range outs {
			_ = o.Close()
		}
	}()

	log.WithFields(log.Fields{
		"sensor":   cfg.SensorType,
		"device":   cfg.DevicePath,
		"interval": cfg.Interval(),
	}).Debug("starting sampler")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sampler.New(s, outs, cfg.Interval()).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("sampler: %v", err)
	}
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	return nil
}

func initSensor(cfg config.Config) (sensor.Sensor, error) {
	switch cfg.SensorType {
	case config.SensorDeviceFile:
		return sensor.NewDeviceFileSensor(cfg.DevicePath), nil
	case config.SensorI2C:
		return sensor.NewMCP9808Sensor(cfg.I2C.Bus, cfg.I2C.Address)
	case config.SensorSimulation:
		return sensor.NewFakeSensor(), nil
	default:
		return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
	}
}

func initOutputs(cfg config.Config) ([]output.Output, error) {
	outs := make([]output.Output, 0, len(cfg.Outputs))
	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case config.OutputConsole:
			outs = append(outs, console.NewConsole())
		case config.OutputStructured:
			outs = append(outs, structured.NewStructured(log.StandardLogger()))
		default:
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
	}
	return outs, nil
}
