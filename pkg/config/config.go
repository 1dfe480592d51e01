package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDevicePath = "/dev/mcp9808"
	DefaultIntervalMs = 100
	DefaultI2CBus     = "1"
	DefaultI2CAddress = 0x18

	// 7-bit addresses outside this range are reserved
	minI2CAddress = 0x03
	maxI2CAddress = 0x77

	SensorDeviceFile = "devfile"
	SensorI2C        = "i2c"
	SensorSimulation = "simulation"

	OutputConsole    = "console"
	OutputStructured = "structured"
)

type I2CConfig struct {
	Bus     string `json:"bus" yaml:"bus"`
	Address int    `json:"address" yaml:"address"`
}

type OutputConfig struct {
	Type string `json:"type" yaml:"type"`
}

type Config struct {
	DevicePath string         `json:"device_path" yaml:"device_path"`
	IntervalMs int            `json:"interval_ms" yaml:"interval_ms"`
	SensorType string         `json:"sensor_type" yaml:"sensor_type"`
	I2C        I2CConfig      `json:"i2c" yaml:"i2c"`
	Outputs    []OutputConfig `json:"outputs" yaml:"outputs"`
	LogLevel   string         `json:"log_level" yaml:"log_level"`
}

// DefaultConfig reproduces the fixed path and poll interval of the plain
// reader: /dev/mcp9808 every 100ms, printed to the console.
func DefaultConfig() Config {
	return Config{
		DevicePath: DefaultDevicePath,
		IntervalMs: DefaultIntervalMs,
		SensorType: SensorDeviceFile,
		I2C:        I2CConfig{Bus: DefaultI2CBus, Address: DefaultI2CAddress},
		Outputs:    []OutputConfig{{Type: OutputConsole}},
		LogLevel:   "info",
	}
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c Config) Validate() error {
	if c.IntervalMs < 0 {
		return errors.New("interval-ms must be >= 0")
	}
	switch c.SensorType {
	case SensorDeviceFile, SensorI2C, SensorSimulation:
	default:
		return fmt.Errorf("unknown sensor type %q", c.SensorType)
	}
	if c.I2C.Address < minI2CAddress || c.I2C.Address > maxI2CAddress {
		return fmt.Errorf("i2c-address 0x%02x out of range 0x%02x..0x%02x", c.I2C.Address, minI2CAddress, maxI2CAddress)
	}
	if len(c.Outputs) == 0 {
		return errors.New("at least one output is required")
	}
	for _, o := range c.Outputs {
		switch strings.ToLower(o.Type) {
		case OutputConsole, OutputStructured:
		default:
			return fmt.Errorf("unknown output type %q", o.Type)
		}
	}
	return nil
}

// LoadFromFlags loads configuration from the process arguments.
func LoadFromFlags() (Config, error) {
	return Load(os.Args[1:])
}

// Load reads an optional JSON or YAML file named by -config, then applies the
// remaining flags on top of it.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("mcp9808-reader", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to JSON or YAML config file")
	flagDevice := fs.String("device", "", "Temperature device file (default /dev/mcp9808)")
	flagInterval := fs.Int("interval-ms", -1, "Poll interval in ms")
	flagSensorType := fs.String("sensor-type", "", "sensor type: devfile|i2c|simulation")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagI2CAddStr := fs.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagOutputs := fs.String("outputs", "", "Comma-separated outputs (console,structured)")
	flagLogLevel := fs.String("log-level", "", "Log level (debug,info,warn,error)")

	cfg := DefaultConfig()
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *cfgPath != "" {
		if err := loadFile(*cfgPath, &cfg); err != nil {
			return cfg, err
		}
	}

	if *flagDevice != "" {
		cfg.DevicePath = *flagDevice
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
