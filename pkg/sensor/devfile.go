package sensor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// DeviceFileSensor reads a decimal Celsius value from a text pseudo-file such
// as the /dev/mcp9808 node created by the kernel driver. The file is opened
// fresh on every Read so nothing is cached between cycles.
type DeviceFileSensor struct {
	path string
}

// NewDeviceFileSensor never touches the filesystem; a bad path surfaces on Read.
func NewDeviceFileSensor(path string) Sensor {
	return &DeviceFileSensor{path: path}
}

func (s *DeviceFileSensor) Path() string { return s.path }

func (s *DeviceFileSensor) Read() (Reading, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Reading{}, classify(s.path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return Reading{}, classify(s.path, err)
	}
	value, err := parseCelsius(string(b))
	if err != nil {
		return Reading{}, &ReadError{Kind: KindParse, Path: s.path, Err: err}
	}
	return Reading{Celsius: value, Timestamp: time.Now()}, nil
}

func (s *DeviceFileSensor) Close() error { return nil }

// parseCelsius accepts decimal notation only. Hex floats are rejected and a
// signed "nan" is allowed.
func parseCelsius(text string) (float64, error) {
	t := strings.TrimSpace(text)
	if strings.ContainsAny(t, "xX") {
		return 0, fmt.Errorf("parse temperature %q: not a decimal number", t)
	}
	if unsigned := strings.TrimLeft(t, "+-"); len(t)-len(unsigned) == 1 && strings.EqualFold(unsigned, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		// out of range values come back as ±Inf, keep them
		if errors.Is(err, strconv.ErrRange) {
			return v, nil
		}
		return 0, fmt.Errorf("parse temperature %q: %w", t, err)
	}
	return v, nil
}
