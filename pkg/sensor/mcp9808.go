package sensor

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	regAmbientTemp = 0x05

	flagTCrit  = 0x80
	flagTUpper = 0x40
	flagTLower = 0x20
	signBit    = 0x10
)

// MCP9808Sensor reads the ambient temperature register over I²C, bypassing
// the kernel driver. The sensor is used with whatever resolution it is
// already set to.
type MCP9808Sensor struct {
	dev    *i2c.Dev
	bus    i2c.BusCloser
	name   string
	logger log.FieldLogger
}

func NewMCP9808Sensor(bus string, addr int) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev := &i2c.Dev{Addr: uint16(addr), Bus: b}
	return &MCP9808Sensor{dev: dev, bus: b, name: fmt.Sprintf("i2c-%s@0x%02x", bus, addr), logger: log.StandardLogger()}, nil
}

func (s *MCP9808Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

func (s *MCP9808Sensor) Read() (Reading, error) {
	readBuf := make([]byte, 2)
	if err := s.dev.Tx([]byte{regAmbientTemp}, readBuf); err != nil {
		return Reading{}, &ReadError{Kind: KindOther, Path: s.name, Err: fmt.Errorf("read temperature register: %w", err)}
	}
	s.logAlertFlags(readBuf[0])
	return Reading{Celsius: decodeAmbient(readBuf[0], readBuf[1]), Timestamp: time.Now()}, nil
}

// decodeAmbient converts the two register bytes to Celsius. Bits 7..5 of the
// upper byte are alert flags, bit 4 is the sign.
func decodeAmbient(upper, lower byte) float64 {
	upper &= 0x1F
	t := float64(upper&0x0F)*16 + float64(lower)/16
	if upper&signBit != 0 {
		t -= 256
	}
	return t
}

func (s *MCP9808Sensor) logAlertFlags(upper byte) {
	logger := s.logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	if upper&flagTCrit != 0 {
		logger.Debug("mcp9808: TA >= TCRIT")
	}
	if upper&flagTUpper != 0 {
		logger.Debug("mcp9808: TA > TUPPER")
	}
	if upper&flagTLower != 0 {
		logger.Debug("mcp9808: TA < TLOWER")
	}
}
