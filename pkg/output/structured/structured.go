package structured

import (
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ericogr/mcp9808-reader/pkg/output"
	"github.com/ericogr/mcp9808-reader/pkg/sensor"
)

// StructuredOutput emits each cycle as a logrus entry, so readings can be
// shipped through whatever formatter/hook the logger is configured with.
type StructuredOutput struct {
	logger logrus.FieldLogger
}

func NewStructured(logger logrus.FieldLogger) output.Output {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StructuredOutput{logger: logger}
}

func (s *StructuredOutput) Publish(r sensor.Reading) error {
	fields := logrus.Fields{
		"celsius":   r.Celsius,
		"timestamp": r.Timestamp,
	}
	// physic.Temperature is fixed point and cannot hold inf or nan
	if !math.IsInf(r.Celsius, 0) && !math.IsNaN(r.Celsius) {
		fields["temperature"] = r.Temperature().String()
	}
	s.logger.WithFields(fields).Info("temperature reading")
	return nil
}

func (s *StructuredOutput) PublishError(err error) error {
	fields := logrus.Fields{"kind": sensor.KindOf(err).String()}
	var re *sensor.ReadError
	if errors.As(err, &re) && re.Path != "" {
		fields["device"] = re.Path
	}
	s.logger.WithFields(fields).WithError(err).Error("temperature read failed")
	return nil
}

func (s *StructuredOutput) Close() error { return nil }
