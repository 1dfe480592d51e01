package sampler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ericogr/mcp9808-reader/pkg/output"
	"github.com/ericogr/mcp9808-reader/pkg/sensor"
)

// Sampler reads the sensor once per cycle and hands the outcome to every
// output. Failures of either are reported and never stop the loop.
type Sampler struct {
	Sensor   sensor.Sensor
	Outputs  []output.Output
	Interval time.Duration
	Logger   logrus.FieldLogger
}

func New(s sensor.Sensor, outs []output.Output, interval time.Duration) *Sampler {
	return &Sampler{Sensor: s, Outputs: outs, Interval: interval, Logger: logrus.StandardLogger()}
}

// SampleOnce performs a single read and report.
func (s *Sampler) SampleOnce() {
	r, readErr := s.Sensor.Read()
	for _, o := range s.Outputs {
		var err error
		if readErr != nil {
			err = o.PublishError(readErr)
		} else {
			err = o.Publish(r)
		}
		if err != nil {
			s.logger().WithError(err).Warn("output publish failed")
		}
	}
}

// Run samples, then waits Interval, until ctx is cancelled. Cancellation is
// only observed between cycles.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		s.SampleOnce()

		timer := time.NewTimer(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Sampler) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
