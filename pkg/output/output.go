package output

import "github.com/ericogr/mcp9808-reader/pkg/sensor"

// Output receives the outcome of each sampling cycle: either a reading or
// the error that prevented one.
type Output interface {
	Publish(sensor.Reading) error
	PublishError(error) error
	Close() error
}

// helper constructors are in subpackages
