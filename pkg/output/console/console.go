package console

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/ericogr/mcp9808-reader/pkg/output"
	"github.com/ericogr/mcp9808-reader/pkg/sensor"
)

type ConsoleOutput struct {
	w io.Writer
}

// NewConsole writes to whatever os.Stdout is at publish time.
func NewConsole() output.Output { return &ConsoleOutput{} }

func NewConsoleWriter(w io.Writer) output.Output { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) writer() io.Writer {
	if c.w != nil {
		return c.w
	}
	return os.Stdout
}

func (c *ConsoleOutput) Publish(r sensor.Reading) error {
	_, err := fmt.Fprintln(c.writer(), FormatReading(r))
	return err
}

func (c *ConsoleOutput) PublishError(readErr error) error {
	_, err := fmt.Fprintln(c.writer(), FormatError(readErr))
	return err
}

func (c *ConsoleOutput) Close() error { return nil }

func FormatReading(r sensor.Reading) string {
	return fmt.Sprintf("Temperature: %s °C", formatCelsius(r.Celsius))
}

func FormatError(err error) string {
	var path string
	var re *sensor.ReadError
	if errors.As(err, &re) {
		path = re.Path
	}
	switch sensor.KindOf(err) {
	case sensor.KindNotFound:
		return fmt.Sprintf("Error: Device file '%s' not found.", path)
	case sensor.KindPermission:
		return fmt.Sprintf("Error: Permission denied. Please check permissions for '%s'.", path)
	case sensor.KindParse:
		return "Error: Could not parse temperature data."
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}

func formatCelsius(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
