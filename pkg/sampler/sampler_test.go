package sampler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ericogr/mcp9808-reader/pkg/output"
	"github.com/ericogr/mcp9808-reader/pkg/output/console"
	"github.com/ericogr/mcp9808-reader/pkg/sensor"
)

type scriptedSensor struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (s *scriptedSensor) Read() (sensor.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.results) && s.results[i] != nil {
		return sensor.Reading{}, s.results[i]
	}
	return sensor.Reading{Celsius: float64(i), Timestamp: time.Now()}, nil
}

func (s *scriptedSensor) Close() error { return nil }

func (s *scriptedSensor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type failingOutput struct{ calls int }

func (f *failingOutput) Publish(sensor.Reading) error { f.calls++; return errors.New("closed pipe") }
func (f *failingOutput) PublishError(error) error     { f.calls++; return errors.New("closed pipe") }
func (f *failingOutput) Close() error                 { return nil }

func TestSampleOnceEndToEnd(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"23.456789", "Temperature: 23.4568 °C\n"},
		{"  19  \n", "Temperature: 19.0000 °C\n"},
		{"", "Error: Could not parse temperature data.\n"},
		{"abc", "Error: Could not parse temperature data.\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "mcp9808")
		require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

		var buf bytes.Buffer
		s := New(sensor.NewDeviceFileSensor(path), []output.Output{console.NewConsoleWriter(&buf)}, 0)
		s.SampleOnce()
		assert.Equal(t, tt.want, buf.String(), "content %q", tt.content)
	}
}

func TestSampleOnceMissingDevice(t *testing.T) {
	var buf bytes.Buffer
	s := New(sensor.NewDeviceFileSensor("/dev/mcp9808-does-not-exist"), []output.Output{console.NewConsoleWriter(&buf)}, 0)
	s.SampleOnce()
	assert.Equal(t, "Error: Device file '/dev/mcp9808-does-not-exist' not found.\n", buf.String())
}

func TestSampleOnceSeesChangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp9808")
	var buf bytes.Buffer
	s := New(sensor.NewDeviceFileSensor(path), []output.Output{console.NewConsoleWriter(&buf)}, 0)

	require.NoError(t, os.WriteFile(path, []byte("20.125\n"), 0o644))
	s.SampleOnce()
	require.NoError(t, os.WriteFile(path, []byte("20.25\n"), 0o644))
	s.SampleOnce()

	assert.Equal(t, "Temperature: 20.1250 °C\nTemperature: 20.2500 °C\n", buf.String())
}

func TestSampleOnceOutputFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var buf bytes.Buffer
	failing := &failingOutput{}
	s := New(&scriptedSensor{}, []output.Output{failing, console.NewConsoleWriter(&buf)}, 0)
	s.Logger = logger

	s.SampleOnce()

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "Temperature: 0.0000 °C\n", buf.String())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "output publish failed", hook.LastEntry().Message)
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &scriptedSensor{results: []error{
		&sensor.ReadError{Kind: sensor.KindNotFound, Path: "/dev/mcp9808"},
		&sensor.ReadError{Kind: sensor.KindParse, Path: "/dev/mcp9808"},
	}}
	var mu sync.Mutex
	var buf bytes.Buffer
	out := console.NewConsoleWriter(&lockedWriter{mu: &mu, w: &buf})
	s := New(src, []output.Output{out}, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return src.Calls() >= 4 }, 5*time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	mu.Unlock()
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Error: Device file '/dev/mcp9808' not found.", lines[0])
	assert.Equal(t, "Error: Could not parse temperature data.", lines[1])
	assert.Equal(t, "Temperature: 2.0000 °C", lines[2])
	assert.Equal(t, "Temperature: 3.0000 °C", lines[3])
}

func TestRunCancelledDuringSleep(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &scriptedSensor{}
	s := New(src, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return src.Calls() == 1 }, 5*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, src.Calls())
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
