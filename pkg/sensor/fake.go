package sensor

import (
	"math/rand"
	"sync"
	"time"
)

// FakeSensor produces a slow random walk around room temperature.
type FakeSensor struct {
	mu      sync.Mutex
	current float64
	rnd     *rand.Rand
}

func NewFakeSensor() Sensor {
	return &FakeSensor{current: 22.0, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (f *FakeSensor) Read() (Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// MCP9808 steps are 0.0625°C
	f.current += float64(f.rnd.Intn(5)-2) * 0.0625
	if f.current < 15 || f.current > 30 {
		f.current = 22.0
	}
	return Reading{Celsius: f.current, Timestamp: time.Now()}, nil
}

func (f *FakeSensor) Close() error { return nil }
