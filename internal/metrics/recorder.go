package metrics

import (
	"sync"
	"time"
)

// Recorder keeps everything in memory. Tests use it to assert on emitted metrics.
type Recorder struct {
	mu        sync.Mutex
	Counters  map[string]int
	Durations map[string][]time.Duration
	Gauges    map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		Counters:  make(map[string]int),
		Durations: make(map[string][]time.Duration),
		Gauges:    make(map[string]int),
	}
}

func (r *Recorder) Increment(metric string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counters[metric]++
}

func (r *Recorder) Duration(metric string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Durations[metric] = append(r.Durations[metric], d)
}

func (r *Recorder) Gauge(metric string, value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Gauges[metric] = value
}

func (r *Recorder) Counter(metric string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Counters[metric]
}

func (r *Recorder) GaugeValue(metric string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Gauges[metric]
}
