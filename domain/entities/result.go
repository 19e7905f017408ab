package entities

import (
	"sort"
	"sync"
	"time"
)

// MissingInput records an input that never reached its port.
type MissingInput struct {
	Error *ErrorDetail `json:"error,omitempty"`
	Port  PortName     `json:"port"`
	Path  string       `json:"path"`
}

// Report summarizes a bridge run. It is safe for concurrent use while the
// run is in progress.
type Report struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Delivered counts messages sent per inbound port.
	Delivered map[PortName]int `json:"delivered"`

	// Written counts completed file writes per output path.
	Written map[string]int `json:"written"`

	Missing []MissingInput `json:"missing,omitempty"`

	mu sync.Mutex
}

// NewReport creates an empty report stamped with the current time.
func NewReport() *Report {
	return &Report{
		StartTime: time.Now(),
		Delivered: make(map[PortName]int),
		Written:   make(map[string]int),
	}
}

// RecordDelivered notes that a payload was sent on port.
func (r *Report) RecordDelivered(port PortName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Delivered[port]++
}

// RecordWritten notes a completed write to path.
func (r *Report) RecordWritten(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written[path]++
}

// RecordMissing notes an input that could not be read.
func (r *Report) RecordMissing(m MissingInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Missing = append(r.Missing, m)
	sort.Slice(r.Missing, func(i, j int) bool { return r.Missing[i].Port < r.Missing[j].Port })
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EndTime = time.Now()
}

// MissingPorts returns the ports that never received their input, sorted.
func (r *Report) MissingPorts() []PortName {
	r.mu.Lock()
	defer r.mu.Unlock()
	ports := make([]PortName, 0, len(r.Missing))
	for _, m := range r.Missing {
		ports = append(ports, m.Port)
	}
	return ports
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}
