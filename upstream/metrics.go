package upstream

import (
	"sort"
	"sync"
	"time"
)

// Timing is one timed request.
type Timing struct {
	Duration   time.Duration
	OK         bool
	Status     int
	StatusText string
}

// StatusCount is a non-ok status seen in a window of requests.
type StatusCount struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}

// Summary aggregates the timings of one HTTP method.
// Durations are reported in milliseconds.
type Summary struct {
	TotalCount    int           `json:"totalCount"`
	Count         int           `json:"count"`
	MeanMillis    float64       `json:"mean"`
	MinMillis     float64       `json:"min"`
	MaxMillis     float64       `json:"max"`
	NumOK         int           `json:"numOk"`
	NumNotOK      int           `json:"numNotOk"`
	StatusesNotOK []StatusCount `json:"statusesNotOk"`
}

// Metrics collects request timings per HTTP method.
// It is safe for concurrent use.
type Metrics struct {
	mu      sync.Mutex
	timings map[string][]Timing
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{timings: map[string][]Timing{}}
}

// Record appends a timing for method.
func (m *Metrics) Record(method string, t Timing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[method] = append(m.timings[method], t)
}

// Snapshot summarizes the most recent history timings of each method.
// A history of zero or less summarizes everything recorded.
func (m *Metrics) Snapshot(history int) map[string]Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Summary, len(m.timings))
	for method, all := range m.timings {
		recent := all
		if history > 0 && history < len(all) {
			recent = all[len(all)-history:]
		}

		s := Summary{
			TotalCount:    len(all),
			Count:         len(recent),
			StatusesNotOK: []StatusCount{},
		}
		var sum, lo, hi time.Duration
		for i, t := range recent {
			if t.OK {
				s.NumOK++
			} else {
				s.NumNotOK++
				s.StatusesNotOK = append(s.StatusesNotOK, StatusCount{Status: t.Status, StatusText: t.StatusText})
			}
			sum += t.Duration
			if i == 0 || t.Duration < lo {
				lo = t.Duration
			}
			hi = max(hi, t.Duration)
		}
		if s.Count > 0 {
			s.MeanMillis = millis(sum) / float64(s.Count)
		}
		s.MinMillis = millis(lo)
		s.MaxMillis = millis(hi)
		out[method] = s
	}
	return out
}

// Methods returns the recorded method names, sorted.
func (m *Metrics) Methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	methods := make([]string, 0, len(m.timings))
	for method := range m.timings {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// Reset discards every recorded timing.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings = map[string][]Timing{}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
