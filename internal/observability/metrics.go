package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	requestTime  map[string]time.Duration
	errorCount   map[string]int64
}

// RouteStat is one row of a metrics snapshot.
type RouteStat struct {
	Key          string  `json:"key"`
	Count        int64   `json:"count"`
	AvgLatencyMs float64 `json:"avgLatencyMs,omitempty"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests []RouteStat `json:"requests"`
	Errors   []RouteStat `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		requestTime:  make(map[string]time.Duration),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestTime[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Requests: []RouteStat{}, Errors: []RouteStat{}}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, count := range m.requestCount {
		stat := RouteStat{Key: key, Count: count}
		if count > 0 {
			stat.AvgLatencyMs = float64(m.requestTime[key].Microseconds()) / float64(count) / 1000
		}
		snap.Requests = append(snap.Requests, stat)
	}
	for key, count := range m.errorCount {
		snap.Errors = append(snap.Errors, RouteStat{Key: key, Count: count})
	}
	sort.Slice(snap.Requests, func(i, j int) bool { return snap.Requests[i].Key < snap.Requests[j].Key })
	sort.Slice(snap.Errors, func(i, j int) bool { return snap.Errors[i].Key < snap.Errors[j].Key })
	return snap
}

func pathKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
