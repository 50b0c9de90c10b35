package performance

import (
	"sort"
	"sync"
	"time"
)

// Tracker aggregates completed markers per operation.
type Tracker struct {
	mu            sync.RWMutex
	stats         map[string]*OperationStats
	slowThreshold time.Duration
	started       time.Time
}

// OperationStats summarises every completed marker for one operation.
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int           `json:"count"`
	Failures  int           `json:"failures"`
	Slow      int           `json:"slow"`
	Total     time.Duration `json:"total"`
	Max       time.Duration `json:"max"`
}

// Average is the mean duration, zero when nothing completed.
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// NewTracker creates a tracker that flags operations slower than slowThreshold.
func NewTracker(slowThreshold time.Duration) *Tracker {
	return &Tracker{
		stats:         make(map[string]*OperationStats),
		slowThreshold: slowThreshold,
		started:       time.Now(),
	}
}

// StartOperation creates a new performance marker for an operation
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	return &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
	}
}

// CompleteOperation completes the marker and records it. It reports whether
// the operation was slow.
func (t *Tracker) CompleteOperation(marker *Marker) bool {
	if marker == nil || marker.Completed {
		return false
	}
	marker.Complete()
	slow := t.slowThreshold > 0 && marker.Duration > t.slowThreshold

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[marker.Operation]
	if !ok {
		s = &OperationStats{Operation: marker.Operation}
		t.stats[marker.Operation] = s
	}
	s.Count++
	s.Total += marker.Duration
	if marker.Duration > s.Max {
		s.Max = marker.Duration
	}
	if !marker.Success {
		s.Failures++
	}
	if slow {
		s.Slow++
	}
	return slow
}

// Snapshot returns per-operation stats sorted by operation name.
func (t *Tracker) Snapshot() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]OperationStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Uptime is the time since the tracker was created.
func (t *Tracker) Uptime() time.Duration { return time.Since(t.started) }
