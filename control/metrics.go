// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for the boundary dispatcher. Counters are
// published by the drain loop, the slot pool and the payload
// allocator; consumers read atomic snapshots.

package control

import (
	"sync"
	"time"
)

// Metric keys published by the dispatcher wiring.
const (
	MetricOpsFetched      = "skel.ops_fetched"
	MetricOpsCompleted    = "skel.ops_completed"
	MetricOpsDropped      = "skel.ops_dropped"
	MetricInvocations     = "skel.invocations"
	MetricDoorbells       = "skel.doorbells"
	MetricPoolInUse       = "pool.in_use"
	MetricPoolHighWater   = "pool.high_water"
	MetricPayloadInUse    = "payload.in_use"
	MetricPayloadPeak     = "payload.peak"
	MetricPayloadFailures = "payload.failures"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Add increments a uint64 counter, creating it at zero.
func (mr *MetricsRegistry) Add(key string, delta uint64) {
	mr.mu.Lock()
	cur, _ := mr.metrics[key].(uint64)
	mr.metrics[key] = cur + delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated reports when a metric last changed.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
