// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control over the control package
// primitives, plus the publishing glue that keeps dispatcher, pool and
// allocator counters visible through it.

package adapters

import (
	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/control"
)

// ControlAdapter aggregates config, metrics and debug probes behind
// api.Control.
type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter builds an adapter with platform probes installed.
func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

var _ api.Control = (*ControlAdapter)(nil)

// ConfigStore exposes the underlying store for the file watcher.
func (c *ControlAdapter) ConfigStore() *control.ConfigStore { return c.config }

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	return nil
}

func (c *ControlAdapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any)
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}

// SetMetric publishes one metric value.
func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// PublishDispatcher pushes a dispatcher snapshot into the metrics
// registry. The facade calls this periodically and on shutdown.
func (c *ControlAdapter) PublishDispatcher(ds api.DispatcherStats) {
	c.metrics.Set(control.MetricOpsFetched, ds.OpsFetched)
	c.metrics.Set(control.MetricOpsCompleted, ds.OpsCompleted)
	c.metrics.Set(control.MetricOpsDropped, ds.OpsDropped)
	c.metrics.Set(control.MetricInvocations, ds.Invocations)
	c.metrics.Set(control.MetricDoorbells, ds.Doorbells)
}

// PublishPools pushes slot pool and payload allocator snapshots.
func (c *ControlAdapter) PublishPools(ps api.SlotPoolStats, as api.AllocatorStats) {
	c.metrics.Set(control.MetricPoolInUse, ps.InUse)
	c.metrics.Set(control.MetricPoolHighWater, ps.HighWater)
	c.metrics.Set(control.MetricPayloadInUse, as.InUse)
	c.metrics.Set(control.MetricPayloadPeak, as.Peak)
	c.metrics.Set(control.MetricPayloadFailures, as.Failures)
}
