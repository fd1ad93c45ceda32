// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and hot-reload
// propagation. Only a small set of keys is reloadable at runtime; the
// structural knobs (worker count, slot count, transport) are fixed per
// boot, mirroring the fixed-capacity design of the slot pool.

package control

import "sync"

// Reloadable configuration keys.
const (
	KeyLogLevel      = "log.level"
	KeyEnableMetrics = "metrics.enable"
)

// ConfigStore is a dynamic key/value map with atomic snapshot and
// listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config: make(map[string]any),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// Get returns one value and whether it is set.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	return v, ok
}

// SetConfig merges new values and notifies reload listeners once.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	changed := false
	for k, v := range newCfg {
		if cs.config[k] != v {
			cs.config[k] = v
			changed = true
		}
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener hook called after config changes.
// Listeners run synchronously on the updater's goroutine and must not
// call back into the store's setters.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
