// File: config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Daemon configuration. Structural knobs (transport, workers, payload
// budget) are fixed per boot; the reloadable subset is exported as
// store keys for the control plane's file watcher.

package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/momentics/netskel/channel"
	"github.com/momentics/netskel/control"
	"github.com/momentics/netskel/pool"
	"github.com/momentics/netskel/skel"
)

// Transport kinds accepted in the config file.
const (
	TransportUnix  = "unix"
	TransportVsock = "vsock"
)

// Duration wraps time.Duration for TOML text decoding.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds parameters immutable per run plus the reloadable
// logging and metrics knobs.
type Config struct {
	Service       string    `toml:"service"`        // well-known stub service name
	Workers       int       `toml:"workers"`        // worker count == slot population
	PayloadBudget int64     `toml:"payload_budget"` // staged payload byte budget
	Transport     Transport `toml:"transport"`
	Log           Log       `toml:"log"`
	Metrics       Metrics   `toml:"metrics"`
}

// Transport selects and parameterizes the peer link.
type Transport struct {
	Kind      string `toml:"kind"`       // "unix" or "vsock"
	UnixPath  string `toml:"unix_path"`  // socket path for kind "unix"
	VsockCID  uint32 `toml:"vsock_cid"`  // peer context id for kind "vsock"
	VsockPort uint32 `toml:"vsock_port"` // port for kind "vsock"
}

// Log holds the reloadable logging knobs.
type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Metrics holds the reloadable metrics knobs.
type Metrics struct {
	Enable          bool     `toml:"enable"`
	PublishInterval Duration `toml:"publish_interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Service:       channel.ServiceName,
		Workers:       skel.DefaultWorkers,
		PayloadBudget: pool.DefaultPayloadBudget,
		Transport: Transport{
			Kind:     TransportUnix,
			UnixPath: "/run/netskel/stubs.sock",
		},
		Log: Log{Level: "info"},
		Metrics: Metrics{
			Enable:          true,
			PublishInterval: Duration(5 * time.Second),
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// A transport table in the file replaces the default one wholesale;
// inheriting the default unix path into a vsock selection would hand
// the dialer a half-configured link.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if md.IsDefined("transport") {
		cfg.Transport = Transport{}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the dispatcher cannot run with.
func (c *Config) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("service name must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.PayloadBudget <= 0 {
		return fmt.Errorf("payload_budget must be positive, got %d", c.PayloadBudget)
	}
	switch c.Transport.Kind {
	case TransportUnix:
		if c.Transport.UnixPath == "" {
			return fmt.Errorf("transport.unix_path must be set for kind %q", TransportUnix)
		}
	case TransportVsock:
		if c.Transport.VsockPort == 0 {
			return fmt.Errorf("transport.vsock_port must be set for kind %q", TransportVsock)
		}
	default:
		return fmt.Errorf("unknown transport kind %q", c.Transport.Kind)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ReloadableValues exports the hot-reloadable subset as control store
// keys.
func (c *Config) ReloadableValues() map[string]any {
	return map[string]any{
		control.KeyLogLevel:      c.Log.Level,
		control.KeyEnableMetrics: c.Metrics.Enable,
	}
}

// LoadReloadable is the control.LoadFunc used by the file watcher: it
// re-reads the file but only surfaces the reloadable keys.
func LoadReloadable(path string) (map[string]any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.ReloadableValues(), nil
}
