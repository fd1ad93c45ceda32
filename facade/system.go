// File: facade/system.go
// Unified facade layer for the netskel dispatcher.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the System struct, which aggregates all core
// components of the dispatcher behind a single facade: the peer link,
// the serialized invoker, the slot pool, the payload allocator, the
// network stack and the dispatcher itself, plus the control plane that
// observes them. The facade owns component lifecycle: New wires,
// Start discovers the peer and launches the drain loop under an
// errgroup, Stop tears everything down.

package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/netskel/adapters"
	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/channel"
	"github.com/momentics/netskel/config"
	"github.com/momentics/netskel/control"
	"github.com/momentics/netskel/netstack"
	"github.com/momentics/netskel/pool"
	"github.com/momentics/netskel/skel"
	"github.com/momentics/netskel/transport"
)

// Version is stamped into service info; overridden at link time by the
// daemon build.
var Version = "dev"

// Options overrides the externally pluggable collaborators. Zero
// values select the production implementations per the config.
type Options struct {
	// Link replaces the config-selected peer link. Tests and the
	// loopback example inject a pipe link here.
	Link api.PeerLink

	// Stack replaces the host network stack.
	Stack api.NetStack

	// Logger replaces the config-built logger.
	Logger *logrus.Logger
}

// System wires and runs the complete dispatcher.
type System struct {
	cfg   *config.Config
	log   *logrus.Logger
	entry *logrus.Entry
	id    string

	link  api.PeerLink
	stack api.NetStack
	pool  *pool.SlotPool
	alloc *pool.BudgetAllocator
	ctl   *adapters.ControlAdapter

	mu      sync.Mutex
	inv     *channel.Invoker
	disp    *skel.Dispatcher
	group   *errgroup.Group
	cancel  context.CancelFunc
	started bool
	info    api.ServiceInfo
}

// New builds a system from configuration. The peer link is dialed
// lazily in Start unless one is injected.
func New(cfg *config.Config, opts Options) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		var err error
		log, err = config.NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
	}
	stack := opts.Stack
	if stack == nil {
		stack = netstack.New()
	}
	s := &System{
		cfg:   cfg,
		log:   log,
		id:    uuid.NewString(),
		link:  opts.Link,
		stack: stack,
		pool:  pool.NewSlotPool(cfg.Workers),
		alloc: pool.NewBudgetAllocator(cfg.PayloadBudget),
		ctl:   adapters.NewControlAdapter(),
	}
	s.entry = log.WithFields(logrus.Fields{"component": "facade", "instance": s.id})
	s.ctl.RegisterDebugProbe("instance", func() any { return s.id })
	s.ctl.RegisterDebugProbe("pool", func() any { return s.pool.Stats() })
	s.ctl.RegisterDebugProbe("payload", func() any { return s.alloc.Stats() })
	_ = s.ctl.SetConfig(cfg.ReloadableValues())
	s.ctl.OnReload(s.applyReloadables)
	return s, nil
}

// Control exposes the control plane.
func (s *System) Control() api.Control { return s.ctl }

// ControlAdapter exposes the concrete adapter for wiring the config
// file watcher.
func (s *System) ControlAdapter() *adapters.ControlAdapter { return s.ctl }

// Info describes the running service.
func (s *System) Info() api.ServiceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Stats snapshots the dispatcher counters. Zero before Start.
func (s *System) Stats() api.DispatcherStats {
	s.mu.Lock()
	d := s.disp
	s.mu.Unlock()
	if d == nil {
		return api.DispatcherStats{}
	}
	return d.Stats()
}

// Start discovers the stub service and launches the drain loop and
// the metrics publisher. It returns once the system is running.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("facade: system already started")
	}

	if s.link == nil {
		link, err := s.dialLink()
		if err != nil {
			return err
		}
		s.link = link
	}

	s.entry.WithField("service", s.cfg.Service).Info("discovering stub service")
	handle, err := channel.Discover(ctx, s.link, s.cfg.Service)
	if err != nil {
		return fmt.Errorf("facade: %w", err)
	}
	s.inv = channel.NewInvoker(s.link, handle)
	s.disp = skel.NewDispatcher(s.inv, s.pool, s.alloc, s.stack, skel.Options{
		Workers: s.cfg.Workers,
		Logger:  s.log,
		Observer: api.Observer{
			OnOp: func(ev api.OpEvent) {
				s.entry.WithFields(logrus.Fields{"op": ev.Op.String(), "result": ev.Result}).Debug("operation completed")
			},
			OnDrop: func(ev api.DropEvent) {
				s.entry.WithField("op", ev.Op.String()).Warn("operation dropped")
			},
		},
	})

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, runCtx = errgroup.WithContext(runCtx)
	s.group.Go(func() error { return s.disp.Run(runCtx) })
	if s.cfg.Metrics.Enable {
		s.group.Go(func() error { return s.publishLoop(runCtx) })
	}
	s.started = true
	s.info = api.ServiceInfo{
		Name:      "netskeld",
		Version:   Version,
		Build:     s.id,
		StartedAt: time.Now(),
	}
	s.entry.WithField("workers", s.cfg.Workers).Info("dispatcher started")
	return nil
}

// Stop cancels the drain loop, waits for it and closes the link.
func (s *System) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel, group, inv := s.cancel, s.group, s.inv
	s.started = false
	s.mu.Unlock()

	cancel()
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if cerr := inv.Close(); cerr != nil && !errors.Is(cerr, api.ErrLinkClosed) && err == nil {
		err = cerr
	}
	s.publishOnce()
	s.entry.Info("dispatcher stopped")
	return err
}

// Shutdown implements api.GracefulShutdown.
func (s *System) Shutdown() error { return s.Stop() }

var _ api.GracefulShutdown = (*System)(nil)

func (s *System) dialLink() (api.PeerLink, error) {
	switch s.cfg.Transport.Kind {
	case config.TransportUnix:
		return transport.DialUnix(s.cfg.Transport.UnixPath)
	case config.TransportVsock:
		return transport.DialVsock(s.cfg.Transport.VsockCID, s.cfg.Transport.VsockPort)
	default:
		return nil, fmt.Errorf("facade: unknown transport kind %q", s.cfg.Transport.Kind)
	}
}

func (s *System) publishLoop(ctx context.Context) error {
	interval := s.cfg.Metrics.PublishInterval.Std()
	if interval <= 0 {
		interval = 5 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.publishOnce()
		}
	}
}

func (s *System) publishOnce() {
	if v, ok := s.ctl.ConfigStore().Get(control.KeyEnableMetrics); ok {
		if enabled, _ := v.(bool); !enabled {
			return
		}
	}
	s.mu.Lock()
	d := s.disp
	s.mu.Unlock()
	if d != nil {
		s.ctl.PublishDispatcher(d.Stats())
	}
	s.ctl.PublishPools(s.pool.Stats(), s.alloc.Stats())
}

// applyReloadables pushes the hot config subset into the live logger.
func (s *System) applyReloadables() {
	if v, ok := s.ctl.ConfigStore().Get(control.KeyLogLevel); ok {
		if level, _ := v.(string); level != "" {
			if lvl, err := config.ParseLevel(level); err == nil {
				s.log.SetLevel(lvl)
			} else {
				s.entry.WithError(err).Warn("ignoring invalid log level from reload")
			}
		}
	}
}
