// File: cmd/netskeld/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/momentics/netskel/config"
	"github.com/momentics/netskel/control"
	"github.com/momentics/netskel/facade"
)

// runCmd runs the dispatcher in the foreground.
type runCmd struct {
	configPath string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run the dispatcher in the foreground" }
func (*runCmd) Usage() string {
	return `run [-config <path>]:
  Connect to the stub peer and serve boundary operations until
  SIGINT or SIGTERM.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to the TOML config file")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		cfg = loaded
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	sys, err := facade.New(cfg, facade.Options{Logger: log})
	if err != nil {
		log.WithError(err).Error("wiring failed")
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sys.Start(ctx); err != nil {
		log.WithError(err).Error("startup failed")
		return subcommands.ExitFailure
	}

	watcherDone := make(chan struct{})
	if c.configPath != "" {
		fw, err := control.NewFileWatcher(c.configPath, sys.ControlAdapter().ConfigStore(), config.LoadReloadable)
		if err != nil {
			log.WithError(err).Warn("config hot-reload disabled")
			close(watcherDone)
		} else {
			go func() {
				defer close(watcherDone)
				_ = fw.Run(ctx)
				fw.Close()
			}()
		}
	} else {
		close(watcherDone)
	}

	<-ctx.Done()
	log.Info("shutting down")
	if err := sys.Stop(); err != nil {
		log.WithError(err).Error("shutdown failed")
		return subcommands.ExitFailure
	}
	<-watcherDone
	return subcommands.ExitSuccess
}
