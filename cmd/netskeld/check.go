// File: cmd/netskeld/check.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/momentics/netskel/config"
)

// checkCmd validates a config file without starting anything.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate a config file" }
func (*checkCmd) Usage() string {
	return `check <path>:
  Parse and validate the given TOML config file.
`
}

func (*checkCmd) SetFlags(*flag.FlagSet) {}

func (*checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "check: expected exactly one config path")
		return subcommands.ExitUsageError
	}
	cfg, err := config.Load(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("ok: service %q, %d workers, transport %s\n", cfg.Service, cfg.Workers, cfg.Transport.Kind)
	return subcommands.ExitSuccess
}
