// File: cmd/netskeld/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// netskeld is the trusted-side socket dispatcher daemon. It connects
// to the untrusted stub peer over the configured transport and serves
// boundary operations until terminated.

package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(runCmd), "")
	subcommands.Register(new(checkCmd), "")
	subcommands.Register(new(versionCmd), "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
