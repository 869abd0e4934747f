// Package main is the entry point for the apm CLI.
//
// apm is the bench console used in manufacturing to issue factory numbers
// from the product database and write them into sensor registers. Each
// written number is read back and verified before the next one is issued.
//
// Commands: console, read, codec, fake-backend.
//
// For detailed usage information, run:
//
//	apm --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/apmconsole/cmd/apm/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
