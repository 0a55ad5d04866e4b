package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/imagine/internal/cli"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(version, commit, date).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
