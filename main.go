package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kpss-tercih/cmd/classify"
	"kpss-tercih/cmd/export"
	"kpss-tercih/cmd/fetch"
	"kpss-tercih/cmd/parse"
	"kpss-tercih/cmd/root"
	"kpss-tercih/cmd/search"
	"kpss-tercih/cmd/seed"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(fetch.Cmd)
	root.Cmd.AddCommand(search.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(seed.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
