package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eleven-am/genkit/internal/cli"
	"github.com/eleven-am/genkit/pkg/genkit"
)

var (
	commit string
	date   string
)

func main() {
	if err := Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute(args []string) error {
	genkit.SetBuildInfo(commit, date, "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, args)
}
