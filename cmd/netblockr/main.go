package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/khalid-nowaf/netblockr/pkg/cli"
)

func main() {
	if err := cli.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.DefaultConfigPaths...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
