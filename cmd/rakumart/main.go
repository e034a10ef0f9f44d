package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/delivery/cli"
	"github.com/run651/rakumart-1688/internal/infrastructure/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(cli.ExitUsage)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(cli.ExitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New(cfg, log, os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args[1:])
	stop()
	_ = log.Sync()
	os.Exit(code)
}
