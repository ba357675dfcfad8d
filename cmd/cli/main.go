package main

import (
	"context"
	"os"
	"os/signal"

	"postfeed/internal/cli"
	"postfeed/internal/config"
	"postfeed/internal/logging"
)

func main() {
	cfg := config.LoadClientConfig()
	logger := logging.NewText(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.NewApp(cfg, logger).Run(ctx)
}
