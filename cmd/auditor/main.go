// Command auditor serves the declaration audit form and JSON API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/app"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/config"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "auditor start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("auditor booting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditor, err := app.NewAuditor(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize auditor", "error", err)
		return err
	}

	if err := auditor.Run(ctx); err != nil {
		return fmt.Errorf("auditor run: %w", err)
	}
	return nil
}
