package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cicd-lab/vercel-render/internal/app"
	"github.com/cicd-lab/vercel-render/internal/config"
	"github.com/cicd-lab/vercel-render/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "frontend start failed: %v\n", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	frontend, err := app.NewFrontend(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize frontend", "error", err.Error())
		return err
	}

	if err := frontend.Run(ctx); err != nil {
		return fmt.Errorf("frontend run: %w", err)
	}

	return nil
}
