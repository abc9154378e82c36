package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/cicd-lab/vercel-render/internal/config"
	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/internal/web"
	"github.com/cicd-lab/vercel-render/pkg/apiclient"
)

// Frontend serves the UI shell backed by the items API client.
type Frontend struct {
	log    logger.Logger
	client *apiclient.Client
	server *http.Server
}

// NewFrontend builds the API client from config and mounts the shell.
func NewFrontend(cfg *config.Config, log logger.Logger) (*Frontend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	client, err := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}
	log.InfoObj("api client configured", "api_client", map[string]any{
		"base_url":        client.BaseURL(),
		"timeout_seconds": client.Timeout().Seconds(),
	})

	shell := web.NewShell(client, client.BaseURL(), log)
	return &Frontend{
		log:    log,
		client: client,
		server: newHTTPServer(cfg.FrontendAddr(), shell.Handler()),
	}, nil
}

// Client returns the API client used by the shell.
func (f *Frontend) Client() *apiclient.Client {
	return f.client
}

// Run listens on the configured port until ctx is cancelled.
func (f *Frontend) Run(ctx context.Context) error {
	if f == nil || f.server == nil {
		return fmt.Errorf("frontend is not initialized")
	}
	ln, err := listen(f.server.Addr)
	if err != nil {
		return err
	}
	return f.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled.
func (f *Frontend) Serve(ctx context.Context, ln net.Listener) error {
	if f == nil || f.server == nil {
		return fmt.Errorf("frontend is not initialized")
	}
	return serveUntilDone(ctx, f.server, ln, f.log, "frontend")
}
