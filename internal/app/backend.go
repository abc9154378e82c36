package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/cicd-lab/vercel-render/internal/config"
	"github.com/cicd-lab/vercel-render/internal/items"
	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/internal/server"
	"github.com/cicd-lab/vercel-render/internal/storage"
	"github.com/cicd-lab/vercel-render/pkg/metrics"
	"github.com/cicd-lab/vercel-render/pkg/publishers"
)

// Backend is the items API runtime. It owns the store, the event publishers
// and the HTTP server.
type Backend struct {
	cfg    *config.Config
	log    logger.Logger
	store  storage.Store
	fanout *publishers.Fanout
	server *http.Server
}

// NewBackend opens storage (retrying while it is unavailable), seeds it and
// wires publishers, metrics and routes.
func NewBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.Open(ctx, cfg.StorageType, cfg.BBoltPath, storage.Options{
		Retries:       cfg.StartupRetries,
		RetryInterval: cfg.StartupRetryInterval,
		OnRetry: func(attempt int, err error) {
			log.WarnObj("storage unavailable, retrying", "storage_retry", map[string]any{
				"attempt":          attempt,
				"max_retries":      cfg.StartupRetries,
				"interval_seconds": int(cfg.StartupRetryInterval.Seconds()),
				"error":            err.Error(),
			})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	if cfg.SeedData {
		n, err := storage.Seed(store)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed storage: %w", err)
		}
		log.InfoObj("storage seeded", "seeded_items", n)
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	rec := metrics.New()
	svc, err := items.NewService(store,
		items.WithPublisher(fanout),
		items.WithMetrics(rec),
		items.WithLogger(log),
		items.WithBackendEngine("Go net/http + "+cfg.StorageType),
	)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, err
	}

	api := server.New(svc,
		server.WithMetrics(rec),
		server.WithLogger(log),
		server.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)

	return &Backend{
		cfg:    cfg,
		log:    log,
		store:  store,
		fanout: fanout,
		server: newHTTPServer(cfg.BackendAddr(), api.Handler()),
	}, nil
}

// buildFanout loads the publishers registry when one is configured.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers file configured; item events disabled", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Handler returns the HTTP handler of the backend.
func (b *Backend) Handler() http.Handler {
	return b.server.Handler
}

// Run listens on the configured port until ctx is cancelled.
func (b *Backend) Run(ctx context.Context) error {
	if b == nil || b.server == nil {
		return fmt.Errorf("backend is not initialized")
	}
	ln, err := listen(b.server.Addr)
	if err != nil {
		b.Close()
		return err
	}
	return b.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled and then releases
// every resource.
func (b *Backend) Serve(ctx context.Context, ln net.Listener) error {
	if b == nil || b.server == nil {
		return fmt.Errorf("backend is not initialized")
	}
	defer b.Close()

	b.log.InfoObj("backend starting", "backend_state", map[string]any{
		"publishers_count": b.fanout.Size(),
		"storage_type":     b.cfg.StorageType,
	})
	return serveUntilDone(ctx, b.server, ln, b.log, "backend")
}

// Close releases publishers and the store, logging any errors encountered.
func (b *Backend) Close() {
	if b == nil {
		return
	}
	if err := b.fanout.Close(); err != nil {
		b.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if b.store == nil {
		return
	}
	if err := b.store.Close(); err != nil {
		b.log.ErrorObj("storage close failed", "error", err.Error())
	}
	b.store = nil
}
