// Package items implements the item use cases served by the backend.
package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/internal/storage"
	"github.com/cicd-lab/vercel-render/pkg/publishers"
)

// DefaultBackendEngine is reported by GET /api/data.
const DefaultBackendEngine = "Go net/http + bbolt"

const defaultPublishTimeout = 10 * time.Second

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid item")
	// ErrNotFound is returned when the item id does not exist.
	ErrNotFound = storage.ErrNotFound
)

// Service validates requests, persists items and announces changes.
type Service struct {
	store          storage.Store
	events         EventPublisher
	metrics        EventMetrics
	log            logger.Logger
	engine         string
	publishTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the sink for change events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics sets the publish outcome counters.
func WithMetrics(m EventMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBackendEngine overrides the engine label in data snapshots.
func WithBackendEngine(engine string) Option {
	return func(s *Service) {
		if strings.TrimSpace(engine) != "" {
			s.engine = engine
		}
	}
}

// WithPublishTimeout bounds how long a single event publish may take.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewService builds a Service over store.
func NewService(store storage.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	s := &Service{
		store:          store,
		log:            logger.NopLogger{},
		engine:         DefaultBackendEngine,
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns every item ordered by id.
func (s *Service) List(_ context.Context) ([]domain.Item, error) {
	items, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

// Snapshot returns the items together with the engine label.
func (s *Service) Snapshot(ctx context.Context) (domain.DataSnapshot, error) {
	items, err := s.List(ctx)
	if err != nil {
		return domain.DataSnapshot{}, err
	}
	return domain.DataSnapshot{Items: items, BackendEngine: s.engine}, nil
}

// Create validates and stores a new item.
func (s *Service) Create(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Item{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !domain.ValidStatus(req.Status) {
		return domain.Item{}, invalidStatus(req.Status)
	}

	item, err := s.store.Create(req)
	if err != nil {
		return domain.Item{}, fmt.Errorf("create item: %w", err)
	}
	s.announce(ctx, publishers.ActionCreated, item)
	return item, nil
}

// Update applies the non-nil fields of req to item id.
func (s *Service) Update(ctx context.Context, id int64, req domain.ItemUpdateRequest) (domain.Item, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Item{}, fmt.Errorf("%w: name must not be empty", ErrInvalid)
		}
		req.Name = &name
	}
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		return domain.Item{}, invalidStatus(*req.Status)
	}

	item, err := s.store.Update(id, req)
	if err != nil {
		return domain.Item{}, fmt.Errorf("update item %d: %w", id, err)
	}
	s.announce(ctx, publishers.ActionUpdated, item)
	return item, nil
}

// Delete removes item id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	s.announce(ctx, publishers.ActionDeleted, domain.Item{ID: id})
	return nil
}

// announce publishes a change event. Failures are logged and counted only.
func (s *Service) announce(ctx context.Context, action string, item domain.Item) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	evt := publishers.NewEvent(action, item)
	delivered, err := s.events.Publish(ctx, evt)
	if err != nil {
		if s.metrics != nil {
			s.metrics.EventPublishFailed(action)
		}
		s.log.ErrorObj("item event publish failed", "item_event_error", map[string]any{
			"event_id":  evt.ID,
			"action":    action,
			"item_id":   item.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	if delivered > 0 && s.metrics != nil {
		s.metrics.EventPublished(action)
	}
	s.log.DebugObj("item event published", "item_event", map[string]any{
		"event_id":  evt.ID,
		"action":    action,
		"item_id":   item.ID,
		"delivered": delivered,
	})
}

func invalidStatus(status string) error {
	return fmt.Errorf("%w: status %q must be one of %s", ErrInvalid, status, strings.Join(domain.Statuses(), ", "))
}
