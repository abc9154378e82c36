package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cicd-lab/vercel-render/internal/domain"
)

// Package storage provides the item persistence backends.

var (
	// ErrNotFound is returned when an item id does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrUnsupportedType is returned for unknown storage types.
	ErrUnsupportedType = errors.New("unsupported storage type")
)

// Store persists items.
type Store interface {
	Close() error
	List() ([]domain.Item, error)
	Get(id int64) (domain.Item, error)
	Create(req domain.ItemCreateRequest) (domain.Item, error)
	Update(id int64, req domain.ItemUpdateRequest) (domain.Item, error)
	Delete(id int64) error
	Count() (int, error)
}

// Options controls how a store is opened.
type Options struct {
	// Retries is the number of extra open attempts after the first failure.
	Retries       int
	RetryInterval time.Duration
	// OnRetry is told about every failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

const defaultRetryInterval = 5 * time.Second

// NewStore creates the configured storage backend with a single open attempt.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "memory":
		return newMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedType, typ)
	}
}

// Open creates the configured backend, retrying at a constant interval until
// it succeeds, the retries are exhausted or ctx is done.
func Open(ctx context.Context, typ, path string, opts Options) (Store, error) {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	var (
		store   Store
		attempt int
	)
	op := func() error {
		attempt++
		s, err := NewStore(typ, path)
		if err != nil {
			if errors.Is(err, ErrUnsupportedType) {
				return backoff.Permanent(err)
			}
			return err
		}
		store = s
		return nil
	}
	notify := func(err error, _ time.Duration) {
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RetryInterval), uint64(opts.Retries)),
		ctx,
	)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("open %s store after %d attempt(s): %w", typ, attempt, err)
	}
	return store, nil
}

// SeedItems are inserted into an empty store on first start.
var SeedItems = []domain.ItemCreateRequest{
	{Name: "Módulo CI/CD", Status: domain.StatusDone},
	{Name: "Módulo Docker", Status: domain.StatusInProgress},
	{Name: "Módulo Despliegue", Status: domain.StatusPending},
}

// Seed inserts SeedItems when the store is empty. It reports how many were added.
func Seed(s Store) (int, error) {
	n, err := s.Count()
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i, req := range SeedItems {
		if _, err := s.Create(req); err != nil {
			return i, fmt.Errorf("seed item %q: %w", req.Name, err)
		}
	}
	return len(SeedItems), nil
}
