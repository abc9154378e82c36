// Package apiclient is the calling convention for the items backend: one base
// URL, one request timeout and one failure contract shared by every operation.
//
// Every operation either returns the decoded response body or, on failure,
// logs a single error entry naming the operation and returns the original
// error value untouched. There are no retries and no caching.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/pkg/httpclient"
)

const (
	// DefaultBaseURL is used when no override is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 10 * time.Second
)

// Failure messages logged per operation.
const (
	msgFetchStatus = "Error fetching status"
	msgFetchData   = "Error fetching data"
	msgFetchItems  = "Error fetching items"
	msgCreateItem  = "Error creating item"
	msgUpdateItem  = "Error updating item"
	msgDeleteItem  = "Error deleting item"
)

// Client calls the items backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    httpclient.Client
	log     logger.Logger
}

// ResolveBaseURL returns override when it is non-blank, else DefaultBaseURL.
func ResolveBaseURL(override string) string {
	if u := strings.TrimSpace(override); u != "" {
		return strings.TrimRight(u, "/")
	}
	return DefaultBaseURL
}

// New builds a Client for baseURL (see ResolveBaseURL).
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: ResolveBaseURL(baseURL),
		timeout: DefaultTimeout,
		log:     logger.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout).WithBaseURL(c.baseURL)
	}
	return c, nil
}

// BaseURL returns the resolved backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// GetStatus calls GET /.
func (c *Client) GetStatus(ctx context.Context) (domain.Status, error) {
	return call[domain.Status](ctx, c, msgFetchStatus, http.MethodGet, "/", nil)
}

// GetData calls GET /api/data.
func (c *Client) GetData(ctx context.Context) (domain.DataSnapshot, error) {
	return call[domain.DataSnapshot](ctx, c, msgFetchData, http.MethodGet, "/api/data", nil)
}

// ListItems calls GET /api/items.
func (c *Client) ListItems(ctx context.Context) ([]domain.Item, error) {
	return call[[]domain.Item](ctx, c, msgFetchItems, http.MethodGet, "/api/items", nil)
}

// CreateItem calls POST /api/items.
func (c *Client) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error) {
	return call[domain.Item](ctx, c, msgCreateItem, http.MethodPost, "/api/items", req)
}

// UpdateItem calls PUT /api/items/{itemID}. Only the fields set in req are sent.
func (c *Client) UpdateItem(ctx context.Context, itemID int64, req domain.ItemUpdateRequest) (domain.Item, error) {
	return call[domain.Item](ctx, c, msgUpdateItem, http.MethodPut, itemPath(itemID), req)
}

// DeleteItem calls DELETE /api/items/{itemID}. Any 2xx yields true; the body is ignored.
func (c *Client) DeleteItem(ctx context.Context, itemID int64) (bool, error) {
	err := c.guard(msgDeleteItem, http.MethodDelete, itemPath(itemID), func() error {
		_, err := c.http.Do(ctx, http.MethodDelete, itemPath(itemID), nil)
		return err
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func itemPath(itemID int64) string {
	return fmt.Sprintf("/api/items/%d", itemID)
}

// call performs the request and decodes the body into T under guard.
func call[T any](ctx context.Context, c *Client, failMsg, method, path string, body any) (T, error) {
	var out T
	err := c.guard(failMsg, method, path, func() error {
		resp, err := c.http.Do(ctx, method, path, body)
		if err != nil {
			return err
		}
		return json.Unmarshal(resp.Body(), &out)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// guard runs fn and, when it fails, logs failMsg once and hands the error back as is.
func (c *Client) guard(failMsg, method, path string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	fields := map[string]any{
		"method":   method,
		"path":     path,
		"base_url": c.baseURL,
		"error":    err.Error(),
	}
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		fields["status_code"] = se.StatusCode
	}
	c.log.ErrorObj(failMsg, "api_error", fields)
	return err
}
