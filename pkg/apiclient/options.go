package apiclient

import (
	"fmt"
	"time"

	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/pkg/httpclient"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithTimeout replaces DefaultTimeout. Ignored when a transport is injected
// with WithHTTPClient, which owns its own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithLogger sets the logger that receives failure entries.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) error {
		if log != nil {
			c.log = log
		}
		return nil
	}
}

// WithHTTPClient injects the transport. Request paths passed to it are
// relative to the base URL, so it must resolve them itself.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}
