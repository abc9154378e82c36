// Package smoke fetches a rendered page and checks its visible text.
package smoke

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cicd-lab/vercel-render/pkg/httpclient"
)

const (
	// DefaultWant is the heading the UI shell must render.
	DefaultWant = "Vercel & Render"

	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	defaultTimeout   = 10 * time.Second
)

// Page is what a probe saw.
type Page struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Title      string `json:"title"`
	Heading    string `json:"heading"`
	Contains   string `json:"contains"`
	OK         bool   `json:"ok"`
}

// Prober fetches pages over an httpclient.Client.
type Prober struct {
	client httpclient.Client
}

// NewProber constructs a prober with the provided HTTP client (or default).
func NewProber(client httpclient.Client) *Prober {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Prober{client: client}
}

// Check fetches url and reports whether its text contains want. A page that
// renders but lacks want is returned with OK=false and an error.
func (p *Prober) Check(ctx context.Context, url, want string) (Page, error) {
	if strings.TrimSpace(want) == "" {
		want = DefaultWant
	}
	page := Page{URL: url, Contains: want}

	resp, err := p.client.Get(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		return page, fmt.Errorf("http fetch: %w", err)
	}
	page.StatusCode = resp.StatusCode()

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return page, fmt.Errorf("parse html: %w", err)
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.Heading = strings.TrimSpace(doc.Find("h1").First().Text())

	if !strings.Contains(doc.Text(), want) {
		return page, fmt.Errorf("page text does not contain %q (status %d)", want, page.StatusCode)
	}
	page.OK = true
	return page, nil
}
