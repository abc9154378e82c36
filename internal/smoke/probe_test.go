package smoke

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/web"
	"github.com/cicd-lab/vercel-render/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response.
type stubHTTPClient struct {
	resp    httpclient.Response
	err     error
	headers map[string]string
}

func (s *stubHTTPClient) Get(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	s.headers = headers
	return s.resp, s.err
}

func (s *stubHTTPClient) Do(context.Context, string, string, any) (httpclient.Response, error) {
	return nil, errors.New("not used")
}

func TestCheckFindsTitle(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{statusCode: 200, body: []byte(`
<html><head><title>CI/CD con Vercel &amp; Render</title></head>
<body><h1> CI/CD con Vercel &amp; Render </h1></body></html>`)}}

	page, err := NewProber(client).Check(context.Background(), "http://ui", "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !page.OK || page.Contains != DefaultWant || page.Heading != "CI/CD con Vercel & Render" {
		t.Fatalf("unexpected page %+v", page)
	}
	if client.headers["Accept"] != "text/html" {
		t.Fatalf("expected html accept header, got %v", client.headers)
	}
}

func TestCheckReportsMissingText(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{statusCode: 200, body: []byte(`<html><body>hello</body></html>`)}}
	page, err := NewProber(client).Check(context.Background(), "http://ui", "Vercel & Render")
	if err == nil || page.OK {
		t.Fatalf("expected failure, got %+v", page)
	}
}

func TestCheckTransportError(t *testing.T) {
	client := &stubHTTPClient{err: errors.New("dial tcp: refused")}
	if _, err := NewProber(client).Check(context.Background(), "http://ui", ""); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestCheckAgainstShellErrorPage(t *testing.T) {
	// The shell renders the title even when the backend is down (502).
	shell := web.NewShell(downAPI{}, "", nil)
	srv := httptest.NewServer(shell.Handler())
	defer srv.Close()

	page, err := NewProber(nil).Check(context.Background(), srv.URL+"/", "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if page.StatusCode != http.StatusBadGateway || !page.OK {
		t.Fatalf("unexpected page %+v", page)
	}
}

type downAPI struct{}

var errDown = errors.New("connection refused")

func (downAPI) GetStatus(context.Context) (domain.Status, error) { return domain.Status{}, errDown }
func (downAPI) ListItems(context.Context) ([]domain.Item, error) { return nil, errDown }
func (downAPI) CreateItem(context.Context, domain.ItemCreateRequest) (domain.Item, error) {
	return domain.Item{}, errDown
}
func (downAPI) UpdateItem(context.Context, int64, domain.ItemUpdateRequest) (domain.Item, error) {
	return domain.Item{}, errDown
}
func (downAPI) DeleteItem(context.Context, int64) (bool, error) { return false, errDown }
