package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/smoke"
)

type stubAPI struct {
	err       error
	createReq domain.ItemCreateRequest
	updateID  int64
	updateReq domain.ItemUpdateRequest
	deleteID  int64
}

func (s *stubAPI) GetStatus(context.Context) (domain.Status, error) {
	return domain.Status{Status: "online", Docs: "/docs"}, s.err
}
func (s *stubAPI) GetData(context.Context) (domain.DataSnapshot, error) {
	return domain.DataSnapshot{Items: []domain.Item{{ID: 1, Name: "a", Status: domain.StatusDone}}, BackendEngine: "Go"}, s.err
}
func (s *stubAPI) ListItems(context.Context) ([]domain.Item, error) {
	return []domain.Item{{ID: 1, Name: "a", Status: domain.StatusDone}}, s.err
}
func (s *stubAPI) CreateItem(_ context.Context, req domain.ItemCreateRequest) (domain.Item, error) {
	s.createReq = req
	return domain.Item{ID: 9, Name: req.Name, Status: req.Status}, s.err
}
func (s *stubAPI) UpdateItem(_ context.Context, id int64, req domain.ItemUpdateRequest) (domain.Item, error) {
	s.updateID, s.updateReq = id, req
	return domain.Item{ID: id}, s.err
}
func (s *stubAPI) DeleteItem(_ context.Context, id int64) (bool, error) {
	s.deleteID = id
	return s.err == nil, s.err
}

func run(api API, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := NewRunner(api, &stdout, &stderr).Run(context.Background(), args)
	return code, stdout.String(), stderr.String()
}

func TestReadSubcommandsPrintJSON(t *testing.T) {
	api := &stubAPI{}

	code, out, _ := run(api, "status")
	if code != ExitOK || !strings.Contains(out, `"status": "online"`) {
		t.Fatalf("status: code=%d out=%s", code, out)
	}

	code, out, _ = run(api, "data")
	var snap domain.DataSnapshot
	if code != ExitOK || json.Unmarshal([]byte(out), &snap) != nil || snap.BackendEngine != "Go" {
		t.Fatalf("data: code=%d out=%s", code, out)
	}

	code, out, _ = run(api, "list")
	var list []domain.Item
	if code != ExitOK || json.Unmarshal([]byte(out), &list) != nil || len(list) != 1 {
		t.Fatalf("list: code=%d out=%s", code, out)
	}
}

func TestCreateDefaultsStatus(t *testing.T) {
	api := &stubAPI{}
	code, out, _ := run(api, "create", "--name", "Docs")
	if code != ExitOK {
		t.Fatalf("create: code=%d", code)
	}
	if api.createReq.Name != "Docs" || api.createReq.Status != domain.StatusPending {
		t.Fatalf("unexpected create request %+v", api.createReq)
	}
	if !strings.Contains(out, `"id": 9`) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestUpdateSendsOnlyChangedFlags(t *testing.T) {
	api := &stubAPI{}
	code, _, _ := run(api, "update", "--id", "42", "--status", "Completado")
	if code != ExitOK {
		t.Fatalf("update: code=%d", code)
	}
	if api.updateID != 42 || api.updateReq.Name != nil || api.updateReq.Status == nil || *api.updateReq.Status != domain.StatusDone {
		t.Fatalf("unexpected update %d %+v", api.updateID, api.updateReq)
	}

	if code, _, _ := run(api, "update", "--id", "42"); code != ExitUsage {
		t.Fatalf("update without fields should be usage error, got %d", code)
	}
}

func TestDeletePrintsResult(t *testing.T) {
	api := &stubAPI{}
	code, out, _ := run(api, "delete", "--id", "3")
	if code != ExitOK || api.deleteID != 3 || !strings.Contains(out, `"deleted": true`) {
		t.Fatalf("delete: code=%d out=%s", code, out)
	}
}

func TestUsageErrors(t *testing.T) {
	api := &stubAPI{}
	cases := [][]string{
		nil,
		{"bogus"},
		{"create"},
		{"update", "--id", "x"},
		{"delete"},
		{"list", "extra"},
		{"status", "--nope"},
	}
	for _, args := range cases {
		if code, _, _ := run(api, args...); code != ExitUsage {
			t.Fatalf("args %v: expected usage exit, got %d", args, code)
		}
	}
	if code, _, stderr := run(api, "help"); code != ExitOK || !strings.Contains(stderr, "itemsctl") {
		t.Fatalf("help: code=%d stderr=%s", code, stderr)
	}
}

func TestAPIErrorsExitOne(t *testing.T) {
	api := &stubAPI{err: errors.New("connection refused")}
	for _, args := range [][]string{{"status"}, {"list"}, {"create", "--name", "x"}, {"delete", "--id", "1"}} {
		code, out, stderr := run(api, args...)
		if code != ExitError {
			t.Fatalf("args %v: expected exit 1, got %d", args, code)
		}
		if out != "" || !strings.Contains(stderr, "connection refused") {
			t.Fatalf("args %v: out=%q stderr=%q", args, out, stderr)
		}
	}
}

type stubPages struct {
	url, want string
	err       error
}

func (s *stubPages) Check(_ context.Context, url, want string) (smoke.Page, error) {
	s.url, s.want = url, want
	return smoke.Page{URL: url, StatusCode: 200, Contains: want, OK: s.err == nil}, s.err
}

func TestSmokeUsesDefaultFrontend(t *testing.T) {
	pages := &stubPages{}
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stubAPI{}, &stdout, &stderr, WithPageChecker(pages, "http://localhost:3000"))

	if code := r.Run(context.Background(), []string{"smoke"}); code != ExitOK {
		t.Fatalf("smoke: code=%d stderr=%s", code, stderr.String())
	}
	if pages.url != "http://localhost:3000" || pages.want != smoke.DefaultWant {
		t.Fatalf("unexpected check %q %q", pages.url, pages.want)
	}
	if !strings.Contains(stdout.String(), `"ok": true`) {
		t.Fatalf("unexpected output %s", stdout.String())
	}
}

func TestSmokeFailureExitsOne(t *testing.T) {
	pages := &stubPages{err: errors.New("page text does not contain")}
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stubAPI{}, &stdout, &stderr, WithPageChecker(pages, ""))

	code := r.Run(context.Background(), []string{"smoke", "--frontend", "http://ui", "--want", "Hola"})
	if code != ExitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if pages.url != "http://ui" || pages.want != "Hola" {
		t.Fatalf("flags not forwarded: %q %q", pages.url, pages.want)
	}
	if !strings.Contains(stdout.String(), `"ok": false`) || !strings.Contains(stderr.String(), "does not contain") {
		t.Fatalf("stdout=%s stderr=%s", stdout.String(), stderr.String())
	}
}

func TestSmokeWithoutCheckerIsUsage(t *testing.T) {
	if code, _, _ := run(&stubAPI{}, "smoke", "--frontend", "http://ui"); code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}
