// Package cli implements the itemsctl subcommands over the items API client.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/smoke"
	"github.com/spf13/pflag"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// API is the client surface the subcommands call.
type API interface {
	GetStatus(ctx context.Context) (domain.Status, error)
	GetData(ctx context.Context) (domain.DataSnapshot, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error)
	UpdateItem(ctx context.Context, itemID int64, req domain.ItemUpdateRequest) (domain.Item, error)
	DeleteItem(ctx context.Context, itemID int64) (bool, error)
}

// PageChecker fetches a page and checks its visible text.
type PageChecker interface {
	Check(ctx context.Context, url, want string) (smoke.Page, error)
}

// Runner dispatches subcommands and prints results as JSON.
type Runner struct {
	api         API
	pages       PageChecker
	frontendURL string
	stdout      io.Writer
	stderr      io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPageChecker enables the smoke subcommand against frontendURL by default.
func WithPageChecker(pc PageChecker, frontendURL string) RunnerOption {
	return func(r *Runner) {
		r.pages = pc
		r.frontendURL = frontendURL
	}
}

// NewRunner builds a Runner writing results to stdout and diagnostics to stderr.
func NewRunner(api API, stdout, stderr io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{api: api, stdout: stdout, stderr: stderr}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var errUsage = errors.New("usage")

// Run executes args[0] with the remaining args and returns an exit code
// (0 ok, 1 error, 2 usage).
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		r.PrintHelp()
		return ExitUsage
	}
	cmd, rest := args[0], args[1:]

	var (
		out any
		err error
	)
	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return ExitOK
	case "status":
		out, err = r.noArgs(cmd, rest, func() (any, error) { return r.api.GetStatus(ctx) })
	case "data":
		out, err = r.noArgs(cmd, rest, func() (any, error) { return r.api.GetData(ctx) })
	case "list":
		out, err = r.noArgs(cmd, rest, func() (any, error) { return r.api.ListItems(ctx) })
	case "create":
		out, err = r.create(ctx, rest)
	case "update":
		out, err = r.update(ctx, rest)
	case "delete":
		out, err = r.delete(ctx, rest)
	case "smoke":
		out, err = r.smoke(ctx, rest)
	default:
		fmt.Fprintf(r.stderr, "unknown subcommand: %s\n\n", cmd)
		r.PrintHelp()
		return ExitUsage
	}

	switch {
	case errors.Is(err, errUsage), errors.Is(err, pflag.ErrHelp):
		return ExitUsage
	case err != nil:
		fmt.Fprintf(r.stderr, "%s: %v\n", cmd, err)
		return ExitError
	}
	if err := r.printJSON(out); err != nil {
		fmt.Fprintf(r.stderr, "%s: encode output: %v\n", cmd, err)
		return ExitError
	}
	return ExitOK
}

// PrintHelp writes the usage text to stderr.
func (r *Runner) PrintHelp() {
	fmt.Fprint(r.stderr, `itemsctl - items API client

Usage:
  itemsctl [--url URL] [--timeout DURATION] [--frontend URL] <subcommand> [flags]

Subcommands:
  status                                  Backend status (GET /)
  data                                    Items plus backend engine (GET /api/data)
  list                                    List items
  create --name NAME [--status STATUS]    Create an item
  update --id ID [--name NAME] [--status STATUS]
                                          Change name and/or status
  delete --id ID                          Delete an item
  smoke [--frontend URL] [--want TEXT]    Check the UI shell renders its title

Statuses: `+strings.Join(domain.Statuses(), ", ")+`
`)
}

func (r *Runner) noArgs(cmd string, args []string, fn func() (any, error)) (any, error) {
	fs := r.flagSet(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(r.stderr, "%s takes no arguments\n", cmd)
		return nil, errUsage
	}
	return fn()
}

func (r *Runner) create(ctx context.Context, args []string) (any, error) {
	fs := r.flagSet("create")
	name := fs.String("name", "", "item name")
	status := fs.String("status", domain.StatusPending, "item status")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if strings.TrimSpace(*name) == "" {
		fmt.Fprintln(r.stderr, "usage: itemsctl create --name NAME [--status STATUS]")
		return nil, errUsage
	}
	return r.api.CreateItem(ctx, domain.ItemCreateRequest{Name: *name, Status: *status})
}

func (r *Runner) update(ctx context.Context, args []string) (any, error) {
	fs := r.flagSet("update")
	id := fs.Int64("id", 0, "item id")
	name := fs.String("name", "", "new name")
	status := fs.String("status", "", "new status")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if *id <= 0 {
		fmt.Fprintln(r.stderr, "usage: itemsctl update --id ID [--name NAME] [--status STATUS]")
		return nil, errUsage
	}

	var req domain.ItemUpdateRequest
	if fs.Changed("name") {
		req.Name = name
	}
	if fs.Changed("status") {
		req.Status = status
	}
	if req.Name == nil && req.Status == nil {
		fmt.Fprintln(r.stderr, "update: nothing to change; pass --name and/or --status")
		return nil, errUsage
	}
	return r.api.UpdateItem(ctx, *id, req)
}

func (r *Runner) delete(ctx context.Context, args []string) (any, error) {
	fs := r.flagSet("delete")
	id := fs.Int64("id", 0, "item id")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if *id <= 0 {
		fmt.Fprintln(r.stderr, "usage: itemsctl delete --id ID")
		return nil, errUsage
	}
	deleted, err := r.api.DeleteItem(ctx, *id)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": *id, "deleted": deleted}, nil
}

func (r *Runner) smoke(ctx context.Context, args []string) (any, error) {
	fs := r.flagSet("smoke")
	url := fs.String("frontend", r.frontendURL, "UI shell URL")
	want := fs.String("want", smoke.DefaultWant, "text the page must contain")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if r.pages == nil || strings.TrimSpace(*url) == "" {
		fmt.Fprintln(r.stderr, "usage: itemsctl smoke --frontend URL [--want TEXT]")
		return nil, errUsage
	}
	page, err := r.pages.Check(ctx, *url, *want)
	if err != nil {
		_ = r.printJSON(page)
		return nil, err
	}
	return page, nil
}

func (r *Runner) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(r.stderr)
	return fs
}

func (r *Runner) printJSON(v any) error {
	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
