// Package web serves the server-rendered frontend over the items API client.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/logger"
)

// Title is the page heading.
const Title = "CI/CD con Vercel & Render"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// API is the subset of the items client the shell needs.
type API interface {
	GetStatus(ctx context.Context) (domain.Status, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error)
	UpdateItem(ctx context.Context, itemID int64, req domain.ItemUpdateRequest) (domain.Item, error)
	DeleteItem(ctx context.Context, itemID int64) (bool, error)
}

// Shell renders the items page and forwards form posts to the API.
type Shell struct {
	api    API
	apiURL string
	log    logger.Logger
}

// NewShell builds a Shell. apiURL is only displayed.
func NewShell(api API, apiURL string, log logger.Logger) *Shell {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Shell{api: api, apiURL: apiURL, log: log}
}

type pageData struct {
	Title    string
	Status   *domain.Status
	Items    []domain.Item
	Statuses []string
	Error    string
	APIURL   string
}

// Register attaches the shell routes to mux.
func (s *Shell) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /items", s.handleCreate)
	mux.HandleFunc("POST /items/{id}/status", s.handleStatus)
	mux.HandleFunc("POST /items/{id}/delete", s.handleDelete)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler returns a mux with the shell routes.
func (s *Shell) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func (s *Shell) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.newPage()
	status, err := s.api.GetStatus(r.Context())
	if err != nil {
		s.renderError(w, data, "No se pudo contactar al backend", err)
		return
	}
	data.Status = &status

	items, err := s.api.ListItems(r.Context())
	if err != nil {
		s.renderError(w, data, "No se pudieron cargar los items", err)
		return
	}
	data.Items = items
	s.render(w, http.StatusOK, data)
}

func (s *Shell) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := domain.ItemCreateRequest{
		Name:   strings.TrimSpace(r.PostFormValue("name")),
		Status: r.PostFormValue("status"),
	}
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	if _, err := s.api.CreateItem(r.Context(), req); err != nil {
		s.renderError(w, s.newPage(), "No se pudo crear el item", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Shell) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok {
		return
	}
	status := r.PostFormValue("status")
	if _, err := s.api.UpdateItem(r.Context(), id, domain.ItemUpdateRequest{Status: &status}); err != nil {
		s.renderError(w, s.newPage(), "No se pudo actualizar el item", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Shell) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok {
		return
	}
	if _, err := s.api.DeleteItem(r.Context(), id); err != nil {
		s.renderError(w, s.newPage(), "No se pudo eliminar el item", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Shell) newPage() pageData {
	return pageData{Title: Title, Statuses: domain.Statuses(), APIURL: s.apiURL}
}

// renderError shows the page with a banner. The API client has already logged err.
func (s *Shell) renderError(w http.ResponseWriter, data pageData, msg string, err error) {
	data.Error = fmt.Sprintf("%s: %v", msg, err)
	s.render(w, http.StatusBadGateway, data)
}

func (s *Shell) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.log.ErrorObj("render page failed", "render_error", err.Error())
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func formID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return 0, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
