// Package server exposes the items API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/cicd-lab/vercel-render/internal/items"
	"github.com/cicd-lab/vercel-render/internal/logger"
	"github.com/cicd-lab/vercel-render/pkg/metrics"
)

const (
	rootMessage    = "El Backend está funcionando correctamente."
	detailNotFound = "Item not found"
	maxBodyBytes   = 1 << 20
)

// ItemService is the use-case surface the handlers call.
type ItemService interface {
	List(ctx context.Context) ([]domain.Item, error)
	Snapshot(ctx context.Context) (domain.DataSnapshot, error)
	Create(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error)
	Update(ctx context.Context, id int64, req domain.ItemUpdateRequest) (domain.Item, error)
	Delete(ctx context.Context, id int64) error
}

// Server wires HTTP routes for the items API.
type Server struct {
	svc     ItemService
	metrics *metrics.Recorder
	log     logger.Logger
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records per-route metrics and serves them at /metrics.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Server) { s.metrics = rec }
}

// WithLogger sets the logger used for 5xx responses.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server backed by svc.
func New(svc ItemService, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		log:     logger.NopLogger{},
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.route("root", s.handleRoot))
	mux.HandleFunc("GET /healthz", s.route("healthz", s.handleHealth))
	mux.HandleFunc("GET /api/data", s.route("data", s.handleData))
	mux.HandleFunc("GET /api/items", s.route("items", s.handleList))
	mux.HandleFunc("POST /api/items", s.route("items", s.handleCreate))
	mux.HandleFunc("PUT /api/items/{id}", s.route("item", s.handleUpdate))
	mux.HandleFunc("DELETE /api/items/{id}", s.route("item", s.handleDelete))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler returns the full routing tree wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return corsMiddleware(s.origins, mux)
}

func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return s.metrics.Middleware(name, h)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Status{Status: "online", Message: rootMessage, Docs: "/docs"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	item, err := s.svc.Create(r.Context(), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var req domain.ItemUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	item, err := s.svc.Update(r.Context(), id, req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, items.ErrNotFound):
		writeError(w, http.StatusNotFound, detailNotFound)
	case errors.Is(err, items.ErrInvalid):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorObj("request failed", "http_error", map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err.Error(),
	})
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item_id %q is not a valid integer", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}
