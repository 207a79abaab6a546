// Package server exposes the imported datasets over the explorer HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thesavant42/renewables-explorer/internal/db"
	"github.com/thesavant42/renewables-explorer/internal/models"
)

const (
	// DefaultLimit caps /data rows when the request has no limit.
	DefaultLimit = 1000

	rootMessage     = "Renewable Energy Analytics API"
	shutdownTimeout = 5 * time.Second
)

// Store is the dataset backend the handlers read from.
type Store interface {
	ListSources(ctx context.Context) ([]string, error)
	Query(ctx context.Context, source string, opts db.QueryOptions) (models.Records, error)
}

// Server serves /, /sources, /sources_with_metadata and /data/{source}.
type Server struct {
	store        Store
	catalog      Catalog
	logger       *log.Logger
	origins      []string
	defaultLimit int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger enables request logging.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithDefaultLimit overrides DefaultLimit.
func WithDefaultLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// New creates a server over store. A nil catalog serves stub metadata only.
func New(store Store, catalog Catalog, opts ...Option) *Server {
	s := &Server{
		store:        store,
		catalog:      catalog,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /sources", s.handleSources)
	mux.HandleFunc("GET /sources_with_metadata", s.handleSourcesWithMetadata)
	mux.HandleFunc("GET /data/{source}", s.handleData)

	return s.logRequests(s.cors(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.info("Server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		s.logError("Failed to list sources", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to list sources.")
		return
	}
	s.writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleSourcesWithMetadata(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		s.logError("Failed to list sources", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to list sources.")
		return
	}

	out := make(map[string]models.SourceMetadata, len(sources))
	for _, source := range sources {
		out[source] = s.catalog.Lookup(source)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	source := r.PathValue("source")

	opts, err := s.queryOptions(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	records, err := s.store.Query(r.Context(), source, opts)
	if errors.Is(err, db.ErrUnknownSource) {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Source '%s' not found.", source))
		return
	}
	if err != nil {
		s.logError("Query failed", "source", source, "error", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read data for source '%s'.", source))
		return
	}

	s.writeJSON(w, http.StatusOK, models.DataResponse{
		Source: source,
		Count:  len(records),
		Data:   records,
	})
}

// queryOptions reads limit, annee_debut, annee_fin, pays and q.
// Zero years are ignored like absent ones.
func (s *Server) queryOptions(r *http.Request) (db.QueryOptions, error) {
	q := r.URL.Query()
	opts := db.QueryOptions{
		Limit:   s.defaultLimit,
		Country: q.Get(models.FilterCountry),
		Query:   q.Get(models.FilterQuery),
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("limit must be a positive integer, got %q", raw)
		}
		opts.Limit = n
	}

	for _, p := range []struct {
		key string
		dst **int
	}{
		{models.FilterStartYear, &opts.StartYear},
		{models.FilterEndYear, &opts.EndYear},
	} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("%s must be an integer, got %q", p.key, raw)
		}
		if n != 0 {
			*p.dst = &n
		}
	}

	return opts, nil
}

// writeJSON encodes v before any header is sent, so an unencodable value
// becomes a 500 instead of an empty 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logError("Failed to encode response", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to encode response.")
		return
	}
	writeBody(w, status, body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	body, _ := json.Marshal(map[string]string{"detail": detail})
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func (s *Server) info(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Info(msg, kv...)
	}
}

func (s *Server) logError(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Error(msg, kv...)
	}
}
