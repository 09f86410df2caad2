// Package api serves layouts over HTTP.
//
// Routes:
//
//	GET    /healthz          liveness and build version
//	POST   /v1/layout        fill the viewport for a manifest
//	POST   /v1/jump          jump to a position, optionally from a saved state
//	POST   /v1/states        lay out a manifest and save its grid state
//	GET    /v1/states        list saved states
//	GET    /v1/states/{id}   fetch a saved state
//	DELETE /v1/states/{id}   delete a saved state
//
// Every handler builds its own engine; nothing is shared between requests
// except the runner's cache and the state store.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spangrid/pkg/buildinfo"
	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/observability"
	"github.com/matzehuels/spangrid/pkg/state"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 4 << 20

// Server holds what handlers share.
type Server struct {
	runner *layout.Runner
	store  state.Store
	logger *log.Logger
}

// NewServer creates a server. A nil store disables the /v1/states routes.
func NewServer(runner *layout.Runner, store state.Store, logger *log.Logger) *Server {
	if runner == nil {
		runner = layout.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: store, logger: logger}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/jump", s.handleJump)
		r.Route("/states", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Post("/", s.handleSaveState)
			r.Get("/", s.handleListStates)
			r.Get("/{id}", s.handleGetState)
			r.Delete("/{id}", s.handleDeleteState)
		})
	})
	return r
}

// logRequests logs method, path, status and duration, and reports them to
// the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			writeJSONError(w, http.StatusNotImplemented, "state store not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("encode response", "err", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError answers with the status the error's code maps to.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSONError(w, status, errs.UserMessage(err))
}
