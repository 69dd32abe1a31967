// Package server exposes the router over a local JSON gateway.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/fediscope/fediscope/internal/httpx"
	"github.com/fediscope/fediscope/internal/resolve"
	"github.com/fediscope/fediscope/internal/route"
)

const (
	defaultRate     = 20
	shutdownTimeout = 5 * time.Second
)

// Backend is what the gateway drives; *app.App satisfies it.
type Backend interface {
	Dispatch(ctx context.Context, target string) (*route.Result, error)
	Apply(ctx context.Context, target, action string) (string, error)
	Routes() []route.Route
}

// Server is the local HTTP gateway.
type Server struct {
	backend Backend
	limiter *rate.Limiter
	router  chi.Router
}

// New creates a gateway over backend. rps <= 0 uses the default limit.
func New(backend Backend, rps float64) *Server {
	if rps <= 0 {
		rps = defaultRate
	}
	burst := int(rps * 2)
	if burst < 1 {
		burst = 1
	}
	s := &Server{
		backend: backend,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/routes", s.handleRoutes)
		r.Get("/resolve/*", s.handleResolve)
		r.Post("/favourite", s.handleAction("favourite"))
		r.Post("/reblog", s.handleAction("reblog"))
		r.Post("/bookmark", s.handleAction("bookmark"))
	})

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("gateway listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type routeInfo struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	routes := s.backend.Routes()
	out := make([]routeInfo, 0, len(routes))
	for _, rt := range routes {
		out = append(out, routeInfo{Name: rt.Name, Pattern: rt.Pattern})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	target := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	res, err := s.backend.Dispatch(r.Context(), target)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type actionRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			writeError(w, http.StatusBadRequest, errors.New("path required"))
			return
		}
		summary, err := s.backend.Apply(r.Context(), req.Path, action)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "result": summary})
	}
}

// statusFor maps a backend error to a response status. A resolver chain
// that failed is a 404 even when one of its steps was refused.
func statusFor(err error) int {
	switch {
	case errors.Is(err, resolve.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, route.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, resolve.ErrNoCredentials), errors.Is(err, resolve.ErrNoHome):
		return http.StatusUnauthorized
	case errors.Is(err, httpx.ErrUnauthorized):
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
