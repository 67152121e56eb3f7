// Package web serves the recommendation form, its result page and a small JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server holds the shared read-only state behind every handler.
type Server struct {
	cfg  *contract.Config
	env  core.Env
	mgr  contract.HistoryManager
	log  zerolog.Logger
	tmpl *template.Template
}

// NewServer parses the page templates and returns a server for env.
func NewServer(cfg *contract.Config, env core.Env, mgr contract.HistoryManager, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("pages").Funcs(templateFuncs(cfg)).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Server{cfg: cfg, env: env, mgr: mgr, log: log, tmpl: tmpl}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID) // Add X-Request-Id to the request context
	r.Use(chimiddleware.RealIP)    // Extract real IP from X-Forwarded-For
	r.Use(requestLogger(s.log))
	r.Use(chimiddleware.Recoverer) // Recover from panics

	r.Get("/", s.handleHome)
	r.Post("/recommend", s.handleRecommendPage)
	r.Get("/healthz", s.handleHealth)
	r.Get("/images/{row}", s.handleImage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommend", s.handleRecommendAPI)
		r.Get("/options", s.handleOptions)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Serving recommendations")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request with its ID, status and latency.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := log.Info()
			if status >= http.StatusInternalServerError {
				event = log.Error()
			} else if status >= http.StatusBadRequest {
				event = log.Warn()
			}
			event.
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("request")
		})
	}
}
