// Package api serves mass calculations over HTTP
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

const shutdownTimeout = 5 * time.Second

// Config holds configuration for the API server.
type Config struct {
	Columns     []core.IonColumn // columns reported by /ions; nil = defaults
	Precision   int32            // used when a request gives none
	Elimination string           // used when a request gives none
	Logger      *slog.Logger
}

// Server answers mass requests. Every request works on its own compounds,
// so handlers share no mutable state.
type Server struct {
	columns     []core.IonColumn
	precision   int32
	elimination string
	logger      *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	columns := cfg.Columns
	if columns == nil {
		columns = core.DefaultIonColumns()
	}
	return &Server{
		columns:     columns,
		precision:   cfg.Precision,
		elimination: cfg.Elimination,
		logger:      logger,
	}
}

// Routes returns the HTTP handler with all routes registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
	)

	r.Get("/elements", s.elementsHandler)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/mass", s.massHandler)
		r.Post("/ions", s.ionsHandler)
		r.Post("/combine", s.combineHandler)
	})

	return r
}

// Serve listens on addr and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	s.logger.Info("starting API server", "addr", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// precisionOf returns the request precision or the server default.
func (s *Server) precisionOf(p *int32) (int32, error) {
	if p == nil {
		return s.precision, nil
	}
	if *p < 0 || *p > core.MaxPrecision {
		return 0, fmt.Errorf("precision must be between 0 and %d, got %d", core.MaxPrecision, *p)
	}
	return *p, nil
}

// eliminationOf returns the request elimination product or the server default.
func (s *Server) eliminationOf(e *string) string {
	if e == nil {
		return s.elimination
	}
	return *e
}
