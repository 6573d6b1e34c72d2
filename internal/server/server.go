// Package server wires the HTTP router and owns the http.Server.
package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"photoreview/internal/api"
	"photoreview/internal/config"
	"photoreview/internal/exifmeta"
	"photoreview/internal/preview"
	"photoreview/internal/telemetry"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New builds the router and the http.Server for cfg.
func New(cfg *config.Config, version string, logger zerolog.Logger) (*Server, error) {
	if err := os.MkdirAll(cfg.ThumbnailDir, 0o755); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(telemetry.MetricsMiddleware)

	srv := &Server{cfg: cfg, logger: logger, router: router}
	srv.configureRoutes(version)

	srv.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		// Batch requests and RAW renders can run long; no write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func (s *Server) configureRoutes(version string) {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	s.router.Handle("/metrics", telemetry.Handler())

	settings := config.NewSettingsStore(s.cfg.SettingsFile, s.logger)
	frames := preview.FFmpeg{Bin: s.cfg.FFmpegBin, Timeout: s.cfg.VideoFrameTimeout}
	renderer := preview.NewRenderer(s.cfg.ThumbnailDir, s.cfg.ThumbnailSize, frames, s.logger)
	api.New(settings, exifmeta.New(), renderer, version, s.logger).Routes(s.router)

	if s.cfg.StaticDir != "" {
		s.router.Handle("/*", api.StaticHandler(s.cfg.StaticDir))
	} else {
		s.logger.Info().Msg("no static dir configured, UI not served")
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns the configured http.Server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http request")
		})
	}
}
