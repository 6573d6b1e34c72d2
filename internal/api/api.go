// Package api exposes scanning, previews and batch operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"photoreview/internal/apperr"
	"photoreview/internal/config"
	"photoreview/internal/fileops"
	"photoreview/internal/pathguard"
	"photoreview/internal/preview"
	"photoreview/internal/scan"
)

// AppName is reported by /api/version.
const AppName = "Photo Review"

const maxBodyBytes = 8 << 20

// API holds the collaborators shared by all handlers. Settings are re-read
// on every request; nothing else is cached between requests.
type API struct {
	settings *config.SettingsStore
	meta     scan.MetadataReader
	renderer *preview.Renderer
	version  string
	logger   zerolog.Logger
}

// New returns an API.
func New(settings *config.SettingsStore, meta scan.MetadataReader, renderer *preview.Renderer, version string, logger zerolog.Logger) *API {
	return &API{
		settings: settings,
		meta:     meta,
		renderer: renderer,
		version:  version,
		logger:   logger,
	}
}

// Routes mounts API routes on provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(corsHandler)

		r.Get("/version", a.handleVersion)
		r.Get("/config", a.handleConfigGet)
		r.Post("/config", a.handleConfigUpdate)
		r.Get("/check-permissions", a.handleCheckPermissions)

		r.Get("/browse", a.handleBrowse)
		r.Get("/scan", a.handleScan)
		r.Get("/thumbnail", a.handleThumbnail)
		r.Get("/image", a.handleImage)
		r.Get("/video", a.handleVideo)

		r.Post("/move", a.handleMove)
		r.Post("/restore", a.handleRestore)
		r.Post("/delete", a.handleDelete)
		r.Post("/delete-jpgs", a.handleDeleteJpgs)
	})
}

// request is the per-request view of the settings.
type request struct {
	settings config.Settings
	guard    *pathguard.Guard
}

func (a *API) begin() request {
	s := a.settings.Load()
	return request{settings: s, guard: pathguard.New(s.MountPoints)}
}

func (a *API) scanner(req request) *scan.Scanner {
	return scan.New(req.guard, a.meta, a.logger)
}

func (a *API) operator(req request) *fileops.Operator {
	return fileops.New(req.guard, req.settings.DestinationFolder, a.logger)
}

func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("decode", "request body required")
		}
		return apperr.Invalid("decode", "invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps an error's kind to a status code. Guard rejections
// always carry the same message so they reveal nothing about the path.
func (a *API) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	if kind == apperr.KindPathNotAllowed {
		msg = "Path not allowed"
	}

	ev := a.logger.Debug()
	if status >= http.StatusInternalServerError {
		ev = a.logger.Error()
	}
	ev.Err(err).Str("kind", kind.String()).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeError(w, status, msg)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindPathNotAllowed:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
