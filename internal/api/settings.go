package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"photoreview/internal/apperr"
)

type versionResponse struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

type permissionsResponse struct {
	Exists   bool `json:"exists"`
	Readable bool `json:"readable"`
	Writable bool `json:"writable"`
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{Version: a.version, Name: AppName})
}

func (a *API) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.settings.Load())
}

// handleConfigUpdate overlays the posted keys on the current settings, so a
// partial document only changes what it names.
func (a *API) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	next := a.settings.Load()
	if err := decodeJSON(w, r, &next); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	if err := a.settings.Save(next); err != nil {
		status := statusFor(apperr.KindOf(err))
		a.logger.Warn().Err(err).Msg("settings update rejected")
		writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleCheckPermissions(w http.ResponseWriter, r *http.Request) {
	req := a.begin()
	path := r.URL.Query().Get("path")

	_, statErr := os.Stat(path)
	missing := errors.Is(statErr, os.ErrNotExist)
	allowed := req.guard.Allowed(path) || (missing && req.guard.Allowed(filepath.Dir(path)))
	if strings.TrimSpace(path) == "" || !allowed {
		a.writeAppError(w, r, apperr.NotAllowed("check-permissions", path))
		return
	}

	resp := permissionsResponse{Exists: statErr == nil}
	if resp.Exists {
		resp.Readable, resp.Writable = access(path)
	}
	writeJSON(w, http.StatusOK, resp)
}
