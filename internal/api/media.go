package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"photoreview/internal/apperr"
	"photoreview/internal/media"
	"photoreview/internal/scan"
)

type browseResponse struct {
	Items       []scan.Dir `json:"items"`
	CurrentPath string     `json:"current_path"`
}

type scanResponse struct {
	Photos []media.Item `json:"photos"`
	Count  int          `json:"count"`
}

func (a *API) handleBrowse(w http.ResponseWriter, r *http.Request) {
	req := a.begin()
	path := r.URL.Query().Get("path")

	if path == "" {
		writeJSON(w, http.StatusOK, browseResponse{Items: scan.MountDirs(req.settings.MountPoints), CurrentPath: ""})
		return
	}

	dirs, err := a.scanner(req).ListDirs(path)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, browseResponse{Items: dirs, CurrentPath: path})
}

func (a *API) handleScan(w http.ResponseWriter, r *http.Request) {
	req := a.begin()

	items, err := a.scanner(req).Scan(r.URL.Query().Get("path"))
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{Photos: items, Count: len(items)})
}

func (a *API) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	path, _, err := a.requireFile(a.begin(), r)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}

	thumb, err := a.renderer.Thumbnail(r.Context(), path)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, thumb)
}

func (a *API) handleImage(w http.ResponseWriter, r *http.Request) {
	path, fi, err := a.requireFile(a.begin(), r)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}

	switch media.Classify(path).Category {
	case media.VideoFile:
		writeError(w, http.StatusBadRequest, "Use /api/video endpoint for videos")
	case media.RawImage:
		b, err := a.renderer.Full(r.Context(), path)
		if err != nil {
			a.writeAppError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(b)
	case media.JpgImage:
		a.serveFile(w, r, path, fi, "image/jpeg")
	default:
		writeError(w, http.StatusBadRequest, "Not an image file")
	}
}

func (a *API) handleVideo(w http.ResponseWriter, r *http.Request) {
	path, fi, err := a.requireFile(a.begin(), r)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	if !media.IsVideo(path) {
		writeError(w, http.StatusBadRequest, "Not a video file")
		return
	}
	a.serveFile(w, r, path, fi, media.VideoMIME(path))
}

// requireFile reads the path query parameter and checks it against the
// guard. A missing file inside an allowed directory is reported as not
// found rather than rejected.
func (a *API) requireFile(req request, r *http.Request) (string, os.FileInfo, error) {
	const op = "open"
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		return "", nil, apperr.Invalid(op, "Path required")
	}
	if !req.guard.Allowed(path) {
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) && req.guard.Allowed(filepath.Dir(path)) {
			return "", nil, apperr.New(apperr.KindNotFound, op, path, errors.New("File does not exist"))
		}
		return "", nil, apperr.NotAllowed(op, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", nil, apperr.New(apperr.KindNotFound, op, path, errors.New("File does not exist"))
	}
	if fi.IsDir() {
		return "", nil, apperr.Invalid(op, "%s is a directory", path)
	}
	return path, fi, nil
}

// serveFile streams path with range support.
func (a *API) serveFile(w http.ResponseWriter, r *http.Request, path string, fi os.FileInfo, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		a.writeAppError(w, r, apperr.New(apperr.KindIOFailure, "open", path, err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
