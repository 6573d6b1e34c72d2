package api

import (
	"net/http"

	"photoreview/internal/fileops"
	"photoreview/internal/media"
)

type moveRequest struct {
	Folder          string          `json:"folder"`
	Files           []media.FileSet `json:"files"`
	DestinationName string          `json:"destination_name"`
}

type restoreRequest struct {
	Folder string          `json:"folder"`
	Files  []media.FileSet `json:"files"`
}

type deleteRequest struct {
	Files  []media.FileSet `json:"files"`
	Folder string          `json:"folder,omitempty"`
}

type deleteJpgsRequest struct {
	Files []media.FileSet `json:"files"`
}

type moveResponse struct {
	Success bool `json:"success"`
	fileops.MoveResult
}

type restoreResponse struct {
	Success bool `json:"success"`
	fileops.RestoreResult
}

type deleteResponse struct {
	Success bool `json:"success"`
	fileops.DeleteResult
}

type deleteJpgsResponse struct {
	Success bool `json:"success"`
	fileops.PurgeResult
}

func (a *API) handleMove(w http.ResponseWriter, r *http.Request) {
	var in moveRequest
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeAppError(w, r, err)
		return
	}

	res, err := a.operator(a.begin()).Move(in.Folder, in.Files, in.DestinationName)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{Success: true, MoveResult: res})
}

func (a *API) handleRestore(w http.ResponseWriter, r *http.Request) {
	var in restoreRequest
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeAppError(w, r, err)
		return
	}

	res, err := a.operator(a.begin()).Restore(in.Folder, in.Files)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restoreResponse{Success: true, RestoreResult: res})
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	var in deleteRequest
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeAppError(w, r, err)
		return
	}

	res, err := a.operator(a.begin()).Delete(in.Files, in.Folder)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true, DeleteResult: res})
}

func (a *API) handleDeleteJpgs(w http.ResponseWriter, r *http.Request) {
	var in deleteJpgsRequest
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeAppError(w, r, err)
		return
	}

	res, err := a.operator(a.begin()).DeleteJpgKeepRaw(in.Files)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteJpgsResponse{Success: true, PurgeResult: res})
}
