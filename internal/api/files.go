package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/koopa0/forge/internal/artifact"
)

// fileHandler serves the per-file snapshot endpoints. File paths carry
// slashes, so every route addresses the file through a path query
// parameter instead of a URL segment.
type fileHandler struct {
	store  *artifact.Store
	logger *slog.Logger
}

// filePath extracts the required path query parameter.
func (h *fileHandler) filePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "missing_path", "path query parameter is required", h.logger)
		return "", false
	}
	return path, true
}

// listFileVersions handles GET /api/v1/files/versions?path=P.
func (h *fileHandler) listFileVersions(w http.ResponseWriter, r *http.Request) {
	path, ok := h.filePath(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, h.store.FileVersions(path))
}

// latestFileVersion handles GET /api/v1/files/versions/latest?path=P.
func (h *fileHandler) latestFileVersion(w http.ResponseWriter, r *http.Request) {
	path, ok := h.filePath(w, r)
	if !ok {
		return
	}

	fv, found := h.store.LatestFileVersion(path)
	if !found {
		WriteError(w, http.StatusNotFound, "not_found", "file has no snapshots", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, fv)
}

// fileAtVersion handles GET /api/v1/files/at-version?path=P&artifact=A&version=N.
func (h *fileHandler) fileAtVersion(w http.ResponseWriter, r *http.Request) {
	path, ok := h.filePath(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	artifactID := q.Get("artifact")
	if artifactID == "" {
		WriteError(w, http.StatusBadRequest, "missing_artifact", "artifact query parameter is required", h.logger)
		return
	}
	number, err := strconv.Atoi(q.Get("version"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_version_number", "version must be an integer", h.logger)
		return
	}

	fv, found := h.store.FileAtVersion(path, artifactID, number)
	if !found {
		WriteError(w, http.StatusNotFound, "not_found", "no snapshot for that artifact version", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, fv)
}

// clearFileVersions handles DELETE /api/v1/files/versions?path=P.
// Clearing an unknown path succeeds; the operation is idempotent.
func (h *fileHandler) clearFileVersions(w http.ResponseWriter, r *http.Request) {
	path, ok := h.filePath(w, r)
	if !ok {
		return
	}
	h.store.ClearFile(path)
	w.WriteHeader(http.StatusNoContent)
}
