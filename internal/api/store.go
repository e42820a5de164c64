package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/koopa0/forge/internal/artifact"
)

// maxSnapshotBytes caps snapshot uploads. A snapshot carries every
// retained version of every artifact, so it gets a larger budget than
// single-version bodies.
const maxSnapshotBytes = 32 << 20 // 32MB

// storeHandler serves the store-wide endpoints: snapshot export and
// restore, and the whole-store reset.
type storeHandler struct {
	store  *artifact.Store
	logger *slog.Logger
}

// exportSnapshot handles GET /api/v1/snapshot.
func (h *storeHandler) exportSnapshot(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.Export())
}

// restoreSnapshot handles POST /api/v1/snapshot. The body is a snapshot
// previously produced by the export endpoint (or a snapshot file); the
// store contents are replaced wholesale on success and untouched on
// failure.
func (h *storeHandler) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)

	var snap artifact.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "snapshot too large", h.logger)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if err := h.store.Import(&snap); err != nil {
		if errors.Is(err, artifact.ErrInvalidSnapshot) {
			WriteError(w, http.StatusBadRequest, "invalid_snapshot", err.Error(), h.logger)
			return
		}
		h.logger.Error("restoring snapshot", "error", err)
		WriteError(w, http.StatusInternalServerError, "restore_failed", "failed to restore snapshot", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// resetStore handles DELETE /api/v1/store. Every artifact history and
// every file history is dropped.
func (h *storeHandler) resetStore(w http.ResponseWriter, r *http.Request) {
	h.store.Reset()
	w.WriteHeader(http.StatusNoContent)
}
