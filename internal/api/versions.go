package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/koopa0/forge/internal/artifact"
	"github.com/koopa0/forge/internal/diff"
)

// maxBodyBytes caps request bodies. Version payloads carry whole file
// contents, so the limit matches the parser's working size.
const maxBodyBytes = 1 << 20 // 1MB

// versionHandler serves the per-artifact version endpoints.
type versionHandler struct {
	store  *artifact.Store
	logger *slog.Logger
}

type createVersionRequest struct {
	MessageID   string            `json:"message_id"`
	Description string            `json:"description"`
	Changes     []artifact.Change `json:"changes"`
}

// createVersion handles POST /api/v1/artifacts/{id}/versions.
func (h *versionHandler) createVersion(w http.ResponseWriter, r *http.Request) {
	artifactID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if code, msg, ok := checkChanges(req.Changes); !ok {
		WriteError(w, http.StatusBadRequest, code, msg, h.logger)
		return
	}

	v, err := h.store.CreateVersion(artifactID, req.MessageID, req.Changes, req.Description)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, v)
}

type ingestRequest struct {
	MessageID   string `json:"message_id"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// ingest handles POST /api/v1/artifacts/{id}/ingest.
//
// The body carries raw assistant output; <artifact> blocks in the text
// are parsed into changes and recorded as one new version. Previous file
// contents are filled in from the latest snapshot of each path, so diff
// viewers get a before/after pair without the pipeline tracking it.
func (h *versionHandler) ingest(w http.ResponseWriter, r *http.Request) {
	artifactID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	blocks := artifact.Parse(req.Text)
	var changes []artifact.Change
	description := req.Description
	for _, block := range blocks {
		changes = append(changes, block.Changes...)
		if description == "" && block.Title != "" {
			description = block.Title
		}
	}
	if len(changes) == 0 {
		WriteError(w, http.StatusBadRequest, "no_changes", "no artifact actions found in text", h.logger)
		return
	}

	// Attach the previous content of each touched file for diff rendering
	for i, c := range changes {
		if c.Kind != artifact.KindFile || c.FilePath == "" || c.PreviousContent != nil {
			continue
		}
		if prev, ok := h.store.LatestFileVersion(c.FilePath); ok {
			content := prev.Content
			changes[i].PreviousContent = &content
		}
	}

	v, err := h.store.CreateVersion(artifactID, req.MessageID, changes, description)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, v)
}

// listVersions handles GET /api/v1/artifacts/{id}/versions.
func (h *versionHandler) listVersions(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.VersionsForArtifact(r.PathValue("id")))
}

// getVersion handles GET /api/v1/artifacts/{id}/versions/{number}.
func (h *versionHandler) getVersion(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_version_number", "version number must be an integer", h.logger)
		return
	}

	v, ok := h.store.Version(r.PathValue("id"), number)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "version not found", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// latestVersion handles GET /api/v1/artifacts/{id}/versions/latest.
func (h *versionHandler) latestVersion(w http.ResponseWriter, r *http.Request) {
	v, ok := h.store.LatestVersion(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "artifact has no versions", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// clearVersions handles DELETE /api/v1/artifacts/{id}/versions.
// Clearing an unknown artifact succeeds; the operation is idempotent.
func (h *versionHandler) clearVersions(w http.ResponseWriter, r *http.Request) {
	h.store.ClearArtifact(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// history handles GET /api/v1/artifacts/{id}/history.
func (h *versionHandler) history(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.History(r.PathValue("id")))
}

type compareResponse struct {
	ArtifactID string   `json:"artifact_id"`
	From       int      `json:"from"`
	To         int      `json:"to"`
	Added      []string `json:"added"`
	Modified   []string `json:"modified"`
	Removed    []string `json:"removed"`
}

// compare handles GET /api/v1/artifacts/{id}/compare?from=N&to=M.
func (h *versionHandler) compare(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.versionRange(w, r)
	if !ok {
		return
	}

	artifactID := r.PathValue("id")
	cmp := h.store.CompareVersions(artifactID, from, to)
	WriteJSON(w, http.StatusOK, compareResponse{
		ArtifactID: artifactID,
		From:       from,
		To:         to,
		Added:      cmp.Added,
		Modified:   cmp.Modified,
		Removed:    cmp.Removed,
	})
}

type diffResponse struct {
	Path       string `json:"path"`
	ArtifactID string `json:"artifact_id"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	Mode       string `json:"mode"`
	Additions  int    `json:"additions"`
	Deletions  int    `json:"deletions"`
	Summary    string `json:"summary"`
	Unified    string `json:"unified"`
}

// fileDiff handles GET /api/v1/artifacts/{id}/diff?from=N&to=M&path=P.
// It diffs the snapshots of one file between two versions of an artifact.
// A version without a snapshot of the file counts as the file not
// existing, so additions and deletions render naturally.
func (h *versionHandler) fileDiff(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.versionRange(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "missing_path", "path query parameter is required", h.logger)
		return
	}

	artifactID := r.PathValue("id")
	fromFV, okFrom := h.store.FileAtVersion(path, artifactID, from)
	toFV, okTo := h.store.FileAtVersion(path, artifactID, to)
	if !okFrom && !okTo {
		WriteError(w, http.StatusNotFound, "not_found",
			fmt.Sprintf("no snapshot of %s at version %d or %d", path, from, to), h.logger)
		return
	}

	var oldContent, newContent string
	if okFrom {
		oldContent = fromFV.Content
	}
	if okTo {
		newContent = toFV.Content
	}

	d := diff.Compute(path, oldContent, newContent)
	WriteJSON(w, http.StatusOK, diffResponse{
		Path:       path,
		ArtifactID: artifactID,
		From:       from,
		To:         to,
		Mode:       string(d.Mode),
		Additions:  d.Stats.Additions,
		Deletions:  d.Stats.Deletions,
		Summary:    d.Summary(),
		Unified:    d.Unified(),
	})
}

// versionRange parses the from and to query parameters.
func (h *versionHandler) versionRange(w http.ResponseWriter, r *http.Request) (from, to int, ok bool) {
	q := r.URL.Query()
	from, err := strconv.Atoi(q.Get("from"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_version_number", "from must be an integer", h.logger)
		return 0, 0, false
	}
	to, err = strconv.Atoi(q.Get("to"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_version_number", "to must be an integer", h.logger)
		return 0, 0, false
	}
	return from, to, true
}

// writeCreateError maps CreateVersion failures to HTTP responses.
func (h *versionHandler) writeCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, artifact.ErrEmptyArtifactID):
		WriteError(w, http.StatusBadRequest, "invalid_artifact_id", "artifact id must not be empty", h.logger)
	case errors.Is(err, artifact.ErrEmptyMessageID):
		WriteError(w, http.StatusBadRequest, "invalid_message_id", "message_id must not be empty", h.logger)
	default:
		h.logger.Error("creating version", "error", err)
		WriteError(w, http.StatusInternalServerError, "create_failed", "failed to create version", h.logger)
	}
}

// checkChanges validates the change kinds of a create request.
func checkChanges(changes []artifact.Change) (code, msg string, ok bool) {
	for i, c := range changes {
		if !c.Kind.Valid() {
			return "invalid_change_kind",
				fmt.Sprintf("change %d has unknown kind %q", i, c.Kind), false
		}
	}
	return "", "", true
}
