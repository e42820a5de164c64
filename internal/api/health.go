package api

import (
	"net/http"

	"github.com/koopa0/forge/internal/artifact"
)

// health is a simple health check endpoint for Docker/Kubernetes probes.
// Returns 200 OK with {"status":"ok"}.
func health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readiness reports whether the server can take traffic, along with
// current store sizes so probes double as a cheap metrics endpoint.
func readiness(store *artifact.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ready",
			"stats":  store.Stats(),
		})
	})
}
