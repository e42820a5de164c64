package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/koopa0/forge/internal/artifact"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Store       *artifact.Store // Required
	CORSOrigins []string        // Allowed origins for CORS
	TrustProxy  bool            // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
	RateBurst   int             // Rate limiter burst size per IP (0 = default 60)
	Dev         bool            // Local development: skips HSTS
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("artifact store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	vh := &versionHandler{store: cfg.Store, logger: logger}
	fh := &fileHandler{store: cfg.Store, logger: logger}
	sh := &storeHandler{store: cfg.Store, logger: logger}

	mux := http.NewServeMux()

	// Artifact versions
	mux.HandleFunc("POST /api/v1/artifacts/{id}/versions", vh.createVersion)
	mux.HandleFunc("POST /api/v1/artifacts/{id}/ingest", vh.ingest)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/versions", vh.listVersions)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/versions/latest", vh.latestVersion)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/versions/{number}", vh.getVersion)
	mux.HandleFunc("DELETE /api/v1/artifacts/{id}/versions", vh.clearVersions)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/history", vh.history)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/compare", vh.compare)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/diff", vh.fileDiff)

	// File snapshots
	mux.HandleFunc("GET /api/v1/files/versions", fh.listFileVersions)
	mux.HandleFunc("GET /api/v1/files/versions/latest", fh.latestFileVersion)
	mux.HandleFunc("GET /api/v1/files/at-version", fh.fileAtVersion)
	mux.HandleFunc("DELETE /api/v1/files/versions", fh.clearFileVersions)

	// Store-wide
	mux.HandleFunc("GET /api/v1/snapshot", sh.exportSnapshot)
	mux.HandleFunc("POST /api/v1/snapshot", sh.restoreSnapshot)
	mux.HandleFunc("DELETE /api/v1/store", sh.resetStore)

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	// CORS must be before RateLimit so preflight OPTIONS gets proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Wrap with security headers
	dev := cfg.Dev
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w, dev)
		handler.ServeHTTP(w, r)
	})

	// Use a top-level mux to separate health probes from middleware stack
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Store))
	topMux.Handle("/", final)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
