// Package api provides the JSON REST API server for Forge.
//
// # Architecture
//
// The API server uses Go 1.22+ routing with a layered middleware stack:
//
//	Recovery → RequestID → Logging → CORS → RateLimit → Routes
//
// Health probes (/health, /ready) bypass the middleware stack via a
// top-level mux, ensuring they remain fast and unauthenticated.
//
// # Endpoints
//
// Health probes (no middleware):
//   - GET /health — returns {"status":"ok"}
//   - GET /ready  — returns {"status":"ready"} with store stats
//
// Artifact versions:
//   - POST   /api/v1/artifacts/{id}/versions         — record a new version
//   - POST   /api/v1/artifacts/{id}/ingest           — parse artifact markup, record a version
//   - GET    /api/v1/artifacts/{id}/versions         — list versions (oldest first)
//   - GET    /api/v1/artifacts/{id}/versions/latest  — most recent version
//   - GET    /api/v1/artifacts/{id}/versions/{number} — version by number
//   - DELETE /api/v1/artifacts/{id}/versions         — drop the artifact's history
//   - GET    /api/v1/artifacts/{id}/history          — version summaries
//   - GET    /api/v1/artifacts/{id}/compare?from=&to= — changed paths between versions
//   - GET    /api/v1/artifacts/{id}/diff?from=&to=&path= — unified diff of one file
//
// File snapshots:
//   - GET    /api/v1/files/versions?path=        — snapshot history of a file
//   - GET    /api/v1/files/versions/latest?path= — most recent snapshot
//   - GET    /api/v1/files/at-version?path=&artifact=&version= — snapshot at a version
//   - DELETE /api/v1/files/versions?path=        — drop the file's history
//
// Store-wide:
//   - GET    /api/v1/snapshot — export the whole store as JSON
//   - POST   /api/v1/snapshot — replace the store from an exported snapshot
//   - DELETE /api/v1/store    — reset the store
//
// # Error Handling
//
// Success responses carry the payload directly. Errors use an envelope:
//
//	{"error": {"code": "...", "message": "..."}}
//
// Lookups of unknown artifacts or files return 404 at this layer; the
// underlying store treats absence as a normal outcome, not an error.
// List endpoints return empty arrays for unknown keys.
//
// # Security
//
// The middleware stack enforces:
//   - Per-IP rate limiting (token bucket, 60 req/min burst)
//   - CORS with explicit origin allowlist
//   - Security headers (CSP, HSTS, X-Frame-Options, etc.)
//   - Request body size limits on all write endpoints
package api
