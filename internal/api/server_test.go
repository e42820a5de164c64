package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/koopa0/forge/internal/artifact"
)

// testStore creates an in-memory store with default caps.
func testStore() *artifact.Store {
	return artifact.New(0, 0, discardLogger())
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Logger:      discardLogger(),
		Store:       testStore(),
		CORSOrigins: []string{"http://localhost:5173"},
		Dev:         true,
	})

	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	if srv == nil {
		t.Fatal("NewServer() returned nil")
	}

	if srv.Handler() == nil {
		t.Fatal("NewServer().Handler() returned nil")
	}
}

func TestNewServer_MissingStore(t *testing.T) {
	_, err := NewServer(ServerConfig{
		Logger: discardLogger(),
	})

	if err == nil {
		t.Fatal("NewServer(nil store) expected error, got nil")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Logger: discardLogger(),
		Store:  testStore(),
		Dev:    true,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)

	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	decodeData(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("GET /health status = %q, want %q", body["status"], "ok")
	}
}

func TestReadyEndpoint(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Logger: discardLogger(),
		Store:  testStore(),
		Dev:    true,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ready", nil)

	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /ready status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Status string              `json:"status"`
		Stats  artifact.StoreStats `json:"stats"`
	}
	decodeData(t, w, &body)
	if body.Status != "ready" {
		t.Errorf("GET /ready status = %q, want %q", body.Status, "ready")
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	handler := requestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	got := w.Header().Get(requestIDHeader)
	if got == "" {
		t.Fatal("requestIDMiddleware() did not set X-Request-ID header")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("requestIDMiddleware() X-Request-ID = %q, not a valid UUID", got)
	}
}

func TestRequestIDMiddleware_ReusesValid(t *testing.T) {
	want := uuid.New().String()

	handler := requestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, want)

	handler.ServeHTTP(w, r)

	got := w.Header().Get(requestIDHeader)
	if got != want {
		t.Errorf("requestIDMiddleware(valid) X-Request-ID = %q, want %q", got, want)
	}
}

func TestRequestIDMiddleware_RejectsInvalid(t *testing.T) {
	handler := requestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, "not-a-valid-uuid")

	handler.ServeHTTP(w, r)

	got := w.Header().Get(requestIDHeader)
	if got == "not-a-valid-uuid" {
		t.Error("requestIDMiddleware(invalid) should not reuse invalid X-Request-ID")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("requestIDMiddleware(invalid) X-Request-ID = %q, not a valid UUID", got)
	}
}

func TestRequestIDMiddleware_InContext(t *testing.T) {
	want := uuid.New().String()

	var gotFromCtx string
	handler := requestIDMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotFromCtx, _ = requestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, want)

	handler.ServeHTTP(w, r)

	if gotFromCtx != want {
		t.Errorf("requestIDFromContext() = %q, want %q", gotFromCtx, want)
	}
}

func TestRouteRegistration(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Logger:      discardLogger(),
		Store:       testStore(),
		CORSOrigins: []string{"http://localhost:5173"},
		Dev:         true,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		// Health probes (no middleware)
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		// Non-existent route
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
		// Artifact version routes
		{http.MethodGet, "/api/v1/artifacts/a1/versions", http.StatusOK},
		{http.MethodGet, "/api/v1/artifacts/a1/versions/latest", http.StatusNotFound},
		{http.MethodGet, "/api/v1/artifacts/a1/versions/1", http.StatusNotFound},
		{http.MethodPost, "/api/v1/artifacts/a1/versions", http.StatusBadRequest}, // empty body
		{http.MethodPost, "/api/v1/artifacts/a1/ingest", http.StatusBadRequest},   // empty body
		{http.MethodDelete, "/api/v1/artifacts/a1/versions", http.StatusNoContent},
		{http.MethodGet, "/api/v1/artifacts/a1/history", http.StatusOK},
		{http.MethodGet, "/api/v1/artifacts/a1/compare?from=1&to=2", http.StatusOK},
		{http.MethodGet, "/api/v1/artifacts/a1/diff", http.StatusBadRequest}, // missing params
		// File routes
		{http.MethodGet, "/api/v1/files/versions", http.StatusBadRequest}, // missing path param
		{http.MethodGet, "/api/v1/files/versions?path=x.ts", http.StatusOK},
		{http.MethodGet, "/api/v1/files/versions/latest?path=x.ts", http.StatusNotFound},
		{http.MethodGet, "/api/v1/files/at-version?path=x.ts&artifact=a1&version=1", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/files/versions?path=x.ts", http.StatusNoContent},
		// Store-wide routes
		{http.MethodGet, "/api/v1/snapshot", http.StatusOK},
		{http.MethodPost, "/api/v1/snapshot", http.StatusBadRequest}, // empty body
		{http.MethodDelete, "/api/v1/store", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.Handler().ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Errorf("route %s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}
