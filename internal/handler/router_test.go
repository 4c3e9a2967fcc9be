package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/psychai/companion/internal/handler/view"
	chatservice "github.com/psychai/companion/internal/service/chat"
	clinicalservice "github.com/psychai/companion/internal/service/clinical"
	"github.com/psychai/companion/internal/service/companion"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := companion.NewService(nil, nil, nil, chatservice.NewService(), clinicalservice.NewStore())
	router, err := NewRouter(svc, view.Options{
		Gate:            view.InsecurePassphraseGate{Passphrase: "123"},
		Icon:            view.PageIcon{Glyph: view.FallbackGlyph},
		RefreshInterval: time.Second,
	})
	if err != nil {
		t.Fatalf("NewRouter err: %v", err)
	}
	return router
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		target string
		status int
	}{
		{"/", http.StatusOK},
		{"/?view=psychologist", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/report.csv", http.StatusOK},
		{"/api/dashboard", http.StatusUnauthorized},
		{"/api/dashboard?key=123", http.StatusOK},
		{"/api/messages", http.StatusOK},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.target, nil))
		if resp.Code != tc.status {
			t.Fatalf("GET %s: expected %d, got %d", tc.target, tc.status, resp.Code)
		}
	}
}

func TestAPIAllowsCrossOriginReads(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header")
	}
}

func TestRouterRequiresGate(t *testing.T) {
	svc := companion.NewService(nil, nil, nil, chatservice.NewService(), clinicalservice.NewStore())
	if _, err := NewRouter(svc, view.Options{}); err == nil {
		t.Fatal("expected error without access gate")
	}
}
