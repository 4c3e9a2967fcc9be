package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/psychai/companion/internal/model/chat"
	chatservice "github.com/psychai/companion/internal/service/chat"
	clinicalservice "github.com/psychai/companion/internal/service/clinical"
	"github.com/psychai/companion/internal/service/companion"
	"github.com/psychai/companion/internal/service/escalation"
)

func setupRouter() (*chi.Mux, *companion.Service) {
	svc := companion.NewService(nil, nil, nil, chatservice.NewService(), clinicalservice.NewStore())
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func postJSON(r http.Handler, target string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPostMessageCrisis(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(r, "/messages", map[string]string{"content": "I want to die"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var got turnResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Record.Score != 10 || got.Escalation != escalation.StatusDisabled || !got.UsedFallback {
		t.Fatalf("unexpected turn %+v", got)
	}
	if got.Patient.Role != chat.RolePatient || got.Assistant.Role != chat.RoleAssistant {
		t.Fatalf("unexpected roles %+v", got)
	}
}

func TestPostMessageBlank(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(r, "/messages", map[string]string{"content": " "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPostMessageInvalidBody(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestNewSession(t *testing.T) {
	r, _ := setupRouter()

	if resp := postJSON(r, "/session", struct{}{}); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty conversation, got %d", resp.Code)
	}

	postJSON(r, "/messages", map[string]string{"content": "hello there"})
	resp := postJSON(r, "/session", struct{}{})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var summary chat.SessionSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Text != "hello there..." {
		t.Fatalf("unexpected summary %q", summary.Text)
	}
}

func TestTranscript(t *testing.T) {
	r, _ := setupRouter()
	postJSON(r, "/messages", map[string]string{"content": "hello"})

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var body struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(body.Messages))
	}
}
