package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/litsalon/backend/internal/model/chat"
	"github.com/litsalon/backend/internal/model/persona"
	"github.com/litsalon/backend/internal/service/correction"
	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/internal/service/session"
)

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Complete(_ context.Context, _ string, _ []chatmodel.Entry, _ string) (string, error) {
	return s.reply, nil
}

func setupRouter() *chi.Mux {
	personas := persona.NewMemoryStore(persona.Seed())
	sessions := session.NewStore(personas, 0)
	corrections := correction.NewMemoryStore()
	core := orchestrator.New(personas, sessions, corrections, nil,
		&stubCompleter{reply: "A fine question."}, orchestrator.Config{})

	handler := New(core, 4000)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSelectPersonaValid(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/chat/persona", map[string]string{
		"userId":    "user-1",
		"personaId": "tolstoy",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		PersonaID string `json:"personaId"`
		Greeting  string `json:"greeting"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.PersonaID != "tolstoy" {
		t.Fatalf("expected tolstoy, got %q", payload.PersonaID)
	}
	if payload.Greeting == "" {
		t.Fatal("expected a greeting")
	}
}

func TestSelectPersonaUnknown(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/chat/persona", map[string]string{
		"userId":    "user-1",
		"personaId": "nabokov",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSelectPersonaMissingUser(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/chat/persona", map[string]string{"personaId": "tolstoy"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestMessageWithoutPersona(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/chat/message", map[string]string{
		"userId":  "user-1",
		"message": "Hello",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Kind != "needs_persona" {
		t.Fatalf("expected needs_persona, got %q", payload.Kind)
	}
}

func TestMessageAnswer(t *testing.T) {
	r := setupRouter()

	if resp := postJSON(t, r, "/chat/persona", map[string]string{
		"userId":    "user-1",
		"personaId": "chekhov",
	}); resp.Code != http.StatusOK {
		t.Fatalf("select persona: %d", resp.Code)
	}

	resp := postJSON(t, r, "/chat/message", map[string]string{
		"userId":  "user-1",
		"message": "How do you write short stories?",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Kind   string   `json:"kind"`
		Reply  string   `json:"reply"`
		Chunks []string `json:"chunks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Kind != "answer" {
		t.Fatalf("expected answer, got %q", payload.Kind)
	}
	if payload.Reply != "A fine question." {
		t.Fatalf("unexpected reply %q", payload.Reply)
	}
	if len(payload.Chunks) != 1 || payload.Chunks[0] != payload.Reply {
		t.Fatalf("unexpected chunks %v", payload.Chunks)
	}
}

func TestMessageMissingBody(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/chat/message", map[string]string{"userId": "user-1"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStatsRequiresUser(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/chat/stats", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStatsViaHeader(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/chat/stats", nil)
	req.Header.Set("X-User-ID", "user-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		TotalCorrections int `json:"totalCorrections"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.TotalCorrections != 0 {
		t.Fatalf("expected zero corrections, got %d", payload.TotalCorrections)
	}
}

func TestAboutWithoutSelection(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/chat/about?userId=user-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
