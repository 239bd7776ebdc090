package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/litsalon/backend/internal/chunk"
	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/internal/service/session"
	"github.com/litsalon/backend/pkg/utils"
)

// Handler exposes the chat turn pipeline over REST.
type Handler struct {
	core       *orchestrator.Orchestrator
	chunkLimit int
}

// New creates the chat handler. chunkLimit bounds each reply chunk.
func New(core *orchestrator.Orchestrator, chunkLimit int) *Handler {
	if chunkLimit <= 0 {
		chunkLimit = 4000
	}
	return &Handler{core: core, chunkLimit: chunkLimit}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/persona", h.handleSelectPersona)
	r.Post("/chat/message", h.handleMessage)
	r.Get("/chat/stats", h.handleStats)
	r.Get("/chat/about", h.handleAbout)
}

// userID resolves the caller identity from the X-User-ID header or the
// userId query parameter.
func userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("userId"))
}

func (h *Handler) handleSelectPersona(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID    string `json:"userId"`
		PersonaID string `json:"personaId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		payload.UserID = userID(r)
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if payload.PersonaID == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaId is required")
		return
	}

	sess, err := h.core.SelectPersona(r.Context(), payload.UserID, payload.PersonaID)
	if err != nil {
		if errors.Is(err, session.ErrPersonaNotFound) {
			utils.RespondError(w, http.StatusNotFound, "persona not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"personaId": sess.PersonaID,
		"greeting":  sess.Transcript[len(sess.Transcript)-1].Content,
	})
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		payload.UserID = userID(r)
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.core.SubmitTurn(r.Context(), payload.UserID, payload.Message)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"kind":   reply.Kind.String(),
		"reply":  reply.Text,
		"chunks": chunk.Split(reply.Text, h.chunkLimit),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	stats, err := h.core.Stats(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	p, err := h.core.About(r.Context(), id)
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoPersonaSelected) {
			utils.RespondError(w, http.StatusNotFound, "no persona selected")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
