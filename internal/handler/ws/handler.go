// Package ws serves interactive chat over a WebSocket connection. Each
// connection is bound to one user; frames carry persona selection and chat
// turns as JSON.
package ws

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/litsalon/backend/internal/chunk"
	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/internal/service/session"
	"github.com/litsalon/backend/pkg/utils"
)

// Handler upgrades chat connections and pumps frames through the core.
type Handler struct {
	core       *orchestrator.Orchestrator
	chunkLimit int
	upgrader   websocket.Upgrader
}

// New creates the WebSocket handler.
func New(core *orchestrator.Orchestrator, chunkLimit int) *Handler {
	if chunkLimit <= 0 {
		chunkLimit = 4000
	}
	return &Handler{
		core:       core,
		chunkLimit: chunkLimit,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{userID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type      string `json:"type"`
	PersonaID string `json:"personaId,omitempty"`
	Text      string `json:"text,omitempty"`
}

type outboundFrame struct {
	Type      string   `json:"type"`
	Kind      string   `json:"kind,omitempty"`
	Content   string   `json:"content,omitempty"`
	Chunks    []string `json:"chunks,omitempty"`
	Error     string   `json:"error,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userID is required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user=%s: %v", userID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened for user=%s", userID)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed for user=%s: %v", userID, err)
			}
			return
		}

		switch frame.Type {
		case "persona":
			h.handleSelect(conn, r, userID, frame.PersonaID)
		case "message":
			h.handleTurn(conn, r, userID, frame.Text)
		default:
			h.send(conn, outboundFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}

func (h *Handler) handleSelect(conn *websocket.Conn, r *http.Request, userID, personaID string) {
	sess, err := h.core.SelectPersona(r.Context(), userID, personaID)
	if err != nil {
		if errors.Is(err, session.ErrPersonaNotFound) {
			h.send(conn, outboundFrame{Type: "error", Error: "persona not found"})
			return
		}
		h.send(conn, outboundFrame{Type: "error", Error: err.Error()})
		return
	}

	h.send(conn, outboundFrame{
		Type:    "persona",
		Content: sess.Transcript[len(sess.Transcript)-1].Content,
	})
}

func (h *Handler) handleTurn(conn *websocket.Conn, r *http.Request, userID, text string) {
	reply, err := h.core.SubmitTurn(r.Context(), userID, text)
	if err != nil {
		h.send(conn, outboundFrame{Type: "error", Error: err.Error()})
		return
	}

	h.send(conn, outboundFrame{
		Type:   "reply",
		Kind:   reply.Kind.String(),
		Chunks: chunk.Split(reply.Text, h.chunkLimit),
	})
}

func (h *Handler) send(conn *websocket.Conn, frame outboundFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
