// Package stream delivers chat replies over Server-Sent Events. The turn
// itself runs to completion in the core; this transport chunks the final
// text and emits one delta event per chunk.
package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/litsalon/backend/internal/chunk"
	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/pkg/utils"
)

// Handler manages SSE chat delivery.
type Handler struct {
	core       *orchestrator.Orchestrator
	chunkLimit int
}

// New creates the stream handler.
func New(core *orchestrator.Orchestrator, chunkLimit int) *Handler {
	if chunkLimit <= 0 {
		chunkLimit = 4000
	}
	return &Handler{core: core, chunkLimit: chunkLimit}
}

// StreamResponse is one SSE frame payload; the frame's event name carries
// the phase (start, delta, end, error).
type StreamResponse struct {
	Kind     string `json:"kind,omitempty"`
	Content  string `json:"content,omitempty"`
	Index    int    `json:"index,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStreamRequest runs one turn and streams the reply in chunks.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, userID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	utils.SendSSEEvent(w, flusher, "start", StreamResponse{})

	reply, err := h.core.SubmitTurn(ctx, userID, userMessage)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", StreamResponse{Error: err.Error()})
		return err
	}

	for i, part := range chunk.Split(reply.Text, h.chunkLimit) {
		utils.SendSSEEvent(w, flusher, "delta", StreamResponse{
			Kind:    reply.Kind.String(),
			Content: part,
			Index:   i,
		})
	}

	utils.SendSSEEvent(w, flusher, "end", StreamResponse{
		Kind:     reply.Kind.String(),
		Finished: true,
	})

	log.Printf("[stream] completed turn for user=%s kind=%s", userID, reply.Kind)
	return nil
}
