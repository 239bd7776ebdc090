package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/pkg/utils"
)

// Handler serves the persona catalog.
type Handler struct {
	core *orchestrator.Orchestrator
}

// New creates the persona handler.
func New(core *orchestrator.Orchestrator) *Handler {
	return &Handler{core: core}
}

// RegisterRoutes registers the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.core.ListPersonas())
}
