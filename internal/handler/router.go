package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/litsalon/backend/internal/handler/chat"
	"github.com/litsalon/backend/internal/handler/persona"
	"github.com/litsalon/backend/internal/handler/stream"
	"github.com/litsalon/backend/internal/handler/ws"
	middlewarePkg "github.com/litsalon/backend/internal/middleware"
	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the turn core. chunkLimit bounds reply
// chunks on every transport registered here.
func NewRouter(core *orchestrator.Orchestrator, chunkLimit int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(core)
	chatHandler := chat.New(core, chunkLimit)
	wsHandler := ws.New(core, chunkLimit)
	streamHandler := stream.New(core, chunkLimit)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		api.Get("/stream/{userID}", func(w http.ResponseWriter, r *http.Request) {
			userID := chi.URLParam(r, "userID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, userID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
