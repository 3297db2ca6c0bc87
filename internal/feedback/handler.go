package feedback

import (
	"net/http"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the feedback service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a feedback HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the authenticated feedback API.
func (h *Handler) RegisterRoutes(r chi.Router, verifier identity.Verifier) {
	r.Route("/api/feedback", func(r chi.Router) {
		r.Use(identity.Middleware(verifier))
		r.Post("/", h.Submit)
		r.Get("/received/{userId}", h.Received)
		r.Get("/stats/{userId}", h.Stats)
	})
}

// Submit handles POST /api/feedback.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, r, err)
		return
	}

	fb, err := h.svc.Submit(r.Context(), identity.UserIDFromContext(r.Context()), in)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusCreated, fb)
}

// Received handles GET /api/feedback/received/{userId}.
func (h *Handler) Received(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Received(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, list)
}

// Stats handles GET /api/feedback/stats/{userId}.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, stats)
}
