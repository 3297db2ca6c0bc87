package swap

import (
	"net/http"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the swap service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a swap HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the authenticated swap API.
func (h *Handler) RegisterRoutes(r chi.Router, verifier identity.Verifier) {
	r.Route("/api/swaps", func(r chi.Router) {
		r.Use(identity.Middleware(verifier))
		r.Post("/", h.Create)
		r.Get("/user/{userId}", h.ListForUser)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// RegisterInternalRoutes mounts the service-to-service completion lookup.
func (h *Handler) RegisterInternalRoutes(r chi.Router, internalToken string) {
	r.Route("/internal/swaps", func(r chi.Router) {
		r.Use(api.RequireInternalToken(internalToken))
		r.Get("/{id}/completion", h.Completion)
	})
}

// Create handles POST /api/swaps.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, r, err)
		return
	}

	offer, err := h.svc.Create(r.Context(), identity.UserIDFromContext(r.Context()), in)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusCreated, offer)
}

// ListForUser handles GET /api/swaps/user/{userId}.
func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, offers)
}

// Get handles GET /api/swaps/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	offer, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, offer)
}

// UpdateStatus handles PATCH /api/swaps/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in StatusInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, r, err)
		return
	}
	offer, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status, identity.UserIDFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, offer)
}

// Completion handles GET /internal/swaps/{id}/completion.
func (h *Handler) Completion(w http.ResponseWriter, r *http.Request) {
	completed, err := h.svc.IsCompleted(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"completed": completed})
}
