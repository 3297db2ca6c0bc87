package messaging

import (
	"net/http"
	"strconv"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the messaging service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a messaging HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the authenticated message API.
func (h *Handler) RegisterRoutes(r chi.Router, verifier identity.Verifier) {
	r.Route("/api/messages", func(r chi.Router) {
		r.Use(identity.Middleware(verifier))
		r.Post("/", h.Send)
		r.Get("/conversation/{userId}", h.Conversation)
		r.Patch("/read/{senderId}", h.MarkRead)
	})
}

// RegisterInternalRoutes mounts the notification relay endpoint.
func (h *Handler) RegisterInternalRoutes(r chi.Router, internalToken string) {
	r.With(api.RequireInternalToken(internalToken)).Post("/api/notify", h.Notify)
}

// Send handles POST /api/messages.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var in SendInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, r, err)
		return
	}

	msg, err := h.svc.Send(r.Context(), identity.UserIDFromContext(r.Context()), in)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusCreated, msg)
}

// Conversation handles GET /api/messages/conversation/{userId}?limit=.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.WriteError(w, r, apperr.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	msgs, err := h.svc.Conversation(r.Context(), identity.UserIDFromContext(r.Context()), chi.URLParam(r, "userId"), limit)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, msgs)
}

// MarkRead handles PATCH /api/messages/read/{senderId}.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), identity.UserIDFromContext(r.Context()), chi.URLParam(r, "senderId"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// Notify handles POST /api/notify from other services.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}
	if err := h.svc.Notify(r.Context(), req); err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.JSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
