package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/promoled-directory/internal/modules/directory"
)

const maxRequestBytes = 64 << 10

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/contact", h.send) // POST /api/v1/contact
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := h.service.Send(r.Context(), req); err != nil {
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, ErrMissingField):
			code = http.StatusBadRequest
		case errors.Is(err, directory.ErrProviderNotFound):
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
