package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes registers account management on r, a router mounted at
// /api/v1/admin that the caller protects.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/admins", h.registerAdmin) // POST /api/v1/admin/admins
	r.Get("/admins/{id}", h.getAdmin)  // GET  /api/v1/admin/admins/{id}
}

func (h *Handler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	admin, err := h.service.RegisterAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrInvalidAccount):
			code = http.StatusBadRequest
		case errors.Is(err, ErrEmailTaken):
			code = http.StatusConflict
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}

	respond(w, http.StatusCreated, admin)
}

func (h *Handler) getAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrAdminNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}

	respond(w, http.StatusOK, admin)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
