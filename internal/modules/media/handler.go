package media

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// objectPrefix is where photo uploads are stored in the bucket.
const objectPrefix = "providers/"

// Handler redirects image references to a loadable URL.
type Handler struct {
	store *Store
	log   *zap.SugaredLogger
}

func NewHandler(store *Store, log *zap.SugaredLogger) *Handler {
	return &Handler{store: store, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/media/*", h.redirect) // GET /api/v1/media/{imageRef}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if !servableKey(ref) {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid image reference"})
		return
	}
	target, err := h.store.URL(r.Context(), ref)
	if err != nil {
		h.log.Errorw("image url failed", "ref", ref, "error", err)
		respond(w, http.StatusBadGateway, map[string]string{"error": "image unavailable"})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// servableKey accepts bucket keys written by photo uploads only, never a URL
// or a path that climbs out of the prefix.
func servableKey(ref string) bool {
	if isURL(ref) || strings.Contains(ref, "..") || strings.Contains(ref, "://") {
		return false
	}
	return strings.HasPrefix(ref, objectPrefix) && len(ref) > len(objectPrefix)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
