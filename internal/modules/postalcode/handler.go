package postalcode

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

const maxImportBytes = 64 << 20

// Handler exposes the coordinate table.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/postal-codes/stats", h.stats) // GET /api/v1/postal-codes/stats
}

// RegisterAdminRoutes registers the import and lookup endpoints on r, a
// router mounted at /api/v1/admin that the caller protects.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/postal-codes", func(r chi.Router) {
		r.Post("/import", h.importTable) // POST multipart file (.json, .csv, .txt, .dbf)
		r.Get("/{zip}/nearby", h.nearby) // GET  ?radius_km=20
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.Stats())
}

// importTable reads the multipart "file" part. The format comes from the
// optional "format" field, else from the file name.
func (h *Handler) importTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	format := geo.FormatFromFilename(header.Filename)
	if f := strings.ToLower(strings.TrimSpace(r.FormValue("format"))); f != "" {
		switch geo.Format(f) {
		case geo.FormatJSON, geo.FormatCSV, geo.FormatDBF:
			format = geo.Format(f)
		default:
			respond(w, http.StatusBadRequest, map[string]string{"error": "format must be json, csv or dbf"})
			return
		}
	}

	res, err := h.service.Import(r.Context(), file, format)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, geo.ErrInvalidImport) {
			code = http.StatusUnprocessableEntity
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request) {
	radius := 10.0
	if v := r.URL.Query().Get("radius_km"); v != "" {
		parsed, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
		if err != nil || parsed < 0 {
			respond(w, http.StatusBadRequest, map[string]string{"error": "radius_km must be a non-negative number"})
			return
		}
		radius = parsed
	}

	found, err := h.service.Nearby(chi.URLParam(r, "zip"), radius)
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, found)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
