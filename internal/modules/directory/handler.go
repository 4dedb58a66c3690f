package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

const maxUploadBytes = 10 << 20

// ImageStore keeps uploaded photo images. Put returns the reference stored in
// Photo.ImageRef.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Handler exposes the public directory and its administration.
type Handler struct {
	service Service
	images  ImageStore
	log     *zap.SugaredLogger
}

// NewHandler wires the directory endpoints. images may be nil, which turns
// photo uploads off.
func NewHandler(service Service, images ImageStore, log *zap.SugaredLogger) *Handler {
	return &Handler{service: service, images: images, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/directory", func(r chi.Router) {
		r.Get("/providers", h.searchProviders)  // GET /api/v1/directory/providers?zip=&zones=&products=&with_photos=
		r.Get("/photos", h.searchPhotos)        // GET /api/v1/directory/photos?zip=&zones=&products=
		r.Get("/providers/{id}", h.getProvider) // GET /api/v1/directory/providers/{id}
		r.Get("/tags", h.listTags)              // GET /api/v1/directory/tags?zones=&products=
	})
}

// RegisterAdminRoutes registers the management endpoints on r, a router
// mounted at /api/v1/admin that the caller protects.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/providers", h.listProviders)                        // GET    ?q=
	r.Post("/providers", h.upsertProvider)                      // POST   create or update by body id
	r.Put("/providers/{id}", h.upsertProvider)                  // PUT    update
	r.Delete("/providers/{id}", h.deleteProvider)               // DELETE
	r.Post("/providers/{id}/service-zips", h.appendServiceZips) // POST   {"input": "31000, 31100"}
	r.Post("/providers/{id}/photos", h.addPhoto)                // POST   photo with an existing imageRef
	r.Post("/providers/{id}/photos/upload", h.uploadPhoto)      // POST   multipart image
	r.Patch("/providers/{id}/photos/{photoID}", h.updatePhoto)  // PATCH  caption, zones, products
	r.Delete("/providers/{id}/photos/{photoID}", h.deletePhoto) // DELETE
	r.Post("/providers/{id}/photos/{photoID}/tags", h.tagPhoto) // POST   {"kind": "zone", "tag": "Cuisine"}
	r.Get("/tags", h.listTags)                                  // GET
	r.Post("/tags", h.addTag)                                   // POST   {"kind": "product", "tag": "Applique"}
	r.Delete("/tags/{kind}/{tag}", h.removeTag)                 // DELETE
	r.Get("/snapshot", h.exportSnapshot)                        // GET
	r.Post("/snapshot", h.importSnapshot)                       // POST
}

// ── Public ───────────────────────────────────────────────────────────────────

func (h *Handler) searchProviders(w http.ResponseWriter, r *http.Request) {
	res := h.service.Search(queryFromRequest(r))
	respond(w, http.StatusOK, res.Providers)
}

func (h *Handler) searchPhotos(w http.ResponseWriter, r *http.Request) {
	res := h.service.Search(queryFromRequest(r))
	respond(w, http.StatusOK, res.Photos)
}

func (h *Handler) getProvider(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProvider(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

// listTags returns both catalogs. Tags passed in zones/products are listed
// first, the rest alphabetically.
func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	zones, products := h.service.Tags(TagZone), h.service.Tags(TagProduct)
	body := map[string][]string{"zones": zones, "products": products}
	if _, ok := q["zones"]; ok {
		body["zones"] = SortSelectedFirst(zones, tagList(q["zones"]))
	}
	if _, ok := q["products"]; ok {
		body["products"] = SortSelectedFirst(products, tagList(q["products"]))
	}
	respond(w, http.StatusOK, body)
}

func queryFromRequest(r *http.Request) Query {
	q := r.URL.Query()
	return Query{
		Zip:           strings.TrimSpace(q.Get("zip")),
		Zones:         tagList(q["zones"]),
		Products:      tagList(q["products"]),
		RequirePhotos: q.Get("with_photos") == "true" || q.Get("with_photos") == "1",
	}
}

// tagList accepts repeated parameters and comma separated values.
func tagList(values []string) []string {
	tags := []string{}
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// ── Providers ────────────────────────────────────────────────────────────────

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.ListProviders(r.URL.Query().Get("q")))
}

func (h *Handler) upsertProvider(w http.ResponseWriter, r *http.Request) {
	var req UpsertProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if id := chi.URLParam(r, "id"); id != "" {
		if _, err := h.service.GetProvider(id); err != nil {
			h.fail(w, err)
			return
		}
		req.ID = id
	} else if _, err := h.service.GetProvider(req.ID); err != nil {
		status = http.StatusCreated
	}

	p, err := h.service.UpsertProvider(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, status, p)
}

func (h *Handler) deleteProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.GetProvider(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.service.DeleteProvider(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	for _, photo := range p.Photos {
		h.releaseImage(r.Context(), photo.ImageRef)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) appendServiceZips(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.GetProvider(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	upsert := requestFromProvider(p)
	upsert.ServiceZips = AppendServiceZips(p.ServiceZips, req.Input)
	updated, err := h.service.UpsertProvider(r.Context(), upsert)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, updated)
}

func requestFromProvider(p *Provider) UpsertProviderRequest {
	return UpsertProviderRequest{
		ID:              p.ID,
		Name:            p.Name,
		Company:         p.Company,
		Email:           p.Email,
		Phone:           p.Phone,
		Bio:             p.Bio,
		BioHTML:         p.BioHTML,
		Specialties:     p.Specialties,
		Address:         p.Address,
		ServiceRadiusKm: p.ServiceRadiusKm,
		ServiceZips:     p.ServiceZips,
	}
}

// ── Photos ───────────────────────────────────────────────────────────────────

func (h *Handler) addPhoto(w http.ResponseWriter, r *http.Request) {
	var req PhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	photo, err := h.service.AddPhoto(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, photo)
}

// uploadPhoto stores the multipart "image" part and adds it as a photo. The
// optional form fields caption, zones and products describe it.
func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		respond(w, http.StatusServiceUnavailable, map[string]string{"error": "image storage is not configured"})
		return
	}
	providerID := chi.URLParam(r, "id")
	if _, err := h.service.GetProvider(providerID); err != nil {
		h.fail(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "image is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respond(w, http.StatusUnsupportedMediaType, map[string]string{"error": "only images can be uploaded"})
		return
	}

	key := fmt.Sprintf("providers/%s/%s%s", providerID, uuid.NewString(), strings.ToLower(path.Ext(header.Filename)))
	ref, err := h.images.Put(r.Context(), key, file, header.Size, contentType)
	if err != nil {
		h.log.Errorw("image upload failed", "provider", providerID, "error", err)
		respond(w, http.StatusBadGateway, map[string]string{"error": "could not store image"})
		return
	}

	photo, err := h.service.AddPhoto(r.Context(), providerID, PhotoRequest{
		ImageRef: ref,
		Caption:  r.FormValue("caption"),
		Zones:    tagList(r.Form["zones"]),
		Products: tagList(r.Form["products"]),
	})
	if err != nil {
		h.releaseImage(r.Context(), ref)
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, photo)
}

func (h *Handler) updatePhoto(w http.ResponseWriter, r *http.Request) {
	var patch PhotoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	photo, err := h.service.UpdatePhoto(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "photoID"), patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, photo)
}

func (h *Handler) deletePhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.service.DeletePhoto(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "photoID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.releaseImage(r.Context(), photo.ImageRef)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) tagPhoto(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	kind, err := ParseTagKind(req.Kind)
	if err != nil {
		h.fail(w, err)
		return
	}
	grew, err := h.service.TagPhoto(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "photoID"), kind, req.Tag)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"catalogGrew": grew, "tags": h.service.Tags(kind)})
}

// releaseImage deletes an uploaded image. Failures are only logged: the
// photo is already gone.
func (h *Handler) releaseImage(ctx context.Context, ref string) {
	if h.images == nil || ref == "" {
		return
	}
	if err := h.images.Delete(ctx, ref); err != nil {
		h.log.Warnw("image delete failed", "ref", ref, "error", err)
	}
}

// ── Tags ─────────────────────────────────────────────────────────────────────

func (h *Handler) addTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	kind, err := ParseTagKind(req.Kind)
	if err != nil {
		h.fail(w, err)
		return
	}
	tags, err := h.service.AddTag(r.Context(), kind, req.Tag)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, tags)
}

func (h *Handler) removeTag(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseTagKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, err)
		return
	}
	tags, err := h.service.RemoveTag(r.Context(), kind, chi.URLParam(r, "tag"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, tags)
}

// ── Snapshot ─────────────────────────────────────────────────────────────────

func (h *Handler) exportSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="promoled-directory.json"`)
	respond(w, http.StatusOK, h.service.ExportSnapshot())
}

func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		h.fail(w, fmt.Errorf("%w: %v", geo.ErrInvalidImport, err))
		return
	}
	if err := h.service.ImportSnapshot(r.Context(), snap); err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"providers": len(h.service.ListProviders(""))})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorw("directory request failed", "error", err)
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrProviderNotFound), errors.Is(err, ErrPhotoNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidZip), errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrTagRequired), errors.Is(err, ErrInvalidTagKind):
		return http.StatusBadRequest
	case errors.Is(err, geo.ErrInvalidImport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
