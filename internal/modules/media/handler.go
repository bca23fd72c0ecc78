package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/httpx"
	"github.com/soko-labs/storefront-backend/internal/modules/auth"
)

// maxUploadBytes bounds a single image upload.
const maxUploadBytes = 10 << 20

// Handler exposes admin endpoints for pushing images to the media service.
type Handler struct {
	uploader  Uploader
	jwtSecret string
}

func NewHandler(uploader Uploader, jwtSecret string) *Handler {
	return &Handler{uploader: uploader, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/admin/media", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtSecret))
		r.Use(auth.RequireAdmin)
		r.Post("/", h.upload)
		r.Delete("/{publicId}", h.delete)
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Error(w, r, apperr.Validation("expected a multipart form with a file field"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, r, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	asset, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, asset)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicId")
	if publicID == "" {
		httpx.Error(w, r, apperr.Validation("publicId is required"))
		return
	}
	if err := h.uploader.Delete(r.Context(), publicID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
