package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/httpx"
	"github.com/soko-labs/storefront-backend/internal/modules/auth"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service Service
	secret  string
}

func NewHandler(service Service, jwtSecret string) *Handler {
	return &Handler{service: service, secret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/watch", h.watch)
		r.Get("/{id}", h.get)
	})
	r.Get("/api/v1/categories", h.categories)

	r.Route("/api/v1/admin/products", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.secret))
		r.Use(auth.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Category:    q.Get("category"),
		InStockOnly: q.Get("inStock") == "true",
		Search:      q.Get("q"),
	}
	if raw := q.Get("storeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperr.Validation("storeId must be a valid id")
		}
		f.StoreID = &id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperr.Validation("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperr.Validation("offset must be a non-negative integer")
		}
		f.Offset = n
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	products, err := h.service.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, apperr.Validation("id must be a valid uuid"))
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, Categories())
}

// watch streams the filtered result set as server-sent events: the current
// state immediately, then a fresh snapshot after every catalog change.
// Closing the connection cancels the subscription.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Error(w, r, apperr.Dependency("streaming unsupported", nil))
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err = h.service.Watch(r.Context(), f, func(products []*Product) {
		data, err := json.Marshal(products)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	})
	if err != nil {
		httpx.Error(w, r, err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req WritePayload
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, WriteResult{Success: true, ProductID: p.ID})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, apperr.Validation("id must be a valid uuid"))
		return
	}
	var req WritePayload
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, WriteResult{Success: true, ProductID: p.ID})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, apperr.Validation("id must be a valid uuid"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
