package cart

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/httpx"
)

// TokenHeader carries the browser's cart token. Every tab of the same
// browser presents the same token.
const TokenHeader = "X-Cart-Token"

// Handler exposes cart and wishlist HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/cart/token", h.issueToken)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(requireToken)
		r.Get("/", h.get)
		r.Get("/totals", h.totals)
		r.Get("/watch", h.watch)
		r.Post("/items", h.add)
		r.Put("/items/{productId}", h.updateQuantity)
		r.Delete("/items/{productId}", h.remove)
		r.Delete("/", h.clear)
	})

	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(requireToken)
		r.Get("/", h.wishlist)
		r.Post("/items", h.wishlistAdd)
		r.Delete("/items/{productId}", h.wishlistRemove)
	})
}

func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(TokenHeader) == "" {
			httpx.Error(w, r, apperr.Validation(TokenHeader+" header is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func token(r *http.Request) string { return r.Header.Get(TokenHeader) }

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusCreated, map[string]string{"token": uuid.NewString()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), token(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Totals(r.Context(), token(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.Add(r.Context(), token(r), req.ProductID, req.Quantity)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.UpdateQuantity(r.Context(), token(r), chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Remove(r.Context(), token(r), chi.URLParam(r, "productId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), token(r)); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// watch streams cart snapshots as server-sent events so sibling tabs see
// changes without a reload.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Error(w, r, apperr.Dependency("streaming unsupported", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := h.service.Watch(r.Context(), token(r), func(c *Cart) {
		data, err := json.Marshal(c)
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

func (h *Handler) wishlist(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Wishlist(r.Context(), token(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httpx.JSON(w, http.StatusOK, ids)
}

type wishlistAddRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) wishlistAdd(w http.ResponseWriter, r *http.Request) {
	var req wishlistAddRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.WishlistAdd(r.Context(), token(r), req.ProductID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) wishlistRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.WishlistRemove(r.Context(), token(r), chi.URLParam(r, "productId")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
