package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/httpx"
	"github.com/soko-labs/storefront-backend/internal/modules/auth"
)

// Handler exposes order HTTP endpoints. All routes require a signed-in
// user; status changes additionally require the admin role.
type Handler struct {
	service   Service
	jwtSecret string
}

func NewHandler(service Service, jwtSecret string) *Handler {
	return &Handler{service: service, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtSecret))
		r.Post("/", h.placeOrder)
		r.Get("/", h.listMine)
		r.Get("/{id}", h.getOrder)
		r.Get("/number/{number}", h.getOrderByNumber)
	})

	r.Route("/api/v1/vendor/orders", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtSecret))
		r.Get("/{storeId}", h.listStoreOrders)
	})

	r.With(auth.RequireAuth(h.jwtSecret), auth.RequireAdmin).
		Patch("/api/v1/admin/orders/{id}/status", h.updateStatus)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Auth("authentication required"))
		return
	}
	var req PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), identity.UserID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Auth("authentication required"))
		return
	}
	orders, err := h.service.ListCustomerOrders(r.Context(), identity.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrderByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) listStoreOrders(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathID(r, "storeId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	orders, err := h.service.ListStoreOrders(r.Context(), storeID, r.URL.Query().Get("status"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation(name + " must be a valid id")
	}
	return id, nil
}
