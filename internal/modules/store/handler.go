package store

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/httpx"
	"github.com/soko-labs/storefront-backend/internal/modules/auth"
)

// Handler exposes vendor and admin store endpoints.
type Handler struct {
	service Service
	secret  string
}

func NewHandler(service Service, jwtSecret string) *Handler {
	return &Handler{service: service, secret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/stores/{id}", h.getStore)

	r.Route("/api/v1/vendor", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.secret))
		r.Get("/owner", h.getOwner)
		r.Get("/stores", h.listStores)
		r.Post("/stores", h.createStore)
		r.Put("/stores/{id}", h.updateStore)
		r.Delete("/stores/{id}", h.deleteStore)
		r.Post("/stores/active", h.switchActive)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.secret))
		r.Use(auth.RequireAdmin)
		r.Put("/stores/{id}/approval", h.setApproval)
		r.Post("/maintenance/migrate-stores", h.migrate)
		r.Post("/maintenance/ensure-owner", h.ensureOwner)
	})
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	st, err := h.service.GetStore(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) getOwner(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	owner, err := h.service.GetOwner(r.Context(), identity.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, owner)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	stores, err := h.service.ListOwnerStores(r.Context(), identity.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stores)
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	var req CreateStoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	st, err := h.service.CreateStore(r.Context(), identity.UserID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

func (h *Handler) updateStore(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req UpdateStoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	st, err := h.service.UpdateStore(r.Context(), identity.UserID, id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) deleteStore(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteStore(r.Context(), identity.UserID, id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type switchActiveRequest struct {
	StoreID string `json:"storeId"`
}

func (h *Handler) switchActive(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	var req switchActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		httpx.Error(w, r, apperr.Validation("storeId must be a valid id"))
		return
	}
	if err := h.service.SwitchActiveStore(r.Context(), identity.UserID, storeID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type approvalRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setApproval(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req approvalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.SetApproval(r.Context(), id, Approval(req.Status)); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) migrate(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.MigrateLegacyStores(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

type ensureOwnerRequest struct {
	UserID  string `json:"userId"`
	StoreID string `json:"storeId"`
}

func (h *Handler) ensureOwner(w http.ResponseWriter, r *http.Request) {
	var req ensureOwnerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httpx.Error(w, r, apperr.Validation("userId must be a valid id"))
		return
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		httpx.Error(w, r, apperr.Validation("storeId must be a valid id"))
		return
	}
	if err := h.service.EnsureOwnerExists(r.Context(), userID, storeID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("id must be a valid uuid")
	}
	return id, nil
}
