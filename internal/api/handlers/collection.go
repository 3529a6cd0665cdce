package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/service"
)

type CollectionService interface {
	Create(ctx context.Context, caller domain.Caller, input service.CreateCollectionInput) (*domain.Collection, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.Collection, error)
	List(ctx context.Context, caller domain.Caller) ([]*domain.Collection, error)
	Update(ctx context.Context, caller domain.Caller, id string, input service.UpdateCollectionInput) (*domain.Collection, error)
	Delete(ctx context.Context, caller domain.Caller, id string) error
}

type CollectionHandler struct {
	svc CollectionService
}

func NewCollectionHandler(svc CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

type CreateCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsShared    bool   `json:"is_shared"`
}

type UpdateCollectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CollectionResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsShared    bool   `json:"is_shared"`
	IsOwner     bool   `json:"is_owner"`
	CreatedAt   string `json:"created_at"`
}

func collectionToResponse(c *domain.Collection, caller domain.Caller) *CollectionResponse {
	return &CollectionResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		IsShared:    c.IsShared,
		IsOwner:     c.OwnedBy(caller.UserID),
		CreatedAt:   c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.svc.Create(r.Context(), caller, service.CreateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
		IsShared:    req.IsShared,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, collectionToResponse(c, caller))
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	collections, err := h.svc.List(r.Context(), caller)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*CollectionResponse, len(collections))
	for i, c := range collections {
		resp[i] = collectionToResponse(c, caller)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	c, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, collectionToResponse(c, caller))
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil && req.Description == nil {
		api.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	c, err := h.svc.Update(r.Context(), caller, id, service.UpdateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, collectionToResponse(c, caller))
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
