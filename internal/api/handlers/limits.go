package handlers

import (
	"context"
	"net/http"

	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/domain"
)

type LimitsService interface {
	Get(ctx context.Context, caller domain.Caller) (domain.Limits, error)
}

type LimitsHandler struct {
	svc LimitsService
}

func NewLimitsHandler(svc LimitsService) *LimitsHandler {
	return &LimitsHandler{svc: svc}
}

func (h *LimitsHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	limits, err := h.svc.Get(r.Context(), caller)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, limits)
}
