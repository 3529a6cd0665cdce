package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/rag"
	"github.com/novanote/novanote/internal/telemetry"
)

type ChatService interface {
	Ask(ctx context.Context, caller domain.Caller, collectionID, question string) (*domain.ChatAnswer, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Question string `json:"question"`
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	collectionID := chi.URLParam(r, "id")
	if collectionID == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.svc.Ask(r.Context(), caller, collectionID, req.Question)
	if err != nil {
		var stageErr *rag.StageError
		if !errors.As(err, &stageErr) || domain.CodeOf(err) == domain.ErrCodeValidation {
			api.HandleError(w, err)
			return
		}
		log.Printf("chat: collection %s failed while %s: %v", collectionID, stageErr.Stage, stageErr.Err)
		telemetry.CaptureError(r.Context(), err)
		api.StageFailure(w, api.DomainErrorToHTTP(err), string(stageErr.Stage))
		return
	}

	api.Success(w, http.StatusOK, answer)
}
