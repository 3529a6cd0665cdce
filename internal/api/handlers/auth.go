package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/api/middleware"
	"github.com/novanote/novanote/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, username string) (*domain.User, string, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Username string `json:"username"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsPro     bool   `json:"is_pro"`
	CreatedAt string `json:"created_at"`
}

type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsPro:     u.IsPro,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" {
		api.Error(w, http.StatusBadRequest, "username is required")
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Username)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, RegisterResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), caller.UserID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, userToResponse(user))
}

// requireCaller returns the authenticated caller or writes 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok || caller.UserID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return domain.Caller{}, false
	}
	return caller, true
}
