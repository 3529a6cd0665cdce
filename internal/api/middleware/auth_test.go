package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/novanote/novanote/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testToken = "nn_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateAPIKey(ctx context.Context, token string) (domain.Caller, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.Caller), args.Error(1)
}

func TestAPIKeyAuth_Success(t *testing.T) {
	mockValidator := new(MockAuthValidator)
	mockValidator.On("ValidateAPIKey", mock.Anything, testToken).Return(domain.Caller{UserID: "user-789", IsPro: true}, nil)

	var captured domain.Caller
	var found bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, found = GetCaller(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := APIKeyAuth(mockValidator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, found)
	assert.Equal(t, domain.Caller{UserID: "user-789", IsPro: true}, captured)
	assert.Equal(t, "user-789", req.Header.Get(UserIDHeader))
	mockValidator.AssertExpectations(t)
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	mockValidator := new(MockAuthValidator)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrappedHandler := APIKeyAuth(mockValidator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAPIKeyAuth_InvalidFormat(t *testing.T) {
	mockValidator := new(MockAuthValidator)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrappedHandler := APIKeyAuth(mockValidator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization format")
}

func TestAPIKeyAuth_ValidationFails(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"unknown key", domain.ErrInvalidAPIKey, http.StatusUnauthorized, "invalid api key"},
		{"revoked key", domain.ErrAPIKeyRevoked, http.StatusUnauthorized, "api key has been revoked"},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockValidator := new(MockAuthValidator)
			mockValidator.On("ValidateAPIKey", mock.Anything, testToken).Return(domain.Caller{}, tt.err)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+testToken)
			w := httptest.NewRecorder()

			APIKeyAuth(mockValidator)(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGetCaller_ValidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), CallerKey, domain.Caller{UserID: "user-123"})
	caller, ok := GetCaller(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-123", caller.UserID)
	assert.Equal(t, "user-123", GetUserID(ctx))
}

func TestGetCaller_MissingContext(t *testing.T) {
	_, ok := GetCaller(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "", GetUserID(context.Background()))
}
