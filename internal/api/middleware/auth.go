package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/domain"
)

type contextKey string

const CallerKey contextKey = "caller"

// UserIDHeader carries the authenticated user to outer middleware, which
// only sees the original request.
const UserIDHeader = "X-User-ID"

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (domain.Caller, error)
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			caller, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrAPIKeyRevoked):
					api.Error(w, http.StatusUnauthorized, "api key has been revoked")
				case domain.CodeOf(err) == domain.ErrCodeUnauthorized:
					api.Error(w, http.StatusUnauthorized, "invalid api key")
				default:
					api.HandleError(w, err)
				}
				return
			}

			r.Header.Set(UserIDHeader, caller.UserID)
			ctx := context.WithValue(r.Context(), CallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCaller returns the authenticated caller. ok is false on routes without
// APIKeyAuth.
func GetCaller(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(domain.Caller)
	return caller, ok
}

// GetUserID returns the authenticated user's ID, or "".
func GetUserID(ctx context.Context) string {
	caller, _ := GetCaller(ctx)
	return caller.UserID
}
