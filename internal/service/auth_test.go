package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/novanote/novanote/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validToken = "nn_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAuthService_CreateUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	keys := new(MockAPIKeyRepository)

	users.On("GetByUsername", ctx, "alice").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "user-1" && u.Username == "alice" && !u.IsPro
	})).Return(nil)

	svc := NewAuthService(users, keys, NewMockUUIDGenerator("user-1"))
	user, err := svc.CreateUser(ctx, "  alice ", false)

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	users.AssertExpectations(t)
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{name: "empty", username: ""},
		{name: "blank", username: "   "},
		{name: "too long", username: strings.Repeat("a", 65)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			svc := NewAuthService(users, new(MockAPIKeyRepository), NewMockUUIDGenerator())

			_, err := svc.CreateUser(context.Background(), tt.username, false)
			require.Error(t, err)
			assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
			users.AssertNotCalled(t, "Create")
		})
	}
}

func TestAuthService_CreateUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	users.On("GetByUsername", ctx, "alice").Return(&domain.User{ID: "u1", Username: "alice"}, nil)

	svc := NewAuthService(users, new(MockAPIKeyRepository), NewMockUUIDGenerator())
	_, err := svc.CreateUser(ctx, "alice", false)

	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	users.AssertNotCalled(t, "Create")
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	keys := new(MockAPIKeyRepository)

	users.On("GetByUsername", ctx, "bob").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.Anything).Return(nil)
	users.On("GetByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Username: "bob"}, nil)

	var stored *domain.APIKey
	keys.On("Create", ctx, mock.MatchedBy(func(k *domain.APIKey) bool {
		stored = k
		return k.UserID == "user-1" && k.Name == "default"
	})).Return(nil)

	svc := NewAuthService(users, keys, NewMockUUIDGenerator("user-1", "key-1"))
	user, token, err := svc.Register(ctx, "bob")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.True(t, strings.HasPrefix(token, "nn_"))
	assert.Len(t, token, 67)
	assert.True(t, IsValidAPIToken(token))
	require.NotNil(t, stored)
	assert.Equal(t, hashToken(token), stored.KeyHash)
	assert.NotEqual(t, token, stored.KeyHash)
}

func TestAuthService_CreateAPIKeyWithToken_InvalidFormat(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), new(MockAPIKeyRepository), NewMockUUIDGenerator())

	err := svc.CreateAPIKeyWithToken(context.Background(), "user-1", "k", "sk_abc")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
}

func TestAuthService_CreateAPIKey_UnknownUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	keys := new(MockAPIKeyRepository)
	users.On("GetByID", ctx, "missing").Return(nil, domain.ErrUserNotFound)

	svc := NewAuthService(users, keys, NewMockUUIDGenerator())
	_, err := svc.CreateAPIKey(ctx, "missing", "k")

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	keys.AssertNotCalled(t, "Create")
}

func TestAuthService_ValidateAPIKey(t *testing.T) {
	ctx := context.Background()
	revokedAt := time.Now().UTC()

	tests := []struct {
		name       string
		token      string
		setup      func(users *MockUserRepository, keys *MockAPIKeyRepository)
		wantCaller domain.Caller
		wantErr    error
	}{
		{
			name:  "valid pro user",
			token: validToken,
			setup: func(users *MockUserRepository, keys *MockAPIKeyRepository) {
				keys.On("GetByHash", ctx, hashToken(validToken)).Return(&domain.APIKey{ID: "k1", UserID: "u1"}, nil)
				users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Username: "a", IsPro: true}, nil)
			},
			wantCaller: domain.Caller{UserID: "u1", IsPro: true},
		},
		{
			name:    "malformed token",
			token:   "Bearer nope",
			setup:   func(*MockUserRepository, *MockAPIKeyRepository) {},
			wantErr: domain.ErrInvalidAPIKey,
		},
		{
			name:  "unknown token",
			token: validToken,
			setup: func(users *MockUserRepository, keys *MockAPIKeyRepository) {
				keys.On("GetByHash", ctx, hashToken(validToken)).Return(nil, domain.ErrAPIKeyNotFound)
			},
			wantErr: domain.ErrInvalidAPIKey,
		},
		{
			name:  "revoked",
			token: validToken,
			setup: func(users *MockUserRepository, keys *MockAPIKeyRepository) {
				keys.On("GetByHash", ctx, hashToken(validToken)).Return(&domain.APIKey{ID: "k1", UserID: "u1", RevokedAt: &revokedAt}, nil)
			},
			wantErr: domain.ErrAPIKeyRevoked,
		},
		{
			name:  "owner deleted",
			token: validToken,
			setup: func(users *MockUserRepository, keys *MockAPIKeyRepository) {
				keys.On("GetByHash", ctx, hashToken(validToken)).Return(&domain.APIKey{ID: "k1", UserID: "u1"}, nil)
				users.On("GetByID", ctx, "u1").Return(nil, domain.ErrUserNotFound)
			},
			wantErr: domain.ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			keys := new(MockAPIKeyRepository)
			tt.setup(users, keys)

			svc := NewAuthService(users, keys, NewMockUUIDGenerator())
			caller, err := svc.ValidateAPIKey(ctx, tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCaller, caller)
		})
	}
}

func TestAuthService_SetPro(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	users.On("SetPro", ctx, "u1", true).Return(nil)

	svc := NewAuthService(users, new(MockAPIKeyRepository), NewMockUUIDGenerator())
	require.NoError(t, svc.SetPro(ctx, "u1", true))
	assert.Error(t, svc.SetPro(ctx, "", true))
	users.AssertExpectations(t)
}

func TestIsValidAPIToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{validToken, true},
		{strings.ToUpper(validToken[:3]) + validToken[3:], false},
		{"nn_" + strings.Repeat("A", 64), true},
		{"nn_" + strings.Repeat("g", 64), false},
		{"nn_" + strings.Repeat("a", 63), false},
		{"sk_" + strings.Repeat("a", 64), false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidAPIToken(tt.token), tt.token)
	}
}
