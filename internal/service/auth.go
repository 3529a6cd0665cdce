package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/novanote/novanote/internal/domain"
)

const apiKeyPrefix = "nn_"

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	SetPro(ctx context.Context, id string, isPro bool) error
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

type AuthService struct {
	userRepo UserRepository
	keyRepo  APIKeyRepository
	uuidGen  UUIDGenerator
}

func NewAuthService(userRepo UserRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		keyRepo:  keyRepo,
		uuidGen:  uuidGen,
	}
}

func (s *AuthService) CreateUser(ctx context.Context, username string, isPro bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "username is required")
	}
	if len(username) > 64 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "username must be at most 64 characters")
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user := domain.NewUser(s.uuidGen.NewString(), username, isPro, time.Now().UTC())
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a free-tier user together with a first API key and
// returns the plaintext token. The token is never retrievable again.
func (s *AuthService) Register(ctx context.Context, username string) (*domain.User, string, error) {
	user, err := s.CreateUser(ctx, username, false)
	if err != nil {
		return nil, "", err
	}
	token, err := s.CreateAPIKey(ctx, user.ID, "default")
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *AuthService) SetPro(ctx context.Context, userID string, isPro bool) error {
	if userID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}
	return s.userRepo.SetPro(ctx, userID, isPro)
}

func (s *AuthService) CreateAPIKey(ctx context.Context, userID, name string) (string, error) {
	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}
	if err := s.CreateAPIKeyWithToken(ctx, userID, name, token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, userID, name, token string) error {
	if userID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected nn_<64 hex chars>)")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	key := domain.NewAPIKey(s.uuidGen.NewString(), userID, name, hashToken(token), time.Now().UTC(), nil)
	if err := domain.ValidateAPIKey(key); err != nil {
		return err
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a bearer token to the identity of its owner.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (domain.Caller, error) {
	if !IsValidAPIToken(token) {
		return domain.Caller{}, domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			return domain.Caller{}, domain.ErrInvalidAPIKey
		}
		return domain.Caller{}, err
	}

	if key.IsRevoked() {
		return domain.Caller{}, domain.ErrAPIKeyRevoked
	}

	user, err := s.userRepo.GetByID(ctx, key.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Caller{}, domain.ErrInvalidAPIKey
		}
		return domain.Caller{}, err
	}

	return user.Caller(), nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}
	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	if userID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}
	return s.keyRepo.ListByUser(ctx, userID)
}

func (s *AuthService) GetAPIKeyByToken(ctx context.Context, token string) (*domain.APIKey, error) {
	if !IsValidAPIToken(token) {
		return nil, domain.ErrInvalidAPIKey
	}
	return s.keyRepo.GetByHash(ctx, hashToken(token))
}

func generateAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
