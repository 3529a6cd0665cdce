package domain

import (
	"fmt"
	"time"
)

// User owns collections and knowledge items. IsPro lifts the free-tier limits.
type User struct {
	ID        string
	Username  string
	IsPro     bool
	CreatedAt time.Time
}

// Caller is the identity resolved for an authenticated request.
type Caller struct {
	UserID string
	IsPro  bool
}

// NewUser creates a new User instance
func NewUser(id, username string, isPro bool, createdAt time.Time) *User {
	return &User{
		ID:        id,
		Username:  username,
		IsPro:     isPro,
		CreatedAt: createdAt,
	}
}

// Caller returns the request identity for u.
func (u *User) Caller() Caller {
	return Caller{UserID: u.ID, IsPro: u.IsPro}
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if u.Username == "" {
		return fmt.Errorf("user Username is required")
	}

	return nil
}
