package domain

import (
	"fmt"
	"time"
)

// Collection groups knowledge items that share one retrieval namespace key.
// Shared collections are readable (and chattable) by every user.
type Collection struct {
	ID          string
	UserID      string
	Name        string
	Description string
	IsShared    bool
	CreatedAt   time.Time
}

// NewCollection creates a new Collection instance
func NewCollection(id, userID, name, description string, isShared bool, createdAt time.Time) *Collection {
	return &Collection{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: description,
		IsShared:    isShared,
		CreatedAt:   createdAt,
	}
}

// OwnedBy reports whether userID owns the collection.
func (c *Collection) OwnedBy(userID string) bool {
	return c.UserID == userID
}

// ReadableBy reports whether userID may list, read, and chat against the collection.
func (c *Collection) ReadableBy(userID string) bool {
	return c.IsShared || c.OwnedBy(userID)
}

// ValidateCollection validates a Collection instance
func ValidateCollection(c *Collection) error {
	if c == nil {
		return fmt.Errorf("collection cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("collection ID is required")
	}

	if c.UserID == "" {
		return fmt.Errorf("collection UserID is required")
	}

	if c.Name == "" {
		return fmt.Errorf("collection Name is required")
	}

	return nil
}
