package domain

import (
	"fmt"
	"time"
)

// ItemType represents the origin of a knowledge item's content
type ItemType string

const (
	ItemTypeText ItemType = "text"
	ItemTypeLink ItemType = "link"
	ItemTypePDF  ItemType = "pdf"
)

// IndexStatus tracks whether an item's content is searchable
type IndexStatus string

const (
	IndexStatusPending IndexStatus = "pending"
	IndexStatusIndexed IndexStatus = "indexed"
	IndexStatusFailed  IndexStatus = "failed"
)

// KnowledgeItem is one user-added unit of content before chunking.
// Content keeps the extracted plain text so indexing can be retried
// without recreating the item.
type KnowledgeItem struct {
	ID           string
	CollectionID string
	UserID       string
	Type         ItemType
	Title        string
	URL          *string
	Content      string
	StorageKey   string // object key of the uploaded PDF, empty otherwise
	IndexStatus  IndexStatus
	ChunkCount   int
	IndexError   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewKnowledgeItem creates a new KnowledgeItem in the pending state
func NewKnowledgeItem(
	id, collectionID, userID string,
	itemType ItemType,
	title string,
	url *string,
	content string,
	createdAt time.Time,
) *KnowledgeItem {
	return &KnowledgeItem{
		ID:           id,
		CollectionID: collectionID,
		UserID:       userID,
		Type:         itemType,
		Title:        title,
		URL:          url,
		Content:      content,
		IndexStatus:  IndexStatusPending,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// Source returns the provenance attached to every document built from the item.
func (k *KnowledgeItem) Source() DocumentSource {
	return DocumentSource{
		CollectionID: k.CollectionID,
		ItemID:       k.ID,
		ItemType:     k.Type,
		Title:        k.Title,
		SourceURL:    k.URL,
	}
}

// ValidateKnowledgeItem validates a KnowledgeItem instance
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	if k.CollectionID == "" {
		return fmt.Errorf("knowledge item CollectionID is required")
	}

	if k.UserID == "" {
		return fmt.Errorf("knowledge item UserID is required")
	}

	if k.Content == "" {
		return fmt.Errorf("knowledge item Content is required")
	}

	if !IsValidItemType(k.Type) {
		return fmt.Errorf("knowledge item Type is invalid: %s", k.Type)
	}

	if !isValidIndexStatus(k.IndexStatus) {
		return fmt.Errorf("knowledge item IndexStatus is invalid: %s", k.IndexStatus)
	}

	return nil
}

// IsValidItemType checks if an ItemType is valid
func IsValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeText, ItemTypeLink, ItemTypePDF:
		return true
	}
	return false
}

func isValidIndexStatus(s IndexStatus) bool {
	switch s {
	case IndexStatusPending, IndexStatusIndexed, IndexStatusFailed:
		return true
	}
	return false
}
