package service

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/novanote/novanote/internal/domain"
)

const maxCollectionNameLength = 100

type CollectionRepository interface {
	Create(ctx context.Context, c *domain.Collection) error
	GetByID(ctx context.Context, id string) (*domain.Collection, error)
	ListVisible(ctx context.Context, userID string) ([]*domain.Collection, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, c *domain.Collection) error
	Delete(ctx context.Context, id string) error
}

// VectorIndex removes documents from the vector store.
type VectorIndex interface {
	DeleteByItem(ctx context.Context, itemID string) error
	DeleteByCollection(ctx context.Context, collectionID string) error
}

// ObjectStorage keeps uploaded source files.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

type CreateCollectionInput struct {
	Name        string
	Description string
	IsShared    bool
}

// UpdateCollectionInput carries the fields to change. Nil fields are kept.
type UpdateCollectionInput struct {
	Name        *string
	Description *string
}

type CollectionService struct {
	repo    CollectionRepository
	items   ItemRepository
	tx      TxRunner
	index   VectorIndex
	objects ObjectStorage
	uuidGen UUIDGenerator
}

// NewCollectionService creates a CollectionService. objects may be nil when
// no object storage is configured.
func NewCollectionService(
	repo CollectionRepository,
	items ItemRepository,
	tx TxRunner,
	index VectorIndex,
	objects ObjectStorage,
	uuidGen UUIDGenerator,
) *CollectionService {
	return &CollectionService{
		repo:    repo,
		items:   items,
		tx:      tx,
		index:   index,
		objects: objects,
		uuidGen: uuidGen,
	}
}

func (s *CollectionService) Create(ctx context.Context, caller domain.Caller, input CreateCollectionInput) (*domain.Collection, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "name is required")
	}
	if utf8.RuneCountInString(name) > maxCollectionNameLength {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "name must be at most 100 characters")
	}

	c := domain.NewCollection(s.uuidGen.NewString(), caller.UserID, name, strings.TrimSpace(input.Description), input.IsShared, time.Now().UTC())
	if err := domain.ValidateCollection(c); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		limits, err := NewLimitsService(repos.Collections(), repos.Items()).Get(ctx, caller)
		if err != nil {
			return err
		}
		if limits.Collections.Reached() {
			return domain.ErrLimitReached
		}
		return repos.Collections().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a collection the caller may read. Collections the caller
// cannot see are reported as not found.
func (s *CollectionService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Collection, error) {
	return readableCollection(ctx, s.repo, caller, id)
}

// GetOwned returns a collection the caller may modify.
func (s *CollectionService) GetOwned(ctx context.Context, caller domain.Caller, id string) (*domain.Collection, error) {
	return ownedCollection(ctx, s.repo, caller, id)
}

func (s *CollectionService) List(ctx context.Context, caller domain.Caller) ([]*domain.Collection, error) {
	return s.repo.ListVisible(ctx, caller.UserID)
}

// Update renames or re-describes a collection the caller owns.
func (s *CollectionService) Update(ctx context.Context, caller domain.Caller, id string, input UpdateCollectionInput) (*domain.Collection, error) {
	if input.Name == nil && input.Description == nil {
		return nil, domain.ErrNothingToUpdate
	}

	c, err := s.GetOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "name is required")
		}
		if utf8.RuneCountInString(name) > maxCollectionNameLength {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "name must be at most 100 characters")
		}
		c.Name = name
	}
	if input.Description != nil {
		c.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the collection with its items, documents, and stored files.
// Documents are purged first so a failed purge leaves the collection intact
// and the delete can be retried.
func (s *CollectionService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	c, err := s.GetOwned(ctx, caller, id)
	if err != nil {
		return err
	}

	keys, err := s.items.ListStorageKeysByCollection(ctx, c.ID)
	if err != nil {
		return err
	}

	if err := s.index.DeleteByCollection(ctx, c.ID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}

	if s.objects != nil {
		for _, key := range keys {
			if err := s.objects.DeleteObject(ctx, key); err != nil {
				log.Printf("collection %s: failed to delete object %s: %v", c.ID, key, err)
			}
		}
	}
	return nil
}

func ownedCollection(ctx context.Context, repo CollectionRepository, caller domain.Caller, id string) (*domain.Collection, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.ReadableBy(caller.UserID) {
		return nil, domain.ErrCollectionNotFound
	}
	if !c.OwnedBy(caller.UserID) {
		return nil, domain.ErrNotCollectionOwner
	}
	return c, nil
}

func readableCollection(ctx context.Context, repo CollectionRepository, caller domain.Caller, id string) (*domain.Collection, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.ReadableBy(caller.UserID) {
		return nil, domain.ErrCollectionNotFound
	}
	return c, nil
}
