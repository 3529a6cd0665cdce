package service

import (
	"context"

	"github.com/novanote/novanote/internal/domain"
)

type CollectionCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type ItemCounter interface {
	CountByUser(ctx context.Context, userID string) (map[domain.ItemType]int, error)
}

// LimitsService reports a caller's usage against the free-tier quotas.
type LimitsService struct {
	collections CollectionCounter
	items       ItemCounter
}

func NewLimitsService(collections CollectionCounter, items ItemCounter) *LimitsService {
	return &LimitsService{collections: collections, items: items}
}

func (s *LimitsService) Get(ctx context.Context, caller domain.Caller) (domain.Limits, error) {
	collections, err := s.collections.CountByUser(ctx, caller.UserID)
	if err != nil {
		return domain.Limits{}, err
	}
	items, err := s.items.CountByUser(ctx, caller.UserID)
	if err != nil {
		return domain.Limits{}, err
	}
	return domain.NewLimits(caller.IsPro, domain.Usage{Collections: collections, Items: items}), nil
}
