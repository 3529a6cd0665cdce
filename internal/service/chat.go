package service

import (
	"context"

	"github.com/novanote/novanote/internal/domain"
)

// Answerer runs the retrieval-augmented answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, collectionID, question string) (*domain.ChatAnswer, error)
}

// ChatService answers questions against collections the caller may read.
type ChatService struct {
	collections CollectionRepository
	answerer    Answerer
}

func NewChatService(collections CollectionRepository, answerer Answerer) *ChatService {
	return &ChatService{collections: collections, answerer: answerer}
}

func (s *ChatService) Ask(ctx context.Context, caller domain.Caller, collectionID, question string) (*domain.ChatAnswer, error) {
	if _, err := readableCollection(ctx, s.collections, caller, collectionID); err != nil {
		return nil, err
	}
	return s.answerer.Answer(ctx, collectionID, question)
}
