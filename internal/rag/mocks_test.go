package rag

import (
	"context"

	"github.com/novanote/novanote/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Upsert(ctx context.Context, docs []domain.EmbeddedDocument) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}

func (m *MockVectorStore) Search(ctx context.Context, collectionID string, vector []float32, k int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, collectionID, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockVectorStore) DeleteByItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockVectorStore) DeleteByCollection(ctx context.Context, collectionID string) error {
	args := m.Called(ctx, collectionID)
	return args.Error(0)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, messages []domain.Message, temperature float32) (string, error) {
	args := m.Called(ctx, messages, temperature)
	return args.String(0), args.Error(1)
}

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Search(ctx context.Context, collectionID, query string, k int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, collectionID, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

type MockAnswerSynthesizer struct {
	mock.Mock
}

func (m *MockAnswerSynthesizer) Synthesize(ctx context.Context, question, contextBlock string) (string, error) {
	args := m.Called(ctx, question, contextBlock)
	return args.String(0), args.Error(1)
}
