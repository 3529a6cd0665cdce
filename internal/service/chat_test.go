package service

import (
	"context"
	"testing"

	"github.com/novanote/novanote/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_Ask(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		collection *domain.Collection
		wantErr    error
	}{
		{
			name:       "own collection",
			collection: &domain.Collection{ID: "c1", UserID: "u1"},
		},
		{
			name:       "shared collection of another user",
			collection: &domain.Collection{ID: "c1", UserID: "u2", IsShared: true},
		},
		{
			name:       "private collection of another user",
			collection: &domain.Collection{ID: "c1", UserID: "u2"},
			wantErr:    domain.ErrCollectionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collections := new(MockCollectionRepository)
			answerer := new(MockAnswerer)
			collections.On("GetByID", ctx, "c1").Return(tt.collection, nil)

			want := &domain.ChatAnswer{Answer: "42 [1]", References: []domain.Reference{{Idx: 1, Title: "Guide", ItemID: "i1", ItemType: domain.ItemTypeText}}}
			answerer.On("Answer", ctx, "c1", "what?").Return(want, nil).Maybe()

			svc := NewChatService(collections, answerer)
			got, err := svc.Ask(ctx, domain.Caller{UserID: "u1"}, "c1", "what?")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				answerer.AssertNotCalled(t, "Answer")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestChatService_Ask_PropagatesStageError(t *testing.T) {
	ctx := context.Background()
	collections := new(MockCollectionRepository)
	answerer := new(MockAnswerer)
	collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)

	stageErr := domain.NewDomainError(domain.ErrCodeRetrievalUnavailable, "vector search failed")
	answerer.On("Answer", ctx, "c1", "q").Return(nil, stageErr)

	_, err := NewChatService(collections, answerer).Ask(ctx, domain.Caller{UserID: "u1"}, "c1", "q")
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, domain.CodeOf(err))
}
