package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Ask(ctx context.Context, caller domain.Caller, collectionID, question string) (*domain.ChatAnswer, error) {
	args := m.Called(ctx, caller, collectionID, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatAnswer), args.Error(1)
}

func TestChatHandler_Ask_Success(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	url := "https://example.com"
	mockSvc.On("Ask", mock.Anything, testCaller, "col-123", "What is it?").Return(&domain.ChatAnswer{
		Answer:     "It is a thing [1].",
		References: []domain.Reference{{Idx: 1, Title: "Example", URL: &url, ItemID: "item-1", ItemType: domain.ItemTypeLink}},
	}, nil)

	req := withURLParam(requestWithCaller(http.MethodPost, "/v1/collections/col-123/chat", []byte(`{"question":"What is it?"}`)), "id", "col-123")
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data domain.ChatAnswer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "It is a thing [1].", resp.Data.Answer)
	require.Len(t, resp.Data.References, 1)
	assert.Equal(t, 1, resp.Data.References[0].Idx)
}

func TestChatHandler_Ask_MissingQuestion(t *testing.T) {
	handler := NewChatHandler(new(MockChatService))

	req := withURLParam(requestWithCaller(http.MethodPost, "/", []byte(`{"question":"  "}`)), "id", "col-123")
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question is required")
}

func TestChatHandler_Ask_CollectionNotFound(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)
	mockSvc.On("Ask", mock.Anything, testCaller, "col-9", "q").Return(nil, domain.ErrCollectionNotFound)

	req := withURLParam(requestWithCaller(http.MethodPost, "/", []byte(`{"question":"q"}`)), "id", "col-9")
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatHandler_Ask_StageFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantStage  string
	}{
		{
			name:       "retrieval unavailable",
			err:        &rag.StageError{Stage: rag.StageRetrieving, Err: domain.NewDomainError(domain.ErrCodeRetrievalUnavailable, "vector store down")},
			wantStatus: http.StatusServiceUnavailable,
			wantStage:  "retrieving",
		},
		{
			name:       "synthesis timeout",
			err:        &rag.StageError{Stage: rag.StageSynthesizing, Err: domain.NewDomainError(domain.ErrCodeTimeout, "completion timed out")},
			wantStatus: http.StatusGatewayTimeout,
			wantStage:  "synthesizing",
		},
		{
			name:       "synthesis unavailable",
			err:        &rag.StageError{Stage: rag.StageSynthesizing, Err: domain.NewDomainError(domain.ErrCodeSynthesisUnavailable, "429 from provider")},
			wantStatus: http.StatusServiceUnavailable,
			wantStage:  "synthesizing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockChatService)
			handler := NewChatHandler(mockSvc)
			mockSvc.On("Ask", mock.Anything, testCaller, "col-123", "q").Return(nil, tt.err)

			req := withURLParam(requestWithCaller(http.MethodPost, "/", []byte(`{"question":"q"}`)), "id", "col-123")
			w := httptest.NewRecorder()

			handler.Ask(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "something went wrong", resp.Error)
			assert.Equal(t, tt.wantStage, resp.Stage)
			assert.NotContains(t, w.Body.String(), "provider")
		})
	}
}
