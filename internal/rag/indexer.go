package rag

import (
	"context"
	"strings"

	"github.com/novanote/novanote/internal/domain"
)

// DocumentIndexer stores embedded documents.
type DocumentIndexer interface {
	Index(ctx context.Context, docs []domain.Document) (int, error)
}

// Indexer is the write path: text -> chunks -> documents -> vector store.
type Indexer struct {
	chunker *Chunker
	index   DocumentIndexer
}

// NewIndexer creates an Indexer. A nil chunker uses DefaultChunker.
func NewIndexer(chunker *Chunker, index DocumentIndexer) *Indexer {
	if chunker == nil {
		chunker = DefaultChunker()
	}
	return &Indexer{chunker: chunker, index: index}
}

// Index chunks and stores req.Text and returns the number of chunks indexed.
// Empty text is rejected here rather than silently producing no documents.
func (i *Indexer) Index(ctx context.Context, req domain.IndexRequest) (int, error) {
	if req.CollectionID == "" || req.ItemID == "" {
		return 0, domain.ErrMissingRequiredField
	}
	if !domain.IsValidItemType(req.ItemType) {
		return 0, domain.ErrInvalidItemType
	}
	if strings.TrimSpace(req.Text) == "" {
		return 0, domain.ErrEmptyText
	}

	docs := i.chunker.BuildDocuments(req.Text, req.Source())
	return i.index.Index(ctx, docs)
}
