package rag

import (
	"context"
	"errors"
	"time"

	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/telemetry"
)

// DefaultSearchK is the number of chunks retrieved per chat question.
const DefaultSearchK = 4

// Embedder turns text into a fixed-length vector. The model and its
// dimensionality are pinned by configuration.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is a nearest-neighbour store holding every tenant's documents
// in one namespace. Search must apply collection_id == collectionID as a
// hard filter and return hits ordered by descending similarity.
type VectorStore interface {
	Upsert(ctx context.Context, docs []domain.EmbeddedDocument) error
	Search(ctx context.Context, collectionID string, vector []float32, k int) ([]domain.SearchResult, error)
	DeleteByItem(ctx context.Context, itemID string) error
	DeleteByCollection(ctx context.Context, collectionID string) error
}

// GatewayConfig bounds each remote call. A zero timeout means unbounded.
type GatewayConfig struct {
	EmbedTimeout  time.Duration
	SearchTimeout time.Duration
	WriteTimeout  time.Duration
	DefaultK      int
}

// DefaultGatewayConfig returns the timeouts used when none are configured.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		EmbedTimeout:  15 * time.Second,
		SearchTimeout: 10 * time.Second,
		WriteTimeout:  30 * time.Second,
		DefaultK:      DefaultSearchK,
	}
}

// Gateway is the only path to the embedding model and the vector store.
// It holds no per-request state and is shared by all requests.
type Gateway struct {
	embedder Embedder
	store    VectorStore
	cfg      GatewayConfig
}

// NewGateway creates a Gateway over the given embedder and store.
func NewGateway(embedder Embedder, store VectorStore, cfg GatewayConfig) *Gateway {
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = DefaultSearchK
	}
	return &Gateway{embedder: embedder, store: store, cfg: cfg}
}

// Index embeds every document and upserts them in one call. Document IDs are
// deterministic, so indexing the same item again overwrites its vectors.
// The write is not atomic: any failure means the whole item must be retried.
func (g *Gateway) Index(ctx context.Context, docs []domain.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "Gateway.Index", telemetry.SpanAttributes{
		CollectionID: docs[0].Metadata.CollectionID,
		ItemID:       docs[0].Metadata.ItemID,
		Operation:    "index",
	})
	defer span.End()

	embedded := make([]domain.EmbeddedDocument, len(docs))
	for i, doc := range docs {
		vec, err := g.embed(ctx, doc.Content)
		if err != nil {
			span.SetError(err)
			return 0, remoteError(err, domain.ErrCodeIndexingFailed, "failed to embed document")
		}
		embedded[i] = domain.EmbeddedDocument{Document: doc, Vector: vec}
	}

	writeCtx, cancel := withTimeout(ctx, g.cfg.WriteTimeout)
	defer cancel()
	if err := g.store.Upsert(writeCtx, embedded); err != nil {
		span.SetError(err)
		return 0, remoteError(err, domain.ErrCodeIndexingFailed, "failed to upsert documents")
	}

	return len(embedded), nil
}

// Search embeds query and returns the k nearest documents of collectionID,
// most similar first. k <= 0 uses the configured default. No results is not
// an error.
func (g *Gateway) Search(ctx context.Context, collectionID, query string, k int) ([]domain.SearchResult, error) {
	if collectionID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "collection ID is required")
	}
	if k <= 0 {
		k = g.cfg.DefaultK
	}

	ctx, span := telemetry.StartSpan(ctx, "Gateway.Search", telemetry.SpanAttributes{
		CollectionID: collectionID,
		Operation:    "search",
	})
	defer span.End()

	vec, err := g.embed(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, remoteError(err, domain.ErrCodeRetrievalUnavailable, "failed to embed query")
	}

	searchCtx, cancel := withTimeout(ctx, g.cfg.SearchTimeout)
	defer cancel()
	results, err := g.store.Search(searchCtx, collectionID, vec, k)
	if err != nil {
		span.SetError(err)
		return nil, remoteError(err, domain.ErrCodeRetrievalUnavailable, "vector search failed")
	}

	// Hits from any other collection are discarded.
	filtered := results[:0]
	for _, r := range results {
		if r.Metadata.CollectionID == collectionID {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > k {
		filtered = filtered[:k]
	}
	return filtered, nil
}

// DeleteByItem removes every vector of itemID.
func (g *Gateway) DeleteByItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "item ID is required")
	}
	ctx, cancel := withTimeout(ctx, g.cfg.WriteTimeout)
	defer cancel()
	if err := g.store.DeleteByItem(ctx, itemID); err != nil {
		return remoteError(err, domain.ErrCodeIndexingFailed, "failed to delete item vectors")
	}
	return nil
}

// DeleteByCollection removes every vector of collectionID.
func (g *Gateway) DeleteByCollection(ctx context.Context, collectionID string) error {
	if collectionID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "collection ID is required")
	}
	ctx, cancel := withTimeout(ctx, g.cfg.WriteTimeout)
	defer cancel()
	if err := g.store.DeleteByCollection(ctx, collectionID); err != nil {
		return remoteError(err, domain.ErrCodeIndexingFailed, "failed to delete collection vectors")
	}
	return nil
}

func (g *Gateway) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, g.cfg.EmbedTimeout)
	defer cancel()
	return g.embedder.Embed(ctx, text)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// remoteError classifies a failed remote call. Deadlines become TIMEOUT so
// callers can tell a stuck dependency from an unavailable one.
func remoteError(err error, code, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeTimeout, message+": timed out", err)
	}
	return domain.NewDomainErrorWithCause(code, message, err)
}
