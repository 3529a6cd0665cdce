// Package cache memoizes query and chunk embeddings in Redis. Only vectors
// are cached: an embedding is a pure function of (model, text), so a hit
// can never change what retrieval returns.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/novanote/novanote/internal/rag"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmbeddingTTL = 24 * time.Hour
	cacheOpTimeout      = 300 * time.Millisecond
)

var _ rag.Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder wraps an Embedder with a Redis read-through cache.
// Redis failures are logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	next   rag.Embedder
	client *redis.Client
	model  string
	ttl    time.Duration
}

// NewCachedEmbedder returns next unchanged when client is nil.
func NewCachedEmbedder(next rag.Embedder, client *redis.Client, model string, ttl time.Duration) rag.Embedder {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}
	return &CachedEmbedder{next: next, client: client, model: model, ttl: ttl}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	if vec, err := c.get(ctx, key); err == nil {
		return vec, nil
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("cache: get embedding failed: %v", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, vec)
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *CachedEmbedder) set(ctx context.Context, key string, vec []float32) {
	payload, err := json.Marshal(vec)
	if err != nil {
		log.Printf("cache: marshal embedding failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Printf("cache: set embedding failed: %v", err)
	}
}
