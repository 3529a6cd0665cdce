package rag

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/novanote/novanote/internal/domain"
)

// wordEmbedder hashes lower-cased words into a fixed-size bag-of-words vector.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

// memStore is an in-process VectorStore with cosine ranking.
type memStore struct {
	mu   sync.RWMutex
	docs map[string]domain.EmbeddedDocument
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]domain.EmbeddedDocument)}
}

func (s *memStore) Upsert(_ context.Context, docs []domain.EmbeddedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return nil
}

func (s *memStore) Search(_ context.Context, collectionID string, vector []float32, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.SearchResult
	for _, d := range s.docs {
		if d.Metadata.CollectionID != collectionID {
			continue
		}
		results = append(results, domain.SearchResult{
			Content:  d.Content,
			Metadata: d.Metadata,
			Score:    cosine(vector, d.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *memStore) DeleteByItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		if d.Metadata.ItemID == itemID {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *memStore) DeleteByCollection(_ context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		if d.Metadata.CollectionID == collectionID {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *memStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// citingCompleter answers from the first numbered context entry, or says it
// does not know when the context is empty.
type citingCompleter struct {
	calls [][]domain.Message
	mu    sync.Mutex
}

func (c *citingCompleter) Complete(_ context.Context, messages []domain.Message, _ float32) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, messages)
	c.mu.Unlock()

	system := messages[0].Content
	idx := strings.Index(system, "Context:\n")
	block := system[idx+len("Context:\n"):]
	if strings.TrimSpace(block) == "" {
		return "I don't know based on the provided notes.", nil
	}
	lines := strings.SplitN(block, "\n", 3)
	return "According to your notes: " + lines[1] + " [1]", nil
}
