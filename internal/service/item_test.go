package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/extract"
	"github.com/novanote/novanote/internal/pagination"
	"github.com/novanote/novanote/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type itemFixture struct {
	collections *MockCollectionRepository
	items       *MockItemRepository
	jobs        *MockIndexJobRepository
	indexer     *MockItemIndexer
	index       *MockVectorIndex
	fetcher     *MockLinkFetcher
	pdfs        *MockPDFExtractor
	objects     *MockObjectStorage
	tx          *testTxRunner
}

func newItemFixture() *itemFixture {
	f := &itemFixture{
		collections: new(MockCollectionRepository),
		items:       new(MockItemRepository),
		jobs:        new(MockIndexJobRepository),
		indexer:     new(MockItemIndexer),
		index:       new(MockVectorIndex),
		fetcher:     new(MockLinkFetcher),
		pdfs:        new(MockPDFExtractor),
		objects:     new(MockObjectStorage),
	}
	f.tx = &testTxRunner{repos: &testTxRepos{collections: f.collections, items: f.items, indexJobs: f.jobs}}
	return f
}

func (f *itemFixture) service(withObjects bool, ids ...string) *ItemService {
	deps := ItemServiceDeps{
		Collections: f.collections,
		Items:       f.items,
		Tx:          f.tx,
		Indexer:     f.indexer,
		Index:       f.index,
		Fetcher:     f.fetcher,
		PDFs:        f.pdfs,
		UUIDGen:     NewMockUUIDGenerator(ids...),
	}
	if withObjects {
		deps.Objects = f.objects
	}
	return NewItemService(deps)
}

// ownCollection makes c1 an empty collection owned by u1.
func (f *itemFixture) ownCollection(ctx context.Context, counts map[domain.ItemType]int) {
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.collections.On("CountByUser", ctx, "u1").Return(1, nil)
	f.items.On("CountByUser", ctx, "u1").Return(counts, nil)
}

var owner = domain.Caller{UserID: "u1"}

func TestItemService_AddText(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{domain.ItemTypeText: 1})

	f.items.On("Create", ctx, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
		return k.ID == "item-1" && k.Type == domain.ItemTypeText && k.Title == "Shopping list" && k.IndexStatus == domain.IndexStatusPending
	})).Return(nil)
	f.indexer.On("Index", ctx, mock.MatchedBy(func(req domain.IndexRequest) bool {
		return req.ItemID == "item-1" && req.CollectionID == "c1" && req.Text == "Shopping list\nmilk"
	})).Return(3, nil)
	f.items.On("UpdateIndexStatus", ctx, "item-1", domain.IndexStatusIndexed, 3, "").Return(nil)

	item, err := f.service(false, "item-1").AddText(ctx, owner, "c1", AddTextInput{Text: "Shopping list\nmilk"})

	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, item.IndexStatus)
	assert.Equal(t, 3, item.ChunkCount)
	assert.Equal(t, 1, f.tx.called)
	f.items.AssertExpectations(t)
}

func TestItemService_AddText_IndexingFailureQueuesJob(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{})

	indexErr := domain.NewDomainError(domain.ErrCodeIndexingFailed, "embedding failed")
	f.items.On("Create", ctx, mock.Anything).Return(nil)
	f.indexer.On("Index", ctx, mock.Anything).Return(0, indexErr)
	f.items.On("UpdateIndexStatus", ctx, "item-1", domain.IndexStatusFailed, 0, indexErr.Error()).Return(nil)
	f.jobs.On("Create", ctx, mock.MatchedBy(func(j *domain.IndexJob) bool {
		return j.ID == "job-1" && j.ItemID == "item-1" && j.Status == domain.IndexJobStatusPending
	})).Return(nil)

	item, err := f.service(false, "item-1", "job-1").AddText(ctx, owner, "c1", AddTextInput{Title: "Note", Text: "body"})

	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusFailed, item.IndexStatus)
	assert.Equal(t, indexErr.Error(), item.IndexError)
	assert.Equal(t, 2, f.tx.called)
	f.jobs.AssertExpectations(t)
}

func TestItemService_AddText_Validation(t *testing.T) {
	f := newItemFixture()
	_, err := f.service(false).AddText(context.Background(), owner, "c1", AddTextInput{Text: "  \n "})

	assert.ErrorIs(t, err, domain.ErrEmptyText)
	f.collections.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestItemService_AddText_LimitReached(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{domain.ItemTypeText: domain.FreeMaxTextItems})

	_, err := f.service(false).AddText(ctx, owner, "c1", AddTextInput{Text: "one more"})

	assert.ErrorIs(t, err, domain.ErrLimitReached)
	assert.Zero(t, f.tx.called)
}

func TestItemService_AddText_SharedCollectionNotOwner(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u2", IsShared: true}, nil)

	_, err := f.service(false).AddText(ctx, owner, "c1", AddTextInput{Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotCollectionOwner)
}

func TestItemService_AddLink(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{})

	f.fetcher.On("Fetch", ctx, "https://example.com/a").Return(&extract.Page{
		URL:   "https://example.com/a",
		Title: "Example",
		Text:  "Example body text",
	}, nil)
	f.items.On("Create", ctx, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
		return k.Type == domain.ItemTypeLink && k.URL != nil && *k.URL == "https://example.com/a" && k.Title == "Example"
	})).Return(nil)
	f.indexer.On("Index", ctx, mock.MatchedBy(func(req domain.IndexRequest) bool {
		return req.SourceURL != nil && *req.SourceURL == "https://example.com/a"
	})).Return(1, nil)
	f.items.On("UpdateIndexStatus", ctx, "item-1", domain.IndexStatusIndexed, 1, "").Return(nil)

	item, err := f.service(false, "item-1").AddLink(ctx, owner, "c1", "https://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeLink, item.Type)
}

func TestItemService_AddLink_FetchError(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{})

	f.fetcher.On("Fetch", ctx, "https://example.com/a").Return(nil, domain.ErrEmptyContent)

	_, err := f.service(false).AddLink(ctx, owner, "c1", "https://example.com/a")

	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestItemService_AddPDF_StoresObject(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{})
	data := []byte("%PDF-1.4 fake")

	f.pdfs.On("Extract", data).Return("page one\n\npage two", nil)
	f.objects.On("PutObject", ctx, "pdfs/c1/item-1.pdf", data, "application/pdf").Return(nil)
	f.items.On("Create", ctx, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
		return k.Title == "report" && k.StorageKey == "pdfs/c1/item-1.pdf"
	})).Return(nil)
	f.indexer.On("Index", ctx, mock.Anything).Return(2, nil)
	f.items.On("UpdateIndexStatus", ctx, "item-1", domain.IndexStatusIndexed, 2, "").Return(nil)

	item, err := f.service(true, "item-1").AddPDF(ctx, owner, "c1", AddPDFInput{Filename: "report.pdf", Data: data})

	require.NoError(t, err)
	assert.Equal(t, "pdfs/c1/item-1.pdf", item.StorageKey)
	f.objects.AssertExpectations(t)
}

func TestItemService_AddPDF_CreateFailureRemovesObject(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{})
	data := []byte("%PDF")
	boom := errors.New("insert failed")

	f.pdfs.On("Extract", data).Return("text", nil)
	f.objects.On("PutObject", ctx, "pdfs/c1/item-1.pdf", data, "application/pdf").Return(nil)
	f.items.On("Create", ctx, mock.Anything).Return(boom)
	f.objects.On("DeleteObject", ctx, "pdfs/c1/item-1.pdf").Return(nil)

	_, err := f.service(true, "item-1").AddPDF(ctx, owner, "c1", AddPDFInput{Filename: "x.pdf", Data: data})

	assert.ErrorIs(t, err, boom)
	f.objects.AssertExpectations(t)
}

func TestItemService_AddPDF_EmptyText(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.ownCollection(ctx, map[domain.ItemType]int{})
	f.pdfs.On("Extract", []byte("%PDF")).Return("   ", nil)

	_, err := f.service(true).AddPDF(ctx, owner, "c1", AddPDFInput{Filename: "scan.pdf", Data: []byte("%PDF")})

	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	f.objects.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemService_Get_PrivateCollectionHidden(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1"}, nil)
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u2"}, nil)

	_, err := f.service(false).Get(ctx, owner, "i1")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestItemService_List(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u2", IsShared: true}, nil)
	page := &ItemPageResult{Items: []*domain.KnowledgeItem{{ID: "i1"}}}
	f.items.On("ListByCollectionWithCursor", ctx, "c1", (*pagination.Cursor)(nil), 20).Return(page, nil)

	got, err := f.service(false).List(ctx, owner, "c1", "", 500)

	require.NoError(t, err)
	assert.Same(t, page, got)
}

func TestItemService_List_InvalidCursor(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)

	_, err := f.service(false).List(ctx, owner, "c1", "%%%", 10)
	assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", StorageKey: "pdfs/c1/i1.pdf"}, nil)
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(nil)
	f.items.On("Delete", ctx, "i1").Return(nil)
	f.objects.On("DeleteObject", ctx, "pdfs/c1/i1.pdf").Return(nil)

	require.NoError(t, f.service(true).Delete(ctx, owner, "i1"))
	f.index.AssertExpectations(t)
	f.objects.AssertExpectations(t)
}

func TestItemService_Delete_PurgeFailureKeepsItem(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	purgeErr := errors.New("qdrant unavailable")
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1"}, nil)
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(purgeErr)

	err := f.service(false).Delete(ctx, owner, "i1")

	assert.ErrorIs(t, err, purgeErr)
	f.items.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestItemService_Reindex(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	stored := &domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Type: domain.ItemTypeText, Content: "hello", IndexStatus: domain.IndexStatusFailed}
	f.items.On("GetByID", ctx, "i1").Return(stored, nil)
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(nil)
	f.indexer.On("Index", ctx, mock.Anything).Return(1, nil)
	f.items.On("UpdateIndexStatus", ctx, "i1", domain.IndexStatusIndexed, 1, "").Return(nil)

	item, err := f.service(false).Reindex(ctx, owner, "i1")

	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, item.IndexStatus)
}

func TestItemService_IndexText(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Type: domain.ItemTypeText}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(nil)
	f.indexer.On("Index", ctx, domain.IndexRequest{
		CollectionID: "c1",
		ItemID:       "i1",
		ItemType:     domain.ItemTypeText,
		Title:        "T",
		Text:         "raw text",
	}).Return(4, nil)
	f.items.On("UpdateIndexStatus", ctx, "i1", domain.IndexStatusIndexed, 4, "").Return(nil)

	n, err := f.service(false).IndexText(ctx, owner, "c1", IndexTextInput{ItemID: "i1", ItemType: domain.ItemTypeText, Title: "T", Text: "raw text"})

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	f.index.AssertExpectations(t)
	f.items.AssertExpectations(t)
}

func TestItemService_IndexText_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Type: domain.ItemTypeText}, nil)

	_, err := f.service(false).IndexText(ctx, owner, "c1", IndexTextInput{ItemID: "i1", ItemType: domain.ItemTypePDF, Text: "x"})

	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
	f.index.AssertNotCalled(t, "DeleteByItem", mock.Anything, mock.Anything)
	f.indexer.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
}

func TestItemService_IndexText_FailureMarksItem(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	boom := domain.NewDomainErrorWithCause(domain.ErrCodeIndexingFailed, "indexing failed", errors.New("embedder down"))
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Type: domain.ItemTypeText}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(nil)
	f.indexer.On("Index", ctx, mock.Anything).Return(0, boom)
	f.items.On("UpdateIndexStatus", ctx, "i1", domain.IndexStatusFailed, 0, boom.Error()).Return(nil)

	_, err := f.service(false).IndexText(ctx, owner, "c1", IndexTextInput{ItemID: "i1", ItemType: domain.ItemTypeText, Text: "x"})

	assert.ErrorIs(t, err, boom)
	f.items.AssertExpectations(t)
}

func TestItemService_IndexText_ShorterTextReplacesChunks(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Type: domain.ItemTypeText}, nil)
	f.items.On("UpdateIndexStatus", ctx, "i1", domain.IndexStatusIndexed, mock.Anything, "").Return(nil)

	store := newMemVectorStore()
	gateway := rag.NewGateway(constantEmbedder{}, store, rag.DefaultGatewayConfig())
	svc := NewItemService(ItemServiceDeps{
		Collections: f.collections,
		Items:       f.items,
		Tx:          f.tx,
		Indexer:     rag.NewIndexer(nil, gateway),
		Index:       gateway,
		UUIDGen:     NewMockUUIDGenerator(),
	})

	n, err := svc.IndexText(ctx, owner, "c1", IndexTextInput{ItemID: "i1", ItemType: domain.ItemTypeText, Text: strings.Repeat("a", 2500)})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, store.countItem("i1"))

	n, err = svc.IndexText(ctx, owner, "c1", IndexTextInput{ItemID: "i1", ItemType: domain.ItemTypeText, Text: "new short text"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.countItem("i1"))

	f.items.AssertCalled(t, "UpdateIndexStatus", ctx, "i1", domain.IndexStatusIndexed, 1, "")
}

func TestItemService_IndexText_ItemOfOtherCollection(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u1"}, nil)
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c9"}, nil)

	_, err := f.service(false).IndexText(ctx, owner, "c1", IndexTextInput{ItemID: "i1", Text: "x"})

	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	f.indexer.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
}

func TestItemService_IndexItem(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Content: "body"}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(nil)
	f.indexer.On("Index", ctx, mock.Anything).Return(2, nil)
	f.items.On("UpdateIndexStatus", ctx, "i1", domain.IndexStatusIndexed, 2, "").Return(nil)

	require.NoError(t, f.service(false).IndexItem(ctx, "i1"))
	f.items.AssertExpectations(t)
}

func TestItemService_IndexItem_ReturnsIndexError(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	boom := errors.New("embedder down")
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", Content: "body"}, nil)
	f.index.On("DeleteByItem", ctx, "i1").Return(nil)
	f.indexer.On("Index", ctx, mock.Anything).Return(0, boom)

	err := f.service(false).IndexItem(ctx, "i1")

	assert.ErrorIs(t, err, boom)
	f.items.AssertNotCalled(t, "UpdateIndexStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemService_ReindexCollection(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	items := []*domain.KnowledgeItem{
		{ID: "i1", CollectionID: "c1", Content: "a"},
		{ID: "i2", CollectionID: "c1", Content: "b"},
	}
	f.items.On("ListByCollection", ctx, "c1").Return(items, nil)
	f.index.On("DeleteByCollection", ctx, "c1").Return(nil)
	f.indexer.On("Index", ctx, mock.MatchedBy(func(r domain.IndexRequest) bool { return r.ItemID == "i1" })).Return(1, nil)
	f.indexer.On("Index", ctx, mock.MatchedBy(func(r domain.IndexRequest) bool { return r.ItemID == "i2" })).Return(0, errors.New("bad"))
	f.items.On("UpdateIndexStatus", ctx, "i1", domain.IndexStatusIndexed, 1, "").Return(nil)
	f.items.On("UpdateIndexStatus", ctx, "i2", domain.IndexStatusFailed, 0, "bad").Return(nil)

	n, err := f.service(false).ReindexCollection(ctx, "c1")

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.items.AssertExpectations(t)
}

func TestTitleFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "first line", text: "Hello\nworld", want: "Hello"},
		{name: "skips blank lines", text: "\n\n  Title here  \nbody", want: "Title here"},
		{name: "truncated", text: strings.Repeat("x", 100), want: strings.Repeat("x", 80) + "…"},
		{name: "empty", text: "   ", want: "Untitled note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titleFromText(tt.text))
		})
	}
}

func TestItemService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.items.On("GetByID", ctx, "i1").Return(&domain.KnowledgeItem{ID: "i1", CollectionID: "c1", StorageKey: "pdfs/c1/i1.pdf"}, nil)
	f.items.On("GetByID", ctx, "i2").Return(&domain.KnowledgeItem{ID: "i2", CollectionID: "c1"}, nil)
	f.collections.On("GetByID", ctx, "c1").Return(&domain.Collection{ID: "c1", UserID: "u2", IsShared: true}, nil)
	f.objects.On("GenerateDownloadURL", ctx, "pdfs/c1/i1.pdf").Return("https://s3.local/signed", nil)

	url, err := f.service(true).DownloadURL(ctx, owner, "i1")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/signed", url)

	_, err = f.service(true).DownloadURL(ctx, owner, "i2")
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))
}

type constantEmbedder struct{}

func (constantEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// memVectorStore keeps documents in a map keyed by document id.
type memVectorStore struct {
	mu   sync.Mutex
	docs map[string]domain.EmbeddedDocument
}

func newMemVectorStore() *memVectorStore {
	return &memVectorStore{docs: make(map[string]domain.EmbeddedDocument)}
}

func (s *memVectorStore) Upsert(_ context.Context, docs []domain.EmbeddedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return nil
}

func (s *memVectorStore) Search(context.Context, string, []float32, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (s *memVectorStore) DeleteByItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		if d.Metadata.ItemID == itemID {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *memVectorStore) DeleteByCollection(_ context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		if d.Metadata.CollectionID == collectionID {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *memVectorStore) countItem(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.docs {
		if d.Metadata.ItemID == itemID {
			n++
		}
	}
	return n
}
