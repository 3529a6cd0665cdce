package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/extract"
	"github.com/novanote/novanote/internal/pagination"
)

const maxTitleRunes = 80

// ItemPageResult is one page of a collection's items
type ItemPageResult struct {
	Items      []*domain.KnowledgeItem
	NextCursor string
	HasMore    bool
}

type ItemRepository interface {
	Create(ctx context.Context, k *domain.KnowledgeItem) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error)
	ListByCollection(ctx context.Context, collectionID string) ([]*domain.KnowledgeItem, error)
	ListByCollectionWithCursor(ctx context.Context, collectionID string, cursor *pagination.Cursor, limit int) (*ItemPageResult, error)
	UpdateIndexStatus(ctx context.Context, id string, status domain.IndexStatus, chunkCount int, indexErr string) error
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (map[domain.ItemType]int, error)
	ListStorageKeysByCollection(ctx context.Context, collectionID string) ([]string, error)
}

type IndexJobRepository interface {
	Create(ctx context.Context, job *domain.IndexJob) error
}

// ItemIndexer chunks, embeds, and stores one item's text.
type ItemIndexer interface {
	Index(ctx context.Context, req domain.IndexRequest) (int, error)
}

type LinkFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*extract.Page, error)
}

type PDFTextExtractor interface {
	Extract(data []byte) (string, error)
}

// ItemServiceDeps wires an ItemService. Objects may be nil, in which case
// uploaded PDFs are indexed but not kept.
type ItemServiceDeps struct {
	Collections CollectionRepository
	Items       ItemRepository
	Tx          TxRunner
	Indexer     ItemIndexer
	Index       VectorIndex
	Fetcher     LinkFetcher
	PDFs        PDFTextExtractor
	Objects     ObjectStorage
	UUIDGen     UUIDGenerator
}

type ItemService struct {
	collections CollectionRepository
	items       ItemRepository
	tx          TxRunner
	indexer     ItemIndexer
	index       VectorIndex
	fetcher     LinkFetcher
	pdfs        PDFTextExtractor
	objects     ObjectStorage
	uuidGen     UUIDGenerator
}

func NewItemService(deps ItemServiceDeps) *ItemService {
	return &ItemService{
		collections: deps.Collections,
		items:       deps.Items,
		tx:          deps.Tx,
		indexer:     deps.Indexer,
		index:       deps.Index,
		fetcher:     deps.Fetcher,
		pdfs:        deps.PDFs,
		objects:     deps.Objects,
		uuidGen:     deps.UUIDGen,
	}
}

type AddTextInput struct {
	Title string
	Text  string
}

type AddPDFInput struct {
	Filename string
	Title    string
	Data     []byte
}

// IndexTextInput is a raw indexing request against an existing item.
type IndexTextInput struct {
	ItemID    string
	ItemType  domain.ItemType
	Title     string
	SourceURL *string
	Text      string
}

func (s *ItemService) AddText(ctx context.Context, caller domain.Caller, collectionID string, input AddTextInput) (*domain.KnowledgeItem, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrEmptyText
	}
	if err := s.preflight(ctx, caller, collectionID, domain.ItemTypeText); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = titleFromText(input.Text)
	}

	item := domain.NewKnowledgeItem(s.uuidGen.NewString(), collectionID, caller.UserID, domain.ItemTypeText, title, nil, input.Text, time.Now().UTC())
	return s.create(ctx, caller, item)
}

func (s *ItemService) AddLink(ctx context.Context, caller domain.Caller, collectionID, rawURL string) (*domain.KnowledgeItem, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "url is required")
	}
	if err := s.preflight(ctx, caller, collectionID, domain.ItemTypeLink); err != nil {
		return nil, err
	}

	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Text) == "" {
		return nil, domain.ErrEmptyContent
	}

	pageURL := page.URL
	item := domain.NewKnowledgeItem(s.uuidGen.NewString(), collectionID, caller.UserID, domain.ItemTypeLink, page.Title, &pageURL, page.Text, time.Now().UTC())
	return s.create(ctx, caller, item)
}

func (s *ItemService) AddPDF(ctx context.Context, caller domain.Caller, collectionID string, input AddPDFInput) (*domain.KnowledgeItem, error) {
	if len(input.Data) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "file is required")
	}
	if err := s.preflight(ctx, caller, collectionID, domain.ItemTypePDF); err != nil {
		return nil, err
	}

	text, err := s.pdfs.Extract(input.Data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyContent
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(path.Base(input.Filename), path.Ext(input.Filename))
	}
	if title == "" || title == "." || title == "/" {
		title = "Untitled PDF"
	}

	item := domain.NewKnowledgeItem(s.uuidGen.NewString(), collectionID, caller.UserID, domain.ItemTypePDF, title, nil, text, time.Now().UTC())

	if s.objects != nil {
		item.StorageKey = PDFObjectKey(collectionID, item.ID)
		if err := s.objects.PutObject(ctx, item.StorageKey, input.Data, "application/pdf"); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store pdf", err)
		}
	}

	created, err := s.create(ctx, caller, item)
	if err != nil && item.StorageKey != "" && created == nil {
		if delErr := s.objects.DeleteObject(ctx, item.StorageKey); delErr != nil {
			log.Printf("item %s: failed to delete orphaned object %s: %v", item.ID, item.StorageKey, delErr)
		}
	}
	return created, err
}

// PDFObjectKey is where an uploaded PDF is stored.
func PDFObjectKey(collectionID, itemID string) string {
	return "pdfs/" + collectionID + "/" + itemID + ".pdf"
}

// Get returns an item of a collection the caller may read.
func (s *ItemService) Get(ctx context.Context, caller domain.Caller, itemID string) (*domain.KnowledgeItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := readableCollection(ctx, s.collections, caller, item.CollectionID); err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) List(ctx context.Context, caller domain.Caller, collectionID, cursor string, limit int) (*ItemPageResult, error) {
	if _, err := readableCollection(ctx, s.collections, caller, collectionID); err != nil {
		return nil, err
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.items.ListByCollectionWithCursor(ctx, collectionID, decoded, limit)
}

// DownloadURL returns a presigned URL for the item's uploaded PDF.
func (s *ItemService) DownloadURL(ctx context.Context, caller domain.Caller, itemID string) (string, error) {
	item, err := s.Get(ctx, caller, itemID)
	if err != nil {
		return "", err
	}
	if item.StorageKey == "" {
		return "", domain.NewDomainError(domain.ErrCodeNotFound, "item has no stored file")
	}
	if s.objects == nil {
		return "", domain.ErrStorageNotConfigured
	}
	url, err := s.objects.GenerateDownloadURL(ctx, item.StorageKey)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate download url", err)
	}
	return url, nil
}

// Delete purges the item's documents, then the item and its stored file.
func (s *ItemService) Delete(ctx context.Context, caller domain.Caller, itemID string) error {
	item, err := s.ownedItem(ctx, caller, itemID)
	if err != nil {
		return err
	}

	if err := s.index.DeleteByItem(ctx, item.ID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}

	if item.StorageKey != "" && s.objects != nil {
		if err := s.objects.DeleteObject(ctx, item.StorageKey); err != nil {
			log.Printf("item %s: failed to delete object %s: %v", item.ID, item.StorageKey, err)
		}
	}
	return nil
}

// Reindex rebuilds the item's documents from its stored content.
func (s *ItemService) Reindex(ctx context.Context, caller domain.Caller, itemID string) (*domain.KnowledgeItem, error) {
	item, err := s.ownedItem(ctx, caller, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.index.DeleteByItem(ctx, item.ID); err != nil {
		return nil, err
	}
	if err := s.indexOrEnqueue(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// IndexText indexes caller-supplied text for an item of the collection and
// returns the number of documents written.
func (s *ItemService) IndexText(ctx context.Context, caller domain.Caller, collectionID string, input IndexTextInput) (int, error) {
	if input.ItemID == "" {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, "item_id is required")
	}
	if _, err := ownedCollection(ctx, s.collections, caller, collectionID); err != nil {
		return 0, err
	}

	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return 0, err
	}
	if item.CollectionID != collectionID {
		return 0, domain.ErrItemNotFound
	}
	if input.ItemType != "" && input.ItemType != item.Type {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("item_type must be %s", item.Type))
	}
	if strings.TrimSpace(input.Text) == "" {
		return 0, domain.ErrEmptyText
	}

	// The previous text may have produced more chunks than this one.
	if err := s.index.DeleteByItem(ctx, item.ID); err != nil {
		return 0, err
	}
	n, err := s.indexer.Index(ctx, domain.IndexRequest{
		CollectionID: collectionID,
		ItemID:       item.ID,
		ItemType:     item.Type,
		Title:        input.Title,
		SourceURL:    input.SourceURL,
		Text:         input.Text,
	})
	if err != nil {
		if uerr := s.items.UpdateIndexStatus(ctx, item.ID, domain.IndexStatusFailed, 0, err.Error()); uerr != nil {
			log.Printf("item %s: record index failure: %v", item.ID, uerr)
		}
		return 0, err
	}
	if err := s.items.UpdateIndexStatus(ctx, item.ID, domain.IndexStatusIndexed, n, ""); err != nil {
		return 0, err
	}
	return n, nil
}

// IndexItem indexes a stored item and records the outcome. It is the body
// of background index jobs, so failures are returned for the retry policy
// rather than queued again.
func (s *ItemService) IndexItem(ctx context.Context, itemID string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.index.DeleteByItem(ctx, item.ID); err != nil {
		return err
	}
	n, err := s.indexer.Index(ctx, indexRequest(item))
	if err != nil {
		return err
	}
	return s.items.UpdateIndexStatus(ctx, item.ID, domain.IndexStatusIndexed, n, "")
}

// MarkIndexFailed records that indexing an item was abandoned.
func (s *ItemService) MarkIndexFailed(ctx context.Context, itemID, reason string) error {
	return s.items.UpdateIndexStatus(ctx, itemID, domain.IndexStatusFailed, 0, reason)
}

// ReindexCollection re-embeds every item of a collection and returns the
// number of items indexed. Items that fail keep a failed status.
func (s *ItemService) ReindexCollection(ctx context.Context, collectionID string) (int, error) {
	items, err := s.items.ListByCollection(ctx, collectionID)
	if err != nil {
		return 0, err
	}

	if err := s.index.DeleteByCollection(ctx, collectionID); err != nil {
		return 0, err
	}

	indexed := 0
	for _, item := range items {
		n, err := s.indexer.Index(ctx, indexRequest(item))
		if err != nil {
			log.Printf("reindex: item %s failed: %v", item.ID, err)
			if uerr := s.items.UpdateIndexStatus(ctx, item.ID, domain.IndexStatusFailed, 0, err.Error()); uerr != nil {
				return indexed, uerr
			}
			continue
		}
		if err := s.items.UpdateIndexStatus(ctx, item.ID, domain.IndexStatusIndexed, n, ""); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}

// preflight checks ownership and quota before any expensive extraction.
func (s *ItemService) preflight(ctx context.Context, caller domain.Caller, collectionID string, itemType domain.ItemType) error {
	if _, err := ownedCollection(ctx, s.collections, caller, collectionID); err != nil {
		return err
	}
	limits, err := NewLimitsService(s.collections, s.items).Get(ctx, caller)
	if err != nil {
		return err
	}
	if limits.ItemQuota(itemType).Reached() {
		return domain.ErrLimitReached
	}
	return nil
}

// create persists the item under the quota, then indexes it synchronously.
// An indexing failure does not fail creation: the item is kept with a
// failed status and a retry job.
func (s *ItemService) create(ctx context.Context, caller domain.Caller, item *domain.KnowledgeItem) (*domain.KnowledgeItem, error) {
	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge item", err)
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		limits, err := NewLimitsService(repos.Collections(), repos.Items()).Get(ctx, caller)
		if err != nil {
			return err
		}
		if limits.ItemQuota(item.Type).Reached() {
			return domain.ErrLimitReached
		}
		return repos.Items().Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	if err := s.indexOrEnqueue(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// indexOrEnqueue indexes item and updates it in place. Only bookkeeping
// failures are returned.
func (s *ItemService) indexOrEnqueue(ctx context.Context, item *domain.KnowledgeItem) error {
	n, indexErr := s.indexer.Index(ctx, indexRequest(item))
	if indexErr == nil {
		if err := s.items.UpdateIndexStatus(ctx, item.ID, domain.IndexStatusIndexed, n, ""); err != nil {
			return err
		}
		item.IndexStatus = domain.IndexStatusIndexed
		item.ChunkCount = n
		item.IndexError = ""
		return nil
	}

	log.Printf("item %s: indexing failed, queueing retry: %v", item.ID, indexErr)
	job := domain.NewIndexJob(s.uuidGen.NewString(), item.ID, domain.IndexJobStatusPending, 0, "", time.Now().UTC(), nil)
	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Items().UpdateIndexStatus(ctx, item.ID, domain.IndexStatusFailed, 0, indexErr.Error()); err != nil {
			return err
		}
		return repos.IndexJobs().Create(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("record index failure: %w", err)
	}
	item.IndexStatus = domain.IndexStatusFailed
	item.ChunkCount = 0
	item.IndexError = indexErr.Error()
	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, caller domain.Caller, itemID string) (*domain.KnowledgeItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedCollection(ctx, s.collections, caller, item.CollectionID); err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func indexRequest(item *domain.KnowledgeItem) domain.IndexRequest {
	return domain.IndexRequest{
		CollectionID: item.CollectionID,
		ItemID:       item.ID,
		ItemType:     item.Type,
		Title:        item.Title,
		SourceURL:    item.URL,
		Text:         item.Content,
	}
}

// titleFromText uses the first non-empty line, cut to maxTitleRunes.
func titleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxTitleRunes {
			return strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
		}
		return line
	}
	return "Untitled note"
}
