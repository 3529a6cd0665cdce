package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/extract"
	"github.com/novanote/novanote/internal/service"
)

// maxMultipartMemory is the part of an upload kept in memory; the rest
// spills to temporary files.
const maxMultipartMemory = 8 << 20

type ItemService interface {
	AddText(ctx context.Context, caller domain.Caller, collectionID string, input service.AddTextInput) (*domain.KnowledgeItem, error)
	AddLink(ctx context.Context, caller domain.Caller, collectionID, rawURL string) (*domain.KnowledgeItem, error)
	AddPDF(ctx context.Context, caller domain.Caller, collectionID string, input service.AddPDFInput) (*domain.KnowledgeItem, error)
	Get(ctx context.Context, caller domain.Caller, itemID string) (*domain.KnowledgeItem, error)
	List(ctx context.Context, caller domain.Caller, collectionID, cursor string, limit int) (*service.ItemPageResult, error)
	Delete(ctx context.Context, caller domain.Caller, itemID string) error
	Reindex(ctx context.Context, caller domain.Caller, itemID string) (*domain.KnowledgeItem, error)
	IndexText(ctx context.Context, caller domain.Caller, collectionID string, input service.IndexTextInput) (int, error)
	DownloadURL(ctx context.Context, caller domain.Caller, itemID string) (string, error)
}

type ItemHandler struct {
	svc ItemService
}

func NewItemHandler(svc ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type AddTextRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type AddLinkRequest struct {
	URL string `json:"url"`
}

type IndexTextRequest struct {
	ItemID    string  `json:"item_id"`
	ItemType  string  `json:"item_type"`
	Title     string  `json:"title"`
	SourceURL *string `json:"source_url"`
	Text      string  `json:"text"`
}

type IndexTextResponse struct {
	Count int `json:"count"`
}

type ItemResponse struct {
	ID           string  `json:"id"`
	CollectionID string  `json:"collection_id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	URL          *string `json:"url"`
	Content      string  `json:"content,omitempty"`
	HasFile      bool    `json:"has_file"`
	IndexStatus  string  `json:"index_status"`
	ChunkCount   int     `json:"chunk_count"`
	IndexError   string  `json:"index_error,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type ListItemsResponse struct {
	Items      []*ItemResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

func itemToResponse(k *domain.KnowledgeItem, withContent bool) *ItemResponse {
	resp := &ItemResponse{
		ID:           k.ID,
		CollectionID: k.CollectionID,
		Type:         string(k.Type),
		Title:        k.Title,
		URL:          k.URL,
		HasFile:      k.StorageKey != "",
		IndexStatus:  string(k.IndexStatus),
		ChunkCount:   k.ChunkCount,
		IndexError:   k.IndexError,
		CreatedAt:    k.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    k.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if withContent {
		resp.Content = k.Content
	}
	return resp
}

func (h *ItemHandler) AddText(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	collectionID := chi.URLParam(r, "id")

	var req AddTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	item, err := h.svc.AddText(r.Context(), caller, collectionID, service.AddTextInput{Title: req.Title, Text: req.Text})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, itemToResponse(item, false))
}

func (h *ItemHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	collectionID := chi.URLParam(r, "id")

	var req AddLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	item, err := h.svc.AddLink(r.Context(), caller, collectionID, req.URL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, itemToResponse(item, false))
}

// AddPDF accepts a multipart form with a "file" part and an optional "title".
func (h *ItemHandler) AddPDF(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	collectionID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, extract.MaxPDFBytes+1))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > extract.MaxPDFBytes {
		api.Error(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	item, err := h.svc.AddPDF(r.Context(), caller, collectionID, service.AddPDFInput{
		Filename: header.Filename,
		Title:    r.FormValue("title"),
		Data:     data,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, itemToResponse(item, false))
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	collectionID := chi.URLParam(r, "id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	page, err := h.svc.List(r.Context(), caller, collectionID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ListItemsResponse{
		Items:      make([]*ItemResponse, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for i, item := range page.Items {
		resp.Items[i] = itemToResponse(item, false)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, itemToResponse(item, true))
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.Reindex(r.Context(), caller, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, itemToResponse(item, false))
}

func (h *ItemHandler) Download(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

// IndexText indexes raw text for an existing item and reports the number
// of documents written.
func (h *ItemHandler) IndexText(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	collectionID := chi.URLParam(r, "id")

	var req IndexTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemID == "" {
		api.Error(w, http.StatusBadRequest, "item_id is required")
		return
	}
	itemType := domain.ItemType(req.ItemType)
	if !domain.IsValidItemType(itemType) {
		api.Error(w, http.StatusBadRequest, "invalid item type")
		return
	}

	count, err := h.svc.IndexText(r.Context(), caller, collectionID, service.IndexTextInput{
		ItemID:    req.ItemID,
		ItemType:  itemType,
		Title:     req.Title,
		SourceURL: req.SourceURL,
		Text:      req.Text,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IndexTextResponse{Count: count})
}
