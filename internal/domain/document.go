package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// documentNamespace seeds deterministic document IDs.
var documentNamespace = uuid.MustParse("6f1d3c52-9a7e-4b8f-a2c4-5e0d7b913a66")

// DocumentSource is the provenance shared by every chunk of one item.
type DocumentSource struct {
	CollectionID string
	ItemID       string
	ItemType     ItemType
	Title        string
	SourceURL    *string
}

// DocumentMetadata is stored alongside each vector. CollectionID is the
// tenant isolation key applied as a hard filter on every search.
type DocumentMetadata struct {
	CollectionID string   `json:"collection_id"`
	ItemID       string   `json:"item_id"`
	ItemType     ItemType `json:"item_type"`
	Title        string   `json:"title"`
	SourceURL    *string  `json:"source_url"`
	ChunkIndex   int      `json:"chunk_index"`
}

// Document is one chunk plus its provenance, the unit stored in the vector index.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// EmbeddedDocument is a Document paired with its embedding, ready for upsert.
type EmbeddedDocument struct {
	Document
	Vector []float32
}

// SearchResult is one ranked hit. Higher Score means more similar.
type SearchResult struct {
	Content  string
	Metadata DocumentMetadata
	Score    float32
}

// DocumentID returns the stable identity of chunk chunkIndex of itemID, so
// indexing the same item twice overwrites rather than duplicates.
func DocumentID(itemID string, chunkIndex int) string {
	return uuid.NewSHA1(documentNamespace, []byte(itemID+":"+strconv.Itoa(chunkIndex))).String()
}

// NewDocument builds the document for one chunk of src.
func NewDocument(src DocumentSource, chunkIndex int, content string) Document {
	return Document{
		ID:      DocumentID(src.ItemID, chunkIndex),
		Content: content,
		Metadata: DocumentMetadata{
			CollectionID: src.CollectionID,
			ItemID:       src.ItemID,
			ItemType:     src.ItemType,
			Title:        src.Title,
			SourceURL:    src.SourceURL,
			ChunkIndex:   chunkIndex,
		},
	}
}
