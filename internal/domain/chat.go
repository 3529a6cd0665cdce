package domain

// Reference maps a 1-based citation marker [Idx] to its source. URL is nil
// when the source has no URL.
type Reference struct {
	Idx      int      `json:"idx"`
	Title    string   `json:"title"`
	URL      *string  `json:"url"`
	ItemID   string   `json:"item_id"`
	ItemType ItemType `json:"item_type"`
}

// AssembledContext is the numbered context block and its parallel references.
type AssembledContext struct {
	Block      string
	References []Reference
}

// Role of a completion message
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of a completion request.
type Message struct {
	Role    Role
	Content string
}

// ChatAnswer is the result of answering one question against a collection.
type ChatAnswer struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
}

// IndexRequest asks for one item's text to be chunked, embedded, and stored.
type IndexRequest struct {
	CollectionID string
	ItemID       string
	ItemType     ItemType
	Title        string
	SourceURL    *string
	Text         string
}

// Source returns the document provenance of the request.
func (r IndexRequest) Source() DocumentSource {
	return DocumentSource{
		CollectionID: r.CollectionID,
		ItemID:       r.ItemID,
		ItemType:     r.ItemType,
		Title:        r.Title,
		SourceURL:    r.SourceURL,
	}
}
