package client

// User is the account returned by /v1/me and /v1/register.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsPro     bool   `json:"is_pro"`
	CreatedAt string `json:"created_at"`
}

type registerResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Collection struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsShared    bool   `json:"is_shared"`
	IsOwner     bool   `json:"is_owner"`
	CreatedAt   string `json:"created_at"`
}

type Item struct {
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

type ItemPage struct {
	Items      []*Item `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

type Reference struct {
	Idx      int     `json:"idx"`
	Title    string  `json:"title"`
	URL      *string `json:"url"`
	ItemID   string  `json:"item_id"`
	ItemType string  `json:"item_type"`
}

type Answer struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
}

type Quota struct {
	Used int  `json:"used"`
	Max  *int `json:"max"`
}

type Limits struct {
	IsPro       bool  `json:"is_pro"`
	Collections Quota `json:"collections"`
	Text        Quota `json:"text"`
	Link        Quota `json:"link"`
	PDF         Quota `json:"pdf"`
}
