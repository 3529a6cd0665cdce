package domain

// Quota is the usage of one limited resource. Max is nil when unlimited.
type Quota struct {
	Used int  `json:"used"`
	Max  *int `json:"max"`
}

// Reached reports whether one more unit would exceed the quota.
func (q Quota) Reached() bool {
	return q.Max != nil && q.Used >= *q.Max
}

// Usage counts what a user currently owns.
type Usage struct {
	Collections int
	Items       map[ItemType]int
}

// Limits is the per-user quota report.
type Limits struct {
	IsPro       bool  `json:"is_pro"`
	Collections Quota `json:"collections"`
	Text        Quota `json:"text"`
	Link        Quota `json:"link"`
	PDF         Quota `json:"pdf"`
}

// Free-tier maxima. Pro users are unlimited.
const (
	FreeMaxCollections = 2
	FreeMaxTextItems   = 2
	FreeMaxLinkItems   = 2
	FreeMaxPDFItems    = 1
)

// NewLimits builds the quota report for a user with the given usage.
func NewLimits(isPro bool, usage Usage) Limits {
	quota := func(used, limit int) Quota {
		if isPro {
			return Quota{Used: used}
		}
		m := limit
		return Quota{Used: used, Max: &m}
	}
	return Limits{
		IsPro:       isPro,
		Collections: quota(usage.Collections, FreeMaxCollections),
		Text:        quota(usage.Items[ItemTypeText], FreeMaxTextItems),
		Link:        quota(usage.Items[ItemTypeLink], FreeMaxLinkItems),
		PDF:         quota(usage.Items[ItemTypePDF], FreeMaxPDFItems),
	}
}

// ItemQuota returns the quota governing items of type t.
func (l Limits) ItemQuota(t ItemType) Quota {
	switch t {
	case ItemTypeText:
		return l.Text
	case ItemTypeLink:
		return l.Link
	default:
		return l.PDF
	}
}
