package audit

import "time"

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// TimelineFilters narrows the activity timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  *int64
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one audit entry joined with its actor.
type TimelineRow struct {
	ID        int64          `json:"id"`
	At        time.Time      `json:"at"`
	ActorID   *int64         `json:"actorId,omitempty"`
	ActorName string         `json:"actorName"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entityId"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// PagingInfo is forward-only paging metadata.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result wraps a timeline page.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}

// window resolves page and size, returning the offset and the row limit
// (one extra row to detect a next page).
func (f TimelineFilters) window() (page, size, offset, limit int) {
	size = f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page = f.Page
	if page <= 0 {
		page = 1
	}
	return page, size, (page - 1) * size, size + 1
}
