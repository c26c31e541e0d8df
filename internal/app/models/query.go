package models

import (
	"fmt"
	"strings"

	"github.com/yigit/ssis/internal/pkg/apperrors"
	"github.com/yigit/ssis/internal/pkg/helpers"
)

// Sort directions accepted by ListQuery.SortOrder
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ListQuery is a search/sort/paginate request as submitted by a client.
// Field names may be display labels or column names.
type ListQuery struct {
	Page        int    `form:"page" json:"page"`
	Size        int    `form:"size" json:"size"`
	SearchField string `form:"search_field" json:"search_field"`
	SearchValue string `form:"search_value" json:"search_value"`
	SortField   string `form:"sort_field" json:"sort_field"`
	SortOrder   string `form:"sort_order" json:"sort_order"`
}

// ResolvedQuery is a ListQuery checked against a Schema.
type ResolvedQuery struct {
	Page   int
	Limit  int
	Offset uint64

	// SearchFields is empty when no filter applies.
	SearchFields []Field
	SearchValue  string

	Sort Field
	Desc bool
	Key  Field
}

// Resolve validates q against the schema and fills in defaults.
// Unknown sort fields and directions fall back to the entity default;
// an unknown search field is rejected.
func (s *Schema) Resolve(q ListQuery) (ResolvedQuery, error) {
	offset, limit := helpers.CalculateOffsetLimit(q.Page, q.Size)
	page := q.Page
	if page < 1 {
		page = helpers.DefaultPage
	}

	rq := ResolvedQuery{
		Page:   page,
		Limit:  limit,
		Offset: offset,
		Key:    s.Fields[0],
		Desc:   s.DefaultDesc,
	}
	rq.Sort, _ = s.Lookup(s.DefaultSort)

	if f, ok := s.Lookup(q.SortField); ok && q.SortField != "" {
		rq.Sort = f
	}
	switch strings.ToUpper(strings.TrimSpace(q.SortOrder)) {
	case SortAsc:
		rq.Desc = false
	case SortDesc:
		rq.Desc = true
	}

	value := strings.TrimSpace(q.SearchValue)
	if value == "" {
		return rq, nil
	}
	rq.SearchValue = value
	if strings.TrimSpace(q.SearchField) == "" {
		rq.SearchFields = append([]Field(nil), s.Fields...)
		return rq, nil
	}
	f, ok := s.Lookup(q.SearchField)
	if !ok {
		return ResolvedQuery{}, apperrors.NewBadRequestError(fmt.Sprintf("unknown search field %q for %s", q.SearchField, s.Entity))
	}
	rq.SearchFields = []Field{f}
	return rq, nil
}

// Pagination represents pagination metadata
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	PageSize    int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
}

// Page is one window of a filtered, sorted result set.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPage wraps items with the pagination metadata for rq and the filtered total.
func NewPage[T any](items []T, total int64, rq ResolvedQuery) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Pagination: Pagination{
			CurrentPage: rq.Page,
			TotalPages:  helpers.TotalPages(total, rq.Limit),
			PageSize:    rq.Limit,
			TotalItems:  total,
		},
	}
}
