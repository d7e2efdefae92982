package shared

import "math"

// DefaultPageSize is the number of rows per page on list screens
const DefaultPageSize = 10

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		Filters:  make(map[string]string),
	}
}

// Normalize clamps page and page size to usable values
func (f Filter) Normalize() Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.Filters == nil {
		f.Filters = make(map[string]string)
	}
	return f
}

// Offset returns the index of the first item of the page. It saturates at
// math.MaxInt instead of overflowing for very large pages.
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Paginate slices an in-memory result set according to the filter.
// A page past the end yields an empty page with the correct totals.
func Paginate[T any](all []T, filter Filter) Paginated[T] {
	filter = filter.Normalize()
	start := filter.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if end-start > filter.PageSize {
		end = start + filter.PageSize
	}
	page := make([]T, end-start)
	copy(page, all[start:end])
	return NewPaginated(page, int64(len(all)), filter.Page, filter.PageSize)
}
