package shared

// Listing defaults. A zero PageSize means "no limit", which report queries use.
const (
	DefaultPageSize = 20
	DefaultOrderBy  = "created_at"
)

// Filter is the paging, ordering and search part of a listing query.
// OrderBy is validated against a whitelist by each repository.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter lists the newest rows first, one page at a time
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: DefaultOrderBy, OrderDir: "desc"}
}

// Limited reports whether the query should be cut to one page
func (f Filter) Limited() bool {
	return f.PageSize > 0
}

// Offset is the number of rows before the current page; pages start at 1
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a listing together with the unpaged total
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}
