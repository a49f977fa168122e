package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is one slice of the account listing, newest first.
type Page struct {
	Items    []AccountView
	Total    int
	Page     int
	PageSize int
}

// TotalPages rounds up; an empty listing has zero pages.
func (p Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
