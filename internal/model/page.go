package model

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int `form:"page" json:"page"`
	Size   int `form:"size" json:"size"`
}

// Bounds returns offset and limit, clamping out-of-range values.
func (p Page) Bounds() (offset, limit int) {
	limit = p.Size
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * limit, limit
}
