package service

// Pagination selects a page of results. Page numbers start at 1, and
// pagination always applies after any role-based filtering.
type Pagination struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// normalize clamps the parameters to their minimums.
func (p Pagination) normalize() Pagination {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	return p
}

func (p Pagination) offset() int {
	return (p.PageNumber - 1) * p.PageSize
}
