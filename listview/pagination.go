package listview

import "fmt"

// Pagination is the page metadata pushed by a server side collaborator.
// HasNextPage is false iff Page >= TotalPages.
type Pagination struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

func NewPagination(page, pageSize, totalItems int) *Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	return &Pagination{
		Page:            page,
		PageSize:        pageSize,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Range returns the 1-based positions of the first and last item of the page.
func (p *Pagination) Range() (from, to int) {
	if p == nil || p.TotalItems == 0 || p.Page > p.TotalPages {
		return 0, 0
	}
	from = (p.Page-1)*p.PageSize + 1
	to = min(p.Page*p.PageSize, p.TotalItems)
	return
}

func (p *Pagination) clone() *Pagination {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func summary(from, to, total int) string {
	if total == 0 || to == 0 {
		return ""
	}
	return fmt.Sprintf("Showing %d-%d of %d", from, to, total)
}
