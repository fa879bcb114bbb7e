package request

import "user-admin/pkg/utils"

// PaginatedRequest carries the 1-indexed page; the page size is fixed.
type PaginatedRequest struct {
	Page int `json:"page"`
}

// CurrentPage treats anything below 1 as the first page and caps pages
// whose offset would overflow.
func (p PaginatedRequest) CurrentPage() int {
	return utils.ClampPage(p.Page)
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.CurrentPage(), utils.PageSize)
}

func (p PaginatedRequest) Limit() int {
	return utils.PageSize
}
