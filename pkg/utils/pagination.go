package utils

import "math"

// PageSize is the fixed number of rows on every list page.
const PageSize = 5

// MaxPage is the highest page whose offset still fits in an int.
const MaxPage = math.MaxInt / PageSize

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ClampPage maps a requested page into [1, MaxPage].
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

func CalculateOffset(page, perPage int) int {
	if page < 1 || perPage <= 0 {
		return 0
	}
	if limit := math.MaxInt / perPage; page > limit {
		page = limit
	}
	return (page - 1) * perPage
}
