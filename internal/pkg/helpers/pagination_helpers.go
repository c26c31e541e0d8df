package helpers

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based
)

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	if size <= 0 || size > MaxPageSize {
		limit = DefaultPageSize
	} else {
		limit = size
	}

	if page < 1 {
		page = DefaultPage
	}
	// keep (page-1)*limit within int
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}

	offset = uint64((page - 1) * limit)
	return offset, limit
}

// TotalPages returns ceil(totalItems/size); an empty result has zero pages.
func TotalPages(totalItems int64, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if totalItems <= 0 {
		return 0
	}
	return int((totalItems + int64(size) - 1) / int64(size))
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	offset, limit := CalculateOffsetLimit(page, size)

	start = int(offset)
	end = start + limit

	if start < 0 || start >= totalItems {
		start = totalItems
		end = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
