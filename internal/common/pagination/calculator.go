package pagination

// CalculateTotalPages calculates the total number of pages based on total items and page size.
// Uses ceiling division to ensure all items are included.
//
// Special cases:
//   - If total is 0, returns 1 (always at least 1 page)
//   - Otherwise, returns ceil(total / pageSize)
//
// Examples:
//   - Total 0, PageSize 5 -> 1 page
//   - Total 5, PageSize 5 -> 1 page
//   - Total 12, PageSize 5 -> 3 pages
func CalculateTotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// PagesFromCursors returns the page count implied by a cursor chain of n
// end cursors. An empty chain still shows one (empty) page.
func PagesFromCursors(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ClampPage clamps page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// StartCursorIndex returns the index into the cursor chain holding the
// start cursor of page, or -1 for page 1 which starts at the beginning.
func StartCursorIndex(page int) int {
	return page - 2
}
