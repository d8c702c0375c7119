package pagination

// Metadata contains pagination metadata included in API responses.
type Metadata struct {
	Page        int    `json:"page"`         // Current page number (1-based)
	PageSize    int    `json:"page_size"`    // Items per page
	TotalPages  int    `json:"total_pages"`  // Pages known for the active category
	CanPrev     bool   `json:"can_prev"`     // Page > 1
	CanNext     bool   `json:"can_next"`     // Page < TotalPages
	CursorReady bool   `json:"cursor_ready"` // Cursor chain covers the current page
	Window      Window `json:"window"`       // Page buttons to render
}

// NewMetadata builds metadata for page out of totalPages.
func NewMetadata(page, pageSize, totalPages int, cursorReady bool) Metadata {
	return Metadata{
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		CanPrev:     page > 1,
		CanNext:     page < totalPages,
		CursorReady: cursorReady,
		Window:      PageWindow(page, totalPages),
	}
}
