package pagination

// Response is a generic paginated response wrapper.
// T is the type of data items (e.g., RowDTO).
type Response[T any] struct {
	Data       []T      `json:"data"`       // Array of data items for the current page
	Pagination Metadata `json:"pagination"` // Pagination metadata (page, total_pages, window, etc.)
}

// NewResponse creates a new paginated response with data and metadata.
// A nil data slice is encoded as an empty array.
func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{
		Data:       data,
		Pagination: metadata,
	}
}
