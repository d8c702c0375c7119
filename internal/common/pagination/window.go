package pagination

// windowSpan is the largest page count shown without a gap.
const windowSpan = 6

// Window is the set of page numbers offered to the user. Left and Right are
// separated by an ellipsis when Gap is true.
type Window struct {
	Left  []int `json:"left"`
	Gap   bool  `json:"gap"`
	Right []int `json:"right"`
}

// PageWindow lays out page buttons for the current page:
//
//	total <= 6           1 2 3 4 5 6
//	page <= 5            1 2 3 4 5 … N
//	page >= N-4          1 … N-4 N-3 N-2 N-1 N
//	otherwise            1 … p-1 p p+1 N
func PageWindow(page, totalPages int) Window {
	if totalPages < 1 {
		totalPages = 1
	}
	if totalPages <= windowSpan {
		return Window{Left: pageRange(1, totalPages), Right: []int{}}
	}
	switch {
	case page <= 5:
		return Window{Left: pageRange(1, 5), Gap: true, Right: []int{totalPages}}
	case page >= totalPages-4:
		return Window{Left: []int{1}, Gap: true, Right: pageRange(totalPages-4, totalPages)}
	default:
		return Window{Left: []int{1}, Gap: true, Right: []int{page - 1, page, page + 1, totalPages}}
	}
}

func pageRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}
