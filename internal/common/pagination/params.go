package pagination

import (
	"fmt"
	"strconv"
)

// ParsePage parses a 1-based page number from a path or query value.
// Empty input selects page 1.
func ParsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page: must be a positive integer")
	}
	return page, nil
}
