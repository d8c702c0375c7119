package pagination

import "fmt"

// maxPageSize bounds PageSize so a single raw batch stays a sane size.
const maxPageSize = 100

// Validate checks the configuration for values the engine cannot work with.
func (c Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", maxPageSize)
	}
	if c.NormalMultiplier < 1 {
		return fmt.Errorf("raw multiplier must be a positive integer")
	}
	if c.BoostedMultiplier < c.NormalMultiplier {
		return fmt.Errorf("boosted multiplier must be at least the raw multiplier")
	}
	if c.IDBatchLimit < 1 {
		return fmt.Errorf("id batch limit must be a positive integer")
	}
	if c.PrefetchDepth < 0 {
		return fmt.Errorf("prefetch depth must not be negative")
	}
	return nil
}
