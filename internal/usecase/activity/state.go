package activity

import (
	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
)

// Phase is the lifecycle state of a Pager.
type Phase string

const (
	// PhaseIdle means no category has been selected.
	PhaseIdle Phase = "idle"
	// PhaseCounting means the page count or the cursor chain is being built.
	PhaseCounting Phase = "counting"
	// PhaseReady means the current page is displayed.
	PhaseReady Phase = "ready"
	// PhaseLoading means a page load is in flight.
	PhaseLoading Phase = "loading"
)

// State is a snapshot of a Pager for rendering.
type State struct {
	UserID      string
	Category    entity.Category
	PostType    entity.PostType
	Phase       Phase
	Page        int
	PageSize    int
	TotalPages  int
	Rows        []Row
	Loading     bool
	CursorReady bool
	Cursors     int
	// LastCursor is the encoded end cursor of the chain, or "".
	LastCursor string
}

// CanPrev reports whether a previous page exists.
func (s State) CanPrev() bool { return s.Page > 1 }

// CanNext reports whether a next page exists.
func (s State) CanNext() bool { return s.Page < s.TotalPages }

// Metadata returns the pagination metadata of the snapshot.
func (s State) Metadata() pagination.Metadata {
	return pagination.NewMetadata(s.Page, s.PageSize, s.TotalPages, s.CursorReady)
}
