// Package activity provides the HTTP endpoints of activity feed sessions:
// opening and closing a session, selecting a category and paging through
// the selected feed.
package activity

import (
	"time"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/service/session"
	activityUC "activity-feed/internal/usecase/activity"
)

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	PostType string `json:"post_type"`
}

// SessionDTO describes an open session.
type SessionDTO struct {
	ID        string    `json:"id"`
	PostType  string    `json:"post_type"`
	CreatedAt time.Time `json:"created_at"`
}

// SetCategoryRequest is the body of PUT /sessions/{id}/activity.
type SetCategoryRequest struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
}

// RowDTO is one row of a page.
type RowDTO struct {
	PostID     string    `json:"post_id"`
	PostType   string    `json:"post_type"`
	CommentID  string    `json:"comment_id,omitempty"`
	DeepLink   string    `json:"deep_link"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// StateDTO is the pager state of a session with the rows of its current
// page.
type StateDTO struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id,omitempty"`
	Category   string `json:"category,omitempty"`
	PostType   string `json:"post_type"`
	Phase      string `json:"phase"`
	Loading    bool   `json:"loading"`
	Cursors    int    `json:"cursors"`
	LastCursor string `json:"last_cursor,omitempty"`
	pagination.Response[RowDTO]
}

func toSessionDTO(s session.Session) SessionDTO {
	return SessionDTO{
		ID:        s.ID.String(),
		PostType:  string(s.PostType),
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func toRowDTO(r activityUC.Row) RowDTO {
	return RowDTO{
		PostID:     r.PostID,
		PostType:   string(r.PostType),
		CommentID:  r.CommentID,
		DeepLink:   r.DeepLink,
		Title:      r.Title,
		Content:    r.Content,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		ImageURL:   r.ImageURL,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func toStateDTO(id string, s activityUC.State) StateDTO {
	rows := make([]RowDTO, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, toRowDTO(r))
	}
	return StateDTO{
		SessionID:  id,
		UserID:     s.UserID,
		Category:   string(s.Category),
		PostType:   string(s.PostType),
		Phase:      string(s.Phase),
		Loading:    s.Loading,
		Cursors:    s.Cursors,
		LastCursor: s.LastCursor,
		Response:   pagination.NewResponse(rows, s.Metadata()),
	}
}
