package activity

import (
	"time"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/utils/text"
)

// previewRunes is the length of the content preview on a row.
const previewRunes = 20

// untitled replaces a missing parent post title on comment rows.
const untitled = "(untitled)"

// Row is one display-ready item of a page. Rows are immutable once built.
type Row struct {
	PostID     string
	PostType   entity.PostType
	CommentID  string
	DeepLink   string
	Title      string
	Content    string
	AuthorID   string
	AuthorName string
	ImageURL   string
	CreatedAt  time.Time
	SortKey    int64
}

// Key returns the identity of the row within a page.
func (r Row) Key() string {
	if r.CommentID != "" {
		return r.PostID + "#" + r.CommentID
	}
	return r.PostID
}

func postRow(p entity.Post, t entity.PostType) Row {
	return Row{
		PostID:    p.ID,
		PostType:  t,
		DeepLink:  "/" + string(t) + "/" + p.ID,
		Title:     p.Title,
		Content:   text.Truncate(p.Content, previewRunes),
		AuthorID:  p.AuthorID,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		SortKey:   sortKey(p.CreatedAt),
	}
}

func commentRow(c entity.Comment, p entity.Post, t entity.PostType, names map[string]entity.User) Row {
	title := p.Title
	if title == "" {
		title = untitled
	}
	return Row{
		PostID:    p.ID,
		PostType:  t,
		CommentID: c.ID,
		DeepLink:  "/" + string(t) + "/" + p.ID + "?commentId=" + c.ID,
		Title:     mentionPrefix(c.Mentions, names) + c.Body(),
		Content:   title,
		AuthorID:  p.AuthorID,
		ImageURL:  p.ImageURL,
		CreatedAt: c.CreatedAt,
		SortKey:   sortKey(c.CreatedAt),
	}
}

// mentionPrefix renders "@name @name " for mentions whose user resolved to
// a non-empty display name, or "" when none did.
func mentionPrefix(mentions []entity.Mention, users map[string]entity.User) string {
	var prefix string
	for _, m := range mentions {
		if m.UID == "" {
			continue
		}
		u, ok := users[m.UID]
		if !ok || u.DisplayName == "" {
			continue
		}
		prefix += "@" + u.DisplayName + " "
	}
	return prefix
}

func sortKey(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
