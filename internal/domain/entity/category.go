package entity

import "fmt"

// Category selects which derived view of a user's activity is paginated.
type Category string

const (
	CategoryWritten   Category = "written"
	CategoryLikes     Category = "likes"
	CategoryBookmarks Category = "bookmarks"
	CategoryComments  Category = "comments"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryWritten, CategoryLikes, CategoryBookmarks, CategoryComments}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Message: fmt.Sprintf("invalid category %q", s)}
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryWritten, CategoryLikes, CategoryBookmarks, CategoryComments:
		return true
	}
	return false
}

// InteractionCollection returns the users/{uid} subcollection backing the
// likes and bookmarks categories, or "" for the others.
func (c Category) InteractionCollection() string {
	switch c {
	case CategoryLikes:
		return CollectionLikes
	case CategoryBookmarks:
		return CollectionBookmarks
	}
	return ""
}

// RequiresEnumeration reports whether the page count must be derived by
// building every cursor up front instead of a server side count.
// Comments are counted per parent post type, which the store cannot filter.
func (c Category) RequiresEnumeration() bool {
	return c == CategoryComments
}

// PostType is the kind of post a feed is scoped to.
type PostType string

const (
	PostTypeBlog      PostType = "blog"
	PostTypeCommunity PostType = "community"
	PostTypeSchedule  PostType = "schedule"
	PostTypeEvent     PostType = "event"
)

// ParsePostType validates a raw post type. Empty input selects blog.
func ParsePostType(s string) (PostType, error) {
	if s == "" {
		return PostTypeBlog, nil
	}
	t := PostType(s)
	if t.Collection() == "" {
		return "", &ValidationError{Field: "post_type", Message: fmt.Sprintf("invalid post type %q", s)}
	}
	return t, nil
}

// Collection returns the root collection holding posts of this type.
func (t PostType) Collection() string {
	switch t {
	case PostTypeBlog:
		return "blogPosts"
	case PostTypeCommunity:
		return "communityPosts"
	case PostTypeSchedule:
		return "schedules"
	case PostTypeEvent:
		return "events"
	}
	return ""
}
