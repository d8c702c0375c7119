// Package entity defines the core domain entities of the activity feed.
// Documents are the raw records of the hosted document store; Post, User,
// Interaction and Comment are typed views decoded from them.
package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collection names used by the travel-content application.
const (
	CollectionUsers     = "users"
	CollectionLikes     = "likes"
	CollectionBookmarks = "bookmarks"
	CollectionComments  = "comments"
)

// ParentRef points at the document that owns a subcollection.
// users/{uid}/likes/{id} has ParentRef{Collection: "users", ID: uid}.
type ParentRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Document is a raw record returned by the document store.
// Data holds the document fields as JSON; CreatedAt is lifted out of it
// because every range scan orders on it.
type Document struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Parent     *ParentRef      `json:"parent,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	Data       json.RawMessage `json:"data"`
}

// ParentID returns the id of the owning document, or "" for root documents.
func (d Document) ParentID() string {
	if d.Parent == nil {
		return ""
	}
	return d.Parent.ID
}

// ParentCollection returns the collection of the owning document, or "".
func (d Document) ParentCollection() string {
	if d.Parent == nil {
		return ""
	}
	return d.Parent.Collection
}

// Path returns the slash separated document path, e.g. blogPosts/p1/comments/c1.
func (d Document) Path() string {
	if d.Parent == nil {
		return d.Collection + "/" + d.ID
	}
	return d.Parent.Collection + "/" + d.Parent.ID + "/" + d.Collection + "/" + d.ID
}

// Decode unmarshals the document data into v.
func (d Document) Decode(v any) error {
	if len(d.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.Path(), err)
	}
	return nil
}

// Field returns the string value of a top level field, or "" when the field
// is absent or not a string. Store filters compare against this value.
func (d Document) Field(name string) string {
	if len(d.Data) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(d.Data, &fields); err != nil {
		return ""
	}
	s, _ := fields[name].(string)
	return s
}
