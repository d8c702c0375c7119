package activity

import (
	"fmt"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// source describes how one category is scanned: the base query and the
// acceptance predicate that yields the logical item key of a raw document.
type source struct {
	category entity.Category
	query    repository.Query
	key      func(entity.Document) (string, bool)
}

// sourceFor returns the scan definition of category for userID, scoped to
// posts of type t.
func sourceFor(category entity.Category, userID string, t entity.PostType) (source, error) {
	switch category {
	case entity.CategoryWritten:
		return source{
			category: category,
			query:    repository.Query{Collection: t.Collection()}.Where("authorId", userID),
			key:      func(d entity.Document) (string, bool) { return d.ID, true },
		}, nil
	case entity.CategoryLikes, entity.CategoryBookmarks:
		return source{
			category: category,
			query: repository.Query{
				Collection: category.InteractionCollection(),
				Parent:     &entity.ParentRef{Collection: entity.CollectionUsers, ID: userID},
			}.Where("type", string(t)),
			key: func(d entity.Document) (string, bool) {
				id := d.Field("postId")
				return id, id != ""
			},
		}, nil
	case entity.CategoryComments:
		collection := t.Collection()
		return source{
			category: category,
			query:    repository.Query{Collection: entity.CollectionComments, Group: true}.Where("authorId", userID),
			key: func(d entity.Document) (string, bool) {
				if d.ParentCollection() != collection {
					return "", false
				}
				c, err := entity.DecodeComment(d)
				if err != nil || c.Deleted {
					return "", false
				}
				return d.ID, true
			},
		}, nil
	}
	return source{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
}
