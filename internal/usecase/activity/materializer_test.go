package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

func newTestMaterializer(store *countingStore) *Materializer {
	return NewMaterializer(store, testPolicy(), entity.PostTypeBlog, NewResolver(store, 10), discardLogger)
}

func TestMaterializer_Written(t *testing.T) {
	docs := append(writtenPosts("u1", 7), user("u1", "Mina"))
	m := newTestMaterializer(newCountingStore(docs...))

	rows, err := m.MaterializePage(context.Background(), entity.CategoryWritten, "u1", nil, 5)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"p01", "p02", "p03", "p04", "p05"}, rowIDs(rows))

	r := rows[0]
	assert.Equal(t, "title p01", r.Title)
	assert.Equal(t, "content of p01 with ...", r.Content)
	assert.Equal(t, "Mina", r.AuthorName)
	assert.Equal(t, "/blog/p01", r.DeepLink)
	assert.Equal(t, at(1).UnixMilli(), r.SortKey)
}

// A like whose post was deleted is skipped and the page is filled from the
// next record.
func TestMaterializer_LikesSkipDanglingPosts(t *testing.T) {
	docs := []entity.Document{
		blogPost("p1", "a", at(10)), blogPost("p2", "a", at(10)), blogPost("p4", "a", at(10)),
		blogPost("p5", "a", at(10)), blogPost("p6", "a", at(10)),
		interaction(entity.CollectionLikes, "u1", "l1", "p1", "blog", at(1)),
		interaction(entity.CollectionLikes, "u1", "l2", "p2", "blog", at(2)),
		interaction(entity.CollectionLikes, "u1", "l3", "p3", "blog", at(3)), // p3 deleted
		interaction(entity.CollectionLikes, "u1", "l4", "p4", "blog", at(4)),
		interaction(entity.CollectionLikes, "u1", "l5", "p5", "blog", at(5)),
		interaction(entity.CollectionLikes, "u1", "l6", "p6", "blog", at(6)),
	}
	m := newTestMaterializer(newCountingStore(docs...))

	rows, err := m.MaterializePage(context.Background(), entity.CategoryLikes, "u1", nil, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p4", "p5", "p6"}, rowIDs(rows))
}

func TestMaterializer_BookmarksDeduplicateWithinPage(t *testing.T) {
	docs := []entity.Document{
		blogPost("p1", "a", at(10)), blogPost("p2", "a", at(10)),
		interaction(entity.CollectionBookmarks, "u1", "b1", "p1", "blog", at(1)),
		interaction(entity.CollectionBookmarks, "u1", "b2", "p1", "blog", at(2)),
		interaction(entity.CollectionBookmarks, "u1", "b3", "", "blog", at(3)),
		interaction(entity.CollectionBookmarks, "u1", "b4", "p2", "blog", at(4)),
	}
	m := newTestMaterializer(newCountingStore(docs...))

	rows, err := m.MaterializePage(context.Background(), entity.CategoryBookmarks, "u1", nil, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(rows))
}

func TestMaterializer_Comments(t *testing.T) {
	untitledPost := blogPost("p2", "a", at(50))
	untitledPost.Data = rawJSON(map[string]any{"authorId": "a"})
	docs := []entity.Document{
		blogPost("p1", "a", at(50)), untitledPost,
		user("a", "Writer"), user("m1", "Jun"), user("m2", ""),
		comment("blogPosts", "p1", "c1", "u1", at(3), map[string]any{
			"mentions": []map[string]any{{"uid": "m1"}, {"uid": "m2"}, {"uid": "ghost"}},
		}),
		comment("blogPosts", "p1", "c2", "u1", at(1), map[string]any{"content": nil, "text": "from text"}),
		comment("blogPosts", "p2", "c3", "u1", at(2), nil),
		comment("blogPosts", "p1", "c4", "u1", at(4), map[string]any{"deleted": true}),
		comment("schedules", "s1", "c5", "u1", at(5), nil),
		comment("blogPosts", "gone", "c6", "u1", at(6), nil),
	}
	m := newTestMaterializer(newCountingStore(docs...))

	rows, err := m.MaterializePage(context.Background(), entity.CategoryComments, "u1", nil, 5)
	require.NoError(t, err)
	require.Equal(t, []string{"c2", "c3", "c1"}, rowIDs(rows), "ordered by comment time, deleted and foreign excluded")

	assert.Equal(t, "from text", rows[0].Title)
	assert.Equal(t, "title p1", rows[0].Content)
	assert.Equal(t, "/blog/p1?commentId=c2", rows[0].DeepLink)
	assert.Equal(t, "p1", rows[0].PostID)
	assert.Equal(t, "Writer", rows[0].AuthorName)

	assert.Equal(t, untitled, rows[1].Content)
	assert.Equal(t, "@Jun comment c1", rows[2].Title)
	assert.Equal(t, at(3).UnixMilli(), rows[2].SortKey)
}

// Two comments on the same post: rows follow comment creation time.
func TestMaterializer_CommentsOrderedByCommentTime(t *testing.T) {
	docs := []entity.Document{
		blogPost("p1", "a", at(100)),
		comment("blogPosts", "p1", "old", "u1", at(9), nil),
		comment("blogPosts", "p1", "new", "u1", at(2), nil),
	}
	m := newTestMaterializer(newCountingStore(docs...))

	rows, err := m.MaterializePage(context.Background(), entity.CategoryComments, "u1", nil, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, rowIDs(rows))
	assert.Greater(t, rows[0].SortKey, rows[1].SortKey)
}

func TestMaterializer_ResolverFailureFailsPage(t *testing.T) {
	store := newCountingStore(interaction(entity.CollectionLikes, "u1", "l1", "p1", "blog", at(1)))
	store.lookupErr = errors.New("backend down")
	m := newTestMaterializer(store)

	_, err := m.MaterializePage(context.Background(), entity.CategoryLikes, "u1", nil, 5)
	assert.ErrorContains(t, err, "backend down")
}

func TestMaterializer_AuthorLookupFailureKeepsRows(t *testing.T) {
	store := newCountingStore(writtenPosts("u1", 2)...)
	store.lookupErr = errors.New("backend down")
	m := newTestMaterializer(store)

	rows, err := m.MaterializePage(context.Background(), entity.CategoryWritten, "u1", nil, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].AuthorName)
}

func TestMaterializer_SharesResolverAcrossPages(t *testing.T) {
	docs := []entity.Document{
		blogPost("p1", "a", at(50)),
		user("a", "Writer"),
		comment("blogPosts", "p1", "c1", "u1", at(1), nil),
		comment("blogPosts", "p1", "c2", "u1", at(2), nil),
	}
	store := newCountingStore(docs...)
	m := newTestMaterializer(store)
	ctx := context.Background()

	first, err := m.MaterializePage(ctx, entity.CategoryComments, "u1", nil, 1)
	require.NoError(t, err)
	_, _, before := store.calls()

	require.Equal(t, []string{"c1"}, rowIDs(first))
	cur := repository.CursorOf(docs[2])
	second, err := m.MaterializePage(ctx, entity.CategoryComments, "u1", &cur, 1)
	require.NoError(t, err)
	_, _, after := store.calls()

	assert.Equal(t, []string{"c2"}, rowIDs(second))
	assert.Equal(t, first[0].Content, second[0].Content, "same hydrated post on both pages")
	assert.Equal(t, before, after, "post and author were cached by the first page")
}
