package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatest_BeginSupersedes(t *testing.T) {
	var l latest
	ctx1, tok1 := l.begin(context.Background())
	assert.True(t, l.current(tok1))

	ctx2, tok2 := l.begin(context.Background())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.False(t, l.current(tok1))
	assert.True(t, l.current(tok2))

	l.stop()
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
	assert.False(t, l.current(tok2))
}

func TestBind(t *testing.T) {
	scope, cancelScope := context.WithCancel(context.Background())
	ctx, release := bind(context.Background(), scope)
	defer release()

	assert.NoError(t, ctx.Err())
	cancelScope()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	parent, cancelParent := context.WithCancel(context.Background())
	ctx2, release2 := bind(parent, context.Background())
	defer release2()
	cancelParent()
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestRow_Helpers(t *testing.T) {
	assert.Equal(t, "p1", Row{PostID: "p1"}.Key())
	assert.Equal(t, "p1#c1", Row{PostID: "p1", CommentID: "c1"}.Key())
	assert.Zero(t, sortKey(Row{}.CreatedAt))
}
