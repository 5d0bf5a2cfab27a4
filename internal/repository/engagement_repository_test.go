package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/testutil"
)

func TestEngagementRepository_ToggleLikeFlips(t *testing.T) {
	db := testutil.NewDB(t)
	posts := NewPostRepository(db)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	require.NoError(t, posts.Create(ctx, newPost("p1", "author", base, "hi")))

	res, err := repo.ToggleLike(ctx, "p1", "viewer", base)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.LikesCount)
	assert.Equal(t, "author", res.AuthorID)

	res, err = repo.ToggleLike(ctx, "p1", "viewer", base)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 0, res.LikesCount)

	liked, err := repo.IsLiked(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestEngagementRepository_ToggleLikeMissingPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepository(db)

	_, err := repo.ToggleLike(context.Background(), "nope", "viewer", base)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestEngagementRepository_ConcurrentTogglesKeepParity(t *testing.T) {
	db := testutil.NewDB(t)
	posts := NewPostRepository(db)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	require.NoError(t, posts.Create(ctx, newPost("p1", "author", base, "hi")))

	const calls = 7
	var wg sync.WaitGroup
	wg.Add(calls)
	for i := 0; i < calls; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.ToggleLike(ctx, "p1", "viewer", time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	liked, err := repo.IsLiked(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.True(t, liked, "odd number of toggles must end liked")
}

func TestEngagementRepository_AddCommentAppends(t *testing.T) {
	db := testutil.NewDB(t)
	posts := NewPostRepository(db)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	author := testutil.SeedUser(t, db, "neha")
	require.NoError(t, posts.Create(ctx, newPost("p1", author.ID, base, "hi")))

	c1 := &model.Comment{ID: "c1", PostID: "p1", AuthorID: author.ID, Text: "one", CreatedAt: base.Add(time.Second)}
	c2 := &model.Comment{ID: "c2", PostID: "p1", AuthorID: author.ID, Text: "two", CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.AddComment(ctx, c1, nil))
	require.NoError(t, repo.AddComment(ctx, c2, nil))
	require.NotNil(t, c2.Author)
	assert.Equal(t, "neha", c2.Author.Username)

	comments, err := repo.ListComments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[1].Text)

	err = repo.AddComment(ctx, &model.Comment{ID: "c3", PostID: "missing", AuthorID: author.ID, Text: "x"}, nil)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
