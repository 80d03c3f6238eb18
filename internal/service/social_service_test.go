package service

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")
	reader := testutil.CreateUser(t, env.db, "mia")
	post := testutil.CreatePost(t, env.db, author, nil, "hello")

	comment, err := env.comments.AddComment(ctx, AddCommentInput{AuthorID: reader.ID, Username: "leo", PostID: post.ID, Text: "nice"})
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.False(t, comment.Created.IsZero())

	_, err = env.comments.AddComment(ctx, AddCommentInput{AuthorID: reader.ID, Username: "leo", PostID: post.ID, Text: " "})
	assertFieldError(t, err, "text")

	other, err := env.comments.AddComment(ctx, AddCommentInput{AuthorID: reader.ID, Username: "mia", PostID: post.ID, Text: "other path"})
	require.NoError(t, err)
	assert.Equal(t, post.ID, other.PostID)

	_, err = env.comments.AddComment(ctx, AddCommentInput{AuthorID: reader.ID, Username: "leo", PostID: post.ID + 100, Text: "gone"})
	assertCode(t, err, models.CodeNotFound)

	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestFollowService(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	leo := testutil.CreateUser(t, env.db, "leo")
	mia := testutil.CreateUser(t, env.db, "mia")

	t.Run("self follow is a no-op", func(t *testing.T) {
		changed, err := env.follows.Follow(ctx, leo.ID, "leo")
		require.NoError(t, err)
		assert.False(t, changed)

		following, err := env.follows.IsFollowing(ctx, leo.ID, leo)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("follow is idempotent", func(t *testing.T) {
		changed, err := env.follows.Follow(ctx, leo.ID, "mia")
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = env.follows.Follow(ctx, leo.ID, "mia")
		require.NoError(t, err)
		assert.False(t, changed)

		var count int64
		env.db.Model(&models.Follow{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unfollow", func(t *testing.T) {
		removed, err := env.follows.Unfollow(ctx, leo.ID, "mia")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = env.follows.Unfollow(ctx, leo.ID, "mia")
		require.NoError(t, err)
		assert.False(t, removed)

		following, err := env.follows.IsFollowing(ctx, leo.ID, mia)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := env.follows.Follow(ctx, leo.ID, "ghost")
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestFeedService_ComposeFeed(t *testing.T) {
	env := newTestEnv(t, ListingOptions{PerPage: 2})
	ctx := context.Background()
	reader := testutil.CreateUser(t, env.db, "reader")
	writer := testutil.CreateUser(t, env.db, "writer")
	other := testutil.CreateUser(t, env.db, "other")

	page, err := env.feed.ComposeFeed(ctx, reader.ID, "1")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.NumPages)

	testutil.CreatePost(t, env.db, writer, nil, "w1")
	testutil.CreatePost(t, env.db, writer, nil, "w2")
	testutil.CreatePost(t, env.db, writer, nil, "w3")
	testutil.CreatePost(t, env.db, other, nil, "o1")
	testutil.CreatePost(t, env.db, reader, nil, "mine")
	testutil.CreateFollow(t, env.db, reader, writer)

	page, err = env.feed.ComposeFeed(ctx, reader.ID, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	assert.Equal(t, 2, page.NumPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "w1", page.Items[0].Text)
}

func TestGroupService(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, CreateGroupInput{Slug: "Bad Slug", Title: "Bad"})
	assertFieldError(t, err, "slug")

	_, err = env.groups.CreateGroup(ctx, CreateGroupInput{Slug: "cats", Title: "  "})
	assertFieldError(t, err, "title")

	group, err := env.groups.CreateGroup(ctx, CreateGroupInput{Slug: "cats", Title: "Cats", Description: "All cats"})
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	_, err = env.groups.CreateGroup(ctx, CreateGroupInput{Slug: "cats", Title: "Cats again"})
	assertCode(t, err, models.CodeConflict)

	groups, err := env.groups.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	require.NoError(t, env.groups.DeleteGroup(ctx, "cats"))
	assertCode(t, env.groups.DeleteGroup(ctx, "cats"), models.CodeNotFound)
}
