package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"quill/internal/media"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanEditPost(t *testing.T) {
	t.Parallel()
	post := &models.Post{ID: 1, AuthorID: 7}

	assert.True(t, CanEditPost(7, post))
	assert.False(t, CanEditPost(8, post))
	assert.False(t, CanEditPost(0, post))
	assert.False(t, CanEditPost(7, nil))
}

func TestPostService_CreatePost(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")
	group := testutil.CreateGroup(t, env.db, "cats", "Cats")

	t.Run("blank text", func(t *testing.T) {
		_, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "  \n"})
		assertFieldError(t, err, "text")
	})

	t.Run("unknown group", func(t *testing.T) {
		missing := group.ID + 100
		_, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "hi", GroupID: &missing})
		assertFieldError(t, err, "group")
	})

	t.Run("valid with group", func(t *testing.T) {
		post, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "hello cats", GroupID: &group.ID})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.False(t, post.PubDate.IsZero())
	})

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPostService_CreatePostWithImage(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	author := testutil.CreateUser(t, env.db, "leo")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	post, err := env.posts.CreatePost(context.Background(), CreatePostInput{
		AuthorID: author.ID,
		Text:     "with a picture",
		Image:    &media.Upload{Filename: "p.png", Content: buf.Bytes()},
	})
	require.NoError(t, err)
	require.NotEmpty(t, post.Image)

	_, err = os.Stat(filepath.Join(env.mediaDir, filepath.FromSlash(post.Image)))
	assert.NoError(t, err)

	_, err = env.posts.CreatePost(context.Background(), CreatePostInput{
		AuthorID: author.ID,
		Text:     "with a fake picture",
		Image:    &media.Upload{Filename: "p.png", Content: []byte("not an image")},
	})
	assertFieldError(t, err, "image")
}

func TestPostService_ListPostsStaleUntilFlush(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")

	_, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "first"})
	require.NoError(t, err)

	page, err := env.posts.ListPosts(ctx, "1")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "second"})
	require.NoError(t, err)

	page, err = env.posts.ListPosts(ctx, "1")
	require.NoError(t, err)
	require.Len(t, page.Items, 1, "cached page is served until flushed")
	assert.Equal(t, "first", page.Items[0].Text)

	require.NoError(t, env.posts.FlushListingCache(ctx))

	page, err = env.posts.ListPosts(ctx, "1")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "second", page.Items[0].Text)
	assert.Equal(t, "leo", page.Items[0].Author.Username)
}

func TestPostService_InvalidateOnWrite(t *testing.T) {
	env := newTestEnv(t, ListingOptions{InvalidateOnWrite: true})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")

	_, err := env.posts.ListPosts(ctx, "1")
	require.NoError(t, err)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "fresh"})
	require.NoError(t, err)

	page, err := env.posts.ListPosts(ctx, "1")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestPostService_GroupPosts(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")
	cats := testutil.CreateGroup(t, env.db, "cats", "Cats")
	testutil.CreatePost(t, env.db, author, cats, "meow")
	testutil.CreatePost(t, env.db, author, nil, "elsewhere")

	group, page, err := env.posts.GroupPosts(ctx, "cats", "")
	require.NoError(t, err)
	assert.Equal(t, "Cats", group.Title)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "meow", page.Items[0].Text)

	_, _, err = env.posts.GroupPosts(ctx, "dogs", "")
	assertCode(t, err, models.CodeNotFound)

	choices, err := env.posts.GroupChoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []GroupChoice{{ID: cats.ID, Slug: "cats", Title: "Cats"}}, choices)
}

func TestPostService_EditPost(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")
	stranger := testutil.CreateUser(t, env.db, "mia")
	post := testutil.CreatePost(t, env.db, author, nil, "original")

	original, err := env.posts.GetPostForEdit(ctx, author.ID, "leo", post.ID)
	require.NoError(t, err)

	t.Run("non author is forbidden and nothing changes", func(t *testing.T) {
		_, err := env.posts.EditPost(ctx, EditPostInput{ActorID: stranger.ID, Username: "leo", PostID: post.ID, Text: "hijacked"})
		assertCode(t, err, models.CodeForbidden)

		detail, err := env.posts.GetPostDetail(ctx, "leo", post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", detail.Post.Text)
	})

	t.Run("wrong owner in path is not found", func(t *testing.T) {
		_, err := env.posts.EditPost(ctx, EditPostInput{ActorID: author.ID, Username: "mia", PostID: post.ID, Text: "x"})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := env.posts.EditPost(ctx, EditPostInput{ActorID: author.ID, Username: "leo", PostID: post.ID, Text: ""})
		assertFieldError(t, err, "text")
	})

	t.Run("author edits", func(t *testing.T) {
		group := testutil.CreateGroup(t, env.db, "cats", "Cats")
		edited, err := env.posts.EditPost(ctx, EditPostInput{ActorID: author.ID, Username: "leo", PostID: post.ID, Text: "edited", GroupID: &group.ID})
		require.NoError(t, err)
		assert.Equal(t, "edited", edited.Text)
		require.NotNil(t, edited.Group)
		assert.Equal(t, "cats", edited.Group.Slug)
		assert.True(t, original.PubDate.Equal(edited.PubDate))
		assert.Equal(t, author.ID, edited.AuthorID)
	})
}

func TestPostService_EditPostDiscardsReplacedImage(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	upload := func() *media.Upload {
		return &media.Upload{Filename: "p.png", Content: buf.Bytes()}
	}
	onDisk := func(ref string) bool {
		_, err := os.Stat(filepath.Join(env.mediaDir, filepath.FromSlash(ref)))
		return err == nil
	}

	post, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "v1", Image: upload()})
	require.NoError(t, err)
	first := post.Image
	require.True(t, onDisk(first))

	edited, err := env.posts.EditPost(ctx, EditPostInput{ActorID: author.ID, Username: "leo", PostID: post.ID, Text: "v2", Image: upload()})
	require.NoError(t, err)
	require.NotEqual(t, first, edited.Image)
	assert.True(t, onDisk(edited.Image))
	assert.False(t, onDisk(first))

	second := edited.Image
	edited, err = env.posts.EditPost(ctx, EditPostInput{ActorID: author.ID, Username: "leo", PostID: post.ID, Text: "v3"})
	require.NoError(t, err)
	assert.Equal(t, second, edited.Image)
	assert.True(t, onDisk(second))

	edited, err = env.posts.EditPost(ctx, EditPostInput{ActorID: author.ID, Username: "leo", PostID: post.ID, Text: "v4", ClearImage: true})
	require.NoError(t, err)
	assert.Empty(t, edited.Image)
	assert.False(t, onDisk(second))
}

func TestPostService_GetPostDetail(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "leo")
	reader := testutil.CreateUser(t, env.db, "mia")
	post := testutil.CreatePost(t, env.db, author, nil, "hello")
	testutil.CreateComment(t, env.db, post, reader, "first!")

	detail, err := env.posts.GetPostDetail(ctx, "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", detail.Post.Author.Username)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "mia", detail.Comments[0].Author.Username)

	_, err = env.posts.GetPostDetail(ctx, "mia", post.ID)
	assertCode(t, err, models.CodeNotFound)
}
