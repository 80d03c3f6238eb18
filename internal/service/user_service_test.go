package service

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()

	t.Run("collects field errors", func(t *testing.T) {
		_, err := env.users.Register(ctx, RegisterInput{Username: "new", Email: "nope", Password: "short"})
		appErr := assertCode(t, err, models.CodeValidation)
		assert.Contains(t, appErr.Fields, "username")
		assert.Contains(t, appErr.Fields, "email")
		assert.Contains(t, appErr.Fields, "password")
	})

	t.Run("creates hashed user", func(t *testing.T) {
		user, err := env.users.Register(ctx, RegisterInput{Username: "leo", Email: "Leo@Example.com", Password: testutil.TestPassword})
		require.NoError(t, err)
		assert.Equal(t, "leo@example.com", user.Email)
		assert.NotEqual(t, testutil.TestPassword, user.Password)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := env.users.Register(ctx, RegisterInput{Username: "leo", Email: "other@example.com", Password: testutil.TestPassword})
		assertCode(t, err, models.CodeConflict)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	testutil.CreateUser(t, env.db, "leo")

	user, err := env.users.Authenticate(ctx, "leo", testutil.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, "leo", user.Username)

	_, err = env.users.Authenticate(ctx, "leo", "WrongPassword1!")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = env.users.Authenticate(ctx, "ghost", testutil.TestPassword)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestUserService_Profile(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	leo := testutil.CreateUser(t, env.db, "leo")
	mia := testutil.CreateUser(t, env.db, "mia")
	sam := testutil.CreateUser(t, env.db, "sam")
	testutil.CreatePost(t, env.db, leo, nil, "one")
	testutil.CreatePost(t, env.db, leo, nil, "two")
	testutil.CreateFollow(t, env.db, mia, leo)
	testutil.CreateFollow(t, env.db, sam, leo)
	testutil.CreateFollow(t, env.db, leo, mia)

	profile, err := env.users.Profile(ctx, mia.ID, "leo", "1")
	require.NoError(t, err)
	assert.Equal(t, "leo", profile.Author.Username)
	assert.True(t, profile.Following)
	assert.Equal(t, int64(2), profile.FollowersCount)
	assert.Equal(t, int64(1), profile.FollowingCount)
	assert.Equal(t, int64(2), profile.PostsCount)
	require.Len(t, profile.Page.Items, 2)
	assert.Equal(t, "two", profile.Page.Items[0].Text)

	anonymous, err := env.users.Profile(ctx, 0, "leo", "1")
	require.NoError(t, err)
	assert.False(t, anonymous.Following)

	self, err := env.users.Profile(ctx, leo.ID, "leo", "1")
	require.NoError(t, err)
	assert.False(t, self.Following)

	_, err = env.users.Profile(ctx, 0, "ghost", "1")
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t, ListingOptions{})
	ctx := context.Background()
	leo := testutil.CreateUser(t, env.db, "leo")
	testutil.CreatePost(t, env.db, leo, nil, "bye")

	assert.True(t, env.users.Exists(ctx, leo.ID))
	require.NoError(t, env.users.DeleteUser(ctx, "leo"))
	assert.False(t, env.users.Exists(ctx, leo.ID))

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)

	assertCode(t, env.users.DeleteUser(ctx, "leo"), models.CodeNotFound)
}
