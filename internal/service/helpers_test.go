package service

import (
	"errors"
	"testing"
	"time"

	"quill/internal/cache"
	"quill/internal/media"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	pages    *cache.MemoryPageCache
	mediaDir string
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	feed     *FeedService
	users    *UserService
	groups   *GroupService
}

func newTestEnv(t *testing.T, opts ListingOptions) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	userRepo := repository.NewUserRepository(db)

	if opts.PerPage == 0 {
		opts.PerPage = 10
	}
	pages := cache.NewMemoryPageCache(20 * time.Second)
	mediaDir := t.TempDir()

	users := NewUserService(userRepo, postRepo, followRepo, opts.PerPage)
	users.hashCost = bcrypt.MinCost

	return &testEnv{
		db:       db,
		pages:    pages,
		mediaDir: mediaDir,
		posts:    NewPostService(postRepo, groupRepo, commentRepo, media.NewDiskStorage(mediaDir, 1024*1024), pages, opts),
		comments: NewCommentService(commentRepo, postRepo),
		follows:  NewFollowService(followRepo, userRepo),
		feed:     NewFeedService(postRepo, opts.PerPage),
		users:    users,
		groups:   NewGroupService(groupRepo),
	}
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertFieldError asserts a validation error naming field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, field)
}
