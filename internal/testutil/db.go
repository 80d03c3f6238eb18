// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"quill/internal/database"
	"quill/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB returns an isolated in-memory database with foreign keys enforced
// and every persistent model migrated. A single connection keeps the memory
// database and the PRAGMA alive for the test's lifetime.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// TestPassword is the plaintext password of every user built by CreateUser.
const TestPassword = "CorrectHorse9!"

var testPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// CreateUser inserts a user with a predictable email and TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.test", username),
		Password: testPasswordHash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateGroup inserts a group.
func CreateGroup(t *testing.T, db *gorm.DB, slug, title string) *models.Group {
	t.Helper()
	group := &models.Group{Slug: slug, Title: title, Description: title + " description"}
	require.NoError(t, db.Create(group).Error)
	return group
}

// CreatePost inserts a post, optionally filed under group.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(post).Error)
	return post
}

// CreateComment inserts a comment on post.
func CreateComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	require.NoError(t, db.Omit("Author", "Post").Create(comment).Error)
	return comment
}

// CreateFollow inserts a follow edge.
func CreateFollow(t *testing.T, db *gorm.DB, follower, author *models.User) *models.Follow {
	t.Helper()
	follow := &models.Follow{UserID: follower.ID, AuthorID: author.ID}
	require.NoError(t, db.Omit("User", "Author").Create(follow).Error)
	return follow
}
