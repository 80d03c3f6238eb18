// Package seed fills a database with demo data for development and manual
// testing. It is never used by the serving path.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded user.
const DefaultPassword = "QuillDemo2024!"

// Factory builds domain entities with fake content and persists them
// through the repositories.
type Factory struct {
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	maxDays  int
	now      func() time.Time
	hash     string
	seq      int
}

// NewFactory hashes password once and returns a factory drawing from a
// deterministic faker when seed is non-zero.
func NewFactory(db *gorm.DB, seed int64, password string, hashCost int, maxDays int) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if password == "" {
		password = DefaultPassword
	}
	if maxDays <= 0 {
		maxDays = 90
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	return &Factory{
		faker:    gofakeit.New(seed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		maxDays:  maxDays,
		now:      time.Now,
		hash:     string(hash),
	}, nil
}

// CreateUser persists a user with a unique, route-safe username.
func (f *Factory) CreateUser(ctx context.Context) (*models.User, error) {
	f.seq++
	username := fmt.Sprintf("%s_%d", strings.ToLower(f.faker.Username()), f.seq)
	if validation.ValidateUsername(username) != nil {
		username = fmt.Sprintf("reader_%d", f.seq)
	}

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
		Password: f.hash,
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post by author, optionally in group, published at a
// random moment within the factory's window.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, group *models.Group) (*models.Post, error) {
	post := &models.Post{
		Text:     f.faker.Paragraph(1, f.faker.Number(1, 4), 12, " "),
		AuthorID: author.ID,
		PubDate:  f.pastMoment(),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a short comment on post.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     f.faker.Sentence(f.faker.Number(3, 14)),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Follow adds the edge user -> author unless it exists or is a self-edge.
func (f *Factory) Follow(ctx context.Context, user, author *models.User) (bool, error) {
	if user.ID == author.ID {
		return false, nil
	}
	return f.follows.CreateIfAbsent(ctx, user.ID, author.ID)
}

func (f *Factory) pastMoment() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return f.now().Add(-back).UTC()
}

// pick returns a random element of items.
func pick[T any](f *Factory, items []T) T {
	return items[f.faker.Number(0, len(items)-1)]
}
