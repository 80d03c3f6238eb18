package seed

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/middleware"
	"quill/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	// GroupedShare is the fraction of posts filed under a group.
	GroupedShare float64
	MaxDays      int
	Seed         int64
	Password     string
	HashCost     int
	Clean        bool
}

// DefaultOptions is a small, browsable data set.
func DefaultOptions() Options {
	return Options{
		Users:           12,
		PostsPerUser:    6,
		CommentsPerPost: 2,
		FollowsPerUser:  4,
		GroupedShare:    0.6,
		MaxDays:         60,
		HashCost:        bcrypt.DefaultCost,
	}
}

// Summary counts what a run inserted.
type Summary struct {
	Groups   int
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Run seeds groups from fixtures, then users, their posts, comments on those
// posts and a random follow graph.
func Run(ctx context.Context, db *gorm.DB, opts Options, fixtures []GroupFixture) (Summary, error) {
	var sum Summary

	if opts.Clean {
		if err := Clear(db.WithContext(ctx)); err != nil {
			return sum, fmt.Errorf("clear data: %w", err)
		}
	}

	groups, err := Groups(db.WithContext(ctx), fixtures)
	if err != nil {
		return sum, err
	}
	sum.Groups = len(groups)

	hashCost := opts.HashCost
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	f, err := NewFactory(db, opts.Seed, opts.Password, hashCost, opts.MaxDays)
	if err != nil {
		return sum, err
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	var posts []*models.Post
	for _, author := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			var group *models.Group
			if len(groups) > 0 && f.faker.Float64() < opts.GroupedShare {
				group = &groups[f.faker.Number(0, len(groups)-1)]
			}
			p, err := f.CreatePost(ctx, author, group)
			if err != nil {
				return sum, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, p)
		}
	}
	sum.Posts = len(posts)

	for _, p := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			if _, err := f.CreateComment(ctx, p, pick(f, users)); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}

	for _, u := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			created, err := f.Follow(ctx, u, pick(f, users))
			if err != nil {
				return sum, fmt.Errorf("create follow: %w", err)
			}
			if created {
				sum.Follows++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("groups", sum.Groups),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("follows", sum.Follows),
	)
	return sum, nil
}

// Clear deletes every row of the domain tables, children first.
func Clear(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
