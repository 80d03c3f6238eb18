package repository

import (
	"context"

	"quill/internal/models"
	"quill/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostPage is one page of posts, newest first.
type PostPage = pagination.Page[models.Post]

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByAuthorAndID(ctx context.Context, username string, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	List(ctx context.Context, rawPage string, perPage int) (PostPage, error)
	ListByGroup(ctx context.Context, groupID uint, rawPage string, perPage int) (PostPage, error)
	ListByAuthor(ctx context.Context, authorID uint, rawPage string, perPage int) (PostPage, error)
	ListFeed(ctx context.Context, followerID uint, rawPage string, perPage int) (PostPage, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return mapError(err, "Post", post.ID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

// GetByAuthorAndID resolves a post only when it belongs to username.
func (r *postRepository) GetByAuthorAndID(ctx context.Context, username string, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("posts.id = ? AND posts.author_id = (SELECT id FROM users WHERE username = ?)", id, username).
		First(&post).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

// Update writes the editable fields only; author and pub_date are never touched.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("text", "group_id", "image").
		Updates(post).Error
	if err != nil {
		return mapError(err, "Post", post.ID)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, rawPage string, perPage int) (PostPage, error) {
	return r.page(ctx, func(db *gorm.DB) *gorm.DB { return db }, rawPage, perPage)
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, rawPage string, perPage int) (PostPage, error) {
	return r.page(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	}, rawPage, perPage)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, rawPage string, perPage int) (PostPage, error) {
	return r.page(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}, rawPage, perPage)
}

// ListFeed returns posts by authors followerID follows.
func (r *postRepository) ListFeed(ctx context.Context, followerID uint, rawPage string, perPage int) (PostPage, error) {
	return r.page(ctx, func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN follows ON follows.author_id = posts.author_id").
			Where("follows.user_id = ?", followerID)
	}, rawPage, perPage)
}

// page counts and fetches one window of the scoped collection inside a single snapshot.
func (r *postRepository) page(ctx context.Context, scope func(*gorm.DB) *gorm.DB, rawPage string, perPage int) (PostPage, error) {
	var result PostPage
	err := readSnapshot(ctx, r.db, func(tx *gorm.DB) error {
		var count int64
		if err := scope(tx.Model(&models.Post{})).Count(&count).Error; err != nil {
			return err
		}

		p := pagination.New(count, perPage)
		w := p.Resolve(rawPage)

		var posts []models.Post
		if count > 0 {
			err := scope(tx.Model(&models.Post{})).
				Select("posts.*").
				Preload("Author").
				Preload("Group").
				Order("posts.pub_date DESC, posts.id DESC").
				Limit(w.Limit).
				Offset(w.Offset).
				Find(&posts).Error
			if err != nil {
				return err
			}
		}

		result = pagination.NewPage(p, w, posts)
		return nil
	})
	if err != nil {
		return PostPage{}, models.NewInternalError(err)
	}
	return result, nil
}
