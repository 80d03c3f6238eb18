package service

import (
	"context"
	"log/slog"
	"strings"

	"quill/internal/cache"
	"quill/internal/media"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// InvalidGroupChoice is the field error for a group reference that does not resolve.
const InvalidGroupChoice = "Select a valid choice. That choice is not one of the available choices."

// ListingOptions controls listing page size and cache behaviour.
type ListingOptions struct {
	PerPage int
	// InvalidateOnWrite flushes the listing cache after post create and edit.
	InvalidateOnWrite bool
}

type PostService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	media       media.Storage
	pages       cache.PageCache
	opts        ListingOptions
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *media.Upload
}

type EditPostInput struct {
	ActorID  uint
	Username string
	PostID   uint
	Text     string
	GroupID  *uint
	Image    *media.Upload
	// ClearImage drops the current image when no new one is uploaded.
	ClearImage bool
}

// PostDetail is a post with its comments, newest first.
type PostDetail struct {
	Post     *models.Post
	Comments []models.Comment
}

// GroupChoice is one option of the group selector on the post form.
type GroupChoice struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	commentRepo repository.CommentRepository,
	store media.Storage,
	pages cache.PageCache,
	opts ListingOptions,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		commentRepo: commentRepo,
		media:       store,
		pages:       pages,
		opts:        opts,
	}
}

// ListPosts returns one page of every post. Pages are served from the page
// cache and may be stale until the entry expires or the cache is flushed.
func (s *PostService) ListPosts(ctx context.Context, rawPage string) (repository.PostPage, error) {
	ctx, finish := observability.StartSpan(ctx, "PostService.ListPosts", attribute.String("page", rawPage))

	var page repository.PostPage
	err := cache.Remember(ctx, s.pages, cache.IndexPageKey(rawPage), &page, func() error {
		var fetchErr error
		page, fetchErr = s.postRepo.List(ctx, rawPage, s.opts.PerPage)
		return fetchErr
	})
	finish(err)
	if err != nil {
		return repository.PostPage{}, err
	}
	return page, nil
}

// GroupPosts returns the group and one page of its posts.
func (s *PostService) GroupPosts(ctx context.Context, slug, rawPage string) (*models.Group, repository.PostPage, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, repository.PostPage{}, err
	}
	page, err := s.postRepo.ListByGroup(ctx, group.ID, rawPage, s.opts.PerPage)
	if err != nil {
		return nil, repository.PostPage{}, err
	}
	return group, page, nil
}

// GroupChoices lists the groups a post may be filed under.
func (s *PostService) GroupChoices(ctx context.Context) ([]GroupChoice, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(groups, func(g models.Group, _ int) GroupChoice {
		return GroupChoice{ID: g.ID, Slug: g.Slug, Title: g.Title}
	}), nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := s.validatePostFields(ctx, in.Text, in.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
	}

	if in.Image != nil {
		ref, err := s.media.Save(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = ref
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.discardImage(ctx, post.Image)
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)))
	s.afterWrite(ctx)
	return post, nil
}

// GetPostDetail resolves a post under its author's username together with its comments.
func (s *PostService) GetPostDetail(ctx context.Context, username string, postID uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByAuthorAndID(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// GetPostForEdit returns the post when actorID is its author. A post that does
// not belong to username is not found; a post owned by someone else is forbidden.
func (s *PostService) GetPostForEdit(ctx context.Context, actorID uint, username string, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByAuthorAndID(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if !CanEditPost(actorID, post) {
		return post, models.NewForbiddenError("You can only edit your own posts")
	}
	return post, nil
}

// EditPost updates text, group and image. Author and publication date never change.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	post, err := s.GetPostForEdit(ctx, in.ActorID, in.Username, in.PostID)
	if err != nil {
		return post, err
	}
	if err := s.validatePostFields(ctx, in.Text, in.GroupID); err != nil {
		return post, err
	}

	previousImage := post.Image
	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = nil

	switch {
	case in.Image != nil:
		ref, err := s.media.Save(ctx, *in.Image)
		if err != nil {
			return post, err
		}
		post.Image = ref
	case in.ClearImage:
		post.Image = ""
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if post.Image != previousImage {
			s.discardImage(ctx, post.Image)
		}
		return post, err
	}
	if post.Image != previousImage {
		s.discardImage(ctx, previousImage)
	}

	s.afterWrite(ctx)
	return s.postRepo.GetByID(ctx, post.ID)
}

// FlushListingCache drops every cached listing page.
func (s *PostService) FlushListingCache(ctx context.Context) error {
	if s.pages == nil {
		return nil
	}
	return s.pages.Invalidate(ctx)
}

func (s *PostService) validatePostFields(ctx context.Context, text string, groupID *uint) error {
	if strings.TrimSpace(text) == "" {
		return models.NewFieldValidationError("text", "This field is required.")
	}
	if groupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.NewFieldValidationError("group", InvalidGroupChoice)
			}
			return err
		}
	}
	return nil
}

func (s *PostService) afterWrite(ctx context.Context) {
	if !s.opts.InvalidateOnWrite {
		return
	}
	if err := s.FlushListingCache(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "listing cache flush failed", slog.String("error", err.Error()))
	}
}

func (s *PostService) discardImage(ctx context.Context, ref string) {
	if ref == "" || s.media == nil {
		return
	}
	if err := s.media.Remove(ctx, ref); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove orphaned image", slog.String("image", ref), slog.String("error", err.Error()))
	}
}
