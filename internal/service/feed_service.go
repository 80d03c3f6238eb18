package service

import (
	"context"

	"quill/internal/observability"
	"quill/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type FeedService struct {
	postRepo repository.PostRepository
	perPage  int
}

func NewFeedService(postRepo repository.PostRepository, perPage int) *FeedService {
	return &FeedService{postRepo: postRepo, perPage: perPage}
}

// ComposeFeed pages through posts written by the authors userID follows,
// newest first. Users who follow nobody get one empty page.
func (s *FeedService) ComposeFeed(ctx context.Context, userID uint, rawPage string) (repository.PostPage, error) {
	ctx, finish := observability.StartSpan(ctx, "FeedService.ComposeFeed",
		attribute.Int64("user.id", int64(userID)),
		attribute.String("page", rawPage),
	)
	page, err := s.postRepo.ListFeed(ctx, userID, rawPage, s.perPage)
	finish(err)
	return page, err
}
