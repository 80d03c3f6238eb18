package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow makes followerID follow username. Following yourself or someone
// already followed changes nothing. The returned bool reports a new edge.
func (s *FollowService) Follow(ctx context.Context, followerID uint, username string) (bool, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if author.ID == followerID {
		return false, nil
	}

	created, err := s.followRepo.CreateIfAbsent(ctx, followerID, author.ID)
	if err != nil {
		return false, err
	}
	if created {
		observability.FollowChanges.WithLabelValues("follow").Inc()
	}
	return created, nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, username string) (bool, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	removed, err := s.followRepo.Delete(ctx, followerID, author.ID)
	if err != nil {
		return false, err
	}
	if removed {
		observability.FollowChanges.WithLabelValues("unfollow").Inc()
	}
	return removed, nil
}

// IsFollowing reports whether followerID follows author. Anonymous actors follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, followerID uint, author *models.User) (bool, error) {
	if followerID == 0 || author == nil || author.ID == followerID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, followerID, author.ID)
}
