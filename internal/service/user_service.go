package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	perPage    int
	hashCost   int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Profile is an author page: the author, one page of their posts and follow stats.
type Profile struct {
	Author         *models.User
	Page           repository.PostPage
	Following      bool
	FollowersCount int64
	FollowingCount int64
	PostsCount     int64
}

var errInvalidCredentials = models.NewUnauthorizedError("Invalid username or password")

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	perPage int,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		followRepo: followRepo,
		perPage:    perPage,
		hashCost:   bcrypt.DefaultCost,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	fields := map[string][]string{}
	if err := validation.ValidateUsername(username); err != nil {
		fields["username"] = []string{err.Error()}
	}
	if err := validation.ValidateEmail(email); err != nil {
		fields["email"] = []string{err.Error()}
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = []string{err.Error()}
	}
	if len(fields) > 0 {
		appErr := models.NewValidationError("Invalid registration details")
		appErr.Fields = fields
		return nil, appErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		if errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errInvalidCredentials
		}
		return nil, models.NewInternalError(cmpErr)
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Exists reports whether the account is still present. Lookup errors other
// than not-found fail open and are logged.
func (s *UserService) Exists(ctx context.Context, id uint) bool {
	_, err := s.userRepo.GetByID(ctx, id)
	if err == nil {
		return true
	}
	if models.HasCode(err, models.CodeNotFound) {
		return false
	}
	middleware.Logger.WarnContext(ctx, "account lookup failed", slog.Uint64("user_id", uint64(id)), slog.String("error", err.Error()))
	return true
}

// Profile builds the author page for username as seen by actorID (0 for anonymous).
func (s *UserService) Profile(ctx context.Context, actorID uint, username, rawPage string) (*Profile, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	page, err := s.postRepo.ListByAuthor(ctx, author.ID, rawPage, s.perPage)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Author:     author,
		Page:       page,
		PostsCount: page.Count,
	}

	if actorID != 0 && actorID != author.ID {
		if profile.Following, err = s.followRepo.Exists(ctx, actorID, author.ID); err != nil {
			return nil, err
		}
	}
	if profile.FollowersCount, err = s.followRepo.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.followRepo.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteUser removes the account and everything it authored.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	return s.userRepo.DeleteByUsername(ctx, username)
}
