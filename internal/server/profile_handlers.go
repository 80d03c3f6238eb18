package server

import (
	"github.com/gofiber/fiber/v2"
)

// Profile godoc
// @Summary Author page
// @Description One page of the author's posts plus follow counts and whether the actor follows them
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Param page query string false "Page number"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /{username} [get]
func (s *Server) Profile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.UserContext(), actorID(c), c.Params("username"), c.Query("page"))
	if err != nil {
		return s.respondError(c, err)
	}

	ctx := listingContext(profile.Page)
	ctx["author"] = profile.Author
	ctx["following"] = profile.Following
	ctx["followers_count"] = profile.FollowersCount
	ctx["following_count"] = profile.FollowingCount
	ctx["posts_count"] = profile.PostsCount
	return c.JSON(ctx)
}

// FollowAuthor godoc
// @Summary Follow an author
// @Description Idempotent. Following yourself is ignored.
// @Tags profiles
// @Param username path string true "Username"
// @Success 302 "Redirect to the profile"
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/follow [post]
func (s *Server) FollowAuthor(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Follow(c.UserContext(), actorID(c), username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(profileURL(username), fiber.StatusFound)
}

// UnfollowAuthor godoc
// @Summary Unfollow an author
// @Description Removing an edge that does not exist is a no-op
// @Tags profiles
// @Param username path string true "Username"
// @Success 302 "Redirect to the profile"
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/unfollow [post]
func (s *Server) UnfollowAuthor(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Unfollow(c.UserContext(), actorID(c), username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(profileURL(username), fiber.StatusFound)
}

// FollowIndex godoc
// @Summary Personal feed
// @Description Posts by followed authors, newest first
// @Tags profiles
// @Produce json
// @Param page query string false "Page number"
// @Success 200 {object} map[string]interface{}
// @Success 302 "Redirect to login"
// @Router /follow [get]
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.ComposeFeed(c.UserContext(), actorID(c), c.Query("page"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listingContext(page))
}
