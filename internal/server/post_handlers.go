package server

import (
	"strings"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index godoc
// @Summary List all posts
// @Description Newest first, paginated. Pages are cached and may lag recent writes.
// @Tags posts
// @Produce json
// @Param page query string false "Page number"
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (s *Server) Index(c *fiber.Ctx) error {
	// The raw page value becomes a cache key, so it must outlive the request buffer.
	page, err := s.postService.ListPosts(c.UserContext(), strings.Clone(c.Query("page")))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listingContext(page))
}

// GroupPosts godoc
// @Summary List a group's posts
// @Tags posts
// @Produce json
// @Param slug path string true "Group slug"
// @Param page query string false "Page number"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /group/{slug} [get]
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	group, page, err := s.postService.GroupPosts(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return s.respondError(c, err)
	}
	ctx := listingContext(page)
	ctx["group"] = group
	return c.JSON(ctx)
}

// NewPostForm godoc
// @Summary Empty post form
// @Tags posts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 302 "Redirect to login"
// @Router /new [get]
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, postForm{}, nil)
}

// CreatePost godoc
// @Summary Publish a post
// @Description Accepts urlencoded, multipart (with an optional image file) or JSON forms
// @Tags posts
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param text formData string true "Post text"
// @Param group formData string false "Group id"
// @Param image formData file false "Image"
// @Success 302 "Redirect to the listing"
// @Failure 400 {object} map[string]interface{}
// @Router /new [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in, groupID, upload, err := bindPostForm(c)
	form := postForm{Text: in.Text, Group: groupID}
	if err != nil {
		form.Errors = fieldErrors(err)
		return s.renderPostForm(c, fiber.StatusBadRequest, form, nil)
	}

	_, err = s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: actorID(c),
		Text:     in.Text,
		GroupID:  groupID,
		Image:    upload,
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			form.Errors = fieldErrors(err)
			return s.renderPostForm(c, fiber.StatusBadRequest, form, nil)
		}
		return s.respondError(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// PostDetail godoc
// @Summary Read a post
// @Description The post, its author, its comments newest first and an empty comment form
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Param post_id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{post_id} [get]
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	detail, err := s.postService.GetPostDetail(c.UserContext(), c.Params("username"), postID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":     detail.Post,
		"author":   detail.Post.Author,
		"form":     commentForm{},
		"comments": detail.Comments,
	})
}

// EditPostForm godoc
// @Summary Edit form for one of the actor's posts
// @Description Non-authors are redirected to the post
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Param post_id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Success 302 "Redirect to the post or to login"
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{post_id}/edit [get]
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	post, handled, err := s.editablePost(c)
	if handled || err != nil {
		return err
	}
	form := postForm{Text: post.Text, Group: post.GroupID, Image: post.Image}
	return s.renderPostForm(c, fiber.StatusOK, form, post)
}

// EditPost godoc
// @Summary Update one of the actor's posts
// @Description Text, group and image change; author and publication date never do
// @Tags posts
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param username path string true "Author username"
// @Param post_id path int true "Post ID"
// @Param text formData string true "Post text"
// @Param group formData string false "Group id"
// @Param image formData file false "Image"
// @Param image-clear formData string false "Drop the current image"
// @Success 302 "Redirect to the post"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{post_id}/edit [post]
func (s *Server) EditPost(c *fiber.Ctx) error {
	post, handled, err := s.editablePost(c)
	if handled || err != nil {
		return err
	}

	in, groupID, upload, err := bindPostForm(c)
	form := postForm{Text: in.Text, Group: groupID, Image: post.Image}
	if err != nil {
		form.Errors = fieldErrors(err)
		return s.renderPostForm(c, fiber.StatusBadRequest, form, post)
	}

	updated, err := s.postService.EditPost(c.UserContext(), service.EditPostInput{
		ActorID:    actorID(c),
		Username:   c.Params("username"),
		PostID:     post.ID,
		Text:       in.Text,
		GroupID:    groupID,
		Image:      upload,
		ClearImage: in.ImageClear != "",
	})
	switch {
	case err == nil:
		return c.Redirect(postURL(updated.Author.Username, updated.ID), fiber.StatusFound)
	case models.HasCode(err, models.CodeForbidden):
		return c.Redirect(postURL(c.Params("username"), post.ID), fiber.StatusFound)
	case models.HasCode(err, models.CodeValidation):
		form.Errors = fieldErrors(err)
		return s.renderPostForm(c, fiber.StatusBadRequest, form, post)
	default:
		return s.respondError(c, err)
	}
}

// editablePost resolves the post behind an edit route. When the response has
// already been written (404, or a redirect for a non-author) handled is true.
func (s *Server) editablePost(c *fiber.Ctx) (post *models.Post, handled bool, err error) {
	postID, err := parsePostID(c)
	if err != nil {
		return nil, true, s.respondError(c, err)
	}

	username := c.Params("username")
	post, err = s.postService.GetPostForEdit(c.UserContext(), actorID(c), username, postID)
	switch {
	case err == nil:
		return post, false, nil
	case models.HasCode(err, models.CodeForbidden):
		return nil, true, c.Redirect(postURL(username, postID), fiber.StatusFound)
	default:
		return nil, true, s.respondError(c, err)
	}
}

func (s *Server) renderPostForm(c *fiber.Ctx, status int, form postForm, post *models.Post) error {
	groups, err := s.postService.GroupChoices(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}

	ctx := fiber.Map{
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		ctx["post"] = post
	}
	return c.Status(status).JSON(ctx)
}
