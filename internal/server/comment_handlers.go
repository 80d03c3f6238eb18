package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment godoc
// @Summary Comment on a post
// @Description Always redirects back to the post. Blank text adds nothing.
// @Tags comments
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param username path string true "Author username"
// @Param post_id path int true "Post ID"
// @Param text formData string true "Comment text"
// @Success 302 "Redirect to the post"
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{post_id}/comment [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	username := c.Params("username")

	var in commentFormInput
	// an unparseable body is treated like a blank comment
	_ = c.BodyParser(&in)

	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		AuthorID: actorID(c),
		Username: username,
		PostID:   postID,
		Text:     in.Text,
	})
	if err != nil && !models.HasCode(err, models.CodeValidation) {
		return s.respondError(c, err)
	}
	return c.Redirect(postURL(username, postID), fiber.StatusFound)
}
