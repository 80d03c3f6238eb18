package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"quill/internal/media"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postFormInput is the bound create/edit post form.
type postFormInput struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
	// ImageClear is the checkbox that drops the current image on edit.
	ImageClear string `json:"image_clear" form:"image-clear"`
}

type commentFormInput struct {
	Text string `json:"text" form:"text"`
}

// postForm is the form context handed to the presentation layer.
type postForm struct {
	Text   string              `json:"text"`
	Group  *uint               `json:"group"`
	Image  string              `json:"image,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

type commentForm struct {
	Text string `json:"text"`
}

// paginatorView summarizes the paginator for listing contexts.
type paginatorView struct {
	Count    int64 `json:"count"`
	PerPage  int   `json:"per_page"`
	NumPages int   `json:"num_pages"`
}

func listingContext[T any](page pagination.Page[T]) fiber.Map {
	return fiber.Map{
		"page": page,
		"paginator": paginatorView{
			Count:    page.Count,
			PerPage:  page.PerPage,
			NumPages: page.NumPages,
		},
	}
}

// respondError writes the standard error body for a service error.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
		return models.RespondWithError(c, status, models.NewInternalError(err))
	}
	return models.RespondWithError(c, status, err)
}

// parsePostID reads the post_id route segment. Anything that is not a
// positive integer cannot name a post, so it is a 404 like an unknown id.
func parsePostID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("post_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Post", raw)
	}
	return uint(id), nil
}

// parseGroupChoice maps the submitted group field to a group id; blank means no group.
func parseGroupChoice(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewFieldValidationError("group", service.InvalidGroupChoice)
	}
	groupID := uint(id)
	return &groupID, nil
}

// readUpload returns the optional image file of a multipart form.
func readUpload(c *fiber.Ctx) (*media.Upload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile("image")
	if err != nil || fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewFieldValidationError("image", "Upload a valid image.")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewFieldValidationError("image", "Upload a valid image.")
	}
	return &media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// bindPostForm parses the post form. The returned form echoes what was
// submitted so a failed submission can be re-rendered.
func bindPostForm(c *fiber.Ctx) (postFormInput, *uint, *media.Upload, error) {
	var in postFormInput
	if err := c.BodyParser(&in); err != nil {
		return in, nil, nil, models.NewValidationError("Invalid form submission")
	}
	groupID, err := parseGroupChoice(in.Group)
	if err != nil {
		return in, nil, nil, err
	}
	upload, err := readUpload(c)
	if err != nil {
		return in, groupID, nil, err
	}
	return in, groupID, upload, nil
}

func fieldErrors(err error) map[string][]string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		return appErr.Fields
	}
	return map[string][]string{"__all__": {err.Error()}}
}

func profileURL(username string) string {
	return "/" + url.PathEscape(username)
}

func postURL(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d", url.PathEscape(username), postID)
}
